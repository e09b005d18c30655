package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

// GetValue returns the stored value for key and whether it exists
func (db *DB) GetValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(ctx, GetValueSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// PutValue inserts or replaces the value stored under key
func (db *DB) PutValue(ctx context.Context, key, value string) error {
	if err := db.Exec(ctx, PutValueSQL, key, value); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// DeleteValue removes key. Deleting a missing key is not an error.
func (db *DB) DeleteValue(ctx context.Context, key string) error {
	if err := db.Exec(ctx, DeleteValueSQL, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// RecordOrderEvent appends a received order notification to the event log
func (db *DB) RecordOrderEvent(ctx context.Context, msg models.OrderPlacedMessage) error {
	err := db.Exec(ctx, InsertOrderEventSQL,
		msg.OrderID,
		msg.RestaurantID,
		string(msg.Status),
		msg.ItemCount,
		msg.Total.String(),
		msg.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record order event %d: %w", msg.OrderID, err)
	}
	return nil
}

// OrderEvents returns the recorded notifications for an order, oldest first
func (db *DB) OrderEvents(ctx context.Context, orderID int64) ([]models.OrderPlacedMessage, error) {
	rows, err := db.Query(ctx, GetOrderEventsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order events: %w", err)
	}
	defer rows.Close()

	var events []models.OrderPlacedMessage
	for rows.Next() {
		var (
			msg    models.OrderPlacedMessage
			status string
			total  string
		)
		if err := rows.Scan(&msg.OrderID, &msg.RestaurantID, &status, &msg.ItemCount, &total, &msg.PlacedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order event: %w", err)
		}
		msg.Status = models.OrderStatus(status)
		msg.Total, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("invalid order event total %q: %w", total, err)
		}
		events = append(events, msg)
	}

	return events, rows.Err()
}
