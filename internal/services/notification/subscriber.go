package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/messaging"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

// Consumer delivers queued message bodies to a handler until ctx is done
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Recorder keeps a log of received notifications
type Recorder interface {
	RecordOrderEvent(ctx context.Context, msg models.OrderPlacedMessage) error
}

// Broadcaster pushes a notification to live clients
type Broadcaster interface {
	Broadcast(msg models.OrderPlacedMessage)
}

// Subscriber handles order notification messages
type Subscriber struct {
	consumer    Consumer
	recorder    Recorder
	broadcaster Broadcaster
	out         io.Writer
	logger      *logger.Logger
}

// NewSubscriber creates a subscriber. recorder and broadcaster may be nil.
func NewSubscriber(consumer Consumer, recorder Recorder, broadcaster Broadcaster, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer:    consumer,
		recorder:    recorder,
		broadcaster: broadcaster,
		out:         os.Stdout,
		logger:      log,
	}
}

// Start consumes notifications until ctx is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleNotification)
	if errors.Is(err, context.Canceled) {
		return s.gracefulShutdown(requestID)
	}
	if err != nil {
		s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
	}
	return err
}

// handleNotification processes one order placed message. A recording
// failure is returned so the message is redelivered.
func (s *Subscriber) handleNotification(ctx context.Context, body []byte) error {
	var msg models.OrderPlacedMessage
	if err := messaging.ParseMessage(body, &msg); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", "", err, nil)
		return err
	}

	s.logger.Debug("notification_received", "Received order notification", msg.RequestID, map[string]interface{}{
		"order_id":      msg.OrderID,
		"restaurant_id": msg.RestaurantID,
		"status":        msg.Status,
	})

	if s.recorder != nil {
		if err := s.recorder.RecordOrderEvent(ctx, msg); err != nil {
			return fmt.Errorf("failed to record notification: %w", err)
		}
	}

	s.displayNotification(msg)
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(msg)
	}
	return nil
}

func (s *Subscriber) displayNotification(msg models.OrderPlacedMessage) {
	fmt.Fprintln(s.out, formatNotification(msg))

	s.logger.Info("notification_displayed", "Notification displayed to user", msg.RequestID, map[string]interface{}{
		"order_id":      msg.OrderID,
		"restaurant_id": msg.RestaurantID,
		"total":         msg.Total.StringFixed(2),
		"timestamp":     msg.PlacedAt.Format("2006-01-02 15:04:05"),
	})
}

// formatNotification creates a human-readable notification line
func formatNotification(msg models.OrderPlacedMessage) string {
	timestamp := msg.PlacedAt.Format("2006-01-02 15:04:05")
	items := "items"
	if msg.ItemCount == 1 {
		items = "item"
	}

	switch {
	case msg.Status == models.StatusCancelled || msg.Status == models.StatusFailed:
		return fmt.Sprintf("❌ [%s] Order #%d for restaurant %d could not be placed.",
			timestamp, msg.OrderID, msg.RestaurantID)
	case msg.PickupCode != "":
		return fmt.Sprintf("🧾 [%s] Order #%d placed at restaurant %d: %d %s, $%s. Pickup code %s.",
			timestamp, msg.OrderID, msg.RestaurantID, msg.ItemCount, items, msg.Total.StringFixed(2), msg.PickupCode)
	default:
		return fmt.Sprintf("🧾 [%s] Order #%d placed at restaurant %d: %d %s, $%s.",
			timestamp, msg.OrderID, msg.RestaurantID, msg.ItemCount, items, msg.Total.StringFixed(2))
	}
}

func (s *Subscriber) gracefulShutdown(requestID string) error {
	s.logger.Info("graceful_shutdown", "Starting graceful shutdown", requestID, nil)

	if err := s.consumer.Close(); err != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, err, nil)
	}

	s.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)
	return nil
}
