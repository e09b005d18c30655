package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

// Steps are the progress stages shown for an order
var Steps = []string{"Received", "Preparing", "On the way", "Delivered"}

// Status tones
const (
	ToneSuccess = "success"
	ToneError   = "error"
	ToneWarning = "warning"
)

// OrderSource returns the signed-in user's order history
type OrderSource interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// StepIndex maps a server status onto Steps
func StepIndex(status models.OrderStatus) int {
	v := strings.ToLower(string(status))
	switch {
	case strings.Contains(v, "deliver"):
		return 3
	case strings.Contains(v, "way"):
		return 2
	case strings.Contains(v, "prepar"):
		return 1
	default:
		return 0
	}
}

func StatusTone(status models.OrderStatus) string {
	v := strings.ToLower(string(status))
	switch {
	case strings.Contains(v, "deliver"):
		return ToneSuccess
	case strings.Contains(v, "cancel"):
		return ToneError
	default:
		return ToneWarning
	}
}

// OrderView is an order with its progress step and status tone
type OrderView struct {
	models.Order
	Step      int    `json:"step"`
	StepLabel string `json:"step_label"`
	Tone      string `json:"tone"`
}

func NewOrderView(o models.Order) OrderView {
	step := StepIndex(o.Status)
	return OrderView{
		Order:     o,
		Step:      step,
		StepLabel: Steps[step],
		Tone:      StatusTone(o.Status),
	}
}

// Split partitions orders into active and past, keeping their order
func Split(orders []models.Order) (active, past []OrderView) {
	active, past = []OrderView{}, []OrderView{}
	for _, o := range orders {
		if o.Status.Finished() {
			past = append(past, NewOrderView(o))
		} else {
			active = append(active, NewOrderView(o))
		}
	}
	return active, past
}

// Service provides tracking functionality
type Service struct {
	source OrderSource
	logger *logger.Logger
}

func NewService(source OrderSource, log *logger.Logger) *Service {
	return &Service{
		source: source,
		logger: log,
	}
}

// Orders fetches the order history
func (s *Service) Orders(ctx context.Context, requestID string) ([]models.Order, error) {
	orders, err := s.source.ListOrders(ctx)
	if err != nil {
		s.logger.Error("orders_fetch_failed", "Failed to load order history", requestID, err, nil)
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}

// Order finds order id in the history
func (s *Service) Order(ctx context.Context, id int64, requestID string) (*OrderView, error) {
	orders, err := s.Orders(ctx, requestID)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.ID == id {
			v := NewOrderView(o)
			return &v, nil
		}
	}
	return nil, ErrOrderNotFound
}
