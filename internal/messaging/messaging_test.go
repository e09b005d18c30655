package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

type fakeAcker struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcker) Ack(uint64, bool) error { f.acked = true; return nil }

func (f *fakeAcker) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked, f.requeue = true, requeue
	return nil
}

func (f *fakeAcker) Reject(_ uint64, requeue bool) error {
	f.nacked, f.requeue = true, requeue
	return nil
}

func TestProcessMessage(t *testing.T) {
	tests := []struct {
		name        string
		handlerErr  error
		wantAck     bool
		wantRequeue bool
	}{
		{name: "success acks", wantAck: true},
		{name: "transient failure requeues", handlerErr: errors.New("db down"), wantRequeue: true},
		{name: "poison is dropped", handlerErr: ErrPoison, wantRequeue: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConsumer(nil, logger.Discard(), NotificationsQueue, "test", 1)
			acker := &fakeAcker{}
			d := amqp091.Delivery{Acknowledger: acker, Body: []byte(`{}`), DeliveryTag: 1}

			c.processMessage(context.Background(), d, func(context.Context, []byte) error {
				return tt.handlerErr
			})

			assert.Equal(t, tt.wantAck, acker.acked)
			assert.Equal(t, !tt.wantAck, acker.nacked)
			assert.Equal(t, tt.wantRequeue, acker.requeue)
		})
	}
}

func TestParseMessage(t *testing.T) {
	var msg models.OrderPlacedMessage
	require.NoError(t, ParseMessage([]byte(`{"order_id":42,"restaurant_id":5,"total":"28.52"}`), &msg))
	assert.Equal(t, int64(42), msg.OrderID)
	assert.Equal(t, "order.placed.5", msg.RoutingKey())

	err := ParseMessage([]byte(`{oops`), &msg)
	assert.ErrorIs(t, err, ErrPoison)
}

func TestTopology(t *testing.T) {
	queues, bindings := topology()
	assert.ElementsMatch(t, []string{RestaurantOrdersQueue, NotificationsQueue}, queues)

	byQueue := map[string]binding{}
	for _, b := range bindings {
		byQueue[b.queue] = b
	}
	assert.Equal(t, OrdersExchange, byQueue[RestaurantOrdersQueue].exchange)
	assert.Equal(t, "order.placed.*", byQueue[RestaurantOrdersQueue].routingKey)
	assert.Equal(t, NotificationsExchange, byQueue[NotificationsQueue].exchange)
}

func TestNewPublishing(t *testing.T) {
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	p := newPublishing([]byte(`{}`), true, at)
	assert.Equal(t, "application/json", p.ContentType)
	assert.Equal(t, amqp091.Persistent, p.DeliveryMode)
	assert.Equal(t, at, p.Timestamp)

	assert.Equal(t, amqp091.Transient, newPublishing(nil, false, at).DeliveryMode)
}
