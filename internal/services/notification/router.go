package notification

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

// EventStore reads recorded order notifications
type EventStore interface {
	OrderEvents(ctx context.Context, orderID int64) ([]models.OrderPlacedMessage, error)
}

// NewRouter serves the notifier endpoints: the WebSocket feed, the recorded
// events of one order and a health check reported by healthy.
func NewRouter(hub *Hub, events EventStore, healthy func(ctx context.Context) bool, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", hub.HandleWebSocket)

	r.GET("/orders/:id/events", func(c *gin.Context) {
		requestID := logger.GenerateRequestID()
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			writeErrorResponse(c, http.StatusBadRequest, "Invalid order id", requestID)
			return
		}

		list, err := events.OrderEvents(c.Request.Context(), id)
		if err != nil {
			log.Error("order_events_failed", "Failed to read order events", requestID, err, map[string]interface{}{
				"order_id": id,
			})
			writeErrorResponse(c, http.StatusInternalServerError, "Failed to read order events", requestID)
			return
		}
		if len(list) == 0 {
			writeErrorResponse(c, http.StatusNotFound, "No events for this order", requestID)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order_id": id, "events": list})
	})

	r.GET("/health", func(c *gin.Context) {
		ok := healthy(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"service":   "order-notifier",
			"healthy":   ok,
			"clients":   hub.Clients(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	return r
}

func writeErrorResponse(c *gin.Context, statusCode int, message, requestID string) {
	c.JSON(statusCode, gin.H{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	})
}
