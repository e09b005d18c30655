package tracking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dang-Huynh/FoodOrderingService/internal/api"
	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
)

// Handler handles HTTP requests for order tracking
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register mounts the tracking routes on r
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
}

// ListOrders handles GET /orders
func (h *Handler) ListOrders(c *gin.Context) {
	requestID := requestIDFrom(c)

	orders, err := h.service.Orders(c.Request.Context(), requestID)
	if err != nil {
		h.writeError(c, err, requestID)
		return
	}

	active, past := Split(orders)
	c.JSON(http.StatusOK, gin.H{
		"active": active,
		"past":   past,
		"steps":  Steps,
	})
}

// GetOrder handles GET /orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	requestID := requestIDFrom(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeErrorResponse(c, http.StatusBadRequest, "Invalid order id", requestID)
		return
	}

	h.logger.Debug("request_received", "Get order request", requestID, map[string]interface{}{
		"order_id": id,
	})

	order, err := h.service.Order(c.Request.Context(), id, requestID)
	if err != nil {
		h.writeError(c, err, requestID)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) writeError(c *gin.Context, err error, requestID string) {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		writeErrorResponse(c, http.StatusNotFound, "Order not found", requestID)
	case api.IsStatus(err, http.StatusUnauthorized):
		writeErrorResponse(c, http.StatusUnauthorized, "Please log in to see your orders", requestID)
	default:
		writeErrorResponse(c, http.StatusBadGateway, "Order service unavailable", requestID)
	}
}

func writeErrorResponse(c *gin.Context, statusCode int, message, requestID string) {
	c.JSON(statusCode, gin.H{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	})
}

func requestIDFrom(c *gin.Context) string {
	if id := c.GetString(logger.RequestIDKey); id != "" {
		return id
	}
	return logger.GenerateRequestID()
}
