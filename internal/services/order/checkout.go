package order

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Dang-Huynh/FoodOrderingService/internal/checkout"
	"github.com/Dang-Huynh/FoodOrderingService/internal/promo"
)

type selectRequest struct {
	ID string `json:"id" binding:"required"`
}

type deliveryRequest struct {
	Mode        checkout.DeliveryMode `json:"mode" binding:"required"`
	ScheduledAt string                `json:"scheduled_at"`
}

type tipRequest struct {
	TipPct decimal.Decimal `json:"tip_pct"`
}

type promoRequest struct {
	Code string `json:"code"`
}

// GetCheckout handles GET /checkout
func (h *Handler) GetCheckout(c *gin.Context) {
	c.JSON(http.StatusOK, h.checkout.Summary())
}

// SelectAddress handles PUT /checkout/address
func (h *Handler) SelectAddress(c *gin.Context) {
	requestID := requestIDFrom(c)
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, "id is required", requestID)
		return
	}
	if err := h.checkout.SelectAddress(req.ID); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, err.Error(), requestID)
		return
	}
	c.JSON(http.StatusOK, h.checkout.Summary())
}

// SelectPayment handles PUT /checkout/payment
func (h *Handler) SelectPayment(c *gin.Context) {
	requestID := requestIDFrom(c)
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, "id is required", requestID)
		return
	}
	if err := h.checkout.SelectPayment(req.ID); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, err.Error(), requestID)
		return
	}
	c.JSON(http.StatusOK, h.checkout.Summary())
}

// SetDelivery handles PUT /checkout/delivery
func (h *Handler) SetDelivery(c *gin.Context) {
	requestID := requestIDFrom(c)
	var req deliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, "mode is required", requestID)
		return
	}
	if err := h.checkout.SetDelivery(req.Mode, req.ScheduledAt); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, err.Error(), requestID)
		return
	}
	c.JSON(http.StatusOK, h.checkout.Summary())
}

// SetTip handles PUT /checkout/tip
func (h *Handler) SetTip(c *gin.Context) {
	requestID := requestIDFrom(c)
	var req tipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, "tip_pct must be a number", requestID)
		return
	}
	if err := h.checkout.SetTip(req.TipPct); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, err.Error(), requestID)
		return
	}
	c.JSON(http.StatusOK, h.checkout.Summary())
}

// ApplyPromo handles POST /checkout/promo. An unknown code is a 422 and
// removes any applied code.
func (h *Handler) ApplyPromo(c *gin.Context) {
	requestID := requestIDFrom(c)
	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	if err := h.checkout.ApplyPromo(req.Code); err != nil {
		if errors.Is(err, promo.ErrNotFound) {
			writeErrorResponse(c, http.StatusUnprocessableEntity, promo.MsgInvalidCode, requestID)
			return
		}
		writeErrorResponse(c, http.StatusBadRequest, err.Error(), requestID)
		return
	}
	c.JSON(http.StatusOK, h.checkout.Summary())
}

// ClearPromo handles DELETE /checkout/promo
func (h *Handler) ClearPromo(c *gin.Context) {
	h.checkout.ClearPromo()
	c.JSON(http.StatusOK, h.checkout.Summary())
}

// PlaceOrder handles POST /checkout/place
func (h *Handler) PlaceOrder(c *gin.Context) {
	requestID := requestIDFrom(c)

	conf, err := h.checkout.Place(c.Request.Context())
	if err != nil {
		var verr checkout.ValidationError
		var perr *checkout.PlaceError
		switch {
		case errors.Is(err, checkout.ErrSubmitting):
			writeErrorResponse(c, http.StatusConflict, "Your order is already being placed", requestID)
		case errors.As(err, &verr):
			writeErrorResponse(c, http.StatusBadRequest, verr.Message, requestID)
		case errors.Is(err, checkout.ErrMissingRestaurant):
			writeErrorResponse(c, http.StatusBadRequest, checkout.MsgMissingRestaurant, requestID)
		case errors.As(err, &perr):
			writeErrorResponse(c, http.StatusBadGateway, perr.Message, requestID)
		default:
			writeErrorResponse(c, http.StatusInternalServerError, checkout.MsgPlaceFailed, requestID)
		}
		return
	}

	h.logger.Debug("order_created", "Order placed", requestID, map[string]interface{}{
		"order_id":    conf.OrderID,
		"total":       conf.Totals.Total.StringFixed(2),
		"checkout_id": conf.RequestID,
	})
	c.JSON(http.StatusCreated, conf)
}
