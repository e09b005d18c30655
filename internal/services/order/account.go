package order

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dang-Huynh/FoodOrderingService/internal/api"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
	"github.com/Dang-Huynh/FoodOrderingService/internal/profile"
)

type contactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Login handles POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	requestID := requestIDFrom(c)
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, "email and password are required", requestID)
		return
	}

	user, err := h.session.Login(c.Request.Context(), creds)
	if err != nil {
		h.writeAuthError(c, err, "Login failed", requestID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Register handles POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	requestID := requestIDFrom(c)
	var reg models.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, "full_name, email and password are required", requestID)
		return
	}
	if !profile.EmailOK(reg.Email) {
		writeErrorResponse(c, http.StatusBadRequest, "Please enter a valid email", requestID)
		return
	}

	user, err := h.session.Register(c.Request.Context(), reg)
	if err != nil {
		h.writeAuthError(c, err, "Registration failed", requestID)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(c *gin.Context) {
	h.session.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// Me handles GET /auth/me
func (h *Handler) Me(c *gin.Context) {
	user, err := h.session.User()
	if err != nil {
		writeErrorResponse(c, http.StatusUnauthorized, "Not logged in", requestIDFrom(c))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) writeAuthError(c *gin.Context, err error, fallback, requestID string) {
	h.logger.Error("auth_failed", fallback, requestID, err, nil)

	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		msg := apiErr.Detail
		if msg == "" {
			msg = fallback
		}
		writeErrorResponse(c, apiErr.StatusCode, msg, requestID)
		return
	}
	writeErrorResponse(c, http.StatusBadGateway, fallback, requestID)
}

// GetProfile handles GET /profile
func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.profiles.Get())
}

// UpdateContact handles PUT /profile
func (h *Handler) UpdateContact(c *gin.Context) {
	requestID := requestIDFrom(c)
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	if err := h.profiles.UpdateContact(c.Request.Context(), req.Name, req.Email, req.Phone); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, err.Error(), requestID)
		return
	}
	h.profileChanged(c)
}

// UpsertAddress handles PUT /profile/addresses
func (h *Handler) UpsertAddress(c *gin.Context) {
	requestID := requestIDFrom(c)
	var a models.Address
	if err := c.ShouldBindJSON(&a); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	if err := h.profiles.UpsertAddress(c.Request.Context(), a); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, err.Error(), requestID)
		return
	}
	h.profileChanged(c)
}

// DeleteAddress handles DELETE /profile/addresses/:id
func (h *Handler) DeleteAddress(c *gin.Context) {
	h.profiles.DeleteAddress(c.Request.Context(), c.Param("id"))
	h.profileChanged(c)
}

// DefaultAddress handles POST /profile/addresses/:id/default
func (h *Handler) DefaultAddress(c *gin.Context) {
	if !h.profiles.SetDefaultAddress(c.Request.Context(), c.Param("id")) {
		writeErrorResponse(c, http.StatusNotFound, "Address not found", requestIDFrom(c))
		return
	}
	h.profileChanged(c)
}

// UpsertPayment handles PUT /profile/payments
func (h *Handler) UpsertPayment(c *gin.Context) {
	requestID := requestIDFrom(c)
	var p models.PaymentMethod
	if err := c.ShouldBindJSON(&p); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	if err := h.profiles.UpsertPayment(c.Request.Context(), p); err != nil {
		writeErrorResponse(c, http.StatusBadRequest, err.Error(), requestID)
		return
	}
	h.profileChanged(c)
}

// DeletePayment handles DELETE /profile/payments/:id
func (h *Handler) DeletePayment(c *gin.Context) {
	h.profiles.DeletePayment(c.Request.Context(), c.Param("id"))
	h.profileChanged(c)
}

// DefaultPayment handles POST /profile/payments/:id/default
func (h *Handler) DefaultPayment(c *gin.Context) {
	if !h.profiles.SetDefaultPayment(c.Request.Context(), c.Param("id")) {
		writeErrorResponse(c, http.StatusNotFound, "Payment method not found", requestIDFrom(c))
		return
	}
	h.profileChanged(c)
}

// profileChanged offers the updated profile to checkout and returns it
func (h *Handler) profileChanged(c *gin.Context) {
	p := h.profiles.Get()
	h.checkout.UseProfile(p)
	c.JSON(http.StatusOK, p)
}
