// Package order exposes the client core (cart, catalog, checkout, session
// and profile) to a UI shell over a local HTTP API.
package order

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Dang-Huynh/FoodOrderingService/internal/auth"
	"github.com/Dang-Huynh/FoodOrderingService/internal/cart"
	"github.com/Dang-Huynh/FoodOrderingService/internal/catalog"
	"github.com/Dang-Huynh/FoodOrderingService/internal/checkout"
	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/profile"
	"github.com/Dang-Huynh/FoodOrderingService/internal/services/tracking"
	"github.com/Dang-Huynh/FoodOrderingService/internal/storage"
)

// Deps are the components served by the handler
type Deps struct {
	Cart     *cart.Store
	Browser  *catalog.Browser
	Checkout *checkout.Orchestrator
	Session  *auth.Session
	Profiles *profile.Manager
	Tracking *tracking.Handler
	Writer   *storage.Writer
}

// Handler handles HTTP requests for the cart service
type Handler struct {
	cart     *cart.Store
	browser  *catalog.Browser
	checkout *checkout.Orchestrator
	session  *auth.Session
	profiles *profile.Manager
	tracking *tracking.Handler
	logger   *logger.Logger

	mu        sync.Mutex
	lastWrite storage.WriteResult
}

func NewHandler(d Deps, log *logger.Logger) *Handler {
	h := &Handler{
		cart:     d.Cart,
		browser:  d.Browser,
		checkout: d.Checkout,
		session:  d.Session,
		profiles: d.Profiles,
		tracking: d.Tracking,
		logger:   log,
	}
	if d.Writer != nil {
		d.Writer.Observe(h.observeWrite)
	}
	return h
}

func (h *Handler) observeWrite(r storage.WriteResult) {
	h.mu.Lock()
	h.lastWrite = r
	h.mu.Unlock()
}

// SetupRoutes builds the router. An empty origin list or "*" allows any origin.
func (h *Handler) SetupRoutes(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.withLogging())
	r.Use(cors.New(corsConfig(allowedOrigins)))

	r.GET("/health", h.HealthCheck)

	r.GET("/restaurants", h.ListRestaurants)
	r.GET("/restaurants/:id", h.GetRestaurant)
	r.POST("/restaurants/:id/favorite", h.ToggleFavorite)

	c := r.Group("/cart")
	c.GET("", h.GetCart)
	c.POST("/items", h.AddItem)
	c.POST("/items/:id/inc", h.IncItem)
	c.POST("/items/:id/dec", h.DecItem)
	c.DELETE("/items/:id", h.RemoveItem)
	c.DELETE("", h.ClearCart)
	c.POST("/open", h.OpenCart)
	c.POST("/close", h.CloseCart)

	co := r.Group("/checkout")
	co.GET("", h.GetCheckout)
	co.PUT("/address", h.SelectAddress)
	co.PUT("/payment", h.SelectPayment)
	co.PUT("/delivery", h.SetDelivery)
	co.PUT("/tip", h.SetTip)
	co.POST("/promo", h.ApplyPromo)
	co.DELETE("/promo", h.ClearPromo)
	co.POST("/place", h.requireSession(), h.PlaceOrder)

	a := r.Group("/auth")
	a.POST("/login", h.Login)
	a.POST("/register", h.Register)
	a.POST("/logout", h.Logout)
	a.GET("/me", h.Me)

	p := r.Group("/profile")
	p.GET("", h.GetProfile)
	p.PUT("", h.UpdateContact)
	p.PUT("/addresses", h.UpsertAddress)
	p.DELETE("/addresses/:id", h.DeleteAddress)
	p.POST("/addresses/:id/default", h.DefaultAddress)
	p.PUT("/payments", h.UpsertPayment)
	p.DELETE("/payments/:id", h.DeletePayment)
	p.POST("/payments/:id/default", h.DefaultPayment)

	if h.tracking != nil {
		h.tracking.Register(r)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// HealthCheck handles GET /health. The service is unhealthy while the last
// storage write failed.
func (h *Handler) HealthCheck(c *gin.Context) {
	h.mu.Lock()
	last := h.lastWrite
	h.mu.Unlock()

	healthy := last.OK()
	response := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "cart-service",
		"healthy":   healthy,
		"checkout":  h.checkout.State().String(),
	}

	if !healthy {
		response["status"] = "unhealthy"
		response["storage_error"] = last.Err.Error()
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// requireSession rejects requests without a signed-in session
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.session == nil || !h.session.LoggedIn() {
			writeErrorResponse(c, http.StatusUnauthorized, "Please log in to place your order", requestIDFrom(c))
			c.Abort()
			return
		}
		c.Next()
	}
}

// withLogging adds request logging middleware and stores the request id
func (h *Handler) withLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := logger.GenerateRequestID()
		c.Set(logger.RequestIDKey, requestID)

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      c.Request.Method,
				"path":        c.Request.URL.Path,
				"remote_addr": c.Request.RemoteAddr,
				"user_agent":  c.Request.UserAgent(),
			})

		c.Next()

		duration := time.Since(start)
		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status()),
			requestID,
			map[string]interface{}{
				"method":      c.Request.Method,
				"path":        c.Request.URL.Path,
				"status_code": c.Writer.Status(),
				"duration_ms": duration.Milliseconds(),
			})
	}
}

// writeErrorResponse writes an error response in JSON format
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
