package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Dang-Huynh/FoodOrderingService/internal/api"
	"github.com/Dang-Huynh/FoodOrderingService/internal/catalog"
)

// AddItemRequest adds one unit of a menu item to the cart
type AddItemRequest struct {
	RestaurantID int64 `json:"restaurant_id" binding:"required,gt=0"`
	ItemID       int64 `json:"item_id" binding:"required,gt=0"`
}

// ListRestaurants handles GET /restaurants?q=&category=&sort=
func (h *Handler) ListRestaurants(c *gin.Context) {
	requestID := requestIDFrom(c)

	list, err := h.browser.Restaurants(c.Request.Context(), catalog.Query{
		Text:     c.Query("q"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		writeUpstreamError(c, err, "Could not load restaurants", requestID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"restaurants": list,
		"categories":  catalog.Categories,
	})
}

// GetRestaurant handles GET /restaurants/:id?q=
func (h *Handler) GetRestaurant(c *gin.Context) {
	requestID := requestIDFrom(c)
	id, ok := pathID(c, requestID)
	if !ok {
		return
	}

	menu, err := h.browser.Menu(c.Request.Context(), id, c.Query("q"))
	if err != nil {
		writeUpstreamError(c, err, "Could not load restaurant", requestID)
		return
	}
	c.JSON(http.StatusOK, menu)
}

// ToggleFavorite handles POST /restaurants/:id/favorite
func (h *Handler) ToggleFavorite(c *gin.Context) {
	id, ok := pathID(c, requestIDFrom(c))
	if !ok {
		return
	}
	fav := h.browser.Favorites().Toggle(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"id": id, "isFavorite": fav})
}

// GetCart handles GET /cart
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

// AddItem handles POST /cart/items
func (h *Handler) AddItem(c *gin.Context) {
	requestID := requestIDFrom(c)

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		writeErrorResponse(c, http.StatusBadRequest, "restaurant_id and item_id are required", requestID)
		return
	}

	item, err := h.browser.AddToCart(c.Request.Context(), req.RestaurantID, req.ItemID)
	switch {
	case errors.Is(err, catalog.ErrItemNotFound):
		writeErrorResponse(c, http.StatusNotFound, "Menu item not found", requestID)
		return
	case errors.Is(err, catalog.ErrItemUnavailable):
		writeErrorResponse(c, http.StatusConflict, "This item is currently unavailable", requestID)
		return
	case err != nil:
		writeUpstreamError(c, err, "Could not load restaurant", requestID)
		return
	}

	h.logger.Debug("cart_item_added", "Item added to cart", requestID, map[string]interface{}{
		"item_id":       item.ID,
		"restaurant_id": req.RestaurantID,
	})
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

// IncItem handles POST /cart/items/:id/inc
func (h *Handler) IncItem(c *gin.Context) {
	if id, ok := pathID(c, requestIDFrom(c)); ok {
		h.cart.Inc(c.Request.Context(), id)
		c.JSON(http.StatusOK, h.cart.Snapshot())
	}
}

// DecItem handles POST /cart/items/:id/dec
func (h *Handler) DecItem(c *gin.Context) {
	if id, ok := pathID(c, requestIDFrom(c)); ok {
		h.cart.Dec(c.Request.Context(), id)
		c.JSON(http.StatusOK, h.cart.Snapshot())
	}
}

// RemoveItem handles DELETE /cart/items/:id
func (h *Handler) RemoveItem(c *gin.Context) {
	if id, ok := pathID(c, requestIDFrom(c)); ok {
		h.cart.Remove(c.Request.Context(), id)
		c.JSON(http.StatusOK, h.cart.Snapshot())
	}
}

// ClearCart handles DELETE /cart
func (h *Handler) ClearCart(c *gin.Context) {
	h.cart.Clear(c.Request.Context())
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

func (h *Handler) OpenCart(c *gin.Context) {
	h.cart.OpenCart()
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

func (h *Handler) CloseCart(c *gin.Context) {
	h.cart.CloseCart()
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

func pathID(c *gin.Context, requestID string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeErrorResponse(c, http.StatusBadRequest, "Invalid id", requestID)
		return 0, false
	}
	return id, true
}

// writeUpstreamError maps a failed API call. The server's own message is
// passed through when it sent one.
func writeUpstreamError(c *gin.Context, err error, fallback, requestID string) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Detail
		if msg == "" {
			msg = fallback
		}
		status := http.StatusBadGateway
		if apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusUnauthorized {
			status = apiErr.StatusCode
		}
		writeErrorResponse(c, status, msg, requestID)
		return
	}
	writeErrorResponse(c, http.StatusBadGateway, fallback, requestID)
}
