// Package api is the HTTP client of the remote food ordering service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// token sends the request without credentials.
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// Error is a non-2xx response. Detail holds the server's "detail" message
// when it sent one.
type Error struct {
	StatusCode int
	Detail     string
	Op         string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsStatus reports whether err is an *Error with the given status code
func IsStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Client talks to the food ordering API under baseURL (e.g. http://host/api)
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  log,
	}
}

// WithTokens sets the bearer token source used for order endpoints
func (c *Client) WithTokens(ts TokenSource) *Client {
	c.tokens = ts
	return c
}

// ListRestaurants fetches the restaurant catalog
func (c *Client) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var out []models.Restaurant
	if err := c.do(ctx, "list_restaurants", http.MethodGet, "/menu/restaurants/", nil, false, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRestaurant fetches one restaurant with its sectioned menu
func (c *Client) GetRestaurant(ctx context.Context, id int64) (*models.RestaurantDetail, error) {
	var out models.RestaurantDetail
	path := fmt.Sprintf("/menu/restaurants/%d/", id)
	if err := c.do(ctx, "get_restaurant", http.MethodGet, path, nil, false, &out); err != nil {
		return nil, err
	}
	if out.Menu == nil {
		out.Menu = map[string][]models.CatalogItem{}
	}
	return &out, nil
}

// Login exchanges credentials for a token pair
func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.TokenPair, error) {
	var out models.TokenPair
	if err := c.do(ctx, "login", http.MethodPost, "/accounts/login/", creds, false, &out); err != nil {
		return models.TokenPair{}, err
	}
	if out.Access == "" {
		return models.TokenPair{}, fmt.Errorf("login response carried no access token")
	}
	return out, nil
}

// Register creates an account. The service answers with a token pair; a
// response without one leaves Access empty.
func (c *Client) Register(ctx context.Context, reg models.Registration) (models.TokenPair, error) {
	var out models.TokenPair
	if err := c.do(ctx, "register", http.MethodPost, "/accounts/register/", reg, false, &out); err != nil {
		return models.TokenPair{}, err
	}
	return out, nil
}

// ListOrders fetches the order history of the signed-in user
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, "list_orders", http.MethodGet, "/orders/", nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PlaceOrder submits a cart snapshot
func (c *Client) PlaceOrder(ctx context.Context, payload models.OrderPayload) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, "place_order", http.MethodPost, "/orders/place/", payload, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body interface{}, auth bool, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.tokens != nil {
		if token := c.tokens.AccessToken(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("api_request_failed", fmt.Sprintf("%s %s failed", method, path), "", err, map[string]interface{}{
			"op": op,
		})
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api_request_completed", fmt.Sprintf("%s %s - %d", method, path, resp.StatusCode), "", map[string]interface{}{
		"op":          op,
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{StatusCode: resp.StatusCode, Detail: detail(data), Op: op}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

// detail extracts the human-readable message of an error body
func detail(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Message
}
