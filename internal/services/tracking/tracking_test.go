package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dang-Huynh/FoodOrderingService/internal/api"
	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

func TestStepIndex(t *testing.T) {
	tests := []struct {
		status models.OrderStatus
		want   int
	}{
		{"PENDING", 0},
		{"PREPARING", 1},
		{"ON_THE_WAY", 2},
		{"out for delivery", 3},
		{"DELIVERED", 3},
		{"READY_FOR_PICKUP", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, StepIndex(tt.status))
		})
	}
}

func TestStatusTone(t *testing.T) {
	assert.Equal(t, ToneSuccess, StatusTone("Delivered"))
	assert.Equal(t, ToneError, StatusTone(models.StatusCancelled))
	assert.Equal(t, ToneWarning, StatusTone(models.StatusPreparing))
	assert.Equal(t, ToneWarning, StatusTone(models.StatusPickedUp))
}

func TestSplit(t *testing.T) {
	orders := []models.Order{
		{ID: 1, Status: models.StatusPending},
		{ID: 2, Status: "DELIVERED"},
		{ID: 3, Status: models.StatusPreparing},
		{ID: 4, Status: models.StatusCancelled},
		{ID: 5, Status: models.StatusPickedUp},
	}

	active, past := Split(orders)

	var activeIDs, pastIDs []int64
	for _, o := range active {
		activeIDs = append(activeIDs, o.ID)
	}
	for _, o := range past {
		pastIDs = append(pastIDs, o.ID)
	}
	assert.Equal(t, []int64{1, 3}, activeIDs)
	assert.Equal(t, []int64{2, 4, 5}, pastIDs)
	assert.Equal(t, "Preparing", active[1].StepLabel)

	active, past = Split(nil)
	assert.NotNil(t, active)
	assert.NotNil(t, past)
}

type fakeSource struct {
	orders []models.Order
	err    error
}

func (f *fakeSource) ListOrders(context.Context) ([]models.Order, error) {
	return f.orders, f.err
}

func newRouter(src OrderSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(src, logger.Discard()), logger.Discard()).Register(r)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandler_ListOrders(t *testing.T) {
	r := newRouter(&fakeSource{orders: []models.Order{
		{ID: 7, Status: models.StatusPreparing},
		{ID: 8, Status: "DELIVERED"},
	}})

	w := get(r, "/orders")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Active []OrderView `json:"active"`
		Past   []OrderView `json:"past"`
		Steps  []string    `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Active, 1)
	require.Len(t, body.Past, 1)
	assert.Equal(t, int64(7), body.Active[0].ID)
	assert.Equal(t, 1, body.Active[0].Step)
	assert.Equal(t, ToneSuccess, body.Past[0].Tone)
	assert.Equal(t, Steps, body.Steps)
}

func TestHandler_GetOrder(t *testing.T) {
	tests := []struct {
		name     string
		source   *fakeSource
		path     string
		wantCode int
	}{
		{
			name:     "found",
			source:   &fakeSource{orders: []models.Order{{ID: 7, Status: models.StatusPending}}},
			path:     "/orders/7",
			wantCode: http.StatusOK,
		},
		{
			name:     "missing",
			source:   &fakeSource{orders: []models.Order{{ID: 7}}},
			path:     "/orders/8",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "bad id",
			source:   &fakeSource{},
			path:     "/orders/abc",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "not logged in",
			source:   &fakeSource{err: &api.Error{StatusCode: http.StatusUnauthorized, Op: "list_orders"}},
			path:     "/orders/7",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "upstream down",
			source:   &fakeSource{err: errors.New("connection refused")},
			path:     "/orders/7",
			wantCode: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(newRouter(tt.source), tt.path)
			assert.Equal(t, tt.wantCode, w.Code)

			if tt.wantCode != http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.NotEmpty(t, body["error"])
				assert.NotEmpty(t, body["request_id"])
			}
		})
	}
}
