package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/domain"
	apperrors "github.com/Dheeraj-pilakkat/BrewHaven/pkg/errors"
)

func sampleOrder() *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		ID:        "order-42",
		UserID:    "user-7",
		Reference: "BR-04821",
		Status:    domain.OrderShipped,
		Items: []domain.CartItem{
			{ProductID: "550e8400-e29b-41d4-a716-446655440001", Name: "Classic Espresso", Price: 299, Quantity: 2},
		},
		TotalAmount: 1098,
		Currency:    "USD",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestListOrders_Authenticated(t *testing.T) {
	f := newRouterFixture()
	f.orders.On("ListByUser", mock.Anything, "user-7").Return([]domain.Order{*sampleOrder()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", bearerFor(t, "user-7"))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	f.orders.AssertExpectations(t)
}

func TestListOrders_NoToken_Returns401(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetOrder_IncludesTimeline(t *testing.T) {
	f := newRouterFixture()
	f.orders.On("Get", mock.Anything, "order-42").Return(sampleOrder(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/order-42", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Data)
	var got struct {
		Timeline []domain.TimelineStep `json:"timeline"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Timeline, 4)
}

func TestGetOrderByReference(t *testing.T) {
	f := newRouterFixture()
	f.orders.On("GetByReference", mock.Anything, "BR-04821").Return(sampleOrder(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/reference/BR-04821", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.orders.AssertExpectations(t)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newRouterFixture()
	f.orders.On("Get", mock.Anything, "missing").Return(nil, apperrors.NotFound("order", "missing"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/missing", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
