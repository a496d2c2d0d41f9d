package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/domain"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/settlement"
	apperrors "github.com/Dheeraj-pilakkat/BrewHaven/pkg/errors"
)

const testSessionID = "sess-91ab"

func activeSession(stage domain.Stage) *domain.CheckoutSession {
	now := time.Now().UTC()
	return &domain.CheckoutSession{
		ID:     testSessionID,
		CartID: testCartID,
		Stage:  stage,
		Status: domain.StatusActive,
		Items: []domain.CartItem{
			{ProductID: "550e8400-e29b-41d4-a716-446655440001", Name: "Classic Espresso", Price: 299, Quantity: 2},
		},
		SubtotalAmount: 598,
		ShippingAmount: 500,
		TotalAmount:    1098,
		Currency:       "USD",
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(30 * time.Minute),
	}
}

func addressJSON() []byte {
	b, _ := json.Marshal(map[string]any{
		"full_name":    "Ada Shopper",
		"address_line": "1 Roastery Lane",
		"city":         "Portland",
		"postal_code":  "97201",
		"country":      "US",
	})
	return b
}

func submitJSON() []byte {
	b, _ := json.Marshal(map[string]any{"payment_method": "card"})
	return b
}

// ============================================================================
// POST /api/v1/checkout
// ============================================================================

func TestStartCheckout_Success(t *testing.T) {
	f := newRouterFixture()
	f.carts.On("Get", mock.Anything, testCartID).Return(sampleCart(testCartID), nil)
	f.sessions.On("Save", mock.Anything, mock.AnythingOfType("*domain.CheckoutSession")).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.Header.Set(CartIDHeader, testCartID)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	f.sessions.AssertExpectations(t)
}

func TestStartCheckout_EmptyCart_Returns400(t *testing.T) {
	f := newRouterFixture()
	empty := sampleCart(testCartID)
	empty.Items = nil
	f.carts.On("Get", mock.Anything, testCartID).Return(empty, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.Header.Set(CartIDHeader, testCartID)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
}

func TestStartCheckout_MissingCart_Returns404(t *testing.T) {
	f := newRouterFixture()
	f.carts.On("Get", mock.Anything, testCartID).Return(nil, apperrors.NotFound("cart", testCartID))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.Header.Set(CartIDHeader, testCartID)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// Stage navigation
// ============================================================================

func TestCheckoutNext_AdvancesStage(t *testing.T) {
	f := newRouterFixture()
	f.sessions.On("Get", mock.Anything, testSessionID).Return(activeSession(domain.StageManifest), nil)
	f.sessions.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.CheckoutSession) bool {
		return s.Stage == domain.StageLogistics
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+testSessionID+"/next", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.sessions.AssertExpectations(t)
}

func TestCheckoutNext_LogisticsWithoutAddress_Returns400(t *testing.T) {
	f := newRouterFixture()
	f.sessions.On("Get", mock.Anything, testSessionID).Return(activeSession(domain.StageLogistics), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+testSessionID+"/next", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
}

func TestCheckoutBack_AtManifest_Returns409(t *testing.T) {
	f := newRouterFixture()
	f.sessions.On("Get", mock.Anything, testSessionID).Return(activeSession(domain.StageManifest), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+testSessionID+"/back", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckoutGet_Expired_Returns410(t *testing.T) {
	f := newRouterFixture()
	session := activeSession(domain.StageManifest)
	session.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	f.sessions.On("Get", mock.Anything, testSessionID).Return(session, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/"+testSessionID, nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGone, rec.Code)
}

// ============================================================================
// PUT /api/v1/checkout/{sessionID}/address
// ============================================================================

func TestSetAddress_Success(t *testing.T) {
	f := newRouterFixture()
	f.sessions.On("Get", mock.Anything, testSessionID).Return(activeSession(domain.StageLogistics), nil)
	f.sessions.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.CheckoutSession) bool {
		return s.ShippingAddress != nil && s.ShippingAddress.City == "Portland"
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/checkout/"+testSessionID+"/address", bytes.NewReader(addressJSON()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.sessions.AssertExpectations(t)
}

func TestSetAddress_MissingFields_ValidationError(t *testing.T) {
	f := newRouterFixture()

	b, _ := json.Marshal(map[string]any{"full_name": "Ada Shopper"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/checkout/"+testSessionID+"/address", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

// ============================================================================
// POST /api/v1/checkout/{sessionID}/submit
// ============================================================================

func settlementReady() *domain.CheckoutSession {
	session := activeSession(domain.StageSettlement)
	session.ShippingAddress = &domain.Address{
		FullName:    "Ada Shopper",
		AddressLine: "1 Roastery Lane",
		City:        "Portland",
		PostalCode:  "97201",
		Country:     "US",
	}
	return session
}

func TestSubmit_Completes(t *testing.T) {
	f := newRouterFixture()
	f.sessions.On("Get", mock.Anything, testSessionID).Return(settlementReady(), nil)
	f.sessions.On("Save", mock.Anything, mock.AnythingOfType("*domain.CheckoutSession")).Return(nil)
	f.gateway.On("Settle", mock.Anything, mock.AnythingOfType("settlement.Request")).
		Return(&settlement.Result{TransactionID: "txn-1", SettledAt: time.Now().UTC().Format(time.RFC3339)}, nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	f.carts.On("Delete", mock.Anything, testCartID).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+testSessionID+"/submit", bytes.NewReader(submitJSON()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Data)
	var got domain.CheckoutSession
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Regexp(t, regexp.MustCompile(`^BR-\d{5}$`), got.OrderRef)
	f.orders.AssertExpectations(t)
}

func TestSubmit_Declined_Returns402AndFailsSession(t *testing.T) {
	f := newRouterFixture()
	f.sessions.On("Get", mock.Anything, testSessionID).Return(settlementReady(), nil)
	f.sessions.On("Save", mock.Anything, mock.AnythingOfType("*domain.CheckoutSession")).Return(nil)
	f.gateway.On("Settle", mock.Anything, mock.AnythingOfType("settlement.Request")).
		Return(nil, apperrors.SettlementFailed("card declined"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+testSessionID+"/submit", bytes.NewReader(submitJSON()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, apperrors.HTTPStatus(apperrors.SettlementFailed("card declined")), rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_WrongStage_Returns409(t *testing.T) {
	f := newRouterFixture()
	f.sessions.On("Get", mock.Anything, testSessionID).Return(activeSession(domain.StageManifest), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+testSessionID+"/submit", bytes.NewReader(submitJSON()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmit_BadPaymentMethod_ValidationError(t *testing.T) {
	f := newRouterFixture()

	b, _ := json.Marshal(map[string]any{"payment_method": "barter"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+testSessionID+"/submit", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

// ============================================================================
// POST /api/v1/checkout/{sessionID}/retry
// ============================================================================

func TestRetry_AfterFailure_Completes(t *testing.T) {
	f := newRouterFixture()
	session := settlementReady()
	session.Status = domain.StatusFailed
	session.PaymentMethod = "card"
	session.FailureReason = "card declined"

	f.sessions.On("Get", mock.Anything, testSessionID).Return(session, nil)
	f.sessions.On("Save", mock.Anything, mock.AnythingOfType("*domain.CheckoutSession")).Return(nil)
	f.gateway.On("Settle", mock.Anything, mock.AnythingOfType("settlement.Request")).
		Return(&settlement.Result{TransactionID: "txn-2", SettledAt: time.Now().UTC().Format(time.RFC3339)}, nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	f.carts.On("Delete", mock.Anything, testCartID).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+testSessionID+"/retry", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	f.orders.AssertExpectations(t)
}

func TestRetry_ActiveSession_Returns409(t *testing.T) {
	f := newRouterFixture()
	f.sessions.On("Get", mock.Anything, testSessionID).Return(settlementReady(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+testSessionID+"/retry", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
