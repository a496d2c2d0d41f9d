package settlement

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Dheeraj-pilakkat/BrewHaven/pkg/errors"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/httpclient"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func sampleRequest() Request {
	return Request{
		SessionID:     "sess-001",
		Amount:        2597,
		Currency:      "USD",
		PaymentMethod: "card",
	}
}

// ---------------------------------------------------------------------------
// SimulatedGateway
// ---------------------------------------------------------------------------

func TestSimulatedGateway_ApprovesAfterDelay(t *testing.T) {
	g := NewSimulatedGateway(10*time.Millisecond, discardLogger())

	start := time.Now()
	result, err := g.Settle(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, result.TransactionID)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSimulatedGateway_CancelledContextStopsWaiting(t *testing.T) {
	g := NewSimulatedGateway(10*time.Second, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	result, err := g.Settle(ctx, sampleRequest())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSimulatedGateway_FailureRateDeclines(t *testing.T) {
	alwaysFail := func() float64 { return 0.0 }
	g := NewSimulatedGateway(0, discardLogger(), WithFailureRate(0.5, alwaysFail))

	result, err := g.Settle(context.Background(), sampleRequest())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrSettlementFailed)
}

// ---------------------------------------------------------------------------
// HTTPGateway
// ---------------------------------------------------------------------------

func newHTTPGateway(t *testing.T, url string) *HTTPGateway {
	t.Helper()
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	client := httpclient.New(cfg)
	breaker := httpclient.NewBreakerClient(client, httpclient.DefaultBreakerConfig("settlement-test"), discardLogger())
	return NewHTTPGateway(url, breaker, discardLogger())
}

func TestHTTPGateway_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/settlements", r.URL.Path)

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(2597), req.Amount)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Result{TransactionID: "txn-1", SettledAt: "2026-01-02T03:04:05Z"})
	}))
	defer srv.Close()

	g := newHTTPGateway(t, srv.URL)

	result, err := g.Settle(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "txn-1", result.TransactionID)
}

func TestHTTPGateway_DeclinedPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	g := newHTTPGateway(t, srv.URL)

	result, err := g.Settle(context.Background(), sampleRequest())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrSettlementFailed)
}

func TestHTTPGateway_ServerErrorIsNotADecline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := newHTTPGateway(t, srv.URL)

	result, err := g.Settle(context.Background(), sampleRequest())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrSettlementFailed)
}
