package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/Dheeraj-pilakkat/BrewHaven/pkg/errors"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/httpclient"
)

// HTTPGateway settles payments against an external gateway over HTTP. Calls go
// through a circuit breaker so a broken gateway fails fast instead of queueing
// checkouts behind timeouts.
type HTTPGateway struct {
	baseURL string
	client  *httpclient.BreakerClient
	logger  *slog.Logger
}

// NewHTTPGateway creates a gateway client for the given base URL.
func NewHTTPGateway(baseURL string, client *httpclient.BreakerClient, logger *slog.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}
}

// Settle posts the settlement request to the gateway's /settlements endpoint.
func (g *HTTPGateway) Settle(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal settlement request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/settlements", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build settlement request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(ctx, httpReq)
	if err != nil {
		if httpclient.IsCircuitOpen(err) {
			g.logger.Warn("settlement gateway circuit open", slog.String("session_id", req.SessionID))
			return nil, apperrors.Unavailable("settlement gateway unavailable")
		}
		return nil, fmt.Errorf("call settlement gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, apperrors.SettlementFailed("payment declined")
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("settlement gateway returned %d: %s", resp.StatusCode, string(payload))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode settlement response: %w", err)
	}

	return &result, nil
}
