package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Dheeraj-pilakkat/BrewHaven/pkg/errors"
)

// SimulatedGateway approves every settlement after a fixed processing delay.
// The delay is interruptible through the request context, so callers that give
// up (client disconnect, shutdown) do not leave a goroutine sleeping.
type SimulatedGateway struct {
	processingDelay time.Duration
	failureRate     float64
	rng             func() float64
	logger          *slog.Logger
}

// SimulatedOption customizes a SimulatedGateway.
type SimulatedOption func(*SimulatedGateway)

// WithFailureRate makes the gateway decline the given fraction of settlements.
// Used in demos and tests; the default is to approve everything.
func WithFailureRate(rate float64, rng func() float64) SimulatedOption {
	return func(g *SimulatedGateway) {
		g.failureRate = rate
		g.rng = rng
	}
}

// NewSimulatedGateway creates a gateway that settles after processingDelay.
func NewSimulatedGateway(processingDelay time.Duration, logger *slog.Logger, opts ...SimulatedOption) *SimulatedGateway {
	g := &SimulatedGateway{
		processingDelay: processingDelay,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Settle waits out the processing delay and returns an approved result.
func (g *SimulatedGateway) Settle(ctx context.Context, req Request) (*Result, error) {
	g.logger.Info("settlement started",
		slog.String("session_id", req.SessionID),
		slog.Int64("amount", req.Amount),
		slog.String("currency", req.Currency),
	)

	if err := delay(ctx, g.processingDelay); err != nil {
		g.logger.Info("settlement abandoned", slog.String("session_id", req.SessionID))
		return nil, fmt.Errorf("settlement interrupted: %w", err)
	}

	if g.failureRate > 0 && g.rng != nil && g.rng() < g.failureRate {
		g.logger.Warn("settlement declined", slog.String("session_id", req.SessionID))
		return nil, apperrors.SettlementFailed("payment declined")
	}

	result := &Result{
		TransactionID: uuid.NewString(),
		SettledAt:     time.Now().UTC().Format(time.RFC3339),
	}

	g.logger.Info("settlement approved",
		slog.String("session_id", req.SessionID),
		slog.String("transaction_id", result.TransactionID),
	)

	return result, nil
}
