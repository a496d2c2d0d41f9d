// Package settlement charges the customer at the end of checkout. The
// production implementation talks to an external gateway over HTTP; the
// simulated one stands in for it during development and demos.
package settlement

import (
	"context"
	"time"
)

// Request describes a settlement attempt for a checkout session.
type Request struct {
	SessionID     string `json:"session_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"payment_method"`
}

// Result is the gateway's answer to a settlement attempt.
type Result struct {
	TransactionID string `json:"transaction_id"`
	SettledAt     string `json:"settled_at"`
}

// Gateway authorizes and captures a payment. Implementations must honor
// context cancellation: an abandoned checkout stops waiting immediately.
type Gateway interface {
	Settle(ctx context.Context, req Request) (*Result, error)
}

// delay waits for d or until ctx is done, whichever comes first.
func delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
