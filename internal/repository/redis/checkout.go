package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/domain"
	apperrors "github.com/Dheeraj-pilakkat/BrewHaven/pkg/errors"
)

const checkoutKeyPrefix = "checkout:"

// CheckoutRepository implements repository.CheckoutRepository using Redis.
// Sessions share the expiry semantics of carts: the key TTL is set from the
// session's ExpiresAt so Redis evicts abandoned sessions on its own.
type CheckoutRepository struct {
	client *redis.Client
}

// NewCheckoutRepository creates a new Redis-backed checkout session repository.
func NewCheckoutRepository(client *redis.Client) *CheckoutRepository {
	return &CheckoutRepository{client: client}
}

// Get retrieves a checkout session by ID from Redis.
func (r *CheckoutRepository) Get(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	key := checkoutKeyPrefix + sessionID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("checkout session", sessionID)
		}
		return nil, fmt.Errorf("redis get checkout session: %w", err)
	}

	var session domain.CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal checkout session: %w", err)
	}

	return &session, nil
}

// Save persists a session to Redis, expiring it at the session's ExpiresAt.
// Completed sessions keep a grace period so the confirmation can still be read.
func (r *CheckoutRepository) Save(ctx context.Context, session *domain.CheckoutSession) error {
	key := checkoutKeyPrefix + session.ID

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal checkout session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set checkout session: %w", err)
	}

	return nil
}

// Delete removes a session from Redis by ID.
func (r *CheckoutRepository) Delete(ctx context.Context, sessionID string) error {
	key := checkoutKeyPrefix + sessionID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del checkout session: %w", err)
	}

	return nil
}
