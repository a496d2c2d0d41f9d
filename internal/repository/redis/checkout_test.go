package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/domain"
	apperrors "github.com/Dheeraj-pilakkat/BrewHaven/pkg/errors"
)

func setupCheckoutRepo(t *testing.T) (*CheckoutRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCheckoutRepository(client), mr
}

func sampleSession() *domain.CheckoutSession {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.CheckoutSession{
		ID:     "sess-001",
		CartID: "cart-001",
		Stage:  domain.StageManifest,
		Status: domain.StatusActive,
		Items: []domain.CartItem{
			{ProductID: "prod-1", Name: "Cold Brew", Price: 449, Quantity: 1},
		},
		SubtotalAmount: 449,
		TotalAmount:    449,
		Currency:       "USD",
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(30 * time.Minute),
	}
}

func TestCheckoutRepository_SaveAndGet(t *testing.T) {
	repo, _ := setupCheckoutRepo(t)

	session := sampleSession()
	require.NoError(t, repo.Save(context.Background(), session))

	got, err := repo.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.CartID, got.CartID)
	assert.Equal(t, domain.StageManifest, got.Stage)
	assert.Equal(t, domain.StatusActive, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(449), got.Items[0].Price)
}

func TestCheckoutRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupCheckoutRepo(t)

	got, err := repo.Get(context.Background(), "nonexistent")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCheckoutRepository_Save_TTLMatchesExpiry(t *testing.T) {
	repo, mr := setupCheckoutRepo(t)

	session := sampleSession()
	require.NoError(t, repo.Save(context.Background(), session))

	ttl := mr.TTL("checkout:" + session.ID)
	assert.Greater(t, ttl, 29*time.Minute)
	assert.LessOrEqual(t, ttl, 30*time.Minute)
}

func TestCheckoutRepository_Save_PastExpiryGetsGracePeriod(t *testing.T) {
	repo, mr := setupCheckoutRepo(t)

	session := sampleSession()
	session.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Save(context.Background(), session))

	ttl := mr.TTL("checkout:" + session.ID)
	assert.Equal(t, time.Minute, ttl)
}

func TestCheckoutRepository_Delete(t *testing.T) {
	repo, _ := setupCheckoutRepo(t)

	session := sampleSession()
	require.NoError(t, repo.Save(context.Background(), session))
	require.NoError(t, repo.Delete(context.Background(), session.ID))

	_, err := repo.Get(context.Background(), session.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
