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

const cartKeyPrefix = "cart:"

// CartRepository implements repository.CartRepository using Redis.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cart by ID from Redis.
func (r *CartRepository) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	key := cartKeyPrefix + cartID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", cartID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return &cart, nil
}

// Save persists a cart to Redis with the configured TTL.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	key := cartKeyPrefix + cart.ID

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// saveIfVersionScript compares the stored cart's version against ARGV[1] and,
// when they match (or no cart exists and ARGV[1] is 0), stores ARGV[2] with a
// TTL of ARGV[3] seconds. Runs atomically inside Redis.
var saveIfVersionScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
	local stored = cjson.decode(current)
	if tostring(stored.version) ~= ARGV[1] then
		return 0
	end
elseif ARGV[1] ~= '0' then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'EX', ARGV[3])
return 1
`)

// SaveIfVersion persists the cart only when the stored version still equals
// expectedVersion. On success the cart's version is incremented, both in the
// store and on the passed struct.
func (r *CartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error) {
	key := cartKeyPrefix + cart.ID

	next := *cart
	next.Version = expectedVersion + 1

	data, err := json.Marshal(&next)
	if err != nil {
		return false, fmt.Errorf("marshal cart: %w", err)
	}

	ttlSecs := int(r.ttl.Seconds())
	if ttlSecs < 1 {
		ttlSecs = 1
	}

	res, err := saveIfVersionScript.Run(ctx, r.client, []string{key}, expectedVersion, data, ttlSecs).Int()
	if err != nil {
		return false, fmt.Errorf("redis cas cart: %w", err)
	}
	if res == 0 {
		return false, nil
	}

	cart.Version = next.Version
	return true, nil
}

// Delete removes a cart from Redis by ID.
func (r *CartRepository) Delete(ctx context.Context, cartID string) error {
	key := cartKeyPrefix + cartID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}

	return nil
}
