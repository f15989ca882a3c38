package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xmenbro/AutoRepairCenter/pkg/database"
	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/domain"
)

const keyPrefix = "cart:"

// CartRepository implements repository.CartRepository using Redis. Each cart
// is one JSON value under cart:<userId>.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository. A zero ttl
// keeps carts forever.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cart by user ID from Redis.
func (r *CartRepository) Get(ctx context.Context, userID string) (cart *domain.Cart, err error) {
	key := keyPrefix + userID
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "GetCart", "GET "+keyPrefix+"*")
	defer func() { end(err) }()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var c domain.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []domain.Item{}
	}
	return &c, nil
}

// Save persists a cart to Redis with the configured TTL.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) (err error) {
	key := keyPrefix + cart.UserID
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "SaveCart", "SET "+keyPrefix+"*")
	defer func() { end(err) }()

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}
