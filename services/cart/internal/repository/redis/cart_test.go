package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/domain"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewCartRepository(client, ttl)
	return repo, mr
}

func sampleCart() *domain.Cart {
	return &domain.Cart{
		UserID: "17",
		Items: []domain.Item{
			{
				ID:           "3",
				Title:        "Spark plug",
				Brand:        "NGK",
				Image:        "img/3.png",
				Price:        450,
				Availability: "in stock",
				Quantity:     4,
			},
		},
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestCartRepository_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t, 0)

	cart := sampleCart()
	data, err := json.Marshal(cart)
	require.NoError(t, err)

	// Set data directly in miniredis.
	require.NoError(t, mr.Set("cart:"+cart.UserID, string(data)))

	got, err := repo.Get(context.Background(), cart.UserID)
	require.NoError(t, err)
	assert.Equal(t, cart.UserID, got.UserID)
	assert.True(t, cart.UpdatedAt.Equal(got.UpdatedAt))
	require.Len(t, got.Items, 1)
	assert.Equal(t, cart.Items[0], got.Items[0])
}

func TestCartRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t, 0)

	got, err := repo.Get(context.Background(), "nonexistent-user")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Get_InvalidJSON(t *testing.T) {
	repo, mr := setupTestRedis(t, 0)

	// Set corrupted JSON data.
	require.NoError(t, mr.Set("cart:user-bad", "{{not-valid-json"))

	got, err := repo.Get(context.Background(), "user-bad")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal cart")
}

func TestCartRepository_Get_NullItems(t *testing.T) {
	repo, mr := setupTestRedis(t, 0)
	require.NoError(t, mr.Set("cart:5", `{"user_id":"5","items":null}`))

	got, err := repo.Get(context.Background(), "5")
	require.NoError(t, err)
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
}

func TestCartRepository_Get_ConnectionError(t *testing.T) {
	repo, mr := setupTestRedis(t, 0)
	mr.Close()

	_, err := repo.Get(context.Background(), "17")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestCartRepository_Save_Success(t *testing.T) {
	repo, mr := setupTestRedis(t, 0)

	cart := sampleCart()
	err := repo.Save(context.Background(), cart)
	require.NoError(t, err)

	// Verify key exists in Redis.
	assert.True(t, mr.Exists("cart:"+cart.UserID))

	// Verify JSON content.
	raw, err := mr.Get("cart:" + cart.UserID)
	require.NoError(t, err)

	var stored struct {
		UserID string            `json:"user_id"`
		Items  []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "17", stored.UserID)
	require.Len(t, stored.Items, 1)
	assert.JSONEq(t,
		`{"id":3,"title":"Spark plug","brand":"NGK","image":"img/3.png","price":450,"availability":"in stock","quantity":4}`,
		string(stored.Items[0]))
}

func TestCartRepository_Save_Overwrites(t *testing.T) {
	repo, _ := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleCart()))
	require.NoError(t, repo.Save(ctx, domain.NewCart("17")))

	got, err := repo.Get(ctx, "17")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestCartRepository_Save_TTL(t *testing.T) {
	repo, mr := setupTestRedis(t, 24*time.Hour)

	cart := sampleCart()
	err := repo.Save(context.Background(), cart)
	require.NoError(t, err)

	ttl := mr.TTL("cart:" + cart.UserID)
	// TTL should be approximately 24 hours (allow some margin for test execution).
	assert.True(t, ttl > 23*time.Hour, "expected TTL > 23h, got %v", ttl)
	assert.True(t, ttl <= 24*time.Hour, "expected TTL <= 24h, got %v", ttl)

	mr.FastForward(25 * time.Hour)
	_, err = repo.Get(context.Background(), cart.UserID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Save_NoTTL(t *testing.T) {
	repo, mr := setupTestRedis(t, 0)

	require.NoError(t, repo.Save(context.Background(), sampleCart()))

	assert.Zero(t, mr.TTL("cart:17"))
}
