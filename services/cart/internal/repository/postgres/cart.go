package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/xmenbro/AutoRepairCenter/pkg/database"
	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/domain"
)

const (
	selectCartSQL = `SELECT items, updated_at FROM carts WHERE user_id = $1`
	upsertCartSQL = `INSERT INTO carts (user_id, items, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at`
)

// CartRepository implements repository.CartRepository on a Postgres carts
// table holding the item array as JSONB.
type CartRepository struct {
	db database.DBTX
}

// NewCartRepository creates a new Postgres-backed cart repository.
func NewCartRepository(db database.DBTX) *CartRepository {
	return &CartRepository{db: db}
}

// Get retrieves a cart by user ID.
func (r *CartRepository) Get(ctx context.Context, userID string) (cart *domain.Cart, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "GetCart", selectCartSQL)
	defer func() { end(err) }()

	var (
		raw       []byte
		updatedAt time.Time
	)
	err = r.db.QueryRow(ctx, selectCartSQL, userID).Scan(&raw, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("query cart: %w", err)
	}

	items := []domain.Item{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart items: %w", err)
	}
	if items == nil {
		items = []domain.Item{}
	}

	return &domain.Cart{UserID: userID, Items: items, UpdatedAt: updatedAt}, nil
}

// Save upserts the cart's item array.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "SaveCart", upsertCartSQL)
	defer func() { end(err) }()

	items := cart.Items
	if items == nil {
		items = []domain.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart items: %w", err)
	}

	if _, err := r.db.Exec(ctx, upsertCartSQL, cart.UserID, data, cart.UpdatedAt); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	return nil
}
