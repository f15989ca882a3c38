package repository

import (
	"context"

	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/domain"
)

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves a cart by its user ID. A missing cart is apperrors.ErrNotFound.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save persists a cart, overwriting any existing cart for the user.
	Save(ctx context.Context, cart *domain.Cart) error
}
