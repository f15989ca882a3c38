package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
	"github.com/xmenbro/AutoRepairCenter/pkg/validator"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/domain"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/repository"
)

// EventPublisher announces accepted saves.
type EventPublisher interface {
	PublishCartSaved(ctx context.Context, cart *domain.Cart) error
}

// CartService implements the whole-cart read and replace operations.
type CartService struct {
	repo   repository.CartRepository
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewCartService creates a new cart service. events may be nil to disable
// publishing.
func NewCartService(repo repository.CartRepository, events EventPublisher, logger *slog.Logger) *CartService {
	return &CartService{
		repo:   repo,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// GetCart retrieves the cart for a user. If no cart exists, returns an empty cart.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("userId is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// SaveCart replaces the user's cart with items. Every item needs an id, a
// quantity of at least 1 and a non-negative price, and ids must be unique.
// The unit count and the total amount must fit in int and int64.
func (s *CartService) SaveCart(ctx context.Context, userID string, items []domain.Item) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("userId is required")
	}
	for i := range items {
		if err := validator.Validate(items[i]); err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart[%d]: %s", i, err.Error()))
		}
	}
	if id, dup := domain.DuplicateID(items); dup {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cart contains product %s more than once", id))
	}
	if !domain.InRange(items) {
		return nil, apperrors.InvalidInput("cart quantity or total is out of range")
	}

	if items == nil {
		items = []domain.Item{}
	}
	cart := &domain.Cart{
		UserID:    userID,
		Items:     items,
		UpdatedAt: s.now().UTC(),
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishCartSaved(ctx, cart); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.saved event",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "cart saved",
		slog.String("user_id", userID),
		slog.Int("lines", len(items)),
		slog.Int("quantity", cart.ItemCount()),
	)

	return cart, nil
}
