// Package identity resolves the current storefront actor from the persisted
// user record written by the login and registration flows.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/domain"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/localstore"
)

// DefaultKey is the slot the user record lives under.
const DefaultKey = "user"

// User is the persisted identity record.
type User struct {
	ID   domain.ID `json:"id"`
	Role string    `json:"role,omitempty"`
}

// Resolver reports the current actor. ok is false for an anonymous actor.
type Resolver interface {
	Current(ctx context.Context) (user User, ok bool)
}

// Source reads and writes the user record in a local slot.
type Source struct {
	slots  localstore.Slots
	key    string
	logger *slog.Logger
}

// NewSource creates a Source over slots. An empty key means DefaultKey.
func NewSource(slots localstore.Slots, key string, logger *slog.Logger) *Source {
	if key == "" {
		key = DefaultKey
	}
	return &Source{slots: slots, key: key, logger: logger}
}

// Current returns the signed-in user. A missing, unreadable or malformed
// record, or one without an id, means the actor is anonymous.
func (s *Source) Current(ctx context.Context) (User, bool) {
	raw, ok, err := s.slots.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read user record, continuing as anonymous",
			slog.String("slot", s.key),
			slog.String("error", err.Error()),
		)
		return User{}, false
	}
	if !ok || raw == "" || raw == "null" {
		return User{}, false
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.ErrorContext(ctx, "user record is corrupted, continuing as anonymous",
			slog.String("slot", s.key),
			slog.String("error", err.Error()),
		)
		return User{}, false
	}
	if u.ID.IsZero() {
		return User{}, false
	}
	return u, true
}

// SignIn persists u as the current user.
func (s *Source) SignIn(ctx context.Context, u User) error {
	if u.ID.IsZero() {
		return apperrors.InvalidInput("user id is required")
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user record: %w", err)
	}
	if err := s.slots.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("save user record: %w", err)
	}
	s.logger.InfoContext(ctx, "user signed in",
		slog.String("user_id", u.ID.String()),
		slog.String("role", u.Role),
	)
	return nil
}

// SignOut removes the user record. The device cart is left untouched.
func (s *Source) SignOut(ctx context.Context) error {
	if err := s.slots.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("delete user record: %w", err)
	}
	s.logger.InfoContext(ctx, "user signed out")
	return nil
}
