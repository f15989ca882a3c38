// Package cartstore owns the shopping cart of the current storefront actor.
//
// Every operation resolves the actor first. A signed-in user's cart lives on
// the remote cart endpoint; an anonymous actor's cart lives in a local slot.
// When the remote endpoint fails, the operation is served from the local slot
// instead and still succeeds. Each operation loads fresh state, so the store
// keeps nothing between calls. Concurrent writers race and the last write
// wins.
package cartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xmenbro/AutoRepairCenter/pkg/logger"
	"github.com/xmenbro/AutoRepairCenter/pkg/tracing"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/domain"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/identity"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/localstore"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/remote"
)

const tracerName = "github.com/xmenbro/AutoRepairCenter/services/storefront/internal/cartstore"

// DefaultCartKey is the local slot holding the device cart.
const DefaultCartKey = "autoRepairCart"

// Status messages attached to results.
const (
	MsgLoaded  = "cart loaded"
	MsgAdded   = "item added to cart"
	MsgRemoved = "item removed from cart"
	MsgUpdated = "quantity updated"
	MsgCleared = "cart cleared"
)

// Source names the backend that served a result.
type Source string

const (
	// SourceRemote means the cart service answered for a signed-in user.
	SourceRemote Source = "remote"
	// SourceLocal means the local slot served the request, either for an
	// anonymous actor or as the fallback after a remote failure.
	SourceLocal Source = "local"
)

// Result is the cart view returned by every operation.
type Result struct {
	Lines     []domain.Line `json:"lines"`
	LineCount int           `json:"lineCount"`
	Total     int64         `json:"total"`
	Message   string        `json:"message"`
	Source    Source        `json:"source"`
}

func newResult(cart *domain.Cart, message string, src Source) *Result {
	lines := make([]domain.Line, len(cart.Lines))
	copy(lines, cart.Lines)
	return &Result{
		Lines:     lines,
		LineCount: cart.LineCount(),
		Total:     cart.Total(),
		Message:   message,
		Source:    src,
	}
}

// Config configures a Store.
type Config struct {
	// CartKey is the local slot for the device cart. Defaults to DefaultCartKey.
	CartKey string
}

// Store is the cart store. Construct it with New; the zero value is not usable.
type Store struct {
	identity identity.Resolver
	remote   remote.CartAPI
	slots    localstore.Slots
	cartKey  string
	logger   *slog.Logger
}

// New creates a Store. api may be nil, in which case every actor uses the
// local slot.
func New(ident identity.Resolver, api remote.CartAPI, slots localstore.Slots, cfg Config, log *slog.Logger) *Store {
	key := cfg.CartKey
	if key == "" {
		key = DefaultCartKey
	}
	return &Store{
		identity: ident,
		remote:   api,
		slots:    slots,
		cartKey:  key,
		logger:   log,
	}
}

// actor is the resolved owner of the cart for one operation.
type actor struct {
	user   identity.User
	remote bool
}

func (s *Store) resolve(ctx context.Context) (context.Context, actor) {
	u, ok := s.identity.Current(ctx)
	if !ok {
		return ctx, actor{}
	}
	ctx = logger.WithUserID(ctx, u.ID.String())
	return ctx, actor{user: u, remote: s.remote != nil}
}

func (s *Store) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, s.logger)
}

// GetCart returns the actor's cart.
func (s *Store) GetCart(ctx context.Context) (res *Result, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "cartstore.GetCart")
	defer func() {
		_ = tracing.RecordError(span, err)
		span.End()
	}()

	ctx, a := s.resolve(ctx)
	cart, src, err := s.load(ctx, "get", a)
	if err != nil {
		return nil, err
	}
	return newResult(cart, MsgLoaded, src), nil
}

// Count returns the number of units in the actor's cart.
func (s *Store) Count(ctx context.Context) (n int, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "cartstore.Count")
	defer func() {
		_ = tracing.RecordError(span, err)
		span.End()
	}()

	ctx, a := s.resolve(ctx)
	cart, _, err := s.load(ctx, "count", a)
	if err != nil {
		return 0, err
	}
	return cart.LineCount(), nil
}

// AddItem adds quantity units of p. An existing line keeps its snapshot and
// only its quantity grows. There is no availability check; the only upper
// bound is integer range, and a cart whose quantity or total would overflow
// is rejected with ErrInvalidQuantity and left as stored.
func (s *Store) AddItem(ctx context.Context, p domain.Product, quantity int) (res *Result, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "cartstore.AddItem",
		attribute.String("product.id", p.ID.String()),
		attribute.Int("quantity", quantity),
	)
	defer func() {
		_ = tracing.RecordError(span, err)
		span.End()
	}()

	if p.ID.IsZero() {
		return nil, invalidProduct("product id is required", nil)
	}
	if err := p.Validate(); err != nil {
		return nil, invalidProduct("product is invalid", err)
	}
	if quantity < 1 {
		return nil, invalidQuantity("quantity must be at least 1")
	}

	ctx, a := s.resolve(ctx)
	res, err = s.mutate(ctx, a, "add", MsgAdded, func(c *domain.Cart) error {
		if err := c.Add(p, quantity); err != nil {
			return invalidQuantity("quantity exceeds the cart limit")
		}
		return checkBounds(c)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).InfoContext(ctx, "item added to cart",
		slog.String("product_id", p.ID.String()),
		slog.Int("quantity", quantity),
		slog.String("source", string(res.Source)),
	)
	return res, nil
}

// RemoveItem drops the line for id. Removing an absent product succeeds and
// leaves the cart unchanged.
func (s *Store) RemoveItem(ctx context.Context, id domain.ID) (res *Result, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "cartstore.RemoveItem", attribute.String("product.id", id.String()))
	defer func() {
		_ = tracing.RecordError(span, err)
		span.End()
	}()

	ctx, a := s.resolve(ctx)
	res, err = s.mutate(ctx, a, "remove", MsgRemoved, func(c *domain.Cart) error {
		c.Remove(id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).InfoContext(ctx, "item removed from cart",
		slog.String("product_id", id.String()),
		slog.String("source", string(res.Source)),
	)
	return res, nil
}

// UpdateQuantity sets the line's quantity; quantity <= 0 removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, id domain.ID, quantity int) (res *Result, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "cartstore.UpdateQuantity",
		attribute.String("product.id", id.String()),
		attribute.Int("quantity", quantity),
	)
	defer func() {
		_ = tracing.RecordError(span, err)
		span.End()
	}()

	ctx, a := s.resolve(ctx)
	res, err = s.mutate(ctx, a, "update", MsgUpdated, func(c *domain.Cart) error {
		if !c.SetQuantity(id, quantity) {
			return itemNotFound(id.String())
		}
		return checkBounds(c)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).InfoContext(ctx, "cart quantity updated",
		slog.String("product_id", id.String()),
		slog.Int("quantity", quantity),
		slog.String("source", string(res.Source)),
	)
	return res, nil
}

func checkBounds(c *domain.Cart) error {
	if err := c.CheckBounds(); err != nil {
		return invalidQuantity("cart total exceeds the supported range")
	}
	return nil
}

// ClearCart persists an empty cart. After a remote clear the local slot is
// emptied too, so a later fallback does not resurrect old lines.
func (s *Store) ClearCart(ctx context.Context) (res *Result, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "cartstore.ClearCart")
	defer func() {
		_ = tracing.RecordError(span, err)
		span.End()
	}()

	ctx, a := s.resolve(ctx)
	cart := domain.NewCart(nil)
	src, err := s.persist(ctx, "clear", a, cart)
	if err != nil {
		return nil, err
	}
	// The local slot may still hold lines written during an earlier fallback.
	if src == SourceRemote {
		if err := s.saveLocal(ctx, cart); err != nil {
			s.log(ctx).WarnContext(ctx, "local cart not cleared",
				slog.String("error", err.Error()),
			)
		}
	}

	s.log(ctx).InfoContext(ctx, "cart cleared", slog.String("source", string(src)))
	return newResult(cart, MsgCleared, src), nil
}

// mutate runs load, fn, persist for actor a.
func (s *Store) mutate(ctx context.Context, a actor, op, message string, fn func(*domain.Cart) error) (*Result, error) {
	cart, _, err := s.load(ctx, op, a)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	src, err := s.persist(ctx, op, a, cart)
	if err != nil {
		return nil, err
	}
	return newResult(cart, message, src), nil
}

// load reads the actor's cart from the remote endpoint, or from the local
// slot for anonymous actors and when the remote call fails.
func (s *Store) load(ctx context.Context, op string, a actor) (*domain.Cart, Source, error) {
	ctx = logger.WithOperation(ctx, op)
	if a.remote {
		cart, err := s.remote.Load(ctx, a.user.ID)
		if err == nil {
			s.normalize(ctx, cart, SourceRemote)
			return cart, SourceRemote, nil
		}
		fallbackTotal.WithLabelValues(op, stageLoad).Inc()
		s.log(ctx).WarnContext(ctx, "remote cart load failed, using local cart",
			slog.String("error", err.Error()),
		)
	}

	cart, err := s.loadLocal(ctx)
	if err != nil {
		return nil, "", loadFailure(err)
	}
	return cart, SourceLocal, nil
}

// loadLocal reads the device slot. An absent slot is initialized to an empty
// cart; unparseable contents are logged and treated as empty.
func (s *Store) loadLocal(ctx context.Context) (*domain.Cart, error) {
	raw, ok, err := s.slots.Get(ctx, s.cartKey)
	if err != nil {
		return nil, fmt.Errorf("read local cart: %w", err)
	}
	if !ok {
		if err := s.slots.Set(ctx, s.cartKey, "[]"); err != nil {
			s.log(ctx).WarnContext(ctx, "failed to initialize local cart",
				slog.String("slot", s.cartKey),
				slog.String("error", err.Error()),
			)
		}
		return domain.NewCart(nil), nil
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		s.log(ctx).ErrorContext(ctx, "local cart is corrupted, treating as empty",
			slog.String("slot", s.cartKey),
			slog.String("error", err.Error()),
		)
		return domain.NewCart(nil), nil
	}
	s.normalize(ctx, &cart, SourceLocal)
	return &cart, nil
}

func (s *Store) normalize(ctx context.Context, cart *domain.Cart, src Source) {
	if n := cart.Normalize(); n > 0 {
		s.log(ctx).WarnContext(ctx, "dropped or merged invalid cart lines",
			slog.String("source", string(src)),
			slog.Int("lines", n),
		)
	}
}

// persist writes cart to the remote endpoint, falling back to the local slot.
func (s *Store) persist(ctx context.Context, op string, a actor, cart *domain.Cart) (Source, error) {
	ctx = logger.WithOperation(ctx, op)
	if a.remote {
		err := s.remote.Save(ctx, a.user.ID, cart)
		if err == nil {
			return SourceRemote, nil
		}
		fallbackTotal.WithLabelValues(op, stageSave).Inc()
		s.log(ctx).WarnContext(ctx, "remote cart save failed, saving locally",
			slog.String("error", err.Error()),
		)
	}

	if err := s.saveLocal(ctx, cart); err != nil {
		return "", persistFailure(err)
	}
	return SourceLocal, nil
}

func (s *Store) saveLocal(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.slots.Set(ctx, s.cartKey, string(data)); err != nil {
		return fmt.Errorf("write local cart: %w", err)
	}
	return nil
}
