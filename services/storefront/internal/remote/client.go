// Package remote is the storefront's client for the server-side cart
// endpoint: POST /cart reads a user's cart, POST /cart/save replaces it.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xmenbro/AutoRepairCenter/pkg/httpclient"
	"github.com/xmenbro/AutoRepairCenter/pkg/tracing"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

const (
	serviceName = "cart-api"
	tracerName  = "github.com/xmenbro/AutoRepairCenter/services/storefront/internal/remote"

	// DefaultTimeout bounds each remote call.
	DefaultTimeout = 10 * time.Second
)

// ErrUnavailable wraps every remote failure: transport errors, timeouts,
// non-2xx statuses, an open breaker and non-success bodies alike.
var ErrUnavailable = errors.New("remote cart unavailable")

// CartAPI is the remote cart endpoint as seen by the cart store.
type CartAPI interface {
	Load(ctx context.Context, userID domain.ID) (*domain.Cart, error)
	Save(ctx context.Context, userID domain.ID, cart *domain.Cart) error
}

// Config configures Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements CartAPI over HTTP.
type Client struct {
	doer    httpclient.Doer
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a Client. doer is normally a *httpclient.CircuitBreakerClient.
func NewClient(doer httpclient.Doer, cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		doer:    doer,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

type loadRequest struct {
	UserID domain.ID `json:"userId"`
}

type loadResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Cart    *domain.Cart `json:"cart"`
}

type saveRequest struct {
	UserID domain.ID    `json:"userId"`
	Cart   *domain.Cart `json:"cart"`
}

type saveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Load fetches the user's cart. A success response without a cart yields an
// empty cart.
func (c *Client) Load(ctx context.Context, userID domain.ID) (cart *domain.Cart, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "remote.Load", attribute.String("user.id", userID.String()))
	defer func() {
		_ = tracing.RecordError(span, err)
		span.End()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp loadResponse
	if err := httpclient.PostJSON(ctx, c.doer, c.baseURL+"/cart", serviceName, loadRequest{UserID: userID}, &resp); err != nil {
		return nil, c.unavailable(ctx, "load", err)
	}
	if resp.Status != "success" {
		return nil, c.unavailable(ctx, "load", fmt.Errorf("status %q: %s", resp.Status, resp.Message))
	}
	if resp.Cart == nil {
		return domain.NewCart(nil), nil
	}
	return resp.Cart, nil
}

// Save replaces the user's cart with cart.
func (c *Client) Save(ctx context.Context, userID domain.ID, cart *domain.Cart) (err error) {
	ctx, span := tracing.Start(ctx, tracerName, "remote.Save",
		attribute.String("user.id", userID.String()),
		attribute.Int("cart.lines", len(cart.Lines)),
	)
	defer func() {
		_ = tracing.RecordError(span, err)
		span.End()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp saveResponse
	if err := httpclient.PostJSON(ctx, c.doer, c.baseURL+"/cart/save", serviceName, saveRequest{UserID: userID, Cart: cart}, &resp); err != nil {
		return c.unavailable(ctx, "save", err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "success flag not set"
		}
		return c.unavailable(ctx, "save", errors.New(msg))
	}
	return nil
}

func (c *Client) unavailable(ctx context.Context, op string, cause error) error {
	c.logger.DebugContext(ctx, "remote cart call failed",
		slog.String("operation", op),
		slog.String("error", cause.Error()),
	)
	return fmt.Errorf("%s cart: %w", op, errors.Join(ErrUnavailable, cause))
}
