package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/xmenbro/AutoRepairCenter/pkg/httputil"
	"github.com/xmenbro/AutoRepairCenter/pkg/jsonid"
	"github.com/xmenbro/AutoRepairCenter/pkg/validator"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/domain"
)

// CartService is the part of service.CartService the handler needs.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	SaveCart(ctx context.Context, userID string, items []domain.Item) (*domain.Cart, error)
}

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// LoadCartRequest is the JSON request body of POST /cart.
type LoadCartRequest struct {
	UserID jsonid.ID `json:"userId" validate:"required"`
}

// SaveCartRequest is the JSON request body of POST /cart/save.
type SaveCartRequest struct {
	UserID jsonid.ID     `json:"userId" validate:"required"`
	Cart   []domain.Item `json:"cart" validate:"required,dive"`
}

// --- Responses ---

type loadCartResponse struct {
	Status string        `json:"status"`
	Cart   []domain.Item `json:"cart"`
}

type saveCartResponse struct {
	Success bool `json:"success"`
}

// --- Handlers ---

// LoadCart handles POST /cart
func (h *CartHandler) LoadCart(w http.ResponseWriter, r *http.Request) {
	var req LoadCartRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.GetCart(r.Context(), req.UserID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	items := cart.Items
	if items == nil {
		items = []domain.Item{}
	}
	httputil.WriteJSON(w, http.StatusOK, loadCartResponse{Status: "success", Cart: items})
}

// SaveCart handles POST /cart/save
func (h *CartHandler) SaveCart(w http.ResponseWriter, r *http.Request) {
	var req SaveCartRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteFailure(w, r, err, h.logger)
		return
	}

	if _, err := h.service.SaveCart(r.Context(), req.UserID.String(), req.Cart); err != nil {
		httputil.WriteFailure(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, saveCartResponse{Success: true})
}
