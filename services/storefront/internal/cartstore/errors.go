package cartstore

import (
	"errors"
	"net/http"

	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/remote"
)

// Sentinel errors returned (wrapped in *apperrors.AppError) by Store.
var (
	ErrLoadFailure     = errors.New("cart could not be loaded")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrPersistFailure  = errors.New("cart could not be saved")

	// ErrRemoteUnavailable is absorbed by the local fallback and never
	// returned on its own.
	ErrRemoteUnavailable = remote.ErrUnavailable
)

func loadFailure(cause error) error {
	return apperrors.New("LOAD_FAILURE", http.StatusServiceUnavailable,
		errors.Join(ErrLoadFailure, cause), "failed to load cart, please retry")
}

func persistFailure(cause error) error {
	return apperrors.New("PERSIST_FAILURE", http.StatusServiceUnavailable,
		errors.Join(ErrPersistFailure, cause), "failed to save cart, please retry")
}

func invalidProduct(message string, cause error) error {
	sentinel := ErrInvalidProduct
	if cause != nil {
		sentinel = errors.Join(ErrInvalidProduct, cause)
	}
	return apperrors.New("INVALID_PRODUCT", http.StatusBadRequest, sentinel, message)
}

func invalidQuantity(message string) error {
	return apperrors.New("INVALID_QUANTITY", http.StatusBadRequest, ErrInvalidQuantity, message)
}

func itemNotFound(id string) error {
	return apperrors.New("ITEM_NOT_FOUND", http.StatusNotFound, ErrItemNotFound, "product "+id+" is not in the cart")
}
