package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
	"github.com/xmenbro/AutoRepairCenter/pkg/health"
	"github.com/xmenbro/AutoRepairCenter/pkg/middleware"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/domain"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/service"
)

// ============================================================================
// Mock CartRepository
// ============================================================================

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testRouter(repo *mockCartRepository, cfg RouterConfig) http.Handler {
	logger := testLogger()
	svc := service.NewCartService(repo, nil, logger)
	return NewRouter(svc, health.NewHandler(), cfg, logger)
}

func doPost(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// ============================================================================
// POST /cart
// ============================================================================

func TestLoadCart_Success(t *testing.T) {
	repo := new(mockCartRepository)
	repo.On("Get", mock.Anything, "17").Return(&domain.Cart{
		UserID: "17",
		Items:  []domain.Item{{ID: "5", Title: "Brake pads", Price: 3200, Quantity: 2}},
	}, nil)
	r := testRouter(repo, RouterConfig{})

	rec := doPost(t, r, "/cart", `{"userId":17}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"status":"success","cart":[{"id":5,"title":"Brake pads","brand":"","image":"","price":3200,"availability":"","quantity":2}]}`,
		rec.Body.String())
	repo.AssertExpectations(t)
}

func TestLoadCart_MissingCartReturnsEmptyArray(t *testing.T) {
	repo := new(mockCartRepository)
	repo.On("Get", mock.Anything, "u-9").Return(nil, apperrors.NotFound("cart", "u-9"))
	r := testRouter(repo, RouterConfig{})

	rec := doPost(t, r, "/cart", `{"userId":"u-9"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","cart":[]}`, rec.Body.String())
}

func TestLoadCart_MissingUserID(t *testing.T) {
	r := testRouter(new(mockCartRepository), RouterConfig{})

	rec := doPost(t, r, "/cart", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.NotEmpty(t, body["message"])
}

func TestLoadCart_MalformedJSON(t *testing.T) {
	r := testRouter(new(mockCartRepository), RouterConfig{})

	rec := doPost(t, r, "/cart", `{"userId":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", decodeBody(t, rec)["status"])
}

func TestLoadCart_StorageFailure(t *testing.T) {
	repo := new(mockCartRepository)
	repo.On("Get", mock.Anything, "17").Return(nil, errors.New("redis: connection refused"))
	r := testRouter(repo, RouterConfig{})

	rec := doPost(t, r, "/cart", `{"userId":17}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.NotContains(t, body["message"], "redis")
}

// ============================================================================
// POST /cart/save
// ============================================================================

func TestSaveCart_Success(t *testing.T) {
	repo := new(mockCartRepository)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Cart) bool {
		return c.UserID == "17" && len(c.Items) == 1 && c.Items[0].ID == "5" && c.Items[0].Quantity == 3
	})).Return(nil)
	r := testRouter(repo, RouterConfig{})

	rec := doPost(t, r, "/cart/save", `{"userId":17,"cart":[{"id":5,"title":"Brake pads","price":3200,"quantity":3}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	repo.AssertExpectations(t)
}

func TestSaveCart_EmptyCart(t *testing.T) {
	repo := new(mockCartRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	r := testRouter(repo, RouterConfig{})

	rec := doPost(t, r, "/cart/save", `{"userId":"17","cart":[]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestSaveCart_Rejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing user", `{"cart":[]}`},
		{"missing cart", `{"userId":17}`},
		{"zero quantity", `{"userId":17,"cart":[{"id":5,"price":10,"quantity":0}]}`},
		{"missing id", `{"userId":17,"cart":[{"price":10,"quantity":1}]}`},
		{"negative price", `{"userId":17,"cart":[{"id":5,"price":-1,"quantity":1}]}`},
		{"duplicate id", `{"userId":17,"cart":[{"id":5,"price":1,"quantity":1},{"id":"5","price":1,"quantity":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockCartRepository)
			r := testRouter(repo, RouterConfig{})

			rec := doPost(t, r, "/cart/save", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestSaveCart_StorageFailure(t *testing.T) {
	repo := new(mockCartRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(apperrors.Unavailable("redis down", errors.New("dial tcp")))
	r := testRouter(repo, RouterConfig{})

	rec := doPost(t, r, "/cart/save", `{"userId":17,"cart":[]}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])
}

// ============================================================================
// Router plumbing
// ============================================================================

func TestRouter_RejectsNonJSONContentType(t *testing.T) {
	r := testRouter(new(mockCartRepository), RouterConfig{})

	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBufferString("userId=17"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := testRouter(new(mockCartRepository), RouterConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/cart/save", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimited(t *testing.T) {
	repo := new(mockCartRepository)
	repo.On("Get", mock.Anything, "17").Return(nil, apperrors.NotFound("cart", "17"))
	rl := middleware.NewRateLimiter(0.001, 1, testLogger())
	defer rl.Stop()
	r := testRouter(repo, RouterConfig{RateLimiter: rl})

	first := doPost(t, r, "/cart", `{"userId":17}`)
	second := doPost(t, r, "/cart", `{"userId":17}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRouter_BodyTooLarge(t *testing.T) {
	r := testRouter(new(mockCartRepository), RouterConfig{MaxBodyBytes: 16})

	rec := doPost(t, r, "/cart/save", `{"userId":17,"cart":[{"id":5,"price":1,"quantity":1}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := testRouter(new(mockCartRepository), RouterConfig{})

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
