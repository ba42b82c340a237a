package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/castrogabe/antiquepox/internal/domain"
	"github.com/castrogabe/antiquepox/internal/repository"
	"github.com/castrogabe/antiquepox/internal/service"
)

// --- Mock ProductRepository ---

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepo) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockProductRepo) DecrementStock(ctx context.Context, productID string, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *mockProductRepo) IncrementStock(ctx context.Context, productID string, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *mockProductRepo) AddReview(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockProductRepo) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

// --- Test Helpers ---

func newTestProductHandler(repo *mockProductRepo) *ProductHandler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewProductHandler(service.NewCatalogService(repo, logger), logger)
}

func TestSearchProductsAllSentinel(t *testing.T) {
	// "all" and an absent parameter must produce the same filter.
	urls := []string{
		"/api/products/search?category=all&query=all&rating=all&price=all&min_price=all&max_price=all",
		"/api/products/search",
	}

	for _, url := range urls {
		repo := new(mockProductRepo)
		handler := newTestProductHandler(repo)

		repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
			return f.Query == nil && f.Category == nil && f.MinRating == nil &&
				f.MinPrice == nil && f.MaxPrice == nil
		})).Return([]domain.Product{}, 0, nil)

		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		handler.SearchProducts(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, url)
		repo.AssertExpectations(t)
	}
}

func TestSearchProductsFilters(t *testing.T) {
	repo := new(mockProductRepo)
	handler := newTestProductHandler(repo)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Category != nil && *f.Category == "mirrors" &&
			f.MinRating != nil && *f.MinRating == 4 &&
			f.Sort == "lowest" && f.Page == 2 && f.PerPage == 12
	})).Return([]domain.Product{{ID: "p1"}}, 13, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products/search?category=mirrors&rating=4&order=lowest&page=2", nil)
	rec := httptest.NewRecorder()
	handler.SearchProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []domain.Product `json:"data"`
		TotalCount int              `json:"total_count"`
		Page       int              `json:"page"`
		PerPage    int              `json:"per_page"`
		TotalPages int              `json:"total_pages"`
		HasNext    bool             `json:"has_next"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 13, resp.TotalCount)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 12, resp.PerPage)
	assert.Equal(t, 2, resp.TotalPages)
	assert.False(t, resp.HasNext)
}

func TestSearchProductsPriceRange(t *testing.T) {
	// A single "low-high" token sets both bounds, inclusive.
	repo := new(mockProductRepo)
	handler := newTestProductHandler(repo)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.MinPrice != nil && *f.MinPrice == 1000 &&
			f.MaxPrice != nil && *f.MaxPrice == 5000
	})).Return([]domain.Product{}, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products/search?price=1000-5000", nil)
	rec := httptest.NewRecorder()
	handler.SearchProducts(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestSearchProductsBadPriceRange(t *testing.T) {
	for _, price := range []string{"cheap", "1000", "5000-1000", "-100-200"} {
		repo := new(mockProductRepo)
		handler := newTestProductHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/products/search?price="+price, nil)
		rec := httptest.NewRecorder()
		handler.SearchProducts(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, price)
		repo.AssertNotCalled(t, "List")
	}
}

func TestSearchProductsBadRating(t *testing.T) {
	repo := new(mockProductRepo)
	handler := newTestProductHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/products/search?rating=lots", nil)
	rec := httptest.NewRecorder()
	handler.SearchProducts(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "List")
}

func TestListCategoriesEmpty(t *testing.T) {
	repo := new(mockProductRepo)
	handler := newTestProductHandler(repo)

	repo.On("Categories", mock.Anything).Return([]string{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products/categories", nil)
	rec := httptest.NewRecorder()
	handler.ListCategories(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}
