package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/castrogabe/antiquepox/pkg/errors"

	"github.com/castrogabe/antiquepox/internal/domain"
	"github.com/castrogabe/antiquepox/internal/repository"
)

func newProductTestFixture(t *testing.T) (*ProductRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewProductRepository(mock)
	return repo, mock
}

func sampleProduct() *domain.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Product{
		ID:           "p-1234",
		Name:         "Victorian Oak Mirror",
		Slug:         "victorian-oak-mirror",
		Category:     "mirrors",
		Image:        "/uploads/mirror.jpg",
		Images:       []string{"/uploads/mirror.jpg"},
		Origin:       "England",
		Finish:       "oak",
		Description:  "Hand-carved oak frame",
		Price:        24500,
		CountInStock: 3,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func productTestColumns() []string {
	return []string{
		"id", "name", "slug", "category", "image", "images", "origin", "finish",
		"description", "price", "count_in_stock", "rating", "num_reviews",
		"featured_score", "created_at", "updated_at",
	}
}

func productRow(p *domain.Product) *pgxmock.Rows {
	return pgxmock.NewRows(productTestColumns()).AddRow(
		p.ID, p.Name, p.Slug, p.Category, p.Image, []byte(`["/uploads/mirror.jpg"]`),
		p.Origin, p.Finish, p.Description, p.Price, p.CountInStock, p.Rating,
		p.NumReviews, p.FeaturedScore, p.CreatedAt, p.UpdatedAt,
	)
}

func TestProductRepository_Create_DuplicateSlug(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()

	mock.ExpectExec("INSERT INTO products").
		WithArgs(
			p.ID, p.Name, p.Slug, p.Category, p.Image, pgxmock.AnyArg(),
			p.Origin, p.Finish, p.Description, p.Price, p.CountInStock,
			p.Rating, p.NumReviews, p.FeaturedScore, p.CreatedAt, p.UpdatedAt,
		).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), p)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetBySlug_Success(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()

	mock.ExpectQuery("SELECT .+ FROM products WHERE slug").
		WithArgs(p.Slug).
		WillReturnRows(productRow(p))

	got, err := repo.GetBySlug(context.Background(), p.Slug)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, []string{"/uploads/mirror.jpg"}, got.Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_FilterArgs(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()
	category := "mirrors"
	minRating := 4.0

	rows := pgxmock.NewRows(append(productTestColumns(), "total_count")).AddRow(
		p.ID, p.Name, p.Slug, p.Category, p.Image, []byte(`[]`),
		p.Origin, p.Finish, p.Description, p.Price, p.CountInStock, p.Rating,
		p.NumReviews, p.FeaturedScore, p.CreatedAt, p.UpdatedAt, 13,
	)

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs(category, minRating, 12, 12).
		WillReturnRows(rows)

	products, total, err := repo.List(context.Background(), repository.ProductFilter{
		Category:  &category,
		MinRating: &minRating,
		Page:      2,
		PerPage:   12,
	})
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 13, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_DecrementStock_OutOfStock(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	// Conditional update matches no rows when stock is insufficient.
	mock.ExpectExec("UPDATE products").
		WithArgs("p-1234", 10, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.DecrementStock(context.Background(), "p-1234", 10)
	assert.ErrorIs(t, err, apperrors.ErrOutOfStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_DecrementStock_Success(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE products").
		WithArgs("p-1234", 2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.DecrementStock(context.Background(), "p-1234", 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_IncrementStock_Success(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE products").
		WithArgs("p-1234", 2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.IncrementStock(context.Background(), "p-1234", 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_IncrementStock_MissingProduct(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE products").
		WithArgs("missing", 2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.IncrementStock(context.Background(), "missing", 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_AddReview_RecomputesRating(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	review := &domain.Review{
		ID:        "r-2",
		ProductID: "p-1234",
		UserID:    "u-2",
		Name:      "Jane Buyer",
		Rating:    3,
		Comment:   "solid piece",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(review.ID, review.ProductID, review.UserID, review.Name, review.Rating, review.Comment, review.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	// One existing 5-star review plus this 3-star one averages to 4.0.
	mock.ExpectQuery("SELECT count").
		WithArgs(review.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"count", "avg"}).AddRow(2, 4.0))

	mock.ExpectExec("UPDATE products SET num_reviews").
		WithArgs(2, 4.0, pgxmock.AnyArg(), review.ProductID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.AddReview(context.Background(), review)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_AddReview_Duplicate(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	review := &domain.Review{
		ID:        "r-3",
		ProductID: "p-1234",
		UserID:    "u-2",
		Rating:    4,
		Comment:   "again",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(review.ID, review.ProductID, review.UserID, review.Name, review.Rating, review.Comment, review.CreatedAt).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))
	mock.ExpectRollback()

	err := repo.AddReview(context.Background(), review)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
