package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/castrogabe/antiquepox/pkg/errors"
	"github.com/castrogabe/antiquepox/pkg/slug"

	"github.com/castrogabe/antiquepox/internal/domain"
	"github.com/castrogabe/antiquepox/internal/repository"
)

// CatalogService implements the business logic for the product catalog.
type CatalogService struct {
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(productRepo repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name          string
	Category      string
	Image         string
	Images        []string
	Origin        string
	Finish        string
	Description   string
	Price         int64
	CountInStock  int
	FeaturedScore int
}

// UpdateProductInput holds the parameters for updating a product.
// Nil fields are left unchanged.
type UpdateProductInput struct {
	Name          *string
	Category      *string
	Image         *string
	Images        []string
	Origin        *string
	Finish        *string
	Description   *string
	Price         *int64
	CountInStock  *int
	FeaturedScore *int
}

// AddReviewInput holds the parameters for adding a product review.
type AddReviewInput struct {
	ProductID string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
}

// SearchProducts returns a filtered, sorted page of the catalog with the
// total match count.
func (s *CatalogService) SearchProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, 0, apperrors.InvalidInput("minimum price must not exceed maximum price")
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// GetProduct retrieves a product by ID.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// GetProductBySlug retrieves a product by its URL slug.
func (s *CatalogService) GetProductBySlug(ctx context.Context, slugStr string) (*domain.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slugStr)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// Categories returns the distinct product categories in sorted order.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateProduct adds a product to the catalog. The slug is derived from the
// name; on a collision a short unique suffix is appended.
func (s *CatalogService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Category == "" {
		return nil, apperrors.InvalidInput("category is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.CountInStock < 0 {
		return nil, apperrors.InvalidInput("stock count must not be negative")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New().String(),
		Name:          input.Name,
		Slug:          slug.Generate(input.Name),
		Category:      input.Category,
		Image:         input.Image,
		Images:        input.Images,
		Origin:        input.Origin,
		Finish:        input.Finish,
		Description:   input.Description,
		Price:         input.Price,
		CountInStock:  input.CountInStock,
		FeaturedScore: input.FeaturedScore,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.productRepo.Create(ctx, product)
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		product.Slug = fmt.Sprintf("%s-%s", product.Slug, product.ID[:8])
		err = s.productRepo.Create(ctx, product)
	}
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// UpdateProduct edits a product's fields.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		product.Name = *input.Name
		product.Slug = slug.Generate(*input.Name)
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Image != nil {
		product.Image = *input.Image
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	if input.Origin != nil {
		product.Origin = *input.Origin
	}
	if input.Finish != nil {
		product.Finish = *input.Finish
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		product.Price = *input.Price
	}
	if input.CountInStock != nil {
		if *input.CountInStock < 0 {
			return nil, apperrors.InvalidInput("stock count must not be negative")
		}
		product.CountInStock = *input.CountInStock
	}
	if input.FeaturedScore != nil {
		product.FeaturedScore = *input.FeaturedScore
	}

	product.UpdatedAt = time.Now().UTC()
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

// AddReview records a customer review. A user can only review a product
// once; the product's rating and review count are recomputed from the full
// review set.
func (s *CatalogService) AddReview(ctx context.Context, input *AddReviewInput) (*domain.Review, error) {
	if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	if input.Comment == "" {
		return nil, apperrors.InvalidInput("comment is required")
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Name:      input.UserName,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.productRepo.AddReview(ctx, review); err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}

	s.logger.InfoContext(ctx, "review added",
		slog.String("product_id", input.ProductID),
		slog.String("user_id", input.UserID),
		slog.Int("rating", input.Rating),
	)

	return review, nil
}

// ListReviews returns all reviews for a product, newest first.
func (s *CatalogService) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	reviews, err := s.productRepo.ListReviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
