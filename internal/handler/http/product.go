package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/castrogabe/antiquepox/pkg/httputil"
	"github.com/castrogabe/antiquepox/pkg/middleware"
	"github.com/castrogabe/antiquepox/pkg/pagination"
	"github.com/castrogabe/antiquepox/pkg/validator"

	"github.com/castrogabe/antiquepox/internal/repository"
	"github.com/castrogabe/antiquepox/internal/service"
)

// filterAll is the query-string sentinel meaning "no filter on this axis".
// It is equivalent to omitting the parameter entirely.
const filterAll = "all"

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Category      string   `json:"category" validate:"required,max=100"`
	Image         string   `json:"image"`
	Images        []string `json:"images"`
	Origin        string   `json:"origin"`
	Finish        string   `json:"finish"`
	Description   string   `json:"description"`
	Price         int64    `json:"price" validate:"gte=0"`
	CountInStock  int      `json:"count_in_stock" validate:"gte=0"`
	FeaturedScore int      `json:"featured_score"`
}

// UpdateProductRequest is the JSON request body for updating a product.
type UpdateProductRequest struct {
	Name          *string  `json:"name" validate:"omitempty,max=200"`
	Category      *string  `json:"category" validate:"omitempty,max=100"`
	Image         *string  `json:"image"`
	Images        []string `json:"images"`
	Origin        *string  `json:"origin"`
	Finish        *string  `json:"finish"`
	Description   *string  `json:"description"`
	Price         *int64   `json:"price" validate:"omitempty,gte=0"`
	CountInStock  *int     `json:"count_in_stock" validate:"omitempty,gte=0"`
	FeaturedScore *int     `json:"featured_score"`
}

// CreateReviewRequest is the JSON request body for reviewing a product.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

// --- Handlers ---

// SearchProducts handles GET /api/products/search
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	q := r.URL.Query()

	filter := repository.ProductFilter{
		Sort:    q.Get("order"),
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	if v := q.Get("query"); v != "" && v != filterAll {
		filter.Query = &v
	}
	if v := q.Get("category"); v != "" && v != filterAll {
		filter.Category = &v
	}
	if v := q.Get("rating"); v != "" && v != filterAll {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "rating must be a number"},
			})
			return
		}
		filter.MinRating = &rating
	}
	if v := q.Get("price"); v != "" && v != filterAll {
		low, high, found := strings.Cut(v, "-")
		minPrice, errLow := strconv.ParseInt(low, 10, 64)
		maxPrice, errHigh := strconv.ParseInt(high, 10, 64)
		if !found || errLow != nil || errHigh != nil || minPrice > maxPrice {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "price must be a low-high range in cents"},
			})
			return
		}
		filter.MinPrice = &minPrice
		filter.MaxPrice = &maxPrice
	}
	if v := q.Get("min_price"); v != "" && v != filterAll {
		minPrice, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "min_price must be an integer amount in cents"},
			})
			return
		}
		filter.MinPrice = &minPrice
	}
	if v := q.Get("max_price"); v != "" && v != filterAll {
		maxPrice, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "max_price must be an integer amount in cents"},
			})
			return
		}
		filter.MaxPrice = &maxPrice
	}

	products, total, err := h.service.SearchProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(products, total, params.Page, params.PerPage))
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	products, total, err := h.service.SearchProducts(r.Context(), repository.ProductFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(products, total, params.Page, params.PerPage))
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// GetProductBySlug handles GET /api/products/slug/{slug}
func (h *ProductHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.service.GetProductBySlug(r.Context(), slug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// ListCategories handles GET /api/products/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if categories == nil {
		categories = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

// CreateProduct handles POST /api/products (admin)
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &service.CreateProductInput{
		Name:          req.Name,
		Category:      req.Category,
		Image:         req.Image,
		Images:        req.Images,
		Origin:        req.Origin,
		Finish:        req.Finish,
		Description:   req.Description,
		Price:         req.Price,
		CountInStock:  req.CountInStock,
		FeaturedScore: req.FeaturedScore,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/products/{id} (admin)
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, &service.UpdateProductInput{
		Name:          req.Name,
		Category:      req.Category,
		Image:         req.Image,
		Images:        req.Images,
		Origin:        req.Origin,
		Finish:        req.Finish,
		Description:   req.Description,
		Price:         req.Price,
		CountInStock:  req.CountInStock,
		FeaturedScore: req.FeaturedScore,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/products/{id} (admin)
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateReview handles POST /api/products/{id}/reviews
func (h *ProductHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	productID := chi.URLParam(r, "id")

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.AddReview(r.Context(), &service.AddReviewInput{
		ProductID: productID,
		UserID:    middleware.UserIDFromContext(r.Context()),
		UserName:  middleware.UserNameFromContext(r.Context()),
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// ListReviews handles GET /api/products/{id}/reviews
func (h *ProductHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	reviews, err := h.service.ListReviews(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: reviews})
}
