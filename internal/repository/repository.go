package repository

import (
	"context"
	"time"

	"github.com/castrogabe/antiquepox/internal/domain"
)

// Product sort orders accepted by ProductFilter.Sort.
const (
	SortFeatured = "featured"
	SortLowest   = "lowest"
	SortHighest  = "highest"
	SortTopRated = "toprated"
	SortNewest   = "newest"
)

// ProductFilter defines filter criteria for catalog queries. Nil pointer
// fields mean "no filter on this axis"; handlers normalize the "all" sentinel
// to nil before the filter reaches the repository.
type ProductFilter struct {
	Query     *string
	Category  *string
	MinRating *float64
	MinPrice  *int64
	MaxPrice  *int64
	Sort      string
	Page      int
	PerPage   int
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, page, perPage int) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error

	// SetResetToken stores a pending password-reset token on the user row.
	SetResetToken(ctx context.Context, userID, token string) error

	// ConsumeResetToken atomically sets the password hash and clears the
	// reset token for the user holding the given token. Returns ErrNotFound
	// when no user holds the token (already consumed or never issued).
	ConsumeResetToken(ctx context.Context, token, passwordHash string) error
}

// ProductRepository defines the interface for catalog persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error

	// Categories returns the distinct product categories in sorted order.
	Categories(ctx context.Context) ([]string, error)

	// DecrementStock atomically reserves quantity units of a product.
	// Returns ErrOutOfStock when the remaining stock is insufficient.
	DecrementStock(ctx context.Context, productID string, quantity int) error

	// IncrementStock returns quantity units of a product to stock,
	// releasing a reservation after a failed checkout.
	IncrementStock(ctx context.Context, productID string, quantity int) error

	// AddReview inserts a review and recomputes the product's rating and
	// review count from the full review set in the same transaction.
	AddReview(ctx context.Context, review *domain.Review) error

	// ListReviews returns all reviews for a product, newest first.
	ListReviews(ctx context.Context, productID string) ([]domain.Review, error)
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order and its items into the store atomically.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier, including items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByUser returns a user's orders with the total count.
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error)

	// List returns all orders with the total count.
	List(ctx context.Context, page, perPage int) ([]domain.Order, int, error)

	// MarkPaid conditionally flips the order to paid and records the
	// provider result. Returns false with a nil error when the order was
	// already paid, making duplicate confirmations a no-op.
	MarkPaid(ctx context.Context, id string, paidAt time.Time, result *domain.PaymentResult) (bool, error)

	// MarkShipped records the shipping details and flips the shipped flag.
	MarkShipped(ctx context.Context, id string, shippedAt time.Time, carrierName, trackingNumber string, deliveryDays int) error

	// MarkDelivered flips the delivered flag.
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) error

	// Delete removes an unpaid order and its items. Returns ErrConflict
	// when the order has been paid, ErrNotFound when it does not exist.
	Delete(ctx context.Context, id string) error
}

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

// MessageRepository defines the interface for contact-message persistence.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	List(ctx context.Context, page, perPage int) ([]domain.Message, int, error)
}

// ReportRepository produces the admin dashboard aggregation.
type ReportRepository interface {
	Summary(ctx context.Context) (*domain.Summary, error)
}
