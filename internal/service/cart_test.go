package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/castrogabe/antiquepox/pkg/errors"

	"github.com/castrogabe/antiquepox/internal/domain"
)

func newTestCartService() (*CartService, *mockCartRepository, *mockProductRepository) {
	cartRepo := new(mockCartRepository)
	productRepo := new(mockProductRepository)
	svc := NewCartService(cartRepo, productRepo, newTestLogger())
	return svc, cartRepo, productRepo
}

func TestGetCart(t *testing.T) {
	t.Run("missing cart comes back empty", func(t *testing.T) {
		svc, cartRepo, _ := newTestCartService()
		cartRepo.On("Get", mock.Anything, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))

		cart, err := svc.GetCart(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", cart.UserID)
		assert.Empty(t, cart.Items)
	})
}

func TestAddItem(t *testing.T) {
	mirror := &domain.Product{ID: "p1", Name: "Mirror", Slug: "mirror", Price: 5000, CountInStock: 3}

	t.Run("snapshots product fields", func(t *testing.T) {
		svc, cartRepo, productRepo := newTestCartService()

		productRepo.On("GetByID", mock.Anything, "p1").Return(mirror, nil)
		cartRepo.On("Get", mock.Anything, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))
		cartRepo.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Cart) bool {
			return len(c.Items) == 1 && c.Items[0].Price == 5000 && c.Items[0].Name == "Mirror"
		})).Return(nil)

		cart, err := svc.AddItem(context.Background(), "user-1", "p1", 2)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), cart.Subtotal())
	})

	t.Run("re-adding replaces quantity", func(t *testing.T) {
		svc, cartRepo, productRepo := newTestCartService()

		existing := &domain.Cart{
			UserID: "user-1",
			Items:  []domain.CartItem{{ProductID: "p1", Name: "Mirror", Price: 5000, Quantity: 1}},
		}
		productRepo.On("GetByID", mock.Anything, "p1").Return(mirror, nil)
		cartRepo.On("Get", mock.Anything, "user-1").Return(existing, nil)
		cartRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		cart, err := svc.AddItem(context.Background(), "user-1", "p1", 3)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 3, cart.Items[0].Quantity)
	})

	t.Run("insufficient stock is refused", func(t *testing.T) {
		svc, cartRepo, productRepo := newTestCartService()

		productRepo.On("GetByID", mock.Anything, "p1").Return(mirror, nil)

		_, err := svc.AddItem(context.Background(), "user-1", "p1", 10)
		assert.ErrorIs(t, err, apperrors.ErrOutOfStock)
		cartRepo.AssertNotCalled(t, "Save")
	})
}

func TestUpdateItem(t *testing.T) {
	t.Run("quantity zero removes the item", func(t *testing.T) {
		svc, cartRepo, _ := newTestCartService()

		existing := &domain.Cart{
			UserID: "user-1",
			Items:  []domain.CartItem{{ProductID: "p1", Quantity: 2}},
		}
		cartRepo.On("Get", mock.Anything, "user-1").Return(existing, nil)
		cartRepo.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Cart) bool {
			return len(c.Items) == 0
		})).Return(nil)

		cart, err := svc.UpdateItem(context.Background(), "user-1", "p1", 0)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})

	t.Run("missing item is not found", func(t *testing.T) {
		svc, cartRepo, _ := newTestCartService()

		cartRepo.On("Get", mock.Anything, "user-1").
			Return(&domain.Cart{UserID: "user-1"}, nil)

		_, err := svc.UpdateItem(context.Background(), "user-1", "p9", 1)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
