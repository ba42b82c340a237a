package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartSubtotalAndCount(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "p-1", Price: 5000, Quantity: 1},
			{ProductID: "p-2", Price: 2500, Quantity: 2},
		},
	}

	assert.Equal(t, int64(10000), cart.Subtotal())
	assert.Equal(t, 3, cart.ItemCount())
}

func TestCartFindItemIndex(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "p-1"},
			{ProductID: "p-2"},
		},
	}

	assert.Equal(t, 1, cart.FindItemIndex("p-2"))
	assert.Equal(t, -1, cart.FindItemIndex("p-9"))
}

func TestCartOrderItems(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "p-1", Name: "Mirror", Slug: "mirror", Image: "/uploads/m.jpg", Price: 5000, Quantity: 2},
		},
	}

	items := cart.OrderItems()
	assert.Len(t, items, 1)
	assert.Equal(t, OrderItem{
		ProductID: "p-1",
		Name:      "Mirror",
		Slug:      "mirror",
		Image:     "/uploads/m.jpg",
		Price:     5000,
		Quantity:  2,
	}, items[0])
}
