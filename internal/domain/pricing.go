package domain

// PricingPolicy holds the checkout pricing knobs. Values come from
// configuration; nothing here is hard-coded business policy.
type PricingPolicy struct {
	// TaxRateBps is the tax rate in basis points (1000 = 10%).
	TaxRateBps int64
	// ShippingFlatFee is the flat shipping charge in cents.
	ShippingFlatFee int64
	// FreeShippingThreshold waives the shipping fee when the items subtotal
	// reaches it. Zero disables the waiver.
	FreeShippingThreshold int64
}

// PriceBreakdown is the result of pricing a set of order items, in cents.
type PriceBreakdown struct {
	ItemsPrice    int64
	TaxPrice      int64
	ShippingPrice int64
	TotalPrice    int64
}

// Price computes the order price breakdown for the given items. Tax is
// rounded half-up to the cent.
func (p PricingPolicy) Price(items []OrderItem) PriceBreakdown {
	var itemsPrice int64
	for i := range items {
		itemsPrice += items[i].LineTotal()
	}

	taxPrice := (itemsPrice*p.TaxRateBps + 5000) / 10000

	shippingPrice := p.ShippingFlatFee
	if p.FreeShippingThreshold > 0 && itemsPrice >= p.FreeShippingThreshold {
		shippingPrice = 0
	}

	return PriceBreakdown{
		ItemsPrice:    itemsPrice,
		TaxPrice:      taxPrice,
		ShippingPrice: shippingPrice,
		TotalPrice:    itemsPrice + taxPrice + shippingPrice,
	}
}
