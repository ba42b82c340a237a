package domain

import "time"

// Payment method constants.
const (
	PaymentMethodPayPal = "paypal"
	PaymentMethodStripe = "stripe"
)

// IsValidPaymentMethod checks if a payment method string is supported.
func IsValidPaymentMethod(method string) bool {
	return method == PaymentMethodPayPal || method == PaymentMethodStripe
}

// Order represents a customer order. All prices are in cents and fixed at
// creation time; they are never recomputed afterwards. The paid, shipped and
// delivered flags are independent one-way transitions, each with its own
// timestamp.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	ItemsPrice      int64           `json:"items_price"`
	TaxPrice        int64           `json:"tax_price"`
	ShippingPrice   int64           `json:"shipping_price"`
	TotalPrice      int64           `json:"total_price"`
	IsPaid          bool            `json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	PaymentResult   *PaymentResult  `json:"payment_result,omitempty"`
	IsShipped       bool            `json:"is_shipped"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	CarrierName     string          `json:"carrier_name,omitempty"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
	DeliveryDays    int             `json:"delivery_days,omitempty"`
	IsDelivered     bool            `json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ShippingAddress is the delivery address captured by value at order creation.
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PaymentResult records the provider's view of a completed payment.
// A duplicate confirmation overwrites it with the latest provider data.
type PaymentResult struct {
	ProviderID   string `json:"provider_id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

// TotalQuantity returns the number of units across all line items. It is
// always derived, never stored.
func (o *Order) TotalQuantity() int {
	var count int
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}
