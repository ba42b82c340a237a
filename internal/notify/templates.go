package notify

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/castrogabe/antiquepox/internal/domain"
)

// formatCents renders an amount in cents as a dollar string ("115.00").
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

var templateFuncs = template.FuncMap{
	"money": formatCents,
}

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`<h1>Password Reset</h1>
<p>Hello {{.Name}},</p>
<p>We received a request to reset your password. Click the link below to choose a new one. The link expires in 10 minutes.</p>
<p><a href="{{.ResetURL}}">Reset my password</a></p>
<p>If you did not request this, you can safely ignore this email.</p>
`))

var orderReceiptTmpl = template.Must(template.New("order_receipt").Funcs(templateFuncs).Parse(`<h1>Thanks for your order</h1>
<p>Hello {{.Name}},</p>
<p>We have received your order <strong>{{.Order.ID}}</strong> placed on {{.Order.CreatedAt.Format "2006-01-02"}}.</p>
<table>
<thead><tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th></tr></thead>
<tbody>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td align="right">{{.Quantity}}</td><td align="right">{{money .Price}}</td></tr>
{{end}}</tbody>
</table>
<table>
<tr><td>Items:</td><td align="right">{{money .Order.ItemsPrice}}</td></tr>
<tr><td>Tax:</td><td align="right">{{money .Order.TaxPrice}}</td></tr>
<tr><td>Shipping:</td><td align="right">{{money .Order.ShippingPrice}}</td></tr>
<tr><td><strong>Total:</strong></td><td align="right"><strong>{{money .Order.TotalPrice}}</strong></td></tr>
</table>
<h2>Shipping address</h2>
<p>{{.Order.ShippingAddress.FullName}}<br>
{{.Order.ShippingAddress.Address}}<br>
{{.Order.ShippingAddress.City}}, {{.Order.ShippingAddress.PostalCode}}<br>
{{.Order.ShippingAddress.Country}}</p>
`))

var orderPaidTmpl = template.Must(template.New("order_paid").Funcs(templateFuncs).Parse(`<h1>Payment received</h1>
<p>Hello {{.Name}},</p>
<p>Your payment of <strong>{{money .Order.TotalPrice}}</strong> for order <strong>{{.Order.ID}}</strong> has been confirmed. We will let you know when it ships.</p>
`))

var orderShippedTmpl = template.Must(template.New("order_shipped").Parse(`<h1>Your order is on its way</h1>
<p>Hello {{.Name}},</p>
<p>Order <strong>{{.Order.ID}}</strong> has shipped via {{.Order.CarrierName}}.</p>
<p>Tracking number: <strong>{{.Order.TrackingNumber}}</strong></p>
{{if gt .Order.DeliveryDays 0}}<p>Estimated delivery in {{.Order.DeliveryDays}} days.</p>{{end}}
`))

type orderEmailData struct {
	Name  string
	Order *domain.Order
}

// PasswordResetEmail renders the reset-link email for a user.
func PasswordResetEmail(to, name, resetURL string) (*Email, error) {
	var body strings.Builder
	err := passwordResetTmpl.Execute(&body, struct {
		Name     string
		ResetURL string
	}{Name: name, ResetURL: resetURL})
	if err != nil {
		return nil, fmt.Errorf("render password reset email: %w", err)
	}

	return &Email{
		To:       to,
		Subject:  "Reset your password",
		HTMLBody: body.String(),
	}, nil
}

// OrderReceiptEmail renders the receipt sent when an order is created.
func OrderReceiptEmail(to, name string, order *domain.Order) (*Email, error) {
	var body strings.Builder
	if err := orderReceiptTmpl.Execute(&body, orderEmailData{Name: name, Order: order}); err != nil {
		return nil, fmt.Errorf("render order receipt email: %w", err)
	}

	return &Email{
		To:       to,
		Subject:  fmt.Sprintf("Order %s confirmed", order.ID),
		HTMLBody: body.String(),
	}, nil
}

// OrderPaidEmail renders the payment confirmation email.
func OrderPaidEmail(to, name string, order *domain.Order) (*Email, error) {
	var body strings.Builder
	if err := orderPaidTmpl.Execute(&body, orderEmailData{Name: name, Order: order}); err != nil {
		return nil, fmt.Errorf("render order paid email: %w", err)
	}

	return &Email{
		To:       to,
		Subject:  fmt.Sprintf("Payment received for order %s", order.ID),
		HTMLBody: body.String(),
	}, nil
}

// OrderShippedEmail renders the shipping confirmation email.
func OrderShippedEmail(to, name string, order *domain.Order) (*Email, error) {
	var body strings.Builder
	if err := orderShippedTmpl.Execute(&body, orderEmailData{Name: name, Order: order}); err != nil {
		return nil, fmt.Errorf("render order shipped email: %w", err)
	}

	return &Email{
		To:       to,
		Subject:  fmt.Sprintf("Order %s has shipped", order.ID),
		HTMLBody: body.String(),
	}, nil
}
