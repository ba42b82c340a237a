package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/castrogabe/antiquepox/pkg/errors"

	"github.com/castrogabe/antiquepox/internal/domain"
	"github.com/castrogabe/antiquepox/internal/event"
	"github.com/castrogabe/antiquepox/internal/notify"
	"github.com/castrogabe/antiquepox/internal/payment"
	"github.com/castrogabe/antiquepox/internal/repository"
)

// orderCurrency is the currency every order is charged in.
const orderCurrency = "USD"

// OrderService implements the business logic for order creation, payment and
// fulfilment.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	cartRepo    repository.CartRepository
	providers   map[string]payment.Provider
	pricing     domain.PricingPolicy
	producer    *event.Producer
	mailer      notify.Mailer
	logger      *slog.Logger
}

// NewOrderService creates a new order service. providers maps payment method
// names to their adapters.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	providers map[string]payment.Provider,
	pricing domain.PricingPolicy,
	producer *event.Producer,
	mailer notify.Mailer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		cartRepo:    cartRepo,
		providers:   providers,
		pricing:     pricing,
		producer:    producer,
		mailer:      mailer,
		logger:      logger,
	}
}

// OrderItemInput identifies a product and quantity to order. Everything else
// about the line item is snapshotted server-side.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

// ShipOrderInput holds the fulfilment details recorded when an order ships.
type ShipOrderInput struct {
	CarrierName    string
	TrackingNumber string
	DeliveryDays   int
}

// CreateOrder places an order. Prices, names and images are snapshotted from
// the catalog, never taken from the client. Stock is reserved per item with a
// conditional decrement; if a later item cannot be reserved or the order
// insert fails, the earlier reservations are released so no stock is lost.
// The user's cart is cleared on success.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, input *CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	if !domain.IsValidPaymentMethod(input.PaymentMethod) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported payment method %q", input.PaymentMethod))
	}
	if input.ShippingAddress.FullName == "" || input.ShippingAddress.Address == "" ||
		input.ShippingAddress.City == "" || input.ShippingAddress.PostalCode == "" ||
		input.ShippingAddress.Country == "" {
		return nil, apperrors.InvalidInput("shipping address is incomplete")
	}
	for _, in := range input.Items {
		if in.Quantity < 1 {
			return nil, apperrors.InvalidInput("item quantity must be at least 1")
		}
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		product, err := s.productRepo.GetByID(ctx, in.ProductID)
		if err != nil {
			s.releaseStock(ctx, items)
			return nil, fmt.Errorf("get product for order: %w", err)
		}

		if err := s.productRepo.DecrementStock(ctx, product.ID, in.Quantity); err != nil {
			s.releaseStock(ctx, items)
			if errors.Is(err, apperrors.ErrOutOfStock) {
				return nil, apperrors.OutOfStock(product.Name, in.Quantity)
			}
			return nil, fmt.Errorf("reserve stock: %w", err)
		}

		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Slug:      product.Slug,
			Image:     product.Image,
			Price:     product.Price,
			Quantity:  in.Quantity,
		})
	}

	breakdown := s.pricing.Price(items)

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		ItemsPrice:      breakdown.ItemsPrice,
		TaxPrice:        breakdown.TaxPrice,
		ShippingPrice:   breakdown.ShippingPrice,
		TotalPrice:      breakdown.TotalPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.releaseStock(ctx, items)
		return nil, fmt.Errorf("create order: %w", err)
	}

	// Clear the cart (best effort).
	if err := s.cartRepo.Delete(ctx, userID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.ErrorContext(ctx, "failed to clear cart after order",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	// Publish order created event (non-blocking on failure).
	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.sendOrderEmail(ctx, order, notify.OrderReceiptEmail)

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int64("total_price", order.TotalPrice),
	)

	return order, nil
}

// releaseStock returns previously reserved units to the catalog after a
// checkout that failed partway through. Failures are logged and left for
// manual reconciliation.
func (s *OrderService) releaseStock(ctx context.Context, items []domain.OrderItem) {
	for _, item := range items {
		if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.ErrorContext(ctx, "failed to release reserved stock",
				slog.String("product_id", item.ProductID),
				slog.Int("quantity", item.Quantity),
				slog.String("error", err.Error()),
			)
		}
	}
}

// GetOrder retrieves an order. Non-admin callers can only see their own.
func (s *OrderService) GetOrder(ctx context.Context, callerID string, isAdmin bool, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if !isAdmin && order.UserID != callerID {
		return nil, apperrors.Forbidden("order belongs to another user")
	}

	return order, nil
}

// ListMyOrders returns the caller's orders with the total count.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error) {
	orders, total, err := s.orderRepo.ListByUser(ctx, userID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// ListOrders returns all orders with the total count.
func (s *OrderService) ListOrders(ctx context.Context, page, perPage int) ([]domain.Order, int, error) {
	orders, total, err := s.orderRepo.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list all orders: %w", err)
	}
	return orders, total, nil
}

// ConfirmPayment verifies a client-reported payment with the order's provider
// and marks the order paid. Confirming an already-paid order is a no-op that
// returns the order unchanged.
func (s *OrderService) ConfirmPayment(ctx context.Context, callerID string, isAdmin bool, orderID, providerPaymentID string) (*domain.Order, error) {
	if providerPaymentID == "" {
		return nil, apperrors.InvalidInput("provider payment id is required")
	}

	order, err := s.GetOrder(ctx, callerID, isAdmin, orderID)
	if err != nil {
		return nil, err
	}

	provider, ok := s.providers[order.PaymentMethod]
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("no payment provider configured for %q", order.PaymentMethod))
	}

	result, err := provider.VerifyPayment(ctx, &payment.VerifyInput{
		ProviderPaymentID: providerPaymentID,
		Amount:            order.TotalPrice,
		Currency:          orderCurrency,
	})
	if err != nil {
		return nil, err
	}

	paidAt := time.Now().UTC()
	paymentResult := &domain.PaymentResult{
		ProviderID:   result.ProviderID,
		Status:       result.Status,
		UpdateTime:   result.UpdateTime,
		EmailAddress: result.EmailAddress,
	}

	updated, err := s.orderRepo.MarkPaid(ctx, order.ID, paidAt, paymentResult)
	if err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	if !updated {
		s.logger.InfoContext(ctx, "duplicate payment confirmation ignored",
			slog.String("order_id", order.ID),
		)
		return s.orderRepo.GetByID(ctx, order.ID)
	}

	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = paymentResult

	// Publish order paid event (non-blocking on failure).
	if err := s.producer.PublishOrderPaid(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.paid event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.sendOrderEmail(ctx, order, notify.OrderPaidEmail)

	s.logger.InfoContext(ctx, "order paid",
		slog.String("order_id", order.ID),
		slog.String("provider", provider.Name()),
		slog.String("provider_id", result.ProviderID),
	)

	return order, nil
}

// CreateStripeIntent registers a payment intent with Stripe for the order
// total and returns it for client-side confirmation.
func (s *OrderService) CreateStripeIntent(ctx context.Context, callerID string, isAdmin bool, orderID string) (*payment.Intent, error) {
	order, err := s.GetOrder(ctx, callerID, isAdmin, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, apperrors.Conflict("order is already paid")
	}

	provider, ok := s.providers[domain.PaymentMethodStripe]
	if !ok {
		return nil, apperrors.InvalidInput("stripe is not configured")
	}
	creator, ok := provider.(payment.IntentCreator)
	if !ok {
		return nil, apperrors.InvalidInput("stripe is not configured")
	}

	intent, err := creator.CreateIntent(ctx, order.TotalPrice, orderCurrency)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "payment intent created",
		slog.String("order_id", order.ID),
		slog.String("intent_id", intent.ID),
	)

	return intent, nil
}

// ShipOrder records the carrier details and marks a paid order as shipped.
func (s *OrderService) ShipOrder(ctx context.Context, orderID string, input *ShipOrderInput) (*domain.Order, error) {
	if input.CarrierName == "" {
		return nil, apperrors.InvalidInput("carrier name is required")
	}
	if input.TrackingNumber == "" {
		return nil, apperrors.InvalidInput("tracking number is required")
	}
	if input.DeliveryDays < 0 {
		return nil, apperrors.InvalidInput("delivery days must not be negative")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for shipping: %w", err)
	}

	if !order.IsPaid {
		return nil, apperrors.Conflict("order is not paid")
	}
	if order.IsShipped {
		return nil, apperrors.Conflict("order is already shipped")
	}

	shippedAt := time.Now().UTC()
	if err := s.orderRepo.MarkShipped(ctx, orderID, shippedAt, input.CarrierName, input.TrackingNumber, input.DeliveryDays); err != nil {
		return nil, fmt.Errorf("mark order shipped: %w", err)
	}

	order.IsShipped = true
	order.ShippedAt = &shippedAt
	order.CarrierName = input.CarrierName
	order.TrackingNumber = input.TrackingNumber
	order.DeliveryDays = input.DeliveryDays

	// Publish order shipped event (non-blocking on failure).
	if err := s.producer.PublishOrderShipped(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.shipped event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.sendOrderEmail(ctx, order, notify.OrderShippedEmail)

	s.logger.InfoContext(ctx, "order shipped",
		slog.String("order_id", order.ID),
		slog.String("carrier", input.CarrierName),
	)

	return order, nil
}

// DeliverOrder marks a shipped order as delivered.
func (s *OrderService) DeliverOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for delivery: %w", err)
	}

	if !order.IsShipped {
		return nil, apperrors.Conflict("order is not shipped")
	}
	if order.IsDelivered {
		return nil, apperrors.Conflict("order is already delivered")
	}

	deliveredAt := time.Now().UTC()
	if err := s.orderRepo.MarkDelivered(ctx, orderID, deliveredAt); err != nil {
		return nil, fmt.Errorf("mark order delivered: %w", err)
	}

	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt

	s.logger.InfoContext(ctx, "order delivered",
		slog.String("order_id", order.ID),
	)

	return order, nil
}

// DeleteOrder removes an unpaid order. Paid orders are part of the financial
// record and are refused; the repository enforces the guard in the delete
// itself so a payment confirmation cannot race past it.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	s.logger.InfoContext(ctx, "order deleted",
		slog.String("order_id", orderID),
	)

	return nil
}

// sendOrderEmail renders and sends an order lifecycle email to the order's
// owner. Failures are logged, never returned.
func (s *OrderService) sendOrderEmail(ctx context.Context, order *domain.Order, render func(to, name string, order *domain.Order) (*notify.Email, error)) {
	user, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load user for order email",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	msg, err := render(user.Email, user.Name, order)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to render order email",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to send order email",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}
