package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/castrogabe/antiquepox/internal/domain"
	pkgkafka "github.com/castrogabe/antiquepox/pkg/kafka"
)

// Kafka topics for storefront domain events.
var (
	TopicUserRegistered = pkgkafka.Topic("user", "registered")
	TopicOrderCreated   = pkgkafka.Topic("order", "created")
	TopicOrderPaid      = pkgkafka.Topic("order", "paid")
	TopicOrderShipped   = pkgkafka.Topic("order", "shipped")
)

// Aggregate type constants.
const (
	AggregateTypeUser  = "user"
	AggregateTypeOrder = "order"
)

// Source identifier for events originating from the storefront.
const SourceStorefront = "antiquepox"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	TotalPrice int64  `json:"total_price"`
	ItemCount  int    `json:"item_count"`
}

// OrderPaidData is the payload for an order.paid event.
type OrderPaidData struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	TotalPrice int64  `json:"total_price"`
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
}

// OrderShippedData is the payload for an order.shipped event.
type OrderShippedData struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	CarrierName    string `json:"carrier_name"`
	TrackingNumber string `json:"tracking_number"`
	DeliveryDays   int    `json:"delivery_days"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
	)

	return nil
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		ID:         order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		ItemCount:  order.TotalQuantity(),
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
	)

	return nil
}

// PublishOrderPaid publishes an order.paid event.
func (p *Producer) PublishOrderPaid(ctx context.Context, order *domain.Order) error {
	data := OrderPaidData{
		ID:         order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Provider:   order.PaymentMethod,
	}
	if order.PaymentResult != nil {
		data.ProviderID = order.PaymentResult.ProviderID
	}

	event, err := pkgkafka.NewEvent(TopicOrderPaid, order.ID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.paid event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderPaid, event); err != nil {
		return fmt.Errorf("publish order.paid event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.paid event",
		slog.String("order_id", order.ID),
	)

	return nil
}

// PublishOrderShipped publishes an order.shipped event.
func (p *Producer) PublishOrderShipped(ctx context.Context, order *domain.Order) error {
	data := OrderShippedData{
		ID:             order.ID,
		UserID:         order.UserID,
		CarrierName:    order.CarrierName,
		TrackingNumber: order.TrackingNumber,
		DeliveryDays:   order.DeliveryDays,
	}

	event, err := pkgkafka.NewEvent(TopicOrderShipped, order.ID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.shipped event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderShipped, event); err != nil {
		return fmt.Errorf("publish order.shipped event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.shipped event",
		slog.String("order_id", order.ID),
	)

	return nil
}
