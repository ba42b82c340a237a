package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/castrogabe/antiquepox/internal/domain"
	"github.com/castrogabe/antiquepox/pkg/database"
	apperrors "github.com/castrogabe/antiquepox/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `o.id, o.user_id, o.shipping_address, o.payment_method,
		o.items_price, o.tax_price, o.shipping_price, o.total_price,
		o.is_paid, o.paid_at, o.payment_result,
		o.is_shipped, o.shipped_at, COALESCE(o.carrier_name, ''), COALESCE(o.tracking_number, ''), COALESCE(o.delivery_days, 0),
		o.is_delivered, o.delivered_at, o.created_at, o.updated_at`

// Create inserts a new order and its items atomically within a transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	shippingJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	orderQuery := `
		INSERT INTO orders (id, user_id, shipping_address, payment_method, items_price, tax_price, shipping_price, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		shippingJSON,
		o.PaymentMethod,
		o.ItemsPrice,
		o.TaxPrice,
		o.ShippingPrice,
		o.TotalPrice,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, slug, image, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			uuid.New().String(),
			o.ID,
			item.ProductID,
			item.Name,
			item.Slug,
			item.Image,
			item.Price,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID, eagerly loading its items with a
// single LEFT JOIN + JSONB_AGG query.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	orderQuery := `
		SELECT ` + orderColumns + `,
			COALESCE(
				JSONB_AGG(
					JSONB_BUILD_OBJECT(
						'product_id', oi.product_id,
						'name', oi.name,
						'slug', oi.slug,
						'image', oi.image,
						'price', oi.price,
						'quantity', oi.quantity
					) ORDER BY oi.id
				) FILTER (WHERE oi.id IS NOT NULL),
				'[]'::jsonb
			) AS items
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		WHERE o.id = $1
		GROUP BY o.id`

	var (
		o            domain.Order
		shippingJSON []byte
		resultJSON   []byte
		itemsJSON    []byte
	)

	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&o.ID,
		&o.UserID,
		&shippingJSON,
		&o.PaymentMethod,
		&o.ItemsPrice,
		&o.TaxPrice,
		&o.ShippingPrice,
		&o.TotalPrice,
		&o.IsPaid,
		&o.PaidAt,
		&resultJSON,
		&o.IsShipped,
		&o.ShippedAt,
		&o.CarrierName,
		&o.TrackingNumber,
		&o.DeliveryDays,
		&o.IsDelivered,
		&o.DeliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
		&itemsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := unmarshalOrderJSON(&o, shippingJSON, resultJSON, itemsJSON); err != nil {
		return nil, err
	}

	return &o, nil
}

// ListByUser returns a user's orders with the total count, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error) {
	return r.list(ctx, "WHERE user_id = $1", []any{userID}, page, perPage)
}

// List returns all orders with the total count, newest first.
func (r *OrderRepository) List(ctx context.Context, page, perPage int) ([]domain.Order, int, error) {
	return r.list(ctx, "", nil, page, perPage)
}

func (r *OrderRepository) list(ctx context.Context, whereClause string, args []any, page, perPage int) ([]domain.Order, int, error) {
	argIndex := len(args) + 1

	// Use count(*) OVER() for total count in a single query. Items are
	// batch-loaded afterwards to avoid N+1.
	query := fmt.Sprintf(`
		SELECT id, user_id, shipping_address, payment_method,
			items_price, tax_price, shipping_price, total_price,
			is_paid, paid_at, payment_result,
			is_shipped, shipped_at, COALESCE(carrier_name, ''), COALESCE(tracking_number, ''), COALESCE(delivery_days, 0),
			is_delivered, delivered_at, created_at, updated_at,
			count(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit, offset := limitOffset(page, perPage)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		var (
			o            domain.Order
			shippingJSON []byte
			resultJSON   []byte
		)

		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&shippingJSON,
			&o.PaymentMethod,
			&o.ItemsPrice,
			&o.TaxPrice,
			&o.ShippingPrice,
			&o.TotalPrice,
			&o.IsPaid,
			&o.PaidAt,
			&resultJSON,
			&o.IsShipped,
			&o.ShippedAt,
			&o.CarrierName,
			&o.TrackingNumber,
			&o.DeliveryDays,
			&o.IsDelivered,
			&o.DeliveredAt,
			&o.CreatedAt,
			&o.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}

		if err := unmarshalOrderJSON(&o, shippingJSON, resultJSON, nil); err != nil {
			return nil, 0, err
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	// Batch-load items for all orders in a single query.
	if len(orders) > 0 {
		orderIDs := make([]string, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].ID
		}

		itemsQuery := `
			SELECT order_id, product_id, name, slug, image, price, quantity
			FROM order_items
			WHERE order_id = ANY($1)
			ORDER BY id`

		itemRows, err := r.pool.Query(ctx, itemsQuery, orderIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("batch load order items: %w", err)
		}
		defer itemRows.Close()

		itemsByOrderID := make(map[string][]domain.OrderItem, len(orders))
		for itemRows.Next() {
			var (
				orderID string
				item    domain.OrderItem
			)
			if err := itemRows.Scan(
				&orderID,
				&item.ProductID,
				&item.Name,
				&item.Slug,
				&item.Image,
				&item.Price,
				&item.Quantity,
			); err != nil {
				return nil, 0, fmt.Errorf("scan order item: %w", err)
			}
			itemsByOrderID[orderID] = append(itemsByOrderID[orderID], item)
		}
		if err := itemRows.Err(); err != nil {
			return nil, 0, fmt.Errorf("iterate batch order item rows: %w", err)
		}

		for i := range orders {
			if items, ok := itemsByOrderID[orders[i].ID]; ok {
				orders[i].Items = items
			} else {
				orders[i].Items = []domain.OrderItem{}
			}
		}
	}

	return orders, totalCount, nil
}

// MarkPaid conditionally flips the order to paid and records the provider
// result. The is_paid guard makes duplicate confirmations match zero rows,
// so webhook redeliveries are a no-op. Returns whether the update applied.
func (r *OrderRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time, result *domain.PaymentResult) (bool, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return false, fmt.Errorf("marshal payment result: %w", err)
	}

	query := `
		UPDATE orders
		SET is_paid = TRUE, paid_at = $2, payment_result = $3, updated_at = $2
		WHERE id = $1 AND is_paid = FALSE`

	ct, err := r.pool.Exec(ctx, query, id, paidAt, resultJSON)
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// MarkShipped records the shipping details and flips the shipped flag.
func (r *OrderRepository) MarkShipped(ctx context.Context, id string, shippedAt time.Time, carrierName, trackingNumber string, deliveryDays int) error {
	query := `
		UPDATE orders
		SET is_shipped = TRUE, shipped_at = $2, carrier_name = $3, tracking_number = $4, delivery_days = $5, updated_at = $2
		WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id, shippedAt, carrierName, trackingNumber, deliveryDays)
	if err != nil {
		return fmt.Errorf("mark order shipped: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// MarkDelivered flips the delivered flag.
func (r *OrderRepository) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) error {
	query := `
		UPDATE orders
		SET is_delivered = TRUE, delivered_at = $2, updated_at = $2
		WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id, deliveredAt)
	if err != nil {
		return fmt.Errorf("mark order delivered: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// Delete removes an unpaid order. Items go with it via ON DELETE CASCADE.
// The is_paid guard keeps a concurrent payment confirmation from racing the
// delete; zero rows then means either a paid order or a missing one, and a
// follow-up lookup tells the two apart.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM orders WHERE id = $1 AND is_paid = FALSE`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if ct.RowsAffected() == 0 {
		var exists bool
		checkQuery := `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`
		if err := r.pool.QueryRow(ctx, checkQuery, id).Scan(&exists); err != nil {
			return fmt.Errorf("check order after delete: %w", err)
		}
		if exists {
			return apperrors.Conflict("cannot delete a paid order")
		}
		return apperrors.NotFound("order", id)
	}

	return nil
}

// unmarshalOrderJSON decodes the JSONB columns of an order row. A nil
// itemsJSON leaves Items untouched (the caller batch-loads them).
func unmarshalOrderJSON(o *domain.Order, shippingJSON, resultJSON, itemsJSON []byte) error {
	if len(shippingJSON) > 0 && string(shippingJSON) != "null" {
		if err := json.Unmarshal(shippingJSON, &o.ShippingAddress); err != nil {
			return fmt.Errorf("unmarshal shipping address: %w", err)
		}
	}

	if len(resultJSON) > 0 && string(resultJSON) != "null" {
		var result domain.PaymentResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return fmt.Errorf("unmarshal payment result: %w", err)
		}
		o.PaymentResult = &result
	}

	if itemsJSON != nil {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return fmt.Errorf("unmarshal order items: %w", err)
		}
		if o.Items == nil {
			o.Items = []domain.OrderItem{}
		}
	}

	return nil
}
