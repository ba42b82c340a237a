package postgres

import (
	"context"
	"fmt"

	"github.com/castrogabe/antiquepox/internal/domain"
	"github.com/castrogabe/antiquepox/pkg/database"
)

// ReportRepository implements repository.ReportRepository using PostgreSQL.
type ReportRepository struct {
	pool database.DBTX
}

// NewReportRepository creates a new PostgreSQL-backed report repository.
func NewReportRepository(pool database.DBTX) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Summary produces the admin dashboard aggregation. COALESCE keeps every
// figure defined on an empty store.
func (r *ReportRepository) Summary(ctx context.Context) (*domain.Summary, error) {
	s := &domain.Summary{
		DailyOrders:       []domain.DailyOrders{},
		ProductCategories: []domain.CategoryCount{},
	}

	countsQuery := `
		SELECT
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM orders),
			(SELECT COALESCE(SUM(total_price), 0) FROM orders),
			(SELECT count(*) FROM messages)`

	if err := r.pool.QueryRow(ctx, countsQuery).Scan(
		&s.NumUsers,
		&s.NumOrders,
		&s.TotalSales,
		&s.NumMessages,
	); err != nil {
		return nil, fmt.Errorf("scan summary counts: %w", err)
	}

	dailyQuery := `
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day, count(*), COALESCE(SUM(total_price), 0)
		FROM orders
		GROUP BY day
		ORDER BY day`

	rows, err := r.pool.Query(ctx, dailyQuery)
	if err != nil {
		return nil, fmt.Errorf("query daily orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.DailyOrders
		if err := rows.Scan(&d.Date, &d.Orders, &d.Sales); err != nil {
			return nil, fmt.Errorf("scan daily orders row: %w", err)
		}
		s.DailyOrders = append(s.DailyOrders, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily orders rows: %w", err)
	}

	categoryQuery := `
		SELECT category, count(*)
		FROM products
		GROUP BY category
		ORDER BY category`

	catRows, err := r.pool.Query(ctx, categoryQuery)
	if err != nil {
		return nil, fmt.Errorf("query product categories: %w", err)
	}
	defer catRows.Close()

	for catRows.Next() {
		var c domain.CategoryCount
		if err := catRows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count row: %w", err)
		}
		s.ProductCategories = append(s.ProductCategories, c)
	}
	if err := catRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category count rows: %w", err)
	}

	return s, nil
}
