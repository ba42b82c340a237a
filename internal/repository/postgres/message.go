package postgres

import (
	"context"
	"fmt"

	"github.com/castrogabe/antiquepox/internal/domain"
	"github.com/castrogabe/antiquepox/pkg/database"
)

// MessageRepository implements repository.MessageRepository using PostgreSQL.
type MessageRepository struct {
	pool database.DBTX
}

// NewMessageRepository creates a new PostgreSQL-backed message repository.
func NewMessageRepository(pool database.DBTX) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create inserts a new contact message into the database.
func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (id, full_name, email, subject, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		m.ID,
		m.FullName,
		m.Email,
		m.Subject,
		m.Body,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// List returns contact messages with the total count, newest first.
func (r *MessageRepository) List(ctx context.Context, page, perPage int) ([]domain.Message, int, error) {
	query := `
		SELECT id, full_name, email, subject, body, created_at,
			   count(*) OVER() AS total_count
		FROM messages
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	limit, offset := limitOffset(page, perPage)

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var totalCount int
	messages := make([]domain.Message, 0)

	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID,
			&m.FullName,
			&m.Email,
			&m.Subject,
			&m.Body,
			&m.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate message rows: %w", err)
	}

	return messages, totalCount, nil
}
