package mock

import (
	"context"
	"log/slog"
	"sync"

	"github.com/castrogabe/antiquepox/internal/notify"
)

// Mailer is a mailer implementation that records emails and always succeeds.
type Mailer struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []*notify.Email
}

// NewMailer creates a new mock mailer.
func NewMailer(logger *slog.Logger) *Mailer {
	return &Mailer{logger: logger}
}

// Name returns the name of this mailer.
func (m *Mailer) Name() string {
	return "mock"
}

// Send records the email and logs it.
func (m *Mailer) Send(ctx context.Context, email *notify.Email) error {
	m.mu.Lock()
	m.sent = append(m.sent, email)
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "mock mailer: email sent",
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
	)

	return nil
}

// Sent returns a copy of every email recorded so far.
func (m *Mailer) Sent() []*notify.Email {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*notify.Email, len(m.sent))
	copy(out, m.sent)
	return out
}
