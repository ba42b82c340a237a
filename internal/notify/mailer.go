package notify

import (
	"context"
)

// Email is a rendered message ready for delivery.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer defines the interface for sending transactional email.
type Mailer interface {
	Name() string
	Send(ctx context.Context, email *Email) error
}
