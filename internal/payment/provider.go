package payment

import (
	"context"
)

// VerifyInput holds the parameters for verifying a completed payment with
// the provider.
type VerifyInput struct {
	// ProviderPaymentID is the provider-side order or intent identifier
	// reported by the client after approval.
	ProviderPaymentID string

	// Amount is the expected charge in cents. Verification fails when the
	// provider reports a different captured amount.
	Amount int64

	Currency string
}

// VerifyResult is the provider's view of a completed payment, recorded on
// the order as its payment result.
type VerifyResult struct {
	ProviderID   string
	Status       string
	UpdateTime   string
	EmailAddress string
}

// Intent is a provider-side payment intent created ahead of client-side
// confirmation.
type Intent struct {
	ID           string
	ClientSecret string
}

// Provider defines the interface for payment provider integrations.
// Implementations return PaymentFailed for declines (the order stays unpaid)
// and ProviderUnavailable for outages (retryable, the order is unchanged).
type Provider interface {
	// Name returns the provider name (e.g. "paypal", "stripe").
	Name() string

	// VerifyPayment checks with the provider that the given payment is
	// completed for the expected amount.
	VerifyPayment(ctx context.Context, input *VerifyInput) (*VerifyResult, error)
}

// IntentCreator is implemented by providers whose flow starts with a
// server-created payment intent (client-side card confirmation).
type IntentCreator interface {
	// CreateIntent registers a pending charge with the provider and returns
	// the client secret the frontend needs to confirm it.
	CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error)
}
