package mock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/castrogabe/antiquepox/internal/payment"
)

// Provider is a mock payment provider that always succeeds.
// It is intended for development and testing purposes.
type Provider struct {
	ProviderName string
}

// NewProvider creates a new mock payment provider.
func NewProvider(name string) *Provider {
	return &Provider{ProviderName: name}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	if p.ProviderName == "" {
		return "mock"
	}
	return p.ProviderName
}

// VerifyPayment reports every payment as completed for the expected amount.
func (p *Provider) VerifyPayment(_ context.Context, input *payment.VerifyInput) (*payment.VerifyResult, error) {
	return &payment.VerifyResult{
		ProviderID:   input.ProviderPaymentID,
		Status:       "COMPLETED",
		UpdateTime:   time.Now().UTC().Format(time.RFC3339),
		EmailAddress: "buyer@example.com",
	}, nil
}

// CreateIntent returns a fresh fake intent.
func (p *Provider) CreateIntent(_ context.Context, _ int64, _ string) (*payment.Intent, error) {
	id := "mock_pi_" + uuid.New().String()
	return &payment.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
	}, nil
}
