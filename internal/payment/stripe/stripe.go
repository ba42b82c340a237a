package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/castrogabe/antiquepox/internal/payment"
	apperrors "github.com/castrogabe/antiquepox/pkg/errors"
	"github.com/castrogabe/antiquepox/pkg/httpclient"
)

const providerName = "stripe"

// Client drives the Stripe PaymentIntent flow: the server creates an intent
// for the order total, the frontend confirms the card, and the server
// verifies the intent before marking the order paid.
type Client struct {
	http      *httpclient.CircuitBreakerClient
	apiBase   string
	secretKey string
	logger    *slog.Logger
}

// NewClient creates a Stripe API client.
func NewClient(httpClient *httpclient.CircuitBreakerClient, apiBase, secretKey string, logger *slog.Logger) *Client {
	return &Client{
		http:      httpClient,
		apiBase:   strings.TrimRight(apiBase, "/"),
		secretKey: secretKey,
		logger:    logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

// intentResponse is the subset of the Stripe PaymentIntent resource we use.
type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Created      int64  `json:"created"`
	ReceiptEmail string `json:"receipt_email"`
	LastError    *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// CreateIntent registers a PaymentIntent for the given amount and returns
// its client secret.
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string) (*payment.Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")

	resp, err := c.do(ctx, http.MethodPost, "/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	intent, err := c.decodeIntent(resp)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "stripe payment intent created",
		slog.String("intent_id", intent.ID),
		slog.Int64("amount", amount),
	)

	return &payment.Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// VerifyPayment looks up the PaymentIntent and checks that it succeeded for
// the expected amount.
func (c *Client) VerifyPayment(ctx context.Context, input *payment.VerifyInput) (*payment.VerifyResult, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/payment_intents/"+input.ProviderPaymentID, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	intent, err := c.decodeIntent(resp)
	if err != nil {
		return nil, err
	}

	if intent.Status != "succeeded" {
		msg := fmt.Sprintf("stripe payment intent status is %s", intent.Status)
		if intent.LastError != nil && intent.LastError.Message != "" {
			msg = intent.LastError.Message
		}
		return nil, apperrors.PaymentFailed(msg)
	}

	if intent.Amount != input.Amount {
		return nil, apperrors.PaymentFailed(fmt.Sprintf("stripe charged %d cents, expected %d", intent.Amount, input.Amount))
	}

	return &payment.VerifyResult{
		ProviderID:   intent.ID,
		Status:       intent.Status,
		UpdateTime:   time.Unix(intent.Created, 0).UTC().Format(time.RFC3339),
		EmailAddress: intent.ReceiptEmail,
	}, nil
}

// do sends an authenticated form-encoded request to the Stripe API.
func (c *Client) do(ctx context.Context, method, path string, body *strings.Reader) (*http.Response, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.apiBase+path, http.NoBody)
	}
	if err != nil {
		return nil, fmt.Errorf("create stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.ProviderUnavailable(providerName, err)
	}

	return resp, nil
}

// decodeIntent parses a PaymentIntent response, mapping Stripe's error
// shapes onto the application taxonomy.
func (c *Client) decodeIntent(resp *http.Response) (*intentResponse, error) {
	if resp.StatusCode >= 400 {
		return nil, httpclient.ParseProviderError(resp, providerName)
	}

	var intent intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, apperrors.ProviderUnavailable(providerName, fmt.Errorf("decode intent response: %w", err))
	}

	return &intent, nil
}
