package paypal

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/castrogabe/antiquepox/internal/payment"
	apperrors "github.com/castrogabe/antiquepox/pkg/errors"
	"github.com/castrogabe/antiquepox/pkg/httpclient"
)

const providerName = "paypal"

// Client verifies PayPal orders through the REST API. All outbound calls go
// through a circuit-breaker HTTP client, so a provider outage trips fast
// instead of piling up timeouts.
type Client struct {
	http     *httpclient.CircuitBreakerClient
	apiBase  string
	clientID string
	secret   string
	logger   *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a PayPal API client.
func NewClient(httpClient *httpclient.CircuitBreakerClient, apiBase, clientID, secret string, logger *slog.Logger) *Client {
	return &Client{
		http:     httpClient,
		apiBase:  strings.TrimRight(apiBase, "/"),
		clientID: clientID,
		secret:   secret,
		logger:   logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

// tokenResponse is the OAuth client-credentials response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// orderResponse is the subset of the PayPal order resource we care about.
type orderResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Amount struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"amount"`
	} `json:"purchase_units"`
}

// VerifyPayment looks up the PayPal order and checks that it is completed
// for the expected amount.
func (c *Client) VerifyPayment(ctx context.Context, input *payment.VerifyInput) (*payment.VerifyResult, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	url := c.apiBase + "/v2/checkout/orders/" + input.ProviderPaymentID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create order lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.ProviderUnavailable(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseProviderError(resp, providerName)
	}

	var order orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, apperrors.ProviderUnavailable(providerName, fmt.Errorf("decode order response: %w", err))
	}

	if order.Status != "COMPLETED" {
		return nil, apperrors.PaymentFailed(fmt.Sprintf("paypal order status is %s", order.Status))
	}

	if err := c.checkAmount(&order, input.Amount); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "paypal order verified",
		slog.String("provider_order_id", order.ID),
	)

	return &payment.VerifyResult{
		ProviderID:   order.ID,
		Status:       order.Status,
		UpdateTime:   order.UpdateTime,
		EmailAddress: order.Payer.EmailAddress,
	}, nil
}

// checkAmount compares the captured amount against the expected total in
// cents. PayPal reports decimal strings ("115.00").
func (c *Client) checkAmount(order *orderResponse, expected int64) error {
	if len(order.PurchaseUnits) == 0 {
		return apperrors.PaymentFailed("paypal order has no purchase units")
	}

	value := order.PurchaseUnits[0].Amount.Value
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return apperrors.PaymentFailed("paypal order amount is unreadable: " + value)
	}

	captured := int64(f*100 + 0.5)
	if captured != expected {
		return apperrors.PaymentFailed(fmt.Sprintf("paypal captured %d cents, expected %d", captured, expected))
	}

	return nil
}

// getAccessToken returns a cached OAuth token, refreshing it via the
// client-credentials grant when expired.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	url := c.apiBase + "/v1/oauth2/token"
	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	creds := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.secret))
	req.Header.Set("Authorization", "Basic "+creds)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", apperrors.ProviderUnavailable(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.ProviderUnavailable(providerName, fmt.Errorf("token status %d", resp.StatusCode))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", apperrors.ProviderUnavailable(providerName, fmt.Errorf("decode token response: %w", err))
	}

	c.accessToken = tr.AccessToken
	// Refresh one minute before the provider-reported expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - time.Minute)

	return c.accessToken, nil
}
