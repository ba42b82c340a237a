package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/castrogabe/antiquepox/pkg/errors"
)

// providerErrorBody covers the error shapes the payment providers return.
// Stripe wraps errors in an "error" object; PayPal reports a flat
// name/message pair.
type providerErrorBody struct {
	Error *struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ParseProviderError turns a non-2xx provider response into an application
// error. Statuses that indicate a problem with the payment itself map to a
// payment failure the shopper can act on; credential and server problems
// surface as the provider being unavailable. The body is consumed and
// closed either way.
func ParseProviderError(resp *http.Response, provider string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.ProviderUnavailable(provider, fmt.Errorf("status %d, unreadable body: %w", resp.StatusCode, err))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.PaymentFailed(provider + " payment not found")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Misconfigured API keys. The shopper cannot fix this.
		return apperrors.ProviderUnavailable(provider, fmt.Errorf("credentials rejected, status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.ProviderUnavailable(provider, fmt.Errorf("rate limited"))
	case IsClientError(resp.StatusCode):
		msg := providerMessage(raw)
		if msg == "" {
			msg = fmt.Sprintf("%s rejected the payment, status %d", provider, resp.StatusCode)
		}
		return apperrors.PaymentFailed(msg)
	default:
		return apperrors.ProviderUnavailable(provider, fmt.Errorf("status %d: %s", resp.StatusCode, snippet(raw)))
	}
}

// providerMessage extracts a human-readable message from a provider error
// body, trying the Stripe envelope first and PayPal's flat shape second.
func providerMessage(raw []byte) string {
	var body providerErrorBody
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	if body.Error != nil && body.Error.Message != "" {
		return body.Error.Message
	}
	if body.Name != "" && body.Message != "" {
		return body.Name + ": " + body.Message
	}
	return body.Message
}

// snippet bounds how much of an unstructured body ends up in logs.
func snippet(raw []byte) string {
	const max = 256
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}

// IsClientError reports whether status is a 4xx. Client errors mean the
// request itself was bad and a retry with the same input cannot succeed.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
