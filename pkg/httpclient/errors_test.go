package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/castrogabe/antiquepox/pkg/errors"
)

func providerResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseProviderError_NotFound(t *testing.T) {
	resp := providerResponse(http.StatusNotFound, `{"name":"RESOURCE_NOT_FOUND","message":"order does not exist"}`)
	err := ParseProviderError(resp, "paypal")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPaymentFailed))
	assert.Contains(t, err.Error(), "paypal payment not found")
}

func TestParseProviderError_StripeCardDeclined(t *testing.T) {
	body := `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`
	resp := providerResponse(http.StatusPaymentRequired, body)
	err := ParseProviderError(resp, "stripe")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPaymentFailed))
	assert.Contains(t, err.Error(), "Your card was declined.")
}

func TestParseProviderError_PayPalFlatShape(t *testing.T) {
	body := `{"name":"UNPROCESSABLE_ENTITY","message":"The requested action could not be performed."}`
	resp := providerResponse(http.StatusUnprocessableEntity, body)
	err := ParseProviderError(resp, "paypal")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPaymentFailed))
	assert.Contains(t, err.Error(), "UNPROCESSABLE_ENTITY")
	assert.Contains(t, err.Error(), "could not be performed")
}

func TestParseProviderError_BadCredentials(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		resp := providerResponse(status, `{"error":"invalid_client"}`)
		err := ParseProviderError(resp, "paypal")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail), "status %d should map to provider unavailable", status)
		assert.False(t, errors.Is(err, apperrors.ErrPaymentFailed))
	}
}

func TestParseProviderError_RateLimited(t *testing.T) {
	resp := providerResponse(http.StatusTooManyRequests, "")
	err := ParseProviderError(resp, "stripe")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
}

func TestParseProviderError_ServerError(t *testing.T) {
	resp := providerResponse(http.StatusInternalServerError, `{"error":{"type":"api_error","message":"something went wrong"}}`)
	err := ParseProviderError(resp, "stripe")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
	assert.Contains(t, err.Error(), "status 500")
}

func TestParseProviderError_BadGateway(t *testing.T) {
	resp := providerResponse(http.StatusBadGateway, "upstream timed out")
	err := ParseProviderError(resp, "paypal")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
	assert.Contains(t, err.Error(), "upstream timed out")
}

func TestParseProviderError_UnstructuredClientError(t *testing.T) {
	resp := providerResponse(http.StatusBadRequest, "<html>Bad Request</html>")
	err := ParseProviderError(resp, "stripe")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPaymentFailed))
	assert.Contains(t, err.Error(), "status 400")
}

func TestParseProviderError_EmptyBody(t *testing.T) {
	resp := providerResponse(http.StatusBadRequest, "")
	err := ParseProviderError(resp, "paypal")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPaymentFailed))
}

func TestParseProviderError_TruncatesLongBody(t *testing.T) {
	long := strings.Repeat("x", 2048)
	resp := providerResponse(http.StatusInternalServerError, long)
	err := ParseProviderError(resp, "stripe")
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 600)
	assert.Contains(t, err.Error(), "...")
}

func TestProviderMessage_Shapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"stripe envelope", `{"error":{"message":"No such payment_intent"}}`, "No such payment_intent"},
		{"paypal flat", `{"name":"INVALID_REQUEST","message":"bad field"}`, "INVALID_REQUEST: bad field"},
		{"message only", `{"message":"plain"}`, "plain"},
		{"not json", `oops`, ""},
		{"empty object", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, providerMessage([]byte(tt.raw)))
		})
	}
}

func TestIsClientError(t *testing.T) {
	assert.False(t, IsClientError(399))
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(422))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(500))
	assert.False(t, IsClientError(200))
}
