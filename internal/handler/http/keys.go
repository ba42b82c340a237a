package http

import (
	"net/http"

	"github.com/castrogabe/antiquepox/pkg/httputil"
)

// KeysHandler exposes the public client identifiers the frontend needs to
// start a payment flow. Secrets never leave the server.
type KeysHandler struct {
	paypalClientID       string
	stripePublishableKey string
}

// NewKeysHandler creates a new keys handler.
func NewKeysHandler(paypalClientID, stripePublishableKey string) *KeysHandler {
	return &KeysHandler{
		paypalClientID:       paypalClientID,
		stripePublishableKey: stripePublishableKey,
	}
}

// PayPalKey handles GET /api/keys/paypal
func (h *KeysHandler) PayPalKey(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"client_id": h.paypalClientID,
	}})
}

// StripeKey handles GET /api/keys/stripe
func (h *KeysHandler) StripeKey(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"publishable_key": h.stripePublishableKey,
	}})
}
