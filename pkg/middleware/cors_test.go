package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsHandler(cfg CORSConfig) http.Handler {
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func doCORS(h http.Handler, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCORS_DevelopmentWildcard(t *testing.T) {
	h := corsHandler(CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"})

	rr := doCORS(h, http.MethodGet, "https://evil.example")
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rr.Code)

	// Wildcard applies even without an Origin header.
	rr = doCORS(h, http.MethodGet, "")
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProductionOriginList(t *testing.T) {
	h := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://antiquepox.com", "https://admin.antiquepox.com"},
		Environment:    "production",
	})

	for _, origin := range []string{"https://antiquepox.com", "https://admin.antiquepox.com"} {
		rr := doCORS(h, http.MethodGet, origin)
		assert.Equal(t, origin, rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rr.Header().Get("Vary"))
	}
}

func TestCORS_ProductionRejectsUnknownOrigin(t *testing.T) {
	h := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://antiquepox.com"},
		Environment:    "production",
	})

	rr := doCORS(h, http.MethodGet, "https://evil.example")
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	// The request itself still runs; CORS is enforced by the browser.
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doCORS(h, http.MethodGet, "")
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ExplicitWildcardInProduction(t *testing.T) {
	h := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://antiquepox.com", "*"},
		Environment:    "production",
	})

	rr := doCORS(h, http.MethodGet, "https://anything.example")
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("should not reach"))
		}))

	rr := doCORS(h, http.MethodOptions, "https://antiquepox.com")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestCORS_HeaderConfiguration(t *testing.T) {
	h := corsHandler(CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"Accept", "Authorization", "X-Custom"},
		ExposedHeaders: []string{"X-Correlation-ID", "X-User-ID"},
		MaxAge:         7200,
		Environment:    "development",
	})

	rr := doCORS(h, http.MethodGet, "")
	assert.Equal(t, "Accept, Authorization, X-Custom", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Correlation-ID, X-User-ID", rr.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "7200", rr.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_AllowCredentials(t *testing.T) {
	h := corsHandler(CORSConfig{
		AllowedOrigins:   []string{"https://antiquepox.com"},
		AllowCredentials: true,
		Environment:      "production",
	})

	rr := doCORS(h, http.MethodGet, "https://antiquepox.com")
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_DefaultMethods(t *testing.T) {
	h := corsHandler(CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"})

	rr := doCORS(h, http.MethodGet, "")
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.AllowedMethods, "GET")
	assert.Contains(t, cfg.AllowedMethods, "POST")
	assert.Equal(t, 3600, cfg.MaxAge)
	assert.Equal(t, "development", cfg.Environment)
}
