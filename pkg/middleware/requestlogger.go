package middleware

import (
	"log/slog"
	"net/http"

	"github.com/castrogabe/antiquepox/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, pre-tagged
// with correlation_id, user_id, trace_id and span_id so handlers never log
// a line that cannot be tied back to its request. Handlers fetch it with
// logger.FromContext.
//
// Mount after RequestLogging and Tracing; both populate the context values
// this middleware reads.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Auth middleware sets the user in context for protected routes.
			// The X-User-ID header covers internal tooling that calls the
			// API directly.
			userID := UserIDFromContext(ctx)
			if userID == "" {
				userID = r.Header.Get("X-User-ID")
			}
			if userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
