package middleware

import (
	"log/slog"
	"net/http"

	"github.com/freshdrop/rewards/pkg/logger"
)

// RequestLogger derives a request-scoped logger carrying correlation_id,
// user_id, trace_id, and span_id, and stores it in the request context.
// Handlers read it back with logger.FromContext.
//
// Mount after RequestLogging and Tracing so the correlation ID and span
// context are already populated. The user ID is taken from the X-User-ID
// header, which the gateway sets after authenticating the caller.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := r.Header.Get("X-User-ID"); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
