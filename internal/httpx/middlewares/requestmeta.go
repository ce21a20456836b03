package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/pcastano/order-intake/internal/pkg/telemetry"
)

// AttachRequestMetadata copies the chi request ID into the context slot the
// telemetry log handler reads, so every log line within a request carries
// request_id.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		ctx := telemetry.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
