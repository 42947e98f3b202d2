// Package requestid assigns a correlation ID to every request so logs and
// audit events from one onboarding call can be stitched together.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"origen/pkg/requestcontext"
)

// Header is the response header carrying the correlation ID back to clients.
const Header = "X-Request-Id"

// Middleware reuses an inbound X-Request-Id when present, otherwise mints one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
