package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "origen/pkg/domain"
	dErrors "origen/pkg/domain-errors"
	"origen/pkg/platform/httputil"
	"origen/pkg/requestcontext"
)

// TokenClaims is what the middleware needs from a validated token.
type TokenClaims struct {
	ApplicantID string
	TenantID    string
}

// TokenValidator validates bearer tokens issued for onboarding sessions.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// applicant and tenant IDs in the request context for downstream handlers.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized request",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
				return
			}

			applicantID, err := id.ParseApplicantID(claims.ApplicantID)
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims"))
				return
			}
			ctx = requestcontext.WithApplicantID(ctx, applicantID)

			if claims.TenantID != "" {
				tenantID, err := id.ParseTenantID(claims.TenantID)
				if err != nil {
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims"))
					return
				}
				ctx = requestcontext.WithTenantID(ctx, tenantID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
