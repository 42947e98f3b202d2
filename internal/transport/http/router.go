// Package httptransport assembles the public HTTP surface: middleware chain,
// KYC endpoints, health, and Prometheus metrics.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	kychandler "origen/internal/kyc/handler"
	"origen/pkg/platform/httputil"
	authmw "origen/pkg/platform/middleware/auth"
	"origen/pkg/platform/middleware/requestid"
	"origen/pkg/platform/middleware/requesttime"
)

// NewRouter wires the middleware chain and mounts all endpoints. Health and
// metrics stay outside the authenticated group; everything under /kyc
// requires a valid bearer token.
func NewRouter(kyc *kychandler.Handler, validator authmw.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(validator, logger))
		kyc.Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
