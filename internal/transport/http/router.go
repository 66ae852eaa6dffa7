// Package httptransport assembles the HTTP surface: middleware chain, public
// auth endpoints, the authenticated catalog routes, and the admin-only audit
// query routes.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	audithandler "folio/internal/audit/handler"
	"folio/internal/auth"
	authhandler "folio/internal/auth/handler"
	bookhandler "folio/internal/book/handler"
	"folio/internal/platform/metrics"
	"folio/pkg/platform/httputil"
	"folio/pkg/platform/middleware"
	"folio/pkg/platform/middleware/metadata"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Tokens   *auth.TokenManager
	Auth     *authhandler.Handler
	Books    *bookhandler.Handler
	Audits   *audithandler.Handler
}

// NewRouter wires all endpoints behind the shared middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestTime)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// Login and seed are reachable without a token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		deps.Auth.Register(r)
	})

	// Catalog routes: any authenticated role.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(deps.Tokens, deps.Logger))
		deps.Books.Register(r)
	})

	// Audit queries are admin-only.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(deps.Tokens, deps.Logger))
		r.Use(middleware.RequireRole(string(auth.RoleAdmin), deps.Logger))
		deps.Audits.Register(r)
	})

	return r
}
