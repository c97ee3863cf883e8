// Package httptransport assembles the HTTP surface: shared middleware, health
// and metrics endpoints, and the module handlers.
package httptransport

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/leynos/wildside-sub003/internal/platform/config"
	"github.com/leynos/wildside-sub003/internal/platform/idempotency"
	"github.com/leynos/wildside-sub003/internal/platform/metrics"
	"github.com/leynos/wildside-sub003/internal/platform/middleware"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/platform/httputil"
	"github.com/leynos/wildside-sub003/pkg/platform/middleware/auth"
	"github.com/leynos/wildside-sub003/pkg/platform/middleware/metadata"
	"github.com/leynos/wildside-sub003/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// Module mounts its endpoints on the router.
type Module interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Deps is everything NewRouter needs.
type Deps struct {
	Server  config.ServerConfig
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	Health  map[string]HealthCheck
	Modules []Module
}

// NewRouter wires middleware in order: correlation ids, panic recovery,
// request time, logging and metrics, CORS, rate limiting, then caller
// identity.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(metadata.Correlation)
	r.Use(chimw.Recoverer)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Observe(d.Logger, d.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", auth.UserHeader, idempotency.Header, metadata.TraceHeader},
		ExposedHeaders: []string{metadata.TraceHeader},
		MaxAge:         300,
	}))
	if d.Server.RateLimitRequests > 0 {
		r.Use(httprate.LimitByIP(d.Server.RateLimitRequests, d.Server.RateLimitWindow))
	}
	r.Use(auth.Identify(d.Logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeNotFound, "resource not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{
			Code:    dErrors.CodeInvalidRequest,
			Message: "method not allowed",
		})
	})

	r.Get("/healthz", healthHandler(d.Health))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	for _, m := range d.Modules {
		m.Register(r)
	}
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler runs every check concurrently and reports 503 if any fails.
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	slices.Sort(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		results := make([]string, len(names))
		var g errgroup.Group
		for i, name := range names {
			g.Go(func() error {
				if err := checks[name](ctx); err != nil {
					results[i] = "unavailable"
					return err
				}
				results[i] = "ok"
				return nil
			})
		}
		failed := g.Wait() != nil

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		for i, name := range names {
			resp.Checks[name] = results[i]
		}
		status := http.StatusOK
		if failed {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}
