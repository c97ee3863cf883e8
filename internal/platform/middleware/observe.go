// Package middleware holds HTTP middleware that depends on process-level
// collaborators: the logger, the metrics registry and the tracer.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/mssola/useragent"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/leynos/wildside-sub003/internal/platform/metrics"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

const tracerName = "github.com/leynos/wildside-sub003/internal/platform/middleware"

// unmatchedRoute labels requests no route matched, so unknown paths cannot
// grow the metric label set.
const unmatchedRoute = "unmatched"

// Observe logs, times and traces each request. It must run after the
// correlation middleware so log lines carry the request and trace ids.
func Observe(logger zerolog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
			defer span.End()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			elapsed := time.Since(start)

			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.status_code", status),
			)
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			m.ObserveRequest(route, r.Method, strconv.Itoa(status), elapsed.Seconds())

			event := logger.Info()
			if status >= http.StatusInternalServerError {
				event = logger.Error()
			}
			if ua := r.UserAgent(); ua != "" {
				event = withClient(event, ua)
			}
			event.
				Str("request_id", requestcontext.RequestID(ctx)).
				Str("trace_id", requestcontext.TraceID(ctx)).
				Str("method", r.Method).
				Str("route", route).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", elapsed).
				Msg("http request")
		})
	}
}

// routePattern reads the matched chi pattern. The route context is filled in
// while the request is routed, so it is only complete after next returns.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

// withClient tags the log line with the parsed browser.
func withClient(event *zerolog.Event, raw string) *zerolog.Event {
	ua := useragent.New(raw)
	name, version := ua.Browser()
	return event.
		Str("client", name).
		Str("client_version", version).
		Str("client_os", ua.OS()).
		Bool("bot", ua.Bot())
}
