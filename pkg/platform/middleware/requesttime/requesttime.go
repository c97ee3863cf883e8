// Package requesttime provides middleware for request-scoped time.
// All operations within a single HTTP request share one "now", so timestamps on
// notes, progress and idempotency records written by the same request agree.
package requesttime

import (
	"net/http"
	"time"

	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and stores
// it in the context.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock is Middleware with an injectable clock.
func WithClock(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
