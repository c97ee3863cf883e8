// Package metadata copies correlation identifiers from the transport into the
// request context.
package metadata

import (
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

// TraceHeader carries a caller-supplied correlation id. It is echoed on every
// response so clients can match error payloads to their own logs.
const TraceHeader = "X-Trace-Id"

const maxTraceIDLength = 128

// Correlation stores the chi request id and the trace id in the context.
// It must run after chi's RequestID middleware.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := chimw.GetReqID(ctx)
		ctx = requestcontext.WithRequestID(ctx, requestID)

		traceID := sanitizeTraceID(r.Header.Get(TraceHeader))
		if traceID == "" {
			traceID = requestID
		}
		ctx = requestcontext.WithTraceID(ctx, traceID)
		if traceID != "" {
			w.Header().Set(TraceHeader, traceID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sanitizeTraceID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxTraceIDLength {
		return ""
	}
	for _, r := range raw {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return raw
}
