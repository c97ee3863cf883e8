// Package requestcontext carries per-request values past the HTTP layer, so
// services and workers can read the caller, trace and clock without net/http.
//
// Tests pin the clock with WithTime.
package requestcontext

import (
	"context"
	"time"

	id "github.com/leynos/wildside-sub003/pkg/domain"
)

type key int

const (
	userKey key = iota
	requestKey
	traceKey
	clockKey
)

func lookup[T any](ctx context.Context, k key) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

// UserID is the caller identified by the request, or the nil id.
func UserID(ctx context.Context) id.UserID {
	userID, _ := lookup[id.UserID](ctx, userKey)
	return userID
}

func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// RequestID is the server-assigned request id, empty outside a request.
func RequestID(ctx context.Context) string {
	requestID, _ := lookup[string](ctx, requestKey)
	return requestID
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestKey, requestID)
}

// TraceID is the correlation id echoed in responses and logs. A request
// without a caller-supplied trace is correlated by its request id.
func TraceID(ctx context.Context) string {
	if traceID, ok := lookup[string](ctx, traceKey); ok && traceID != "" {
		return traceID
	}
	return RequestID(ctx)
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey, traceID)
}

// Now is the request's clock. Work started outside a request reads the wall
// clock.
func Now(ctx context.Context) time.Time {
	if t, ok := lookup[time.Time](ctx, clockKey); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, clockKey, t)
}
