package testutil

import (
	"net/http"

	id "github.com/leynos/wildside-sub003/pkg/domain"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

// UserHeader names the header the HTTP layer reads the caller's user id from.
const UserHeader = "X-User-ID"

// WithUserID marks the request as coming from userID, both in the header the
// router reads and in the context handlers read. Invalid ids are set on the
// header only, so handlers can be tested against malformed input.
func WithUserID(req *http.Request, userID string) *http.Request {
	req.Header.Set(UserHeader, userID)
	if parsed, err := id.ParseUserID(userID); err == nil {
		return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
	}
	return req
}

// WithTraceID adds a trace id to the request context.
func WithTraceID(req *http.Request, traceID string) *http.Request {
	return req.WithContext(requestcontext.WithTraceID(req.Context(), traceID))
}
