// Package auth resolves the calling user. Sessions are terminated in front of
// this service; the edge forwards the authenticated user id in UserHeader.
package auth

import (
	"net/http"

	"github.com/rs/zerolog"

	id "github.com/leynos/wildside-sub003/pkg/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/platform/httputil"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

// UserHeader carries the authenticated user id.
const UserHeader = "X-User-ID"

// Identify stores the caller's user id in the request context. Requests
// without the header pass through anonymous; handlers that need a user reject
// them. A header that is not a user id is rejected here.
func Identify(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(UserHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := id.ParseUserID(raw)
			if err != nil || userID.IsNil() {
				logger.Warn().
					Str("request_id", requestcontext.RequestID(r.Context())).
					Msg("unauthorized access - malformed user id")
				httputil.WriteError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid user id"))
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(r.Context(), userID)))
		})
	}
}
