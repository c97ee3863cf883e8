// Package idempotency reads the client idempotency key from HTTP requests.
package idempotency

import (
	"errors"
	"net/http"
	"strings"

	"github.com/leynos/wildside-sub003/internal/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
)

// Header carries the optional client idempotency key.
const Header = "Idempotency-Key"

// KeyFromHeader returns nil when the header is absent. A present header must
// hold a UUID.
func KeyFromHeader(header http.Header) (*domain.IdempotencyKey, error) {
	values, present := header[http.CanonicalHeaderKey(Header)]
	if !present {
		return nil, nil
	}
	raw := ""
	if len(values) > 0 {
		raw = strings.TrimSpace(values[0])
	}
	key, err := domain.ParseIdempotencyKey(raw)
	switch {
	case errors.Is(err, domain.ErrEmptyIdempotencyKey):
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "Idempotency-Key header must not be empty")
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidRequest, "Idempotency-Key header must be a valid UUID")
	}
	return &key, nil
}
