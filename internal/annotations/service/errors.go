package service

import (
	"errors"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
)

func mapAnnotationError(err error) error {
	var repoErr *ports.RouteAnnotationRepositoryError
	if !errors.As(err, &repoErr) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "annotation repository error")
	}
	switch repoErr.Kind {
	case ports.RouteAnnotationConnection:
		return dErrors.Wrap(err, dErrors.CodeServiceUnavailable, "annotation repository unavailable: "+repoErr.Message)
	case ports.RouteAnnotationRevisionMismatch:
		expected := repoErr.Expected
		return revisionConflict(&expected, repoErr.Actual)
	case ports.RouteAnnotationRouteNotFound:
		return dErrors.New(dErrors.CodeNotFound, "route not found").WithDetails(map[string]any{
			"routeId": repoErr.RouteID.String(),
			"code":    "route_not_found",
		})
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "annotation repository error: "+repoErr.Message)
	}
}

// revisionConflict reports the revision the caller sent (nil when creating)
// against the one stored.
func revisionConflict(expected *uint32, actual uint32) error {
	var sent any
	if expected != nil {
		sent = *expected
	}
	return dErrors.New(dErrors.CodeConflict, "revision mismatch").WithDetails(map[string]any{
		"expectedRevision": sent,
		"actualRevision":   actual,
		"code":             "revision_mismatch",
	})
}

func mapIdempotencyError(err error) error {
	var idemErr *ports.IdempotencyRepositoryError
	if !errors.As(err, &idemErr) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "idempotency repository error")
	}
	switch idemErr.Kind {
	case ports.IdempotencyConnection:
		return dErrors.Wrap(err, dErrors.CodeServiceUnavailable, "idempotency repository unavailable: "+idemErr.Message)
	case ports.IdempotencySerialization:
		return dErrors.Wrap(err, dErrors.CodeInternal, "idempotency repository serialization failed: "+idemErr.Message)
	case ports.IdempotencyDuplicateKey:
		return dErrors.Wrap(err, dErrors.CodeInternal, "unexpected idempotency key conflict: "+idemErr.Message)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "idempotency repository error: "+idemErr.Message)
	}
}
