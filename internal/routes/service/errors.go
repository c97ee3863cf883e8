package service

import (
	"errors"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
)

func mapIdempotencyError(err error) error {
	var idemErr *ports.IdempotencyRepositoryError
	if !errors.As(err, &idemErr) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "idempotency repository error")
	}
	switch idemErr.Kind {
	case ports.IdempotencyConnection:
		return dErrors.Wrap(err, dErrors.CodeServiceUnavailable, "idempotency repository unavailable: "+idemErr.Message)
	case ports.IdempotencySerialization:
		return dErrors.Wrap(err, dErrors.CodeInternal, "response serialisation failed: "+idemErr.Message)
	case ports.IdempotencyDuplicateKey:
		return dErrors.Wrap(err, dErrors.CodeInternal, "unexpected idempotency key conflict: "+idemErr.Message)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "idempotency repository error: "+idemErr.Message)
	}
}

func mapQueueError(err error) error {
	var dispatchErr *ports.JobDispatchError
	if errors.As(err, &dispatchErr) && dispatchErr.Kind == ports.JobDispatchRejected {
		return dErrors.Wrap(err, dErrors.CodeInternal, "route job was rejected")
	}
	return dErrors.Wrap(err, dErrors.CodeServiceUnavailable, "route queue unavailable")
}

func mapPersistenceError(err error) error {
	var persistErr *ports.RoutePersistenceError
	if errors.As(err, &persistErr) && persistErr.Kind == ports.RoutePersistenceConnection {
		return dErrors.Wrap(err, dErrors.CodeServiceUnavailable, "route repository unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load route plan")
}
