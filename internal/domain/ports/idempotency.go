package ports

import (
	"context"
	"time"

	"github.com/leynos/wildside-sub003/internal/domain"
)

// IdempotencyRepository records which mutation a key was first used for.
// Store fails with DuplicateKey when another request stored the key first.
type IdempotencyRepository interface {
	Find(ctx context.Context, query domain.IdempotencyLookupQuery) (domain.IdempotencyLookupResult, error)
	Store(ctx context.Context, record domain.IdempotencyRecord) error
	PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// IdempotencyErrorKind enumerates IdempotencyRepository failures.
type IdempotencyErrorKind int

const (
	IdempotencyConnection IdempotencyErrorKind = iota + 1
	IdempotencyQuery
	IdempotencySerialization
	IdempotencyDuplicateKey
)

// IdempotencyRepositoryError is returned by idempotency adapters.
type IdempotencyRepositoryError struct {
	Kind    IdempotencyErrorKind
	Message string
	Err     error
}

func (e *IdempotencyRepositoryError) Error() string {
	switch e.Kind {
	case IdempotencyConnection:
		return "idempotency repository connection failed: " + e.Message
	case IdempotencySerialization:
		return "idempotency record serialisation failed: " + e.Message
	case IdempotencyDuplicateKey:
		return "duplicate idempotency key: " + e.Message
	default:
		return "idempotency repository query failed: " + e.Message
	}
}

func (e *IdempotencyRepositoryError) Unwrap() error { return e.Err }

func NewIdempotencyConnectionError(err error) *IdempotencyRepositoryError {
	return &IdempotencyRepositoryError{Kind: IdempotencyConnection, Message: errMessage(err), Err: err}
}

func NewIdempotencyQueryError(err error) *IdempotencyRepositoryError {
	return &IdempotencyRepositoryError{Kind: IdempotencyQuery, Message: errMessage(err), Err: err}
}

func NewIdempotencySerializationError(err error) *IdempotencyRepositoryError {
	return &IdempotencyRepositoryError{Kind: IdempotencySerialization, Message: errMessage(err), Err: err}
}

func NewDuplicateIdempotencyKeyError(key domain.IdempotencyKey) *IdempotencyRepositoryError {
	return &IdempotencyRepositoryError{Kind: IdempotencyDuplicateKey, Message: key.String()}
}
