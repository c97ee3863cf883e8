package ports

import (
	"context"

	"github.com/leynos/wildside-sub003/internal/domain"
	id "github.com/leynos/wildside-sub003/pkg/domain"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Upsert(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, userID id.UserID) (*domain.User, bool, error)
}

// UserOnboarding validates a display name and produces the resulting event.
// It is synchronous and CPU-only so socket handlers can call it inline.
type UserOnboarding interface {
	Register(traceID, displayName string) domain.UserEvent
}

// UserPersistenceErrorKind enumerates UserRepository failures.
type UserPersistenceErrorKind int

const (
	UserPersistenceConnection UserPersistenceErrorKind = iota + 1
	UserPersistenceQuery
)

// UserPersistenceError is returned by UserRepository adapters.
type UserPersistenceError struct {
	Kind    UserPersistenceErrorKind
	Message string
	Err     error
}

func (e *UserPersistenceError) Error() string {
	if e.Kind == UserPersistenceConnection {
		return "user repository connection failed: " + e.Message
	}
	return "user repository query failed: " + e.Message
}

func (e *UserPersistenceError) Unwrap() error { return e.Err }

func NewUserPersistenceConnectionError(err error) *UserPersistenceError {
	return &UserPersistenceError{Kind: UserPersistenceConnection, Message: errMessage(err), Err: err}
}

func NewUserPersistenceQueryError(err error) *UserPersistenceError {
	return &UserPersistenceError{Kind: UserPersistenceQuery, Message: errMessage(err), Err: err}
}
