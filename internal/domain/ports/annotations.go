package ports

import (
	"context"
	"fmt"

	"github.com/leynos/wildside-sub003/internal/domain"
	id "github.com/leynos/wildside-sub003/pkg/domain"
)

// RouteAnnotationRepository stores notes and progress. Saves take the revision
// the caller last observed; nil means the record must not exist yet.
type RouteAnnotationRepository interface {
	FindNoteByID(ctx context.Context, noteID id.NoteID) (*domain.RouteNote, error)
	FindNotesByRouteAndUser(ctx context.Context, routeID id.RouteID, userID id.UserID) ([]domain.RouteNote, error)
	SaveNote(ctx context.Context, note domain.RouteNote, expectedRevision *uint32) error
	DeleteNote(ctx context.Context, noteID id.NoteID) (bool, error)
	FindProgress(ctx context.Context, routeID id.RouteID, userID id.UserID) (*domain.RouteProgress, error)
	SaveProgress(ctx context.Context, progress domain.RouteProgress, expectedRevision *uint32) error
}

// RouteAnnotationErrorKind enumerates RouteAnnotationRepository failures.
type RouteAnnotationErrorKind int

const (
	RouteAnnotationConnection RouteAnnotationErrorKind = iota + 1
	RouteAnnotationQuery
	RouteAnnotationRevisionMismatch
	RouteAnnotationRouteNotFound
)

// RouteAnnotationRepositoryError is returned by annotation adapters.
type RouteAnnotationRepositoryError struct {
	Kind     RouteAnnotationErrorKind
	Message  string
	Expected uint32
	Actual   uint32
	RouteID  id.RouteID
	Err      error
}

func (e *RouteAnnotationRepositoryError) Error() string {
	switch e.Kind {
	case RouteAnnotationConnection:
		return "annotation repository connection failed: " + e.Message
	case RouteAnnotationRevisionMismatch:
		return fmt.Sprintf("revision mismatch: expected %d, found %d", e.Expected, e.Actual)
	case RouteAnnotationRouteNotFound:
		return "route not found: " + e.RouteID.String()
	default:
		return "annotation repository query failed: " + e.Message
	}
}

func (e *RouteAnnotationRepositoryError) Unwrap() error { return e.Err }

func NewRouteAnnotationConnectionError(err error) *RouteAnnotationRepositoryError {
	return &RouteAnnotationRepositoryError{Kind: RouteAnnotationConnection, Message: errMessage(err), Err: err}
}

func NewRouteAnnotationQueryError(err error) *RouteAnnotationRepositoryError {
	return &RouteAnnotationRepositoryError{Kind: RouteAnnotationQuery, Message: errMessage(err), Err: err}
}

func NewRevisionMismatchError(expected, actual uint32) *RouteAnnotationRepositoryError {
	return &RouteAnnotationRepositoryError{Kind: RouteAnnotationRevisionMismatch, Expected: expected, Actual: actual}
}

func NewRouteNotFoundError(routeID id.RouteID) *RouteAnnotationRepositoryError {
	return &RouteAnnotationRepositoryError{Kind: RouteAnnotationRouteNotFound, RouteID: routeID}
}
