package ports

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Plan is the constraint for route plans moved through the route ports. The
// ports never inspect a plan beyond its request id.
type Plan interface {
	RequestID() uuid.UUID
}

// RouteCache stores computed plans by key. Concurrent puts to one key resolve
// to one of the written values; there is no atomicity across keys.
type RouteCache[P any] interface {
	Get(ctx context.Context, key RouteCacheKey) (P, bool, error)
	Put(ctx context.Context, key RouteCacheKey, plan P) error
}

// RouteQueue hands plans to background workers. Delivery is at least once and
// the port does not deduplicate.
type RouteQueue[P any] interface {
	Enqueue(ctx context.Context, plan P) error
}

// RouteRepository persists plans. A second Save for the same request id fails
// with a Conflict error.
type RouteRepository[P Plan] interface {
	Save(ctx context.Context, plan P) error
	FindByRequestID(ctx context.Context, requestID uuid.UUID) (P, bool, error)
}

// RouteMetrics records cache effectiveness. Callers treat failures as best effort.
type RouteMetrics interface {
	RecordCacheHit(ctx context.Context) error
	RecordCacheMiss(ctx context.Context) error
}

// RouteCacheErrorKind enumerates RouteCache failures.
type RouteCacheErrorKind int

const (
	RouteCacheBackend RouteCacheErrorKind = iota + 1
	RouteCacheSerialization
)

// RouteCacheError is returned by RouteCache adapters.
type RouteCacheError struct {
	Kind    RouteCacheErrorKind
	Message string
	Err     error
}

func (e *RouteCacheError) Error() string {
	switch e.Kind {
	case RouteCacheSerialization:
		return "route cache serialisation failed: " + e.Message
	default:
		return "route cache backend failure: " + e.Message
	}
}

func (e *RouteCacheError) Unwrap() error { return e.Err }

func NewRouteCacheBackendError(err error) *RouteCacheError {
	return &RouteCacheError{Kind: RouteCacheBackend, Message: errMessage(err), Err: err}
}

func NewRouteCacheSerializationError(err error) *RouteCacheError {
	return &RouteCacheError{Kind: RouteCacheSerialization, Message: errMessage(err), Err: err}
}

// JobDispatchErrorKind enumerates RouteQueue failures.
type JobDispatchErrorKind int

const (
	JobDispatchUnavailable JobDispatchErrorKind = iota + 1
	JobDispatchRejected
)

// JobDispatchError is returned by RouteQueue adapters.
type JobDispatchError struct {
	Kind    JobDispatchErrorKind
	Message string
	Err     error
}

func (e *JobDispatchError) Error() string {
	switch e.Kind {
	case JobDispatchRejected:
		return "route job was rejected: " + e.Message
	default:
		return "route queue is unavailable: " + e.Message
	}
}

func (e *JobDispatchError) Unwrap() error { return e.Err }

func NewJobDispatchUnavailableError(err error) *JobDispatchError {
	return &JobDispatchError{Kind: JobDispatchUnavailable, Message: errMessage(err), Err: err}
}

func NewJobDispatchRejectedError(err error) *JobDispatchError {
	return &JobDispatchError{Kind: JobDispatchRejected, Message: errMessage(err), Err: err}
}

// RoutePersistenceErrorKind enumerates RouteRepository failures.
type RoutePersistenceErrorKind int

const (
	RoutePersistenceConnection RoutePersistenceErrorKind = iota + 1
	RoutePersistenceConflict
	RoutePersistenceWrite
)

// RoutePersistenceError is returned by RouteRepository adapters. RequestID is
// set for conflicts.
type RoutePersistenceError struct {
	Kind      RoutePersistenceErrorKind
	Message   string
	RequestID uuid.UUID
	Err       error
}

func (e *RoutePersistenceError) Error() string {
	switch e.Kind {
	case RoutePersistenceConnection:
		return "route persistence connection failed: " + e.Message
	case RoutePersistenceConflict:
		return fmt.Sprintf("route conflict detected for request %s", e.RequestID)
	default:
		return "route persistence failed: " + e.Message
	}
}

func (e *RoutePersistenceError) Unwrap() error { return e.Err }

func NewRoutePersistenceConnectionError(err error) *RoutePersistenceError {
	return &RoutePersistenceError{Kind: RoutePersistenceConnection, Message: errMessage(err), Err: err}
}

func NewRouteConflictError(requestID uuid.UUID) *RoutePersistenceError {
	return &RoutePersistenceError{Kind: RoutePersistenceConflict, RequestID: requestID}
}

func NewRoutePersistenceWriteError(err error) *RoutePersistenceError {
	return &RoutePersistenceError{Kind: RoutePersistenceWrite, Message: errMessage(err), Err: err}
}

// RouteMetricsError is returned by RouteMetrics adapters.
type RouteMetricsError struct {
	Message string
	Err     error
}

func (e *RouteMetricsError) Error() string { return "route metrics exporter failed: " + e.Message }

func (e *RouteMetricsError) Unwrap() error { return e.Err }

func NewRouteMetricsExportError(err error) *RouteMetricsError {
	return &RouteMetricsError{Message: errMessage(err), Err: err}
}

func errMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
