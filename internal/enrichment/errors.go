package enrichment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorKind classifies why a job could not be enriched.
type ErrorKind int

const (
	KindSourceUnavailable ErrorKind = iota + 1
	KindSourceRejected
	KindQuotaExhausted
	KindCircuitOpen
	KindStateUnavailable
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindSourceUnavailable:
		return "source_unavailable"
	case KindSourceRejected:
		return "source_rejected"
	case KindQuotaExhausted:
		return "quota_exhausted"
	case KindCircuitOpen:
		return "circuit_open"
	case KindStateUnavailable:
		return "state_unavailable"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// EnrichmentError is returned by Worker.Process. Retryable tells the caller
// whether redelivering the job later may succeed.
type EnrichmentError struct {
	Kind      ErrorKind
	RequestID uuid.UUID
	Retryable bool
	Err       error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrichment %s for request %s: %v", e.Kind, e.RequestID, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is an EnrichmentError worth retrying.
func IsRetryable(err error) bool {
	var ee *EnrichmentError
	if errors.As(err, &ee) {
		return ee.Retryable
	}
	return false
}

// fromAttempt converts the final attempt failure into the public error.
func fromAttempt(requestID uuid.UUID, ae *attemptError) *EnrichmentError {
	e := &EnrichmentError{RequestID: requestID, Err: ae}
	switch ae.kind {
	case attemptRetryableSource:
		e.Kind, e.Retryable = KindSourceUnavailable, true
	case attemptSourceRejected:
		e.Kind = KindSourceRejected
	case attemptQuotaDenied:
		e.Kind, e.Retryable = KindQuotaExhausted, true
	case attemptCircuitOpen:
		e.Kind, e.Retryable = KindCircuitOpen, true
	default:
		e.Kind = KindStateUnavailable
	}
	return e
}
