package enrichment

import (
	"errors"
	"fmt"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
)

type attemptKind int

const (
	attemptRetryableSource attemptKind = iota + 1
	attemptSourceRejected
	attemptQuotaDenied
	attemptCircuitOpen
	attemptStateUnavailable
	attemptAbandoned
)

// QuotaDenyReason says which budget refused an attempt.
type QuotaDenyReason int

const (
	CallBudgetExhausted QuotaDenyReason = iota + 1
	TransferBudgetExhausted
	InFlightCeiling
)

func (r QuotaDenyReason) String() string {
	switch r {
	case CallBudgetExhausted:
		return "call budget exhausted"
	case TransferBudgetExhausted:
		return "transfer budget exhausted"
	case InFlightCeiling:
		return "in-flight ceiling reached"
	default:
		return "unknown quota reason"
	}
}

// attemptError is the outcome of one failed attempt. Only
// attemptRetryableSource is retried.
type attemptError struct {
	kind   attemptKind
	reason QuotaDenyReason
	msg    string
	err    error
}

func retryableSource(err error) *attemptError {
	return &attemptError{kind: attemptRetryableSource, err: err}
}

func sourceRejected(err error) *attemptError {
	return &attemptError{kind: attemptSourceRejected, err: err}
}

func quotaDenied(reason QuotaDenyReason) *attemptError {
	return &attemptError{kind: attemptQuotaDenied, reason: reason}
}

func circuitOpen() *attemptError {
	return &attemptError{kind: attemptCircuitOpen}
}

func stateUnavailable(msg string) *attemptError {
	return &attemptError{kind: attemptStateUnavailable, msg: msg}
}

func abandoned(err error) *attemptError {
	return &attemptError{kind: attemptAbandoned, err: err}
}

func (e *attemptError) Error() string {
	switch e.kind {
	case attemptRetryableSource:
		return fmt.Sprintf("retryable source failure: %v", e.err)
	case attemptSourceRejected:
		return fmt.Sprintf("source rejected request: %v", e.err)
	case attemptQuotaDenied:
		return "quota denied: " + e.reason.String()
	case attemptCircuitOpen:
		return "circuit open"
	case attemptStateUnavailable:
		return "policy state unavailable: " + e.msg
	default:
		return fmt.Sprintf("attempt abandoned: %v", e.err)
	}
}

func (e *attemptError) Unwrap() error { return e.err }

// label is the metrics outcome for the attempt.
func (e *attemptError) label() string {
	switch e.kind {
	case attemptRetryableSource:
		return "retryable_source"
	case attemptSourceRejected:
		return "source_rejected"
	case attemptQuotaDenied:
		return "quota_denied"
	case attemptCircuitOpen:
		return "circuit_open"
	case attemptStateUnavailable:
		return "state_unavailable"
	default:
		return "abandoned"
	}
}

// classifySourceError sorts a Fetch failure. Errors outside the port taxonomy
// are treated as transport trouble.
func classifySourceError(err error) *attemptError {
	var se *ports.OverpassEnrichmentSourceError
	if errors.As(err, &se) && !se.Retryable() {
		return sourceRejected(err)
	}
	return retryableSource(err)
}
