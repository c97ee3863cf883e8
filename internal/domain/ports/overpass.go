package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	id "github.com/leynos/wildside-sub003/pkg/domain"
)

// OverpassQuery asks the enrichment source for features inside a bounding box.
// Tags use "key" or "key=value" selector syntax; an empty list matches any tag.
type OverpassQuery struct {
	JobID uuid.UUID
	BBox  orb.Bound
	Tags  []string
}

// EnrichedPOI is one feature returned by the source.
type EnrichedPOI struct {
	Element  id.ElementID
	Location orb.Point
	Tags     osm.Tags
}

// EnrichmentResult is a successful fetch. TransferBytes counts the response
// body and is charged against the transfer quota. SourceURL names the
// endpoint that answered.
type EnrichmentResult struct {
	POIs          []EnrichedPOI
	TransferBytes uint64
	SourceURL     string
}

// OverpassEnrichmentSource fetches features from the external query service.
// Implementations own request timeouts and report them as Timeout errors.
type OverpassEnrichmentSource interface {
	Fetch(ctx context.Context, query OverpassQuery) (EnrichmentResult, error)
}

// OverpassSourceErrorKind enumerates OverpassEnrichmentSource failures.
type OverpassSourceErrorKind int

const (
	OverpassTransport OverpassSourceErrorKind = iota + 1
	OverpassTimeout
	OverpassRateLimited
	OverpassDecode
	OverpassInvalidRequest
)

func (k OverpassSourceErrorKind) String() string {
	switch k {
	case OverpassTransport:
		return "transport"
	case OverpassTimeout:
		return "timeout"
	case OverpassRateLimited:
		return "rate_limited"
	case OverpassDecode:
		return "decode"
	case OverpassInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// OverpassEnrichmentSourceError is returned by source adapters.
type OverpassEnrichmentSourceError struct {
	Kind    OverpassSourceErrorKind
	Message string
	Err     error
}

func (e *OverpassEnrichmentSourceError) Error() string {
	switch e.Kind {
	case OverpassTransport:
		return "overpass transport failed: " + e.Message
	case OverpassTimeout:
		return "overpass request timed out: " + e.Message
	case OverpassRateLimited:
		return "overpass rate limited the request: " + e.Message
	case OverpassDecode:
		return "overpass response could not be decoded: " + e.Message
	default:
		return "overpass rejected the request: " + e.Message
	}
}

func (e *OverpassEnrichmentSourceError) Unwrap() error { return e.Err }

// Retryable reports whether the failure reflects transient infrastructure trouble.
func (e *OverpassEnrichmentSourceError) Retryable() bool {
	switch e.Kind {
	case OverpassTransport, OverpassTimeout, OverpassRateLimited:
		return true
	default:
		return false
	}
}

// NewOverpassSourceError builds a source error of the given kind.
func NewOverpassSourceError(kind OverpassSourceErrorKind, message string, err error) *OverpassEnrichmentSourceError {
	return &OverpassEnrichmentSourceError{Kind: kind, Message: message, Err: err}
}
