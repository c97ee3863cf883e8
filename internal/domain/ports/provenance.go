package ports

import (
	"context"
	"time"

	"github.com/paulmach/orb"
)

// EnrichmentProvenanceRecord notes where and when one successful fetch came
// from.
type EnrichmentProvenanceRecord struct {
	SourceURL  string
	ImportedAt time.Time
	BBox       orb.Bound
}

// ListEnrichmentProvenanceRequest pages through records newest first. Before
// is an exclusive cursor on ImportedAt.
type ListEnrichmentProvenanceRequest struct {
	Limit  int
	Before *time.Time
}

// ListEnrichmentProvenanceResponse is one page. NextBefore is set when older
// records remain; records sharing an ImportedAt are never split across pages.
type ListEnrichmentProvenanceResponse struct {
	Records    []EnrichmentProvenanceRecord
	NextBefore *time.Time
}

// EnrichmentProvenanceRepository stores and lists provenance records.
type EnrichmentProvenanceRepository interface {
	Persist(ctx context.Context, record EnrichmentProvenanceRecord) error
	ListRecent(ctx context.Context, req ListEnrichmentProvenanceRequest) (ListEnrichmentProvenanceResponse, error)
}

// EnrichmentProvenanceErrorKind enumerates EnrichmentProvenanceRepository
// failures.
type EnrichmentProvenanceErrorKind int

const (
	EnrichmentProvenanceConnection EnrichmentProvenanceErrorKind = iota + 1
	EnrichmentProvenanceQuery
)

// EnrichmentProvenanceError is returned by EnrichmentProvenanceRepository
// adapters.
type EnrichmentProvenanceError struct {
	Kind    EnrichmentProvenanceErrorKind
	Message string
	Err     error
}

func (e *EnrichmentProvenanceError) Error() string {
	if e.Kind == EnrichmentProvenanceConnection {
		return "enrichment provenance connection failed: " + e.Message
	}
	return "enrichment provenance query failed: " + e.Message
}

func (e *EnrichmentProvenanceError) Unwrap() error { return e.Err }

func NewEnrichmentProvenanceConnectionError(err error) *EnrichmentProvenanceError {
	return &EnrichmentProvenanceError{Kind: EnrichmentProvenanceConnection, Message: errMessage(err), Err: err}
}

func NewEnrichmentProvenanceQueryError(err error) *EnrichmentProvenanceError {
	return &EnrichmentProvenanceError{Kind: EnrichmentProvenanceQuery, Message: errMessage(err), Err: err}
}
