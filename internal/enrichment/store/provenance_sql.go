// Package store persists enrichment provenance in SQL.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
	"github.com/leynos/wildside-sub003/internal/platform/sqldb"
	"github.com/leynos/wildside-sub003/pkg/platform/tx"
)

// ProvenanceStore is the SQL EnrichmentProvenanceRepository.
type ProvenanceStore struct {
	db    *sql.DB
	newID func() uuid.UUID
}

var _ ports.EnrichmentProvenanceRepository = (*ProvenanceStore)(nil)

// NewProvenanceStore constructs a SQL-backed provenance repository.
func NewProvenanceStore(db *sqldb.DB) *ProvenanceStore {
	return &ProvenanceStore{db: db.DB, newID: uuid.New}
}

// Persist appends one record.
func (s *ProvenanceStore) Persist(ctx context.Context, record ports.EnrichmentProvenanceRecord) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO enrichment_provenance (id, source_url, imported_at, min_lng, min_lat, max_lng, max_lat)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.newID().String(), record.SourceURL, record.ImportedAt.UTC(),
		record.BBox.Min.Lon(), record.BBox.Min.Lat(), record.BBox.Max.Lon(), record.BBox.Max.Lat(),
	)
	if err != nil {
		return provenanceError(err)
	}
	return nil
}

// ListRecent returns up to Limit records older than Before, newest first.
// When the limit falls inside a run of records sharing one ImportedAt, the
// whole run is returned so the next page's cursor cannot skip any of them.
func (s *ProvenanceStore) ListRecent(ctx context.Context, req ports.ListEnrichmentProvenanceRequest) (ports.ListEnrichmentProvenanceResponse, error) {
	if req.Limit <= 0 {
		return ports.ListEnrichmentProvenanceResponse{Records: []ports.EnrichmentProvenanceRecord{}}, nil
	}

	rows, err := s.page(ctx, req.Before, req.Limit+1)
	if err != nil {
		return ports.ListEnrichmentProvenanceResponse{}, err
	}
	if len(rows) <= req.Limit {
		return ports.ListEnrichmentProvenanceResponse{Records: rows}, nil
	}

	last := rows[req.Limit-1].ImportedAt
	if !rows[req.Limit].ImportedAt.Equal(last) {
		return ports.ListEnrichmentProvenanceResponse{Records: rows[:req.Limit], NextBefore: &last}, nil
	}

	records := make([]ports.EnrichmentProvenanceRecord, 0, req.Limit+1)
	for _, r := range rows[:req.Limit] {
		if r.ImportedAt.After(last) {
			records = append(records, r)
		}
	}
	boundary, err := s.at(ctx, last)
	if err != nil {
		return ports.ListEnrichmentProvenanceResponse{}, err
	}
	records = append(records, boundary...)

	older, err := s.page(ctx, &last, 1)
	if err != nil {
		return ports.ListEnrichmentProvenanceResponse{}, err
	}
	resp := ports.ListEnrichmentProvenanceResponse{Records: records}
	if len(older) > 0 {
		resp.NextBefore = &last
	}
	return resp, nil
}

func (s *ProvenanceStore) page(ctx context.Context, before *time.Time, limit int) ([]ports.EnrichmentProvenanceRecord, error) {
	const cols = `SELECT source_url, imported_at, min_lng, min_lat, max_lng, max_lat FROM enrichment_provenance`
	if before == nil {
		return s.query(ctx, cols+` ORDER BY imported_at DESC, id DESC LIMIT $1`, limit)
	}
	return s.query(ctx, cols+` WHERE imported_at < $1 ORDER BY imported_at DESC, id DESC LIMIT $2`, before.UTC(), limit)
}

func (s *ProvenanceStore) at(ctx context.Context, importedAt time.Time) ([]ports.EnrichmentProvenanceRecord, error) {
	return s.query(ctx, `
		SELECT source_url, imported_at, min_lng, min_lat, max_lng, max_lat FROM enrichment_provenance
		WHERE imported_at = $1 ORDER BY id DESC`, importedAt.UTC())
}

func (s *ProvenanceStore) query(ctx context.Context, query string, args ...any) ([]ports.EnrichmentProvenanceRecord, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, provenanceError(err)
	}
	defer rows.Close()

	records := []ports.EnrichmentProvenanceRecord{}
	for rows.Next() {
		var (
			r                              ports.EnrichmentProvenanceRecord
			minLng, minLat, maxLng, maxLat float64
		)
		if err := rows.Scan(&r.SourceURL, &r.ImportedAt, &minLng, &minLat, &maxLng, &maxLat); err != nil {
			return nil, provenanceError(err)
		}
		r.ImportedAt = r.ImportedAt.UTC()
		r.BBox = orb.Bound{Min: orb.Point{minLng, minLat}, Max: orb.Point{maxLng, maxLat}}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, provenanceError(err)
	}
	return records, nil
}

func provenanceError(err error) error {
	if sqldb.IsConnectionError(err) {
		return ports.NewEnrichmentProvenanceConnectionError(err)
	}
	return ports.NewEnrichmentProvenanceQueryError(err)
}
