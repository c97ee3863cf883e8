// Package handler serves the enrichment provenance admin listing.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/platform/httputil"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// BoundingBox is a record's area in WGS84 degrees.
type BoundingBox struct {
	MinLng float64 `json:"minLng"`
	MinLat float64 `json:"minLat"`
	MaxLng float64 `json:"maxLng"`
	MaxLat float64 `json:"maxLat"`
}

type Record struct {
	SourceURL   string      `json:"sourceUrl"`
	ImportedAt  time.Time   `json:"importedAt"`
	BoundingBox BoundingBox `json:"boundingBox"`
}

// ListResponse is one page; NextBefore is the cursor for the next page.
type ListResponse struct {
	Records    []Record   `json:"records"`
	NextBefore *time.Time `json:"nextBefore,omitempty"`
}

// Handler lists enrichment provenance over HTTP.
type Handler struct {
	repo   ports.EnrichmentProvenanceRepository
	logger zerolog.Logger
}

func New(repo ports.EnrichmentProvenanceRepository, logger zerolog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// Register mounts the admin endpoint on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/v1/admin/enrichment/provenance", h.HandleList)
}

// HandleList handles GET /api/v1/admin/enrichment/provenance.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	req, err := parseList(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	resp, err := h.repo.ListRecent(r.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("provenance listing failed")
		httputil.WriteError(w, r, mapError(err))
		return
	}

	out := ListResponse{Records: make([]Record, 0, len(resp.Records)), NextBefore: resp.NextBefore}
	for _, rec := range resp.Records {
		out.Records = append(out.Records, Record{
			SourceURL:  rec.SourceURL,
			ImportedAt: rec.ImportedAt,
			BoundingBox: BoundingBox{
				MinLng: rec.BBox.Min.Lon(),
				MinLat: rec.BBox.Min.Lat(),
				MaxLng: rec.BBox.Max.Lon(),
				MaxLat: rec.BBox.Max.Lat(),
			},
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func parseList(r *http.Request) (ports.ListEnrichmentProvenanceRequest, error) {
	req := ports.ListEnrichmentProvenanceRequest{Limit: DefaultLimit}
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxLimit {
			return req, dErrors.Newf(dErrors.CodeInvalidRequest, "limit must be between 1 and %d", MaxLimit).
				WithDetails(map[string]any{"field": "limit", "value": raw})
		}
		req.Limit = limit
	}
	if raw := q.Get("before"); raw != "" {
		before, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return req, dErrors.New(dErrors.CodeInvalidRequest, "before must be an RFC3339 timestamp").
				WithDetails(map[string]any{"field": "before", "value": raw})
		}
		before = before.UTC()
		req.Before = &before
	}
	return req, nil
}

func mapError(err error) error {
	var pe *ports.EnrichmentProvenanceError
	if errors.As(err, &pe) && pe.Kind == ports.EnrichmentProvenanceConnection {
		return dErrors.Wrap(err, dErrors.CodeServiceUnavailable, "provenance store unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "provenance listing failed")
}
