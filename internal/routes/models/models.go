// Package models holds the route plan that moves through submission, the
// queue, the enrichment worker, the cache and the repository.
package models

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/domain/ports"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/validate"
)

// PlanStatus tracks a plan through enrichment.
type PlanStatus string

const (
	PlanPending  PlanStatus = "pending"
	PlanEnriched PlanStatus = "enriched"
)

// RouteRequest is what a client asks for: a bounding box in
// [min_lng, min_lat, max_lng, max_lat] order and optional tag filters.
type RouteRequest struct {
	BBox [4]float64 `json:"bbox"`
	Tags []string   `json:"tags,omitempty"`
}

// Validate checks coordinates with the shared predicates.
func (r RouteRequest) Validate() error {
	minLng, minLat, maxLng, maxLat := r.BBox[0], r.BBox[1], r.BBox[2], r.BBox[3]
	if !validate.Longitude(minLng) || !validate.Longitude(maxLng) {
		return dErrors.New(dErrors.CodeInvalidRequest, "bbox longitudes must be finite and within [-180, 180]")
	}
	if !validate.Latitude(minLat) || !validate.Latitude(maxLat) {
		return dErrors.New(dErrors.CodeInvalidRequest, "bbox latitudes must be finite and within [-90, 90]")
	}
	if minLng >= maxLng || minLat >= maxLat {
		return dErrors.New(dErrors.CodeInvalidRequest, "bbox must be [min_lng, min_lat, max_lng, max_lat]")
	}
	for _, tag := range r.Tags {
		if strings.TrimSpace(tag) == "" {
			return dErrors.New(dErrors.CodeInvalidRequest, "tags must not include blank values")
		}
	}
	return nil
}

// Bound returns the request box as an orb.Bound.
func (r RouteRequest) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{r.BBox[0], r.BBox[1]},
		Max: orb.Point{r.BBox[2], r.BBox[3]},
	}
}

// Query builds the enrichment query for a job.
func (r RouteRequest) Query(jobID uuid.UUID) ports.OverpassQuery {
	return ports.OverpassQuery{JobID: jobID, BBox: r.Bound(), Tags: slices.Clone(r.Tags)}
}

// DeriveCacheKey returns "route:" followed by the SHA-256 of the canonical
// request, so equal requests share a cache entry regardless of field order.
func DeriveCacheKey(r RouteRequest) (ports.RouteCacheKey, error) {
	normalized := RouteRequest{BBox: r.BBox, Tags: normalizeTags(r.Tags)}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return ports.RouteCacheKey{}, fmt.Errorf("encode route request: %w", err)
	}
	hash, err := domain.CanonicalizeAndHash(raw)
	if err != nil {
		return ports.RouteCacheKey{}, err
	}
	return ports.NewRouteCacheKey("route:" + string(hash))
}

// normalizeTags trims, sorts and deduplicates tag filters; their order has no
// effect on the query result.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.TrimSpace(t))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// POI is an enriched point of interest on a plan.
type POI struct {
	Element   string            `json:"element"`
	EncodedID uint64            `json:"encodedId"`
	Lng       float64           `json:"lng"`
	Lat       float64           `json:"lat"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// Plan is a submitted route request and its enrichment.
type Plan struct {
	ID         uuid.UUID    `json:"requestId"`
	UserID     id.UserID    `json:"userId"`
	Request    RouteRequest `json:"request"`
	Status     PlanStatus   `json:"status"`
	POIs       []POI        `json:"pois"`
	CreatedAt  time.Time    `json:"createdAt"`
	EnrichedAt *time.Time   `json:"enrichedAt,omitempty"`
}

// RequestID satisfies ports.Plan.
func (p Plan) RequestID() uuid.UUID { return p.ID }

// NewPlan builds a pending plan for a validated request.
func NewPlan(requestID uuid.UUID, userID id.UserID, req RouteRequest, now time.Time) Plan {
	return Plan{
		ID:        requestID,
		UserID:    userID,
		Request:   req,
		Status:    PlanPending,
		POIs:      []POI{},
		CreatedAt: now,
	}
}

// Merge folds an enrichment result into a plan. POIs are keyed by encoded
// element id; a repeated element keeps its latest location and tags. The
// result is ordered by encoded id so re-merging is stable.
func Merge(p Plan, result ports.EnrichmentResult, now time.Time) Plan {
	byID := make(map[uint64]POI, len(p.POIs)+len(result.POIs))
	for _, poi := range p.POIs {
		byID[poi.EncodedID] = poi
	}
	for _, enriched := range result.POIs {
		encoded, err := enriched.Element.Encode()
		if err != nil {
			continue
		}
		if math.IsNaN(enriched.Location.Lon()) || math.IsNaN(enriched.Location.Lat()) {
			continue
		}
		tags := make(map[string]string, len(enriched.Tags))
		for _, t := range enriched.Tags {
			tags[t.Key] = t.Value
		}
		byID[encoded] = POI{
			Element:   enriched.Element.String(),
			EncodedID: encoded,
			Lng:       enriched.Location.Lon(),
			Lat:       enriched.Location.Lat(),
			Tags:      tags,
		}
	}

	merged := make([]POI, 0, len(byID))
	for _, poi := range byID {
		merged = append(merged, poi)
	}
	slices.SortFunc(merged, func(a, b POI) int { return cmp.Compare(a.EncodedID, b.EncodedID) })

	p.POIs = merged
	p.Status = PlanEnriched
	enrichedAt := now.UTC()
	p.EnrichedAt = &enrichedAt
	return p
}

// Adopt copies a cached plan's enrichment onto p. The identity of p, its
// owner, request and creation time are kept.
func Adopt(p, cached Plan) Plan {
	p.POIs = make([]POI, 0, len(cached.POIs))
	for _, poi := range cached.POIs {
		poi.Tags = maps.Clone(poi.Tags)
		p.POIs = append(p.POIs, poi)
	}
	p.Status = PlanEnriched
	if cached.EnrichedAt != nil {
		at := *cached.EnrichedAt
		p.EnrichedAt = &at
	}
	return p
}

// PlanMerger folds enrichment into plans for the worker.
type PlanMerger struct {
	clock func() time.Time
}

// Merger returns a PlanMerger stamping merges with clock.
func Merger(clock func() time.Time) PlanMerger {
	return PlanMerger{clock: clock}
}

func (m PlanMerger) Merge(p Plan, r ports.EnrichmentResult) Plan {
	return Merge(p, r, m.clock())
}

func (m PlanMerger) Adopt(p, cached Plan) Plan {
	if cached.EnrichedAt == nil {
		now := m.clock().UTC()
		cached.EnrichedAt = &now
	}
	return Adopt(p, cached)
}
