package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"

	id "github.com/leynos/wildside-sub003/pkg/domain"
)

// RouteNote is a user's note on a route, optionally pinned to a point of interest.
type RouteNote struct {
	ID        id.NoteID
	RouteID   id.RouteID
	POIID     *id.POIID
	UserID    id.UserID
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Revision  uint32
}

// RouteProgress tracks which stops a user has visited on a route.
type RouteProgress struct {
	RouteID        id.RouteID
	UserID         id.UserID
	VisitedStopIDs []uuid.UUID
	UpdatedAt      time.Time
	Revision       uint32
}

// HasVisited reports whether the stop is recorded as visited.
func (p *RouteProgress) HasVisited(stopID uuid.UUID) bool {
	return slices.Contains(p.VisitedStopIDs, stopID)
}

// CompletionPercent returns the visited share of totalStops in [0, 100].
func (p *RouteProgress) CompletionPercent(totalStops int) float64 {
	if totalStops <= 0 {
		return 0
	}
	pct := float64(len(p.VisitedStopIDs)) / float64(totalStops) * 100
	return min(pct, 100)
}

// RouteAnnotations joins a user's notes and progress for one route. Progress is
// nil when the user has not recorded any.
type RouteAnnotations struct {
	RouteID  id.RouteID
	Notes    []RouteNote
	Progress *RouteProgress
}
