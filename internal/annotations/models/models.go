// Package models holds the wire form of route annotations.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/leynos/wildside-sub003/internal/domain"
	id "github.com/leynos/wildside-sub003/pkg/domain"
)

type Note struct {
	ID        id.NoteID  `json:"id"`
	RouteID   id.RouteID `json:"routeId"`
	POIID     *id.POIID  `json:"poiId,omitempty"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Revision  uint32     `json:"revision"`
}

type Progress struct {
	RouteID        id.RouteID  `json:"routeId"`
	VisitedStopIDs []uuid.UUID `json:"visitedStopIds"`
	UpdatedAt      time.Time   `json:"updatedAt"`
	Revision       uint32      `json:"revision"`
}

// Annotations is the GET /annotations body. Progress is null until the user
// records a visit.
type Annotations struct {
	RouteID  id.RouteID `json:"routeId"`
	Notes    []Note     `json:"notes"`
	Progress *Progress  `json:"progress"`
}

// UpsertNoteBody is the PUT note request. ExpectedRevision is omitted when
// creating.
type UpsertNoteBody struct {
	Body             string    `json:"body"`
	POIID            *id.POIID `json:"poiId,omitempty"`
	ExpectedRevision *uint32   `json:"expectedRevision,omitempty"`
}

// UpdateProgressBody is the PUT progress request.
type UpdateProgressBody struct {
	VisitedStopIDs   []uuid.UUID `json:"visitedStopIds"`
	ExpectedRevision *uint32     `json:"expectedRevision,omitempty"`
}

func NoteFromDomain(n domain.RouteNote) Note {
	return Note{
		ID:        n.ID,
		RouteID:   n.RouteID,
		POIID:     n.POIID,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		Revision:  n.Revision,
	}
}

func ProgressFromDomain(p domain.RouteProgress) Progress {
	stops := p.VisitedStopIDs
	if stops == nil {
		stops = []uuid.UUID{}
	}
	return Progress{
		RouteID:        p.RouteID,
		VisitedStopIDs: stops,
		UpdatedAt:      p.UpdatedAt,
		Revision:       p.Revision,
	}
}

func AnnotationsFromDomain(a *domain.RouteAnnotations) Annotations {
	out := Annotations{RouteID: a.RouteID, Notes: make([]Note, 0, len(a.Notes))}
	for _, n := range a.Notes {
		out.Notes = append(out.Notes, NoteFromDomain(n))
	}
	if a.Progress != nil {
		p := ProgressFromDomain(*a.Progress)
		out.Progress = &p
	}
	return out
}
