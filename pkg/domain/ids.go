// Package domain holds identifier primitives shared by every module: typed
// UUIDs for the entities the backend stores and the 64-bit element id codec
// used for external geographic features.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
)

// Typed identifiers keep a route id from being passed where a user id is expected.
type (
	UserID         uuid.UUID
	RouteID        uuid.UUID
	NoteID         uuid.UUID
	POIID          uuid.UUID
	HighlightID    uuid.UUID
	RouteSummaryID uuid.UUID
	CategoryID     uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id RouteID) String() string        { return uuid.UUID(id).String() }
func (id NoteID) String() string         { return uuid.UUID(id).String() }
func (id POIID) String() string          { return uuid.UUID(id).String() }
func (id HighlightID) String() string    { return uuid.UUID(id).String() }
func (id RouteSummaryID) String() string { return uuid.UUID(id).String() }
func (id CategoryID) String() string     { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id RouteID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed ids appear as plain strings in JSON payloads.
func (id UserID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id RouteID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id NoteID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id POIID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RouteID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *NoteID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *POIID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }

// NewUserID returns a fresh random user id.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewNoteID returns a fresh random note id.
func NewNoteID() NoteID { return NoteID(uuid.New()) }

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParseRouteID(s string) (RouteID, error) {
	u, err := parseUUID(s, "route id")
	return RouteID(u), err
}

func ParseNoteID(s string) (NoteID, error) {
	u, err := parseUUID(s, "note id")
	return NoteID(u), err
}

func ParsePOIID(s string) (POIID, error) {
	u, err := parseUUID(s, "poi id")
	return POIID(u), err
}

// ParseRequestID parses a plan request id. Request ids are plain UUIDs because
// they travel through the route ports untyped.
func ParseRequestID(s string) (uuid.UUID, error) {
	return parseUUID(s, "request id")
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidRequest, "%s is required", label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidRequest, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidRequest, "%s must not be the nil uuid", label)
	}
	return u, nil
}
