package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
)

// ElementKind is the OSM element type carried by an encoded element id.
type ElementKind = osm.Type

// The two high bits of an encoded id tag the element kind. Node ids carry
// neither bit. The format is persisted and must stay decodable.
const (
	WayIDPrefix      uint64 = 1 << 62
	RelationIDPrefix uint64 = 1 << 63
)

var (
	ErrUnknownElementKind  = errors.New("unknown element kind")
	ErrElementIDOutOfRange = errors.New("element id out of range")
)

// ElementID is a decoded external element identifier.
type ElementID struct {
	Kind ElementKind
	ID   int64
}

// DecodeElementID splits an encoded id into kind and numeric id. It accepts
// every uint64 value.
func DecodeElementID(encoded uint64) ElementID {
	switch {
	case encoded&RelationIDPrefix != 0:
		return ElementID{Kind: osm.TypeRelation, ID: int64(encoded &^ RelationIDPrefix)}
	case encoded&WayIDPrefix != 0:
		return ElementID{Kind: osm.TypeWay, ID: int64(encoded &^ WayIDPrefix)}
	default:
		return ElementID{Kind: osm.TypeNode, ID: int64(encoded)}
	}
}

// EncodeElementID packs kind and id into a single value. Node and way ids must
// stay below 2^62; relation ids may use the full non-negative int64 range.
func EncodeElementID(kind ElementKind, id int64) (uint64, error) {
	if id < 0 {
		return 0, fmt.Errorf("%w: %s id %d is negative", ErrElementIDOutOfRange, kind, id)
	}
	raw := uint64(id)
	switch kind {
	case osm.TypeNode:
		if raw&WayIDPrefix != 0 {
			return 0, fmt.Errorf("%w: node id %d collides with the way tag", ErrElementIDOutOfRange, id)
		}
		return raw, nil
	case osm.TypeWay:
		if raw&WayIDPrefix != 0 {
			return 0, fmt.Errorf("%w: way id %d collides with the way tag", ErrElementIDOutOfRange, id)
		}
		return raw | WayIDPrefix, nil
	case osm.TypeRelation:
		return raw | RelationIDPrefix, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownElementKind, string(kind))
	}
}

// Encode re-packs a decoded id. Ids produced by DecodeElementID always encode.
func (e ElementID) Encode() (uint64, error) {
	return EncodeElementID(e.Kind, e.ID)
}

// String renders the id as "kind/id", matching the OSM website path form.
func (e ElementID) String() string {
	return string(e.Kind) + "/" + strconv.FormatInt(e.ID, 10)
}

// ParseElementRef parses the "kind/id" form produced by String.
func ParseElementRef(s string) (ElementID, error) {
	kind, rawID, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return ElementID{}, fmt.Errorf("element reference %q: expected kind/id", s)
	}
	switch ElementKind(kind) {
	case osm.TypeNode, osm.TypeWay, osm.TypeRelation:
	default:
		return ElementID{}, fmt.Errorf("%w: %q", ErrUnknownElementKind, kind)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return ElementID{}, fmt.Errorf("element reference %q: %w", s, err)
	}
	ref := ElementID{Kind: ElementKind(kind), ID: id}
	if _, err := ref.Encode(); err != nil {
		return ElementID{}, err
	}
	return ref, nil
}

// maxNodeOrWayID is the largest id a node or way can carry.
const maxNodeOrWayID = int64(WayIDPrefix - 1)

// MaxElementID returns the largest encodable id for a kind.
func MaxElementID(kind ElementKind) int64 {
	if kind == osm.TypeRelation {
		return math.MaxInt64
	}
	return maxNodeOrWayID
}
