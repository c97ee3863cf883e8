package overpass

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
)

var edinburgh = orb.Bound{Min: orb.Point{-3.2, 55.9}, Max: orb.Point{-3.1, 56}}

func requireInvalid(t *testing.T, err error, msg string) {
	t.Helper()
	var se *ports.OverpassEnrichmentSourceError
	require.True(t, errors.As(err, &se), "expected source error, got %v", err)
	assert.Equal(t, ports.OverpassInvalidRequest, se.Kind)
	assert.Equal(t, msg, se.Message)
}

func TestBuildQuery_WithTags(t *testing.T) {
	q, err := BuildQuery(ports.OverpassQuery{BBox: edinburgh, Tags: []string{"amenity=cafe", " tourism "}}, 25)

	require.NoError(t, err)
	assert.Equal(t, `[out:json][timeout:25];
(
  node["amenity"="cafe"](55.9,-3.2,56,-3.1);
  way["amenity"="cafe"](55.9,-3.2,56,-3.1);
  relation["amenity"="cafe"](55.9,-3.2,56,-3.1);
  node["tourism"](55.9,-3.2,56,-3.1);
  way["tourism"](55.9,-3.2,56,-3.1);
  relation["tourism"](55.9,-3.2,56,-3.1);
);
out center tags;`, q)
}

func TestBuildQuery_EmptyTagsSelectEverything(t *testing.T) {
	q, err := BuildQuery(ports.OverpassQuery{BBox: edinburgh}, 0)

	require.NoError(t, err)
	assert.Equal(t, "[out:json][timeout:1];\n(\n  node(55.9,-3.2,56,-3.1);\n  way(55.9,-3.2,56,-3.1);\n  relation(55.9,-3.2,56,-3.1);\n);\nout center tags;", q)
}

func TestBuildQuery_EscapesQuotes(t *testing.T) {
	q, err := BuildQuery(ports.OverpassQuery{BBox: edinburgh, Tags: []string{`name=Bob's "Bar" \ Grill`}}, 10)

	require.NoError(t, err)
	assert.Contains(t, q, `node["name"="Bob's \"Bar\" \\ Grill"]`)
}

func TestBuildQuery_RejectsBadTags(t *testing.T) {
	tests := []struct {
		tag string
		msg string
	}{
		{"   ", "tags must not include blank values"},
		{"=cafe", "tags must provide a non-empty key"},
		{"amenity= ", "tags must not include empty values"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			_, err := BuildQuery(ports.OverpassQuery{BBox: edinburgh, Tags: []string{tt.tag}}, 10)
			requireInvalid(t, err, tt.msg)
		})
	}
}

func TestBuildQuery_RejectsBadBounds(t *testing.T) {
	tests := []struct {
		name string
		b    orb.Bound
		msg  string
	}{
		{"nan", orb.Bound{Min: orb.Point{math.NaN(), 0}, Max: orb.Point{1, 1}}, "bounding box must contain finite coordinates"},
		{"inverted", orb.Bound{Min: orb.Point{1, 0}, Max: orb.Point{0, 1}}, "bounding box must be [min_lng, min_lat, max_lng, max_lat]"},
		{"longitude", orb.Bound{Min: orb.Point{-181, 0}, Max: orb.Point{0, 1}}, "longitude must be within [-180, 180]"},
		{"latitude", orb.Bound{Min: orb.Point{0, -91}, Max: orb.Point{1, 1}}, "latitude must be within [-90, 90]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildQuery(ports.OverpassQuery{BBox: tt.b}, 10)
			requireInvalid(t, err, tt.msg)
		})
	}
}
