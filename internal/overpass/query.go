package overpass

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
)

var elementTypes = [...]string{"node", "way", "relation"}

// BuildQuery renders an Overpass QL query selecting every element type inside
// the bounding box for each tag filter. An empty tag list selects everything.
func BuildQuery(q ports.OverpassQuery, timeoutSeconds int) (string, error) {
	if err := validateBound(q.BBox); err != nil {
		return "", err
	}
	bbox := fmt.Sprintf("(%s,%s,%s,%s)",
		formatCoord(q.BBox.Min.Lat()), formatCoord(q.BBox.Min.Lon()),
		formatCoord(q.BBox.Max.Lat()), formatCoord(q.BBox.Max.Lon()))

	selectors := []string{""}
	if len(q.Tags) > 0 {
		selectors = make([]string, 0, len(q.Tags))
		for _, tag := range q.Tags {
			sel, err := tagSelector(tag)
			if err != nil {
				return "", err
			}
			selectors = append(selectors, sel)
		}
	}

	lines := make([]string, 0, len(selectors)*len(elementTypes))
	for _, sel := range selectors {
		for _, typ := range elementTypes {
			lines = append(lines, "  "+typ+sel+bbox+";")
		}
	}

	return fmt.Sprintf("[out:json][timeout:%d];\n(\n%s\n);\nout center tags;",
		max(timeoutSeconds, 1), strings.Join(lines, "\n")), nil
}

func validateBound(b orb.Bound) error {
	coords := []float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()}
	for _, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return invalidRequest("bounding box must contain finite coordinates")
		}
	}
	if b.Min.Lon() >= b.Max.Lon() || b.Min.Lat() >= b.Max.Lat() {
		return invalidRequest("bounding box must be [min_lng, min_lat, max_lng, max_lat]")
	}
	if b.Min.Lon() < -180 || b.Max.Lon() > 180 {
		return invalidRequest("longitude must be within [-180, 180]")
	}
	if b.Min.Lat() < -90 || b.Max.Lat() > 90 {
		return invalidRequest("latitude must be within [-90, 90]")
	}
	return nil
}

func tagSelector(tag string) (string, error) {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return "", invalidRequest("tags must not include blank values")
	}

	key, value, hasValue := strings.Cut(trimmed, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return "", invalidRequest("tags must provide a non-empty key")
	}
	if !hasValue {
		return `["` + escapeQuoted(key) + `"]`, nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalidRequest("tags must not include empty values")
	}
	return `["` + escapeQuoted(key) + `"="` + escapeQuoted(value) + `"]`, nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuoted(raw string) string {
	return quoteEscaper.Replace(raw)
}

func formatCoord(v float64) string {
	return fmt.Sprint(v)
}

func invalidRequest(msg string) error {
	return ports.NewOverpassSourceError(ports.OverpassInvalidRequest, msg, nil)
}
