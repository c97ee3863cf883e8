package overpass

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
	id "github.com/leynos/wildside-sub003/pkg/domain"
)

type responseDTO struct {
	Elements []elementDTO `json:"elements"`
}

type elementDTO struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lon    *float64          `json:"lon"`
	Lat    *float64          `json:"lat"`
	Center *centerDTO        `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type centerDTO struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func decodePOIs(body []byte) ([]ports.EnrichedPOI, error) {
	var resp responseDTO
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, decodeError(fmt.Sprintf("invalid Overpass JSON payload: %v", err), err)
	}

	pois := make([]ports.EnrichedPOI, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		poi, err := el.toPOI()
		if err != nil {
			return nil, err
		}
		pois = append(pois, poi)
	}
	return pois, nil
}

func (e elementDTO) toPOI() (ports.EnrichedPOI, error) {
	lon, lat, ok := e.coordinates()
	if !ok {
		return ports.EnrichedPOI{}, decodeError(fmt.Sprintf("element %d (%s) missing coordinates", e.ID, e.Type), nil)
	}
	if !finite(lon) || !finite(lat) {
		return ports.EnrichedPOI{}, decodeError(fmt.Sprintf("element %d (%s) includes non-finite coordinates", e.ID, e.Type), nil)
	}

	kind := osm.Type(e.Type)
	if _, err := id.EncodeElementID(kind, e.ID); err != nil {
		return ports.EnrichedPOI{}, decodeError(fmt.Sprintf("element %d (%s) has an unusable identifier", e.ID, e.Type), err)
	}

	return ports.EnrichedPOI{
		Element:  id.ElementID{Kind: kind, ID: e.ID},
		Location: orb.Point{lon, lat},
		Tags:     toTags(e.Tags),
	}, nil
}

func (e elementDTO) coordinates() (lon, lat float64, ok bool) {
	if e.Lon != nil && e.Lat != nil {
		return *e.Lon, *e.Lat, true
	}
	if e.Center != nil {
		return e.Center.Lon, e.Center.Lat, true
	}
	return 0, 0, false
}

// toTags converts the tag map into osm.Tags sorted by key.
func toTags(m map[string]string) osm.Tags {
	if len(m) == 0 {
		return nil
	}
	tags := make(osm.Tags, 0, len(m))
	for k, v := range m {
		tags = append(tags, osm.Tag{Key: k, Value: v})
	}
	tags.SortByKeyValue()
	return tags
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func decodeError(msg string, err error) error {
	return ports.NewOverpassSourceError(ports.OverpassDecode, msg, err)
}
