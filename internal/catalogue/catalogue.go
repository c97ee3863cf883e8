// Package catalogue holds validated read models for the discovery catalogue.
// Values are checked once at construction and are immutable afterwards.
package catalogue

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	id "github.com/leynos/wildside-sub003/pkg/domain"
	"github.com/leynos/wildside-sub003/pkg/validate"
)

// ValidationErrorKind classifies catalogue validation failures.
type ValidationErrorKind int

const (
	EmptyField ValidationErrorKind = iota + 1
	InvalidSlug
	InvalidLocale
	NegativeValue
)

func (k ValidationErrorKind) String() string {
	switch k {
	case EmptyField:
		return "empty_field"
	case InvalidSlug:
		return "invalid_slug"
	case InvalidLocale:
		return "invalid_locale"
	case NegativeValue:
		return "negative_value"
	default:
		return "unknown"
	}
}

// ValidationError names the field that failed. Locale is set for locale
// failures only.
type ValidationError struct {
	Kind   ValidationErrorKind
	Field  string
	Locale string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case EmptyField:
		return e.Field + " must not be empty"
	case InvalidSlug:
		return e.Field + " must be a lowercase slug"
	case InvalidLocale:
		return fmt.Sprintf("%s: locale code %q must be a valid, unpadded BCP 47 tag", e.Field, e.Locale)
	case NegativeValue:
		return e.Field + " must not be negative"
	default:
		return e.Field + " is invalid"
	}
}

func nonEmpty(value, field string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", &ValidationError{Kind: EmptyField, Field: field}
	}
	return value, nil
}

// TrendingRouteHighlight promotes a route summary with a short trend label.
type TrendingRouteHighlight struct {
	id                    id.HighlightID
	routeSummaryID        id.RouteSummaryID
	trendDelta            string
	subtitleLocalizations LocalizationMap
}

// NewTrendingRouteHighlight requires a non-blank trend delta and a non-empty
// subtitle map.
func NewTrendingRouteHighlight(highlightID id.HighlightID, summaryID id.RouteSummaryID, trendDelta string, subtitles LocalizationMap) (*TrendingRouteHighlight, error) {
	delta, err := nonEmpty(trendDelta, "trending_route_highlight.trend_delta")
	if err != nil {
		return nil, err
	}
	if subtitles.Len() == 0 {
		return nil, &ValidationError{Kind: EmptyField, Field: "trending_route_highlight.subtitle_localizations"}
	}
	return &TrendingRouteHighlight{
		id:                    highlightID,
		routeSummaryID:        summaryID,
		trendDelta:            delta,
		subtitleLocalizations: subtitles,
	}, nil
}

func (h *TrendingRouteHighlight) ID() id.HighlightID                     { return h.id }
func (h *TrendingRouteHighlight) RouteSummaryID() id.RouteSummaryID      { return h.routeSummaryID }
func (h *TrendingRouteHighlight) TrendDelta() string                     { return h.trendDelta }
func (h *TrendingRouteHighlight) SubtitleLocalizations() LocalizationMap { return h.subtitleLocalizations }

type trendingRouteHighlightJSON struct {
	ID                    string          `json:"id"`
	RouteSummaryID        string          `json:"routeSummaryId"`
	TrendDelta            string          `json:"trendDelta"`
	SubtitleLocalizations LocalizationMap `json:"subtitleLocalizations"`
}

func (h *TrendingRouteHighlight) MarshalJSON() ([]byte, error) {
	return json.Marshal(trendingRouteHighlightJSON{
		ID:                    h.id.String(),
		RouteSummaryID:        h.routeSummaryID.String(),
		TrendDelta:            h.trendDelta,
		SubtitleLocalizations: h.subtitleLocalizations,
	})
}

// RouteCategory groups routes under a slug such as "coffee-crawls".
type RouteCategory struct {
	id            id.CategoryID
	slug          string
	iconKey       string
	localizations LocalizationMap
	routeCount    int
}

// RouteCategoryDraft is the unvalidated input to NewRouteCategory.
type RouteCategoryDraft struct {
	ID            id.CategoryID
	Slug          string
	IconKey       string
	Localizations LocalizationMap
	RouteCount    int
}

func NewRouteCategory(draft RouteCategoryDraft) (*RouteCategory, error) {
	if !validate.Slug(draft.Slug) {
		return nil, &ValidationError{Kind: InvalidSlug, Field: "route_category.slug"}
	}
	if _, err := nonEmpty(draft.IconKey, "route_category.icon_key"); err != nil {
		return nil, err
	}
	if draft.RouteCount < 0 {
		return nil, &ValidationError{Kind: NegativeValue, Field: "route_category.route_count"}
	}
	if draft.Localizations.Len() == 0 {
		return nil, &ValidationError{Kind: EmptyField, Field: "route_category.localizations"}
	}
	return &RouteCategory{
		id:            draft.ID,
		slug:          draft.Slug,
		iconKey:       draft.IconKey,
		localizations: draft.Localizations,
		routeCount:    draft.RouteCount,
	}, nil
}

func (c *RouteCategory) ID() id.CategoryID              { return c.id }
func (c *RouteCategory) Slug() string                   { return c.slug }
func (c *RouteCategory) IconKey() string                { return c.iconKey }
func (c *RouteCategory) Localizations() LocalizationMap { return c.localizations }
func (c *RouteCategory) RouteCount() int                { return c.routeCount }

func (c *RouteCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID            string          `json:"id"`
		Slug          string          `json:"slug"`
		IconKey       string          `json:"iconKey"`
		Localizations LocalizationMap `json:"localizations"`
		RouteCount    int             `json:"routeCount"`
	}{c.id.String(), c.slug, c.iconKey, c.localizations, c.routeCount})
}
