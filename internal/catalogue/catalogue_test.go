package catalogue

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	id "github.com/leynos/wildside-sub003/pkg/domain"
)

func strPtr(s string) *string { return &s }

func subtitles(t *testing.T) LocalizationMap {
	t.Helper()
	m, err := NewLocalizationMap("subtitles", map[string]LocalizedStringSet{
		"en-GB": {Name: "Up 12% this week"},
		"fr":    {Name: "En hausse de 12 %", ShortLabel: strPtr("+12 %")},
	})
	require.NoError(t, err)
	return m
}

func requireValidation(t *testing.T, err error, kind ValidationErrorKind, field string) *ValidationError {
	t.Helper()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, kind, vErr.Kind)
	assert.Equal(t, field, vErr.Field)
	return vErr
}

func TestNewLocalizationMap(t *testing.T) {
	t.Run("canonicalises locale tags", func(t *testing.T) {
		m, err := NewLocalizationMap("l", map[string]LocalizedStringSet{"en-gb": {Name: "Nature walk"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"en-GB"}, m.Locales())

		set, ok := m.Get("EN-GB")
		require.True(t, ok)
		assert.Equal(t, "Nature walk", set.Name)
	})

	t.Run("rejects empty map", func(t *testing.T) {
		_, err := NewLocalizationMap("l", nil)
		requireValidation(t, err, EmptyField, "l")
	})

	tests := []struct {
		name   string
		locale string
	}{
		{"padded", " en-GB "},
		{"empty", ""},
		{"not a tag", "not a locale!"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name+" locale", func(t *testing.T) {
			_, err := NewLocalizationMap("l", map[string]LocalizedStringSet{tt.locale: {Name: "x"}})
			vErr := requireValidation(t, err, InvalidLocale, "l")
			assert.Equal(t, tt.locale, vErr.Locale)
		})
	}

	t.Run("rejects keys naming the same tag", func(t *testing.T) {
		_, err := NewLocalizationMap("l", map[string]LocalizedStringSet{
			"en-GB": {Name: "a"},
			"en-gb": {Name: "b"},
		})
		requireValidation(t, err, InvalidLocale, "l")
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := NewLocalizationMap("l", map[string]LocalizedStringSet{"en-GB": {Name: "   "}})
		requireValidation(t, err, EmptyField, "l[en-GB].name")
	})
}

func TestLocalizationMapResolve(t *testing.T) {
	m := subtitles(t)

	set, locale := m.Resolve(language.French)
	assert.Equal(t, "fr", locale)
	assert.Equal(t, "En hausse de 12 %", set.Name)

	set, locale = m.Resolve(language.Japanese)
	assert.Equal(t, "en-GB", locale)
	assert.Equal(t, "Up 12% this week", set.Name)
}

func TestLocalizationMapJSON(t *testing.T) {
	var m LocalizationMap
	require.NoError(t, json.Unmarshal([]byte(`{"de":{"name":"Wanderung"}}`), &m))
	assert.Equal(t, []string{"de"}, m.Locales())

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"de":{"name":"Wanderung"}}`, string(out))

	err = json.Unmarshal([]byte(`{}`), &m)
	assert.ErrorContains(t, err, "localizations must not be empty")
}

func TestNewTrendingRouteHighlight(t *testing.T) {
	highlightID := id.HighlightID(uuid.New())
	summaryID := id.RouteSummaryID(uuid.New())

	t.Run("valid highlight", func(t *testing.T) {
		h, err := NewTrendingRouteHighlight(highlightID, summaryID, "+12%", subtitles(t))
		require.NoError(t, err)
		assert.Equal(t, highlightID, h.ID())
		assert.Equal(t, summaryID, h.RouteSummaryID())
		assert.Equal(t, "+12%", h.TrendDelta())
		assert.Equal(t, 2, h.SubtitleLocalizations().Len())

		out, err := json.Marshal(h)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(out, &body))
		assert.Equal(t, highlightID.String(), body["id"])
		assert.Equal(t, summaryID.String(), body["routeSummaryId"])
		assert.Equal(t, "+12%", body["trendDelta"])
	})

	t.Run("blank trend delta", func(t *testing.T) {
		_, err := NewTrendingRouteHighlight(highlightID, summaryID, "   ", subtitles(t))
		requireValidation(t, err, EmptyField, "trending_route_highlight.trend_delta")
		assert.EqualError(t, err, "trending_route_highlight.trend_delta must not be empty")
	})

	t.Run("missing subtitles", func(t *testing.T) {
		_, err := NewTrendingRouteHighlight(highlightID, summaryID, "+1", LocalizationMap{})
		requireValidation(t, err, EmptyField, "trending_route_highlight.subtitle_localizations")
	})
}

func TestNewRouteCategory(t *testing.T) {
	valid := func(t *testing.T) RouteCategoryDraft {
		return RouteCategoryDraft{
			ID:            id.CategoryID(uuid.New()),
			Slug:          "coffee-crawls",
			IconKey:       "category:coffee",
			Localizations: subtitles(t),
			RouteCount:    4,
		}
	}

	t.Run("valid category", func(t *testing.T) {
		draft := valid(t)
		c, err := NewRouteCategory(draft)
		require.NoError(t, err)
		assert.Equal(t, draft.ID, c.ID())
		assert.Equal(t, "coffee-crawls", c.Slug())
		assert.Equal(t, 4, c.RouteCount())
	})

	tests := []struct {
		name  string
		edit  func(*RouteCategoryDraft)
		kind  ValidationErrorKind
		field string
	}{
		{"uppercase slug", func(d *RouteCategoryDraft) { d.Slug = "Coffee" }, InvalidSlug, "route_category.slug"},
		{"padded slug", func(d *RouteCategoryDraft) { d.Slug = " coffee " }, InvalidSlug, "route_category.slug"},
		{"blank icon", func(d *RouteCategoryDraft) { d.IconKey = " " }, EmptyField, "route_category.icon_key"},
		{"negative count", func(d *RouteCategoryDraft) { d.RouteCount = -1 }, NegativeValue, "route_category.route_count"},
		{"no localizations", func(d *RouteCategoryDraft) { d.Localizations = LocalizationMap{} }, EmptyField, "route_category.localizations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := valid(t)
			tt.edit(&draft)
			_, err := NewRouteCategory(draft)
			requireValidation(t, err, tt.kind, tt.field)
		})
	}
}
