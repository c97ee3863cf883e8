package catalogue

import (
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"
)

// LocalizedStringSet is the copy shown for one locale. Name is required.
type LocalizedStringSet struct {
	Name        string  `json:"name"`
	ShortLabel  *string `json:"shortLabel,omitempty"`
	Description *string `json:"description,omitempty"`
}

// LocalizationMap maps canonical BCP 47 tags to their copy. It is never empty.
type LocalizationMap struct {
	entries map[string]LocalizedStringSet
	tags    []language.Tag
	matcher language.Matcher
}

// NewLocalizationMap validates and canonicalises values. Locale keys must be
// unpadded, parseable BCP 47 tags; two keys naming the same tag are rejected.
func NewLocalizationMap(field string, values map[string]LocalizedStringSet) (LocalizationMap, error) {
	if len(values) == 0 {
		return LocalizationMap{}, &ValidationError{Kind: EmptyField, Field: field}
	}

	entries := make(map[string]LocalizedStringSet, len(values))
	for _, raw := range slices.Sorted(maps.Keys(values)) {
		set := values[raw]
		if raw == "" || strings.TrimSpace(raw) != raw {
			return LocalizationMap{}, &ValidationError{Kind: InvalidLocale, Field: field, Locale: raw}
		}
		tag, err := language.Parse(raw)
		if err != nil {
			return LocalizationMap{}, &ValidationError{Kind: InvalidLocale, Field: field, Locale: raw}
		}
		canonical := tag.String()
		if _, dup := entries[canonical]; dup {
			return LocalizationMap{}, &ValidationError{Kind: InvalidLocale, Field: field, Locale: raw}
		}
		if strings.TrimSpace(set.Name) == "" {
			return LocalizationMap{}, &ValidationError{Kind: EmptyField, Field: field + "[" + canonical + "].name", Locale: canonical}
		}
		entries[canonical] = set
	}
	return newLocalizationMap(entries), nil
}

func newLocalizationMap(entries map[string]LocalizedStringSet) LocalizationMap {
	locales := slices.Sorted(maps.Keys(entries))
	tags := make([]language.Tag, 0, len(locales))
	for _, locale := range locales {
		tags = append(tags, language.MustParse(locale))
	}
	return LocalizationMap{entries: entries, tags: tags, matcher: language.NewMatcher(tags)}
}

// Locales returns the canonical locale tags in sorted order.
func (m LocalizationMap) Locales() []string {
	return slices.Sorted(maps.Keys(m.entries))
}

func (m LocalizationMap) Len() int { return len(m.entries) }

// Get returns the copy stored for locale after canonicalising it.
func (m LocalizationMap) Get(locale string) (LocalizedStringSet, bool) {
	tag, err := language.Parse(locale)
	if err != nil {
		return LocalizedStringSet{}, false
	}
	set, ok := m.entries[tag.String()]
	return set, ok
}

// Resolve picks the best stored locale for the caller's preferences, falling
// back to the first locale in sorted order.
func (m LocalizationMap) Resolve(preferred ...language.Tag) (LocalizedStringSet, string) {
	if len(m.tags) == 0 {
		return LocalizedStringSet{}, ""
	}
	_, index, _ := m.matcher.Match(preferred...)
	locale := m.tags[index].String()
	return m.entries[locale], locale
}

func (m LocalizationMap) MarshalJSON() ([]byte, error) {
	if m.entries == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.entries)
}

// UnmarshalJSON validates like NewLocalizationMap.
func (m *LocalizationMap) UnmarshalJSON(data []byte) error {
	var values map[string]LocalizedStringSet
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	parsed, err := NewLocalizationMap("localizations", values)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
