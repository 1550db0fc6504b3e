// Package converters provides the built-in attribute converters.
//
// A converter claims a descriptor when the descriptor names it and the page
// either defines the source property or the descriptor has a default.
// Multi-valued converters wrap the value in a single-entry object keyed by
// locale or site.
package converters

import (
	"strings"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/pages"
)

// Converter ids and ranks.
const (
	IDI18n    = "i18n"
	IDSite    = "site"
	IDCSV     = "comma-separated-values"
	IDDefault = "default"

	RankI18n    = 0
	RankSite    = 500
	RankCSV     = 1000
	RankDefault = 10000
)

// DefaultKey keys multi-valued output when no locale or site resolves.
const DefaultKey = "default"

type base struct {
	id   string
	rank int
}

func (b base) Name() string { return b.id }
func (b base) Rank() int    { return b.rank }

func (b base) named(attr domain.AttributeDescriptor) bool {
	return strings.EqualFold(attr.ConverterID, b.id)
}

// applicable reports whether there is anything to emit for attr on page.
func applicable(attr domain.AttributeDescriptor, page driven.Resource) bool {
	return attr.HasDefault() || pages.Properties(page).Has(attr.SourceName)
}

// rawValue returns the page's own value for attr, or its default.
func rawValue(attr domain.AttributeDescriptor, page driven.Resource) string {
	props := pages.Properties(page)
	if props.Has(attr.SourceName) {
		return props.String(attr.SourceName)
	}
	return attr.DefaultValue
}

// FixValue coerces strings starting with "true" or "false" to booleans.
// Only an exact, case-insensitive "true" yields true.
func FixValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "true") || strings.HasPrefix(lower, "false") {
		return lower == "true"
	}
	return s
}

// Defaults returns the built-in converters.
func Defaults(locales driven.LocaleResolver) []driven.AttributeConverter {
	return []driven.AttributeConverter{
		NewI18n(locales),
		NewSite(),
		NewCSV(),
		NewDefault(),
	}
}
