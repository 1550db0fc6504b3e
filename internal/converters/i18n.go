package converters

import (
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// I18n keys the value by the page locale.
type I18n struct {
	base
	locales driven.LocaleResolver
}

var _ driven.AttributeConverter = (*I18n)(nil)

// NewI18n creates the localised converter.
func NewI18n(locales driven.LocaleResolver) *I18n {
	return &I18n{base: base{id: IDI18n, rank: RankI18n}, locales: locales}
}

// CanHandle claims descriptors naming "i18n".
func (c *I18n) CanHandle(attr domain.AttributeDescriptor, page driven.Resource) bool {
	return c.named(attr) && applicable(attr, page)
}

// Convert returns {"<locale>|default": value}.
func (c *I18n) Convert(attr domain.AttributeDescriptor, page driven.Resource) any {
	key := DefaultKey
	if c.locales != nil {
		if locale := c.locales.Locale(page); locale != "" {
			key = locale
		}
	}
	return map[string]any{key: FixValue(rawValue(attr, page))}
}
