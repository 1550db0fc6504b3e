// Package resolvers provides the default locale and name resolution for pages.
package resolvers

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/pages"
)

// Ensure LanguageLocaleResolver implements the interface.
var _ driven.LocaleResolver = (*LanguageLocaleResolver)(nil)

// LanguageLocaleResolver derives the locale from the inherited jcr:language.
type LanguageLocaleResolver struct{}

// NewLocaleResolver creates the default locale resolver.
func NewLocaleResolver() *LanguageLocaleResolver {
	return &LanguageLocaleResolver{}
}

// Locale returns the page language with dashes, e.g. "de-DE", or "".
func (r *LanguageLocaleResolver) Locale(page driven.Resource) string {
	lang := strings.TrimSpace(pages.InheritedString(page, pages.PropLanguage))
	if lang == "" {
		return ""
	}
	return FormatLocale(lang)
}

// FormatLocale normalises case and separators of a CMS language code
// without CLDR canonicalisation, so "iw" stays "iw". Codes that do not
// parse keep their spelling with "_" replaced by "-".
func FormatLocale(lang string) string {
	tag, err := language.Raw.Parse(lang)
	if err != nil {
		return strings.ReplaceAll(lang, "_", "-")
	}
	return tag.String()
}
