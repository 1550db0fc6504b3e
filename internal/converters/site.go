package converters

import (
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/pages"
)

// Site keys the value by the page's inherited commerce site.
type Site struct {
	base
}

var _ driven.AttributeConverter = (*Site)(nil)

// NewSite creates the site-scoped converter.
func NewSite() *Site {
	return &Site{base{id: IDSite, rank: RankSite}}
}

// CanHandle claims descriptors naming "site".
func (c *Site) CanHandle(attr domain.AttributeDescriptor, page driven.Resource) bool {
	return c.named(attr) && applicable(attr, page)
}

// Convert returns {"<site>|default": value}.
func (c *Site) Convert(attr domain.AttributeDescriptor, page driven.Resource) any {
	key := pages.InheritedStringOr(page, pages.PropSite, DefaultKey)
	return map[string]any{key: FixValue(rawValue(attr, page))}
}
