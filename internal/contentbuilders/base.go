// Package contentbuilders holds the shared parts of the builder plugins.
//
// Each subpackage implements one driven.ContentBuilderPlugin:
//
//   - contentasset: page metadata to an OCAPI content asset
//   - contentassetbody: rendered paragraph system as the asset body
//   - contentslot: page properties to an OCAPI slot configuration
//   - damasset: binary asset as a WebDAV static file
//   - renderingtemplate: rendered page as a WebDAV template
package contentbuilders

import (
	"strings"

	"github.com/custodia-labs/sfcc-replicator/internal/converters"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/pages"
)

// Base carries the registry identity of a plugin.
type Base struct {
	name string
	rank int
}

// NewBase creates a plugin identity.
func NewBase(name string, rank int) Base {
	return Base{name: name, rank: rank}
}

// Name returns the task name.
func (b Base) Name() string { return b.name }

// Rank returns the chain position.
func (b Base) Rank() int { return b.rank }

// WithRank returns p reordered to rank. A zero rank keeps p unchanged.
func WithRank(p driven.ContentBuilderPlugin, rank int) driven.ContentBuilderPlugin {
	if rank == 0 || rank == p.Rank() {
		return p
	}
	return &reranked{ContentBuilderPlugin: p, rank: rank}
}

type reranked struct {
	driven.ContentBuilderPlugin
	rank int
}

func (r *reranked) Rank() int { return r.rank }

// RenderSelector is the selector requesting commerce template markup.
const RenderSelector = "vm"

// Matcher selects pages by the resource type of their content node.
type Matcher struct {
	Supported []string
	Ignored   []string
}

// Matches reports whether r is a page whose content type is supported and
// not ignored. A matcher with no supported types matches nothing.
func (m Matcher) Matches(r driven.Resource) bool {
	content := pages.Content(r)
	if content == nil {
		return false
	}
	for _, t := range m.Ignored {
		if content.IsResourceType(t) {
			return false
		}
	}
	for _, t := range m.Supported {
		if content.IsResourceType(t) {
			return true
		}
	}
	return false
}

// Start returns existing, or a new document when existing is nil.
func Start(existing *domain.Delivery) *domain.Delivery {
	if existing != nil {
		return existing
	}
	return domain.NewDelivery()
}

// MarkupText wraps source as a localised rich text value. A nil source
// yields the type marker alone.
func MarkupText(source any, locale string) map[string]any {
	if locale == "" {
		locale = "default"
	}
	text := map[string]any{"_type": "markup_text"}
	if source != nil {
		text["source"] = converters.FixValue(source)
	}
	return map[string]any{locale: text}
}

// TemplatePath appends the ".vs" template suffix when missing.
func TemplatePath(p string) string {
	if p == "" || strings.HasSuffix(p, ".vs") {
		return p
	}
	return p + ".vs"
}

// OrDefault returns v unless it is blank.
func OrDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
