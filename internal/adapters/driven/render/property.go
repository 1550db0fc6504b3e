package render

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// DefaultMarkupProperty holds pre-rendered markup in exported trees.
const DefaultMarkupProperty = "renderedMarkup"

// Ensure PropertyRenderer implements the interface.
var _ driven.Renderer = PropertyRenderer("")

// PropertyRenderer serves markup stored on the resource itself. It backs
// offline builds where no CMS is reachable.
type PropertyRenderer string

// Render returns the markup property of resource.
func (p PropertyRenderer) Render(_ context.Context, resource driven.Resource, _ string, _ ...string) (string, error) {
	name := string(p)
	if name == "" {
		name = DefaultMarkupProperty
	}
	markup := resource.Properties().String(name)
	if markup == "" {
		return "", fmt.Errorf("render %s: no %s property: %w", resource.Path(), name, domain.ErrNotFound)
	}
	return markup, nil
}
