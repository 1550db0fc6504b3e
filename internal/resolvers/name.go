package resolvers

import (
	"context"
	"path"
	"strings"

	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// Ensure LiveCopyNameResolver implements the interface.
var _ driven.NameResolver = (*LiveCopyNameResolver)(nil)

// LiveCopyNameResolver names a page after its live copy source, so language
// copies of one master page replicate to the same content asset.
type LiveCopyNameResolver struct {
	relations driven.LiveRelationships
}

// NewNameResolver creates the default name resolver. relations may be nil.
func NewNameResolver(relations driven.LiveRelationships) *LiveCopyNameResolver {
	return &LiveCopyNameResolver{relations: relations}
}

// Name returns the source page name of a live copy, else the resource name.
func (r *LiveCopyNameResolver) Name(ctx context.Context, resource driven.Resource) string {
	if r.relations != nil {
		src, ok, err := r.relations.SourcePath(ctx, resource)
		if err == nil && ok {
			if name := path.Base(strings.TrimRight(src, "/")); name != "" && name != "." && name != "/" {
				return name
			}
		}
	}
	return resource.Name()
}
