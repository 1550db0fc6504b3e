package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
)

// Resource is a node in the CMS content tree.
type Resource interface {
	// Path returns the absolute repository path.
	Path() string

	// Name returns the last path segment.
	Name() string

	// ResourceType returns the node's rendering type.
	ResourceType() string

	// IsResourceType reports whether the node is of the given type or
	// inherits from it.
	IsResourceType(resourceType string) bool

	// Properties returns the node's own properties.
	Properties() domain.Properties

	// Parent returns the parent node, or nil at the root.
	Parent() Resource

	// Child returns the named child, or nil.
	Child(name string) Resource

	// Children returns the direct children in document order.
	Children() []Resource
}

// Asset is a resource backed by binary renditions.
type Asset interface {
	Resource

	// Renditions returns the available renditions.
	Renditions() []Rendition
}

// Rendition is one binary representation of an asset.
type Rendition interface {
	Name() string
	MimeType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// ResourceResolver looks up resources by path.
type ResourceResolver interface {
	// Resolve returns the resource at path or domain.ErrNotFound.
	Resolve(ctx context.Context, path string) (Resource, error)
}

// LiveRelationships exposes multi-site copy relations between pages.
type LiveRelationships interface {
	// SourcePath returns the path the resource was rolled out from.
	// The boolean is false when the resource is not a live copy.
	SourcePath(ctx context.Context, resource Resource) (string, bool, error)
}

// Renderer renders a resource through the CMS rendering pipeline.
type Renderer interface {
	// Render returns the markup for resource requested with method and selectors.
	Render(ctx context.Context, resource Resource, method string, selectors ...string) (string, error)
}
