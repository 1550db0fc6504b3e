package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// Ensure ResourceTree implements the interfaces.
var (
	_ driven.ResourceResolver  = (*ResourceTree)(nil)
	_ driven.LiveRelationships = (*ResourceTree)(nil)
)

// Node is one entry of an exported content tree.
type Node struct {
	Name         string          `json:"name"`
	ResourceType string          `json:"resourceType,omitempty"`
	SuperTypes   []string        `json:"superTypes,omitempty"`
	Properties   map[string]any  `json:"properties,omitempty"`
	Children     []*Node         `json:"children,omitempty"`
	Renditions   []RenditionData `json:"renditions,omitempty"`
	LiveSource   string          `json:"liveSource,omitempty"`
}

// RenditionData is a binary rendition of an asset node.
// Data is base64 encoded in the JSON export.
type RenditionData struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// ResourceTree is an in-memory content tree that resolves resources by path.
type ResourceTree struct {
	mu     sync.RWMutex
	byPath map[string]*resource
}

// NewResourceTree indexes the tree rooted at root. The root's children are
// mounted under "/".
func NewResourceTree(root *Node) *ResourceTree {
	t := &ResourceTree{}
	t.Replace(root)
	return t
}

// LoadResourceTree reads a JSON export.
func LoadResourceTree(r io.Reader) (*ResourceTree, error) {
	var root Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode resource tree: %w", err)
	}
	return NewResourceTree(&root), nil
}

// Replace swaps the whole tree.
func (t *ResourceTree) Replace(root *Node) {
	index := make(map[string]*resource)
	if root != nil {
		r := &resource{node: root, path: "/"}
		index["/"] = r
		r.link(index)
	}
	t.mu.Lock()
	t.byPath = index
	t.mu.Unlock()
}

// Resolve returns the resource at p.
func (t *ResourceTree) Resolve(_ context.Context, p string) (driven.Resource, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.byPath[path.Clean("/"+p)]
	if !ok {
		return nil, fmt.Errorf("resource %s: %w", p, domain.ErrNotFound)
	}
	return r.asDriven(), nil
}

// SourcePath returns the live copy source configured on the node.
func (t *ResourceTree) SourcePath(_ context.Context, res driven.Resource) (string, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.byPath[res.Path()]
	if !ok || r.node.LiveSource == "" {
		return "", false, nil
	}
	return r.node.LiveSource, true, nil
}

type resource struct {
	node     *Node
	path     string
	parent   *resource
	children []*resource
}

func (r *resource) link(index map[string]*resource) {
	for _, child := range r.node.Children {
		c := &resource{node: child, path: path.Join(r.path, child.Name), parent: r}
		r.children = append(r.children, c)
		index[c.path] = c
		c.link(index)
	}
}

func (r *resource) asDriven() driven.Resource {
	if len(r.node.Renditions) > 0 {
		return &asset{resource: r}
	}
	return r
}

func (r *resource) Path() string { return r.path }

func (r *resource) Name() string {
	if r.path == "/" {
		return ""
	}
	return r.node.Name
}

func (r *resource) ResourceType() string {
	if r.node.ResourceType != "" {
		return r.node.ResourceType
	}
	if s, ok := r.node.Properties["sling:resourceType"].(string); ok {
		return s
	}
	return ""
}

func (r *resource) IsResourceType(resourceType string) bool {
	if resourceType == "" {
		return false
	}
	if r.ResourceType() == resourceType {
		return true
	}
	for _, st := range r.node.SuperTypes {
		if st == resourceType {
			return true
		}
	}
	return false
}

func (r *resource) Properties() domain.Properties {
	if r.node.Properties == nil {
		return domain.Properties{}
	}
	return domain.Properties(r.node.Properties)
}

func (r *resource) Parent() driven.Resource {
	if r.parent == nil {
		return nil
	}
	return r.parent.asDriven()
}

func (r *resource) Child(name string) driven.Resource {
	for _, c := range r.children {
		if c.node.Name == name {
			return c.asDriven()
		}
	}
	return nil
}

func (r *resource) Children() []driven.Resource {
	out := make([]driven.Resource, 0, len(r.children))
	for _, c := range r.children {
		out = append(out, c.asDriven())
	}
	return out
}

type asset struct {
	*resource
}

var _ driven.Asset = (*asset)(nil)

func (a *asset) Renditions() []driven.Rendition {
	out := make([]driven.Rendition, 0, len(a.node.Renditions))
	for i := range a.node.Renditions {
		out = append(out, rendition{data: &a.node.Renditions[i]})
	}
	return out
}

type rendition struct {
	data *RenditionData
}

func (r rendition) Name() string     { return r.data.Name }
func (r rendition) MimeType() string { return r.data.MimeType }
func (r rendition) Size() int64      { return int64(len(r.data.Data)) }

func (r rendition) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(r.data.Data)), nil
}

// PageType is the resource type of page nodes built by Page.
const PageType = "cq:Page"

// Page builds a page node whose jcr:content child carries props. Child
// pages are mounted beside the content node, other nodes inside it.
func Page(name, resourceType string, props map[string]any, children ...*Node) *Node {
	content := &Node{Name: "jcr:content", ResourceType: resourceType, Properties: props}
	page := &Node{Name: name, ResourceType: PageType, Children: []*Node{content}}
	for _, c := range children {
		if c.ResourceType == PageType {
			page.Children = append(page.Children, c)
			continue
		}
		content.Children = append(content.Children, c)
	}
	return page
}
