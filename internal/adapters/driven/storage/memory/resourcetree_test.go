package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

func sampleTree() *Node {
	return &Node{Children: []*Node{
		{Name: "content", Children: []*Node{
			Page("site", "commerce/page", map[string]any{"dwreSite": "site1"},
				Page("about", "commerce/page", map[string]any{"jcr:title": "About"},
					&Node{Name: "parsys", ResourceType: "commerce/parsys"},
				),
			),
		}},
		{Name: "dam", Children: []*Node{
			{Name: "logo.png", ResourceType: "dam:Asset", Renditions: []RenditionData{
				{Name: "original", MimeType: "image/png", Data: []byte("0123456789")},
			}},
		}},
	}}
}

func TestResourceTree_Resolve(t *testing.T) {
	tree := NewResourceTree(sampleTree())

	r, err := tree.Resolve(context.Background(), "/content/site/about")
	require.NoError(t, err)

	assert.Equal(t, "/content/site/about", r.Path())
	assert.Equal(t, "about", r.Name())
	assert.Equal(t, "cq:Page", r.ResourceType())
	content := r.Child("jcr:content")
	require.NotNil(t, content)
	assert.Equal(t, "commerce/page", content.ResourceType())
	assert.Equal(t, "About", content.Properties().String("jcr:title"))
	require.NotNil(t, r.Parent())
	assert.Equal(t, "/content/site", r.Parent().Path())
}

func TestResourceTree_Resolve_NotFound(t *testing.T) {
	tree := NewResourceTree(sampleTree())

	_, err := tree.Resolve(context.Background(), "/content/missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResourceTree_ChildReturnsNilInterface(t *testing.T) {
	tree := NewResourceTree(sampleTree())
	r, err := tree.Resolve(context.Background(), "/content")
	require.NoError(t, err)

	assert.Nil(t, r.Child("nope"))
}

func TestResourceTree_AssetRenditions(t *testing.T) {
	tree := NewResourceTree(sampleTree())
	r, err := tree.Resolve(context.Background(), "/dam/logo.png")
	require.NoError(t, err)

	a, ok := r.(driven.Asset)
	require.True(t, ok)
	rs := a.Renditions()
	require.Len(t, rs, 1)
	assert.Equal(t, int64(10), rs[0].Size())

	rc, err := rs[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
}

func TestLoadResourceTree(t *testing.T) {
	export := `{"children":[{"name":"content","children":[
		{"name":"page","resourceType":"cq:Page","liveSource":"/content/master/page","children":[
			{"name":"jcr:content","resourceType":"commerce/page","properties":{"jcr:title":"Hi"}}]}]}]}`

	tree, err := LoadResourceTree(strings.NewReader(export))
	require.NoError(t, err)

	r, err := tree.Resolve(context.Background(), "content/page")
	require.NoError(t, err)
	src, ok, err := tree.SourcePath(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/content/master/page", src)
}
