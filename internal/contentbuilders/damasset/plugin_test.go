package damasset

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

func newTree() *memory.ResourceTree {
	return memory.NewResourceTree(&memory.Node{Children: []*memory.Node{
		{Name: "dam", Properties: map[string]any{"dwreLibrary": "SharedLibrary"}, Children: []*memory.Node{
			{Name: "logo.png", ResourceType: "dam:Asset", Renditions: []memory.RenditionData{
				{Name: "cq5dam.thumbnail.48.48.png", MimeType: "image/png", Data: []byte("thumb")},
				{Name: "original", MimeType: "image/png", Data: []byte("original-bytes")},
			}},
			{Name: "de", Properties: map[string]any{"jcr:language": "de_DE"}, Children: []*memory.Node{
				{Name: "flyer.pdf", ResourceType: "dam:Asset", Renditions: []memory.RenditionData{
					{Name: "original", MimeType: "application/pdf", Data: []byte("%PDF")},
				}},
			}},
			{Name: "empty.png", ResourceType: "dam:Asset", Renditions: []memory.RenditionData{
				{Name: "cq5dam.web.png", MimeType: "image/png", Data: []byte("web")},
			}},
		}},
		memory.Page("page", "commerce/page", nil),
	}})
}

func resolve(t *testing.T, tree *memory.ResourceTree, p string) driven.Resource {
	t.Helper()
	r, err := tree.Resolve(context.Background(), p)
	require.NoError(t, err)
	return r
}

func TestPlugin_CanHandle(t *testing.T) {
	tree := newTree()
	p := New(Config{})

	assert.True(t, p.CanHandle(domain.ActionActivate, resolve(t, tree, "/dam/logo.png")))
	assert.False(t, p.CanHandle(domain.ActionActivate, resolve(t, tree, "/page")))
}

func TestPlugin_Create_Activate(t *testing.T) {
	tree := newTree()

	d, err := New(Config{}).Create(context.Background(), domain.ActionActivate, resolve(t, tree, "/dam/logo.png"), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.APITypeWebDAV, d.APIType())
	assert.Equal(t, domain.ContentTypeStaticAsset, d.ContentType())
	assert.Equal(t, "SharedLibrary", d.String(domain.FieldLibraryID))
	assert.Equal(t, DefaultScope, d.String(domain.FieldScope))
	assert.Equal(t, "logo.png", d.ID())
	assert.Equal(t, "/dam/logo.png", d.String(domain.FieldPath))
	assert.Equal(t, "/on/demandware.servlet/webdav/Sites/Libraries/SharedLibrary/default",
		d.Expand(d.String(domain.FieldWebDAVEndpoint)))

	payload := d.Payload()
	assert.Equal(t, int64(len("original-bytes")), payload[FieldSize])
	assert.Equal(t, "image/png", payload[FieldMimeType])
	assert.Equal(t, true, payload[FieldBase64])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("original-bytes")), payload[FieldData])
}

func TestPlugin_Create_RenditionPrefix(t *testing.T) {
	tree := newTree()

	d, err := New(Config{Rendition: "cq5dam.thumbnail"}).Create(context.Background(), domain.ActionActivate, resolve(t, tree, "/dam/logo.png"), nil)
	require.NoError(t, err)

	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("thumb")), d.Payload()[FieldData])
}

func TestPlugin_Create_InheritedScope(t *testing.T) {
	tree := newTree()

	d, err := New(Config{}).Create(context.Background(), domain.ActionDeactivate, resolve(t, tree, "/dam/de/flyer.pdf"), nil)
	require.NoError(t, err)

	assert.Equal(t, "de_DE", d.String(domain.FieldScope))
	assert.False(t, d.HasPayload())
}

func TestPlugin_Create_NoRendition(t *testing.T) {
	tree := newTree()

	d, err := New(Config{}).Create(context.Background(), domain.ActionActivate, resolve(t, tree, "/dam/empty.png"), nil)
	require.NoError(t, err)

	assert.True(t, d.HasPayload())
	assert.NotContains(t, d.Payload(), FieldData)
}
