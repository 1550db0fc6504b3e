package webdav

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/replog"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/core/services"
)

const share = "/on/demandware.servlet/webdav/Sites/Libraries/lib/default"

// fakeShare is an in-memory WebDAV share.
type fakeShare struct {
	mu          sync.Mutex
	collections map[string]bool
	files       map[string][]byte
	types       map[string]string
	calls       []string
	auth        []string
	headers     []http.Header
	failPut     bool
}

func multistatus(href string, collection bool) string {
	resourceType := ""
	if collection {
		resourceType = "<d:collection/>"
	}
	return `<?xml version="1.0" encoding="utf-8"?><d:multistatus xmlns:d="DAV:"><d:response><d:href>` + href +
		`</d:href><d:propstat><d:prop><d:displayname></d:displayname><d:resourcetype>` + resourceType +
		`</d:resourcetype></d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat></d:response></d:multistatus>`
}

func newFakeShare() *fakeShare {
	return &fakeShare{collections: map[string]bool{}, files: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeShare) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	p := strings.TrimSuffix(r.URL.Path, "/")
	f.calls = append(f.calls, r.Method+" "+strings.TrimSuffix(r.URL.EscapedPath(), "/"))
	user, pass, _ := r.BasicAuth()
	f.auth = append(f.auth, user+":"+pass)
	f.headers = append(f.headers, r.Header.Clone())

	switch r.Method {
	case "PROPFIND":
		if f.collections[p] || f.files[p] != nil {
			w.Header().Set("Content-Type", "application/xml; charset=utf-8")
			w.WriteHeader(http.StatusMultiStatus)
			_, _ = io.WriteString(w, multistatus(r.URL.Path, f.collections[p]))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case "MKCOL":
		f.collections[p] = true
		w.WriteHeader(http.StatusCreated)
	case http.MethodPut:
		if f.failPut {
			w.WriteHeader(http.StatusInsufficientStorage)
			return
		}
		f.files[p] = body
		f.types[p] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	case http.MethodDelete:
		if f.files[p] == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.files, p)
		w.WriteHeader(http.StatusNoContent)
	}
}

func newPlugin(t *testing.T, cfg Config) (*Plugin, *fakeShare) {
	t.Helper()
	fake := newFakeShare()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	instances := services.NewInstanceRegistry(&driven.InstanceClient{
		Config: domain.InstanceConfig{ID: "prod", Endpoint: strings.TrimPrefix(server.URL, "http://"), Scheme: "http"},
		HTTP:   server.Client(),
	})
	return New(cfg, instances, nil), fake
}

func staticAsset(name string, data []byte) *domain.Delivery {
	d := domain.NewDelivery()
	d.SetAPIType(domain.APITypeWebDAV)
	d.SetContentType(domain.ContentTypeStaticAsset)
	d.Set(domain.FieldWebDAVEndpoint, "/on/demandware.servlet/webdav/Sites/Libraries/{library_id}/{scope}")
	d.Set(domain.FieldLibraryID, "lib")
	d.Set(domain.FieldScope, "default")
	d.Set(domain.FieldPath, "/content/dam/"+name)
	if data != nil {
		p := d.Payload()
		p.Set("mimetype", "image/png")
		p.Set("base64", true)
		p.Set("data", base64.StdEncoding.EncodeToString(data))
	}
	return d
}

func action(t domain.ActionType) domain.ReplicationAction {
	return domain.ReplicationAction{
		Type:  t,
		Path:  "/content/dam/logo.png",
		Agent: &domain.AgentConfig{TransportURI: "demandware://prod"},
	}
}

func TestPlugin_CanHandle(t *testing.T) {
	p, _ := newPlugin(t, Config{})

	assert.True(t, p.CanHandle(domain.APITypeWebDAV, domain.ContentTypeStaticAsset))
	assert.False(t, p.CanHandle(domain.APITypeOCAPI, domain.ContentTypeStaticAsset))
}

func TestPlugin_Activate_CreatesFoldersAndUploads(t *testing.T) {
	p, fake := newPlugin(t, Config{User: "dav", Password: "secret"})

	ok, err := p.Deliver(context.Background(), staticAsset("my logo.png", []byte("png-bytes")), action(domain.ActionActivate), replog.New("test"))
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, []string{
		"PROPFIND " + share + "/content",
		"MKCOL " + share + "/content",
		"PROPFIND " + share + "/content/dam",
		"MKCOL " + share + "/content/dam",
		"PUT " + share + "/content/dam/my%20logo.png",
	}, fake.calls)
	assert.Equal(t, []byte("png-bytes"), fake.files[share+"/content/dam/my logo.png"])
	assert.Equal(t, "image/png", fake.types[share+"/content/dam/my logo.png"])
	assert.Equal(t, "dav:secret", fake.auth[0])
}

func TestPlugin_Activate_SkipsExistingFolders(t *testing.T) {
	p, fake := newPlugin(t, Config{})
	fake.collections[share+"/content"] = true
	fake.collections[share+"/content/dam"] = true

	ok, err := p.Deliver(context.Background(), staticAsset("logo.png", []byte("x")), action(domain.ActionActivate), replog.New("test"))
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Len(t, fake.calls, 3)
	assert.Equal(t, ":", fake.auth[0])
}

func TestPlugin_Activate_RawData(t *testing.T) {
	p, fake := newPlugin(t, Config{})
	d := staticAsset("header.vs", nil)
	d.Payload().Set("mimetype", "application/xhtml+xml")
	d.Payload().Set("data", "<div/>")

	ok, err := p.Deliver(context.Background(), d, action(domain.ActionActivate), replog.New("test"))
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, []byte("<div/>"), fake.files[share+"/content/dam/header.vs"])
}

func TestPlugin_Activate_MissingDataFails(t *testing.T) {
	p, fake := newPlugin(t, Config{})
	d := staticAsset("logo.png", nil)
	d.Payload().Set("mimetype", "image/png")
	log := replog.New("test")

	ok, err := p.Deliver(context.Background(), d, action(domain.ActionActivate), log)
	require.NoError(t, err)

	assert.False(t, ok)
	assert.Empty(t, fake.calls)
	assert.True(t, log.Has(replog.LevelWarn))
}

func TestPlugin_Activate_NoPayloadIsError(t *testing.T) {
	p, _ := newPlugin(t, Config{})

	_, err := p.Deliver(context.Background(), staticAsset("logo.png", nil), action(domain.ActionActivate), replog.New("test"))

	assert.ErrorIs(t, err, domain.ErrMissingPayload)
}

func TestPlugin_Activate_PutFailureIsError(t *testing.T) {
	p, fake := newPlugin(t, Config{})
	fake.failPut = true

	ok, err := p.Deliver(context.Background(), staticAsset("logo.png", []byte("x")), action(domain.ActionActivate), replog.New("test"))

	assert.False(t, ok)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInsufficientStorage, se.StatusCode)
}

func TestPlugin_Activate_SendsAgentHeaders(t *testing.T) {
	p, fake := newPlugin(t, Config{})
	fake.collections[share+"/content"] = true
	fake.collections[share+"/content/dam"] = true
	a := action(domain.ActionActivate)
	a.Agent.Headers = []string{"x-dw-client-id: abc"}

	ok, err := p.Deliver(context.Background(), staticAsset("logo.png", []byte("x")), a, replog.New("test"))
	require.NoError(t, err)

	assert.True(t, ok)
	for _, h := range fake.headers {
		assert.Equal(t, "abc", h.Get("x-dw-client-id"))
	}
}

func TestPlugin_Activate_CanceledContext(t *testing.T) {
	p, fake := newPlugin(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := p.Deliver(ctx, staticAsset("logo.png", []byte("x")), action(domain.ActionActivate), replog.New("test"))

	assert.False(t, ok)
	require.Error(t, err)
	assert.Empty(t, fake.calls)
}

func TestPlugin_Delete(t *testing.T) {
	p, fake := newPlugin(t, Config{})
	fake.files[share+"/content/dam/logo.png"] = []byte("x")

	ok, err := p.Deliver(context.Background(), staticAsset("logo.png", nil), action(domain.ActionDelete), replog.New("test"))
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Empty(t, fake.files)
}

func TestPlugin_DeleteMissingIsSuccess(t *testing.T) {
	p, _ := newPlugin(t, Config{})

	ok, err := p.Deliver(context.Background(), staticAsset("gone.png", nil), action(domain.ActionDeactivate), replog.New("test"))

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlugin_MissingPathIsError(t *testing.T) {
	p, _ := newPlugin(t, Config{})
	d := domain.NewDelivery()
	d.Set(domain.FieldWebDAVEndpoint, "/share")

	_, err := p.Deliver(context.Background(), d, action(domain.ActionActivate), replog.New("test"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
