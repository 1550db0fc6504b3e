package ocapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/core/services"
)

// recordedRequest is one request seen by the fake data API.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// fakeDataAPI is an in-memory OCAPI data API keyed by request path.
type fakeDataAPI struct {
	mu         sync.Mutex
	objects    map[string]string
	version    int
	failWrites bool
	requests   []recordedRequest
}

func newFakeDataAPI() *fakeDataAPI {
	return &fakeDataAPI{objects: map[string]string{}}
}

func (f *fakeDataAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   string(body),
	})

	if r.Method != http.MethodGet && f.failWrites {
		http.Error(w, `{"fault":"internal"}`, http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodGet:
		etag, ok := f.objects[r.URL.Path]
		if !ok {
			http.Error(w, `{"fault":"NotFound"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("ETag", etag)
		fmt.Fprint(w, `{}`)
	case http.MethodPost:
		if r.Header.Get(MethodOverrideHeader) != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		f.store(r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	case http.MethodPatch:
		if r.Header.Get("If-Match") != f.objects[r.URL.Path] {
			w.WriteHeader(http.StatusPreconditionFailed)
			return
		}
		f.store(r.URL.Path)
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakeDataAPI) store(p string) {
	f.version++
	f.objects[p] = fmt.Sprintf(`"v%d"`, f.version)
}

func (f *fakeDataAPI) seed(p, etag string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[p] = etag
}

func (f *fakeDataAPI) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.Method
	}
	return out
}

func (f *fakeDataAPI) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// stubTokenProvider implements driven.AccessTokenProvider.
type stubTokenProvider struct {
	name  string
	rank  int
	token string
	err   error
	users []string
}

func (p *stubTokenProvider) Name() string { return p.name }
func (p *stubTokenProvider) Rank() int    { return p.rank }

func (p *stubTokenProvider) AccessToken(_ context.Context, userID string) (string, error) {
	p.users = append(p.users, userID)
	return p.token, p.err
}

// recordingMetrics implements driven.MetricsSink.
type recordingMetrics struct {
	mu        sync.Mutex
	exchanges []string
}

func (m *recordingMetrics) DeliveryCompleted(string, string, domain.DeliveryState, bool) {}
func (m *recordingMetrics) TokenFetched(bool)                                          {}

func (m *recordingMetrics) ExchangeCompleted(method string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchanges = append(m.exchanges, fmt.Sprintf("%s %d", method, status))
}

// fixture wires an engine against a fake data API.
type fixture struct {
	api     *fakeDataAPI
	server  *httptest.Server
	engine  *Engine
	tokens  *services.RankedRegistry[driven.AccessTokenProvider]
	metrics *recordingMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	api := newFakeDataAPI()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	instances := services.NewInstanceRegistry(&driven.InstanceClient{
		Config: domain.InstanceConfig{
			ID:       "prod",
			Endpoint: strings.TrimPrefix(server.URL, "http://"),
			Scheme:   "http",
		},
		HTTP: server.Client(),
	})
	tokens := services.NewRankedRegistry[driven.AccessTokenProvider](
		&stubTokenProvider{name: ProviderID("client", "prod"), token: "tok-prod"},
	)
	metrics := &recordingMetrics{}
	return &fixture{
		api:     api,
		server:  server,
		engine:  NewEngine(Config{TokenClientID: "client"}, instances, tokens, metrics),
		tokens:  tokens,
		metrics: metrics,
	}
}

func agent() *domain.AgentConfig {
	return &domain.AgentConfig{
		Name:         "publish",
		TransportURI: "demandware://prod",
		UserID:       "replicator",
		OAuth:        true,
		Headers:      []string{"X-Custom: yes", "malformed"},
	}
}

func contentAsset() *domain.Delivery {
	d := domain.NewDelivery()
	d.SetAPIType(domain.APITypeOCAPI)
	d.SetContentType(domain.ContentTypeContentAsset)
	d.Set(domain.FieldAPIEndpoint, "/libraries/{library_id}/content/{id}")
	d.Set(domain.FieldLibraryID, "lib")
	d.Set(domain.FieldID, "about")
	d.Payload().Set("name", map[string]any{"default": "About"})
	return d
}

const assetPath = "/s/-/dw/data/v17_6/libraries/lib/content/about"
