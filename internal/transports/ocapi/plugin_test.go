package ocapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/replog"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/core/services"
)

func activate() domain.ReplicationAction {
	return domain.ReplicationAction{Type: domain.ActionActivate, Path: "/content/site/about", Agent: agent()}
}

func deactivate() domain.ReplicationAction {
	return domain.ReplicationAction{Type: domain.ActionDeactivate, Path: "/content/site/about", Agent: agent()}
}

func TestPlugin_CanHandle(t *testing.T) {
	f := newFixture(t)
	asset := NewContentAsset(f.engine)
	slot := NewContentSlotConfig(f.engine)

	assert.True(t, asset.CanHandle(domain.APITypeOCAPI, domain.ContentTypeContentAsset))
	assert.False(t, asset.CanHandle(domain.APITypeWebDAV, domain.ContentTypeContentAsset))
	assert.False(t, asset.CanHandle(domain.APITypeOCAPI, domain.ContentTypeContentSlotConfig))
	assert.True(t, slot.CanHandle(domain.APITypeOCAPI, domain.ContentTypeContentSlotConfig))
	assert.Equal(t, ContentAssetTaskName, asset.Name())
	assert.Equal(t, ContentSlotConfigRank, slot.Rank())
}

func TestPlugin_Activate_CreatesMissingObject(t *testing.T) {
	f := newFixture(t)
	log := replog.New("test")

	ok, err := NewContentAsset(f.engine).Deliver(context.Background(), contentAsset(), activate(), log)
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, []string{http.MethodGet, http.MethodPost}, f.api.methods())
	write := f.api.last()
	assert.Equal(t, assetPath, write.Path)
	assert.Equal(t, http.MethodPut, write.Header.Get(MethodOverrideHeader))
	assert.Equal(t, "application/json", write.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", write.Header.Get("Cache-Control"))
	assert.Equal(t, "Bearer tok-prod", write.Header.Get("Authorization"))
	assert.Equal(t, "yes", write.Header.Get("X-Custom"))
	assert.JSONEq(t, `{"name":{"default":"About"}}`, write.Body)
	assert.Equal(t, []string{"GET 404", "POST 201"}, f.metrics.exchanges)
	assert.False(t, log.Has(replog.LevelError))
}

func TestPlugin_Activate_UpdatesWithETag(t *testing.T) {
	f := newFixture(t)
	f.api.seed(assetPath, `"e1"`)

	ok, err := NewContentAsset(f.engine).Deliver(context.Background(), contentAsset(), activate(), replog.New("test"))
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, []string{http.MethodGet, http.MethodPatch}, f.api.methods())
	assert.Equal(t, `"e1"`, f.api.last().Header.Get("If-Match"))
	assert.Empty(t, f.api.last().Header.Get(MethodOverrideHeader))
}

func TestPlugin_Activate_WithoutPayloadFails(t *testing.T) {
	f := newFixture(t)
	d := domain.NewDelivery()
	d.SetAPIType(domain.APITypeOCAPI)
	d.SetContentType(domain.ContentTypeContentAsset)
	d.Set(domain.FieldAPIEndpoint, "/libraries/{library_id}/content/{id}")
	log := replog.New("test")

	ok, err := NewContentAsset(f.engine).Deliver(context.Background(), d, activate(), log)
	require.NoError(t, err)

	assert.False(t, ok)
	assert.Equal(t, []string{http.MethodGet}, f.api.methods())
	assert.True(t, log.Has(replog.LevelWarn))
}

func TestPlugin_Activate_ServerErrorFails(t *testing.T) {
	f := newFixture(t)
	f.api.failWrites = true
	log := replog.New("test")

	ok, err := NewContentAsset(f.engine).Deliver(context.Background(), contentAsset(), activate(), log)
	require.NoError(t, err)

	assert.False(t, ok)
	assert.True(t, log.Has(replog.LevelError))
}

func TestPlugin_Deactivate_DeletesExisting(t *testing.T) {
	f := newFixture(t)
	f.api.seed(assetPath, `"e1"`)

	ok, err := NewContentAsset(f.engine).Deliver(context.Background(), contentAsset(), deactivate(), replog.New("test"))
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, []string{http.MethodGet, http.MethodDelete}, f.api.methods())
	assert.Equal(t, assetPath, f.api.last().Path)
}

func TestPlugin_Deactivate_MissingIsNoop(t *testing.T) {
	f := newFixture(t)
	log := replog.New("test")

	ok, err := NewContentAsset(f.engine).Deliver(context.Background(), contentAsset(), deactivate(), log)
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, []string{http.MethodGet}, f.api.methods())
	assert.False(t, log.Has(replog.LevelError), "404 bodies are logged at debug")
}

func TestPlugin_SlotConfigAddsContext(t *testing.T) {
	f := newFixture(t)
	d := domain.NewDelivery()
	d.SetAPIType(domain.APITypeOCAPI)
	d.SetContentType(domain.ContentTypeContentSlotConfig)
	d.Set(domain.FieldAPIEndpoint, "/sites/{site_id}/slots/{slot_id}/slot_configurations/{id}")
	d.Set(domain.FieldSiteID, "SiteGenesis")
	d.Set(domain.FieldSlotID, "home-main")
	d.Set(domain.FieldID, "banner")
	d.Set(domain.FieldContext, "category=mens")
	d.Payload().Set("enabled", true)

	ok, err := NewContentSlotConfig(f.engine).Deliver(context.Background(), d, activate(), replog.New("test"))
	require.NoError(t, err)

	assert.True(t, ok)
	write := f.api.last()
	assert.Equal(t, "/s/-/dw/data/v17_6/sites/SiteGenesis/slots/home-main/slot_configurations/banner", write.Path)
	assert.Equal(t, "context=category%3Dmens", write.Query)
}

func TestPlugin_MissingEndpointIsError(t *testing.T) {
	f := newFixture(t)
	d := domain.NewDelivery()
	d.Set(domain.FieldID, "x")

	_, err := NewContentAsset(f.engine).Deliver(context.Background(), d, activate(), replog.New("test"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.api.methods())
}

func TestPlugin_NoAgentIsError(t *testing.T) {
	f := newFixture(t)
	action := activate()
	action.Agent = nil

	_, err := NewContentAsset(f.engine).Deliver(context.Background(), contentAsset(), action, replog.New("test"))

	assert.ErrorIs(t, err, domain.ErrNoAgentConfig)
}

func TestPlugin_UnreachableInstanceFails(t *testing.T) {
	f := newFixture(t)
	f.server.Close()
	log := replog.New("test")

	ok, err := NewContentAsset(f.engine).Deliver(context.Background(), contentAsset(), activate(), log)
	require.NoError(t, err)

	assert.False(t, ok)
	assert.True(t, log.Has(replog.LevelError))
	assert.Equal(t, []string{"GET 0", "POST 0"}, f.metrics.exchanges)
}

func TestEngine_TokenProviderFallback(t *testing.T) {
	f := newFixture(t)
	fallback := &stubTokenProvider{name: ProviderID("other", "stage"), token: "tok-fallback"}
	f.tokens.Replace(fallback)

	_, err := NewContentAsset(f.engine).Deliver(context.Background(), contentAsset(), activate(), replog.New("test"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-fallback", f.api.last().Header.Get("Authorization"))
	assert.Equal(t, []string{"replicator"}, fallback.users)
}

func TestEngine_TokenProviderFallbackPrefersHighestRank(t *testing.T) {
	f := newFixture(t)
	low := &stubTokenProvider{name: ProviderID("other", "low"), rank: 1, token: "tok-low"}
	high := &stubTokenProvider{name: ProviderID("other", "high"), rank: 100, token: "tok-high"}
	f.tokens.Replace(high, low)

	_, err := NewContentAsset(f.engine).Deliver(context.Background(), contentAsset(), activate(), replog.New("test"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-high", f.api.last().Header.Get("Authorization"))
	assert.Empty(t, low.users)
}

func TestEngine_InsecureAgentSkipsOAuth(t *testing.T) {
	f := newFixture(t)
	action := activate()
	action.Agent.TransportURI = "http://prod"
	log := replog.New("test")

	_, err := NewContentAsset(f.engine).Deliver(context.Background(), contentAsset(), action, log)
	require.NoError(t, err)

	assert.Empty(t, f.api.last().Header.Get("Authorization"))
	assert.True(t, log.Has(replog.LevelWarn))
}

func TestEngine_TokenErrorIsLogged(t *testing.T) {
	f := newFixture(t)
	f.tokens.Replace(&stubTokenProvider{name: ProviderID("client", "prod"), err: domain.ErrTokenFetchFailed})
	log := replog.New("test")

	ok, err := NewContentAsset(f.engine).Deliver(context.Background(), contentAsset(), activate(), log)
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Empty(t, f.api.last().Header.Get("Authorization"))
	assert.True(t, log.Has(replog.LevelError))
}

func TestEngine_URL(t *testing.T) {
	e := NewEngine(Config{Path: "/custom", Version: "v21_3"}, services.NewInstanceRegistry(), nil, nil)
	client := &driven.InstanceClient{Config: domain.InstanceConfig{Endpoint: "dev.example.com"}}

	assert.Equal(t, "https://dev.example.com/custom/v21_3/libraries/x", e.URL(client, "/libraries/x", nil))
}

func TestFolderPlugin_AssignsEveryFolder(t *testing.T) {
	f := newFixture(t)
	d := contentAsset()
	d.AppendFolders("root", "news")
	p := NewFolderAssignments(f.engine, "")

	ok, err := p.Deliver(context.Background(), d, activate(), replog.New("test"))
	require.NoError(t, err)

	assert.True(t, ok)
	require.Len(t, f.api.requests, 2)
	first, second := f.api.requests[0], f.api.requests[1]
	assert.Equal(t, http.MethodPut, first.Method)
	assert.Equal(t, "/s/-/dw/data/v17_6/libraries/lib/folder_assignments/about/root", first.Path)
	assert.Equal(t, "/s/-/dw/data/v17_6/libraries/lib/folder_assignments/about/news", second.Path)

	var body map[string]bool
	require.NoError(t, json.Unmarshal([]byte(first.Body), &body))
	assert.True(t, body["default"])
	require.NoError(t, json.Unmarshal([]byte(second.Body), &body))
	assert.False(t, body["default"])
}

func TestFolderPlugin_FailuresDoNotFailDelivery(t *testing.T) {
	f := newFixture(t)
	f.api.failWrites = true
	d := contentAsset()
	d.AppendFolders("root")
	log := replog.New("test")

	ok, err := NewFolderAssignments(f.engine, "").Deliver(context.Background(), d, activate(), log)
	require.NoError(t, err)

	assert.True(t, ok)
	assert.True(t, log.Has(replog.LevelWarn))
}

func TestFolderPlugin_NoFolders(t *testing.T) {
	f := newFixture(t)

	ok, err := NewFolderAssignments(f.engine, "").Deliver(context.Background(), contentAsset(), activate(), replog.New("test"))
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Empty(t, f.api.methods())
}
