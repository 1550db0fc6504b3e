package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sfcc-replicator/internal/app"
)

// setupTestRuntime injects a memory-backed runtime replicating to a local
// test instance that answers writes with writeStatus.
func setupTestRuntime(t *testing.T, writeStatus int) *app.Runtime {
	t.Helper()

	inst := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(writeStatus)
	}))
	t.Cleanup(inst.Close)

	dir := t.TempDir()
	root := &memory.Node{Children: []*memory.Node{
		{Name: "content", Children: []*memory.Node{
			memory.Page("site", "commerce/page", map[string]any{"dwreSite": "site1", "dwreLibrary": "lib1"},
				memory.Page("about", "commerce/page", map[string]any{"jcr:title": "About"}),
			),
		}},
	}}
	data, err := json.Marshal(root)
	require.NoError(t, err)
	tree := filepath.Join(dir, "tree.json")
	require.NoError(t, os.WriteFile(tree, data, 0600))

	cfg := file.Default()
	cfg.Storage.Driver = "memory"
	cfg.Storage.SpoolDir = filepath.Join(dir, "spool")
	cfg.Content.Tree = tree
	cfg.Agent.OAuth = false
	cfg.Builders.ContentAsset.ResourceTypes = []string{"commerce/page"}
	cfg.Instances = []file.InstanceConfig{{
		ID:       "default",
		Endpoint: strings.TrimPrefix(inst.URL, "http://"),
		Scheme:   "http",
		Preview:  file.PreviewConfig{DefaultSite: "site1"},
	}}

	r, err := app.New(cfg)
	require.NoError(t, err)
	SetRuntime(r)
	t.Cleanup(func() {
		SetRuntime(nil)
		_ = r.Close()
		resetFlags()
	})
	return r
}

// resetFlags restores flag variables, which cobra keeps across Execute calls.
func resetFlags() {
	configPath = ""
	verbose = false
	actionName = "activate"
	showLog = false
	historyLimit = 20
	tokenProvider = ""
	tokenUser = ""
	configForce = false
	serveListen = ""
	serveNoWatch = false
}
