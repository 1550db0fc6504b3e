package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "sfcc-replicator-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.Equal(t, "replicator.db", filepath.Base(store.Path()))
	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()
	key := domain.TokenKey{ProviderID: "client-prod"}

	first, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, first.TokenStore().Put(ctx, key, "sealed"))
	require.NoError(t, first.Close())

	second, err := NewStore(tempDir)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.TokenStore().Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "sealed", got)
}

// ==================== Token Store Tests ====================

func TestTokenStore_PutGetDelete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	tokens := store.TokenStore()
	key := domain.TokenKey{ProviderID: "client-prod", UserID: "admin"}

	_, err := tokens.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, tokens.Put(ctx, key, "v1"))
	require.NoError(t, tokens.Put(ctx, key, "v2"))

	got, err := tokens.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	other, err := tokens.Get(ctx, domain.TokenKey{ProviderID: "client-prod"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, other)

	require.NoError(t, tokens.Delete(ctx, key))
	_, err = tokens.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenStore_PutRequiresProvider(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.TokenStore().Put(context.Background(), domain.TokenKey{}, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ==================== History Store Tests ====================

func TestHistoryStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	history := store.HistoryStore()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := domain.HistoryRecord{
		ID:         "run-1",
		Path:       "/content/site/de/about",
		Action:     domain.ActionActivate,
		InstanceID: "prod",
		StartedAt:  started,
	}
	require.NoError(t, history.Save(ctx, rec))

	rec.State = domain.StateDelivered
	rec.Success = true
	rec.StatusCode = domain.CodeOK
	rec.Message = "delivered"
	rec.FinishedAt = started.Add(2 * time.Second)
	require.NoError(t, history.Save(ctx, rec))

	got, err := history.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "/content/site/de/about", got.Path)
	assert.Equal(t, domain.ActionActivate, got.Action)
	assert.Equal(t, domain.StateDelivered, got.State)
	assert.True(t, got.Success)
	assert.Equal(t, domain.CodeOK, got.StatusCode)
	assert.Equal(t, "delivered", got.Message)
	assert.True(t, got.StartedAt.Equal(started))
	assert.True(t, got.FinishedAt.Equal(rec.FinishedAt))
}

func TestHistoryStore_GetMissing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.HistoryStore().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryStore_SaveRequiresID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.HistoryStore().Save(context.Background(), domain.HistoryRecord{Path: "/x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistoryStore_ListNewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	history := store.HistoryStore()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, history.Save(ctx, domain.HistoryRecord{
			ID:        id,
			Path:      "/content/" + id,
			Action:    domain.ActionDeactivate,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)
	assert.True(t, all[2].FinishedAt.IsZero())

	limited, err := history.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "b", limited[1].ID)
}
