package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// Store is a SQLite database holding the token cache and the replication
// history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sfcc-replicator/data/replicator.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sfcc-replicator", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "replicator.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// TokenStore returns a TokenStore backed by this store.
func (s *Store) TokenStore() driven.TokenStore {
	return &tokenStore{store: s}
}

// HistoryStore returns a HistoryStore backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_replication.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Token Store ====================

// tokenStore implements driven.TokenStore.
type tokenStore struct {
	store *Store
}

var _ driven.TokenStore = (*tokenStore)(nil)

// Get retrieves a cached value.
func (s *tokenStore) Get(ctx context.Context, key domain.TokenKey) (string, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT value FROM token_cache WHERE provider_id = ? AND user_id = ?
	`, key.ProviderID, key.UserID)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("scanning token: %w", err)
	}
	return value, nil
}

// Put stores or replaces a cached value.
func (s *tokenStore) Put(ctx context.Context, key domain.TokenKey, value string) error {
	if key.ProviderID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO token_cache (provider_id, user_id, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(provider_id, user_id) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key.ProviderID, key.UserID, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// Delete removes a cached value.
func (s *tokenStore) Delete(ctx context.Context, key domain.TokenKey) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM token_cache WHERE provider_id = ? AND user_id = ?",
		key.ProviderID, key.UserID)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

// ==================== History Store ====================

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

const historyColumns = `id, path, action, instance_id, state, success, status_code, message, started_at, finished_at`

// Save stores or updates a replication record.
func (s *historyStore) Save(ctx context.Context, rec domain.HistoryRecord) error {
	if rec.ID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO replication_history (`+historyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			action = excluded.action,
			instance_id = excluded.instance_id,
			state = excluded.state,
			success = excluded.success,
			status_code = excluded.status_code,
			message = excluded.message,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`, rec.ID, rec.Path, string(rec.Action), rec.InstanceID, string(rec.State),
		rec.Success, rec.StatusCode, rec.Message,
		rec.StartedAt.UTC(), nullTime(rec.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving history record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *historyStore) Get(ctx context.Context, id string) (*domain.HistoryRecord, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+historyColumns+` FROM replication_history WHERE id = ?`, id)

	rec, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning history record: %w", err)
	}
	return rec, nil
}

// List returns the most recent records first.
func (s *historyStore) List(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM replication_history ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHistory(row scanner) (*domain.HistoryRecord, error) {
	var rec domain.HistoryRecord
	var action, state string
	var startedAt time.Time
	var finishedAt sql.NullTime
	if err := row.Scan(&rec.ID, &rec.Path, &action, &rec.InstanceID, &state,
		&rec.Success, &rec.StatusCode, &rec.Message, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	rec.Action = domain.ActionType(action)
	rec.State = domain.DeliveryState(state)
	rec.StartedAt = startedAt
	if finishedAt.Valid {
		rec.FinishedAt = finishedAt.Time
	}
	return &rec, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
