// Package sqlite records pipeline runs in a local SQLite manifest.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/apidocs-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
)

// Store is the SQLite-backed run manifest.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.RunStore = (*Store)(nil)

// NewStore opens (and if necessary creates) the manifest database at
// the given path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating manifest directory: %w", err)
		}
	}

	// WAL keeps writers from blocking on readers inspecting past runs.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening manifest database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
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

// StartRun inserts the run header row.
func (s *Store) StartRun(ctx context.Context, run domain.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, mode, started_at)
		VALUES (?, ?, ?)
	`, run.ID, run.Mode, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	return nil
}

// RecordItem appends one per-item outcome to the run.
func (s *Store) RecordItem(ctx context.Context, runID string, item domain.RunItem) error {
	ok := 0
	if item.OK {
		ok = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_items (run_id, stage, name, ok, error)
		VALUES (?, ?, ?, ?, ?)
	`, runID, item.Stage, item.Name, ok, item.Error)
	if err != nil {
		return fmt.Errorf("recording run item: %w", err)
	}
	return nil
}

// FinishRun closes out the run with its final counts.
func (s *Store) FinishRun(ctx context.Context, runID string, summary domain.RunSummary) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, downloaded = ?, converted = ?, wiki_docs = ?, indexed = ?
		WHERE id = ?
	`, summary.FinishedAt.UTC(), summary.Downloaded, summary.Converted,
		summary.WikiDocs, summary.Indexed, runID)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
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
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
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
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}
