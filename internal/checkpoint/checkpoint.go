// Package checkpoint persists source watermarks in SQLite so a restarted
// engine resumes modified-since polling where it left off.
package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"triage/internal/source"
)

// Store holds per-project watermarks backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the checkpoint database, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure checkpoint directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS watermarks (
	project_gid TEXT PRIMARY KEY,
	last_run TEXT NOT NULL
)`
	if err := s.execWithRetry(ctx, schema); err != nil {
		return fmt.Errorf("init checkpoint schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the stored watermark for a project, or the zero time when
// none has been written yet.
func (s *Store) Get(ctx context.Context, projectGID string) (time.Time, error) {
	var raw string
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx,
			`SELECT last_run FROM watermarks WHERE project_gid = ?`, projectGID)
		return row.Scan(&raw)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read watermark: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse watermark %q: %w", raw, err)
	}
	return t, nil
}

// Set writes the watermark for a project.
func (s *Store) Set(ctx context.Context, projectGID string, t time.Time) error {
	err := s.execWithRetry(ctx,
		`INSERT INTO watermarks (project_gid, last_run) VALUES (?, ?)
		 ON CONFLICT(project_gid) DO UPDATE SET last_run = excluded.last_run`,
		projectGID, t.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("write watermark: %w", err)
	}
	return nil
}

// Watermark adapts the store to one project's get/set hooks.
func (s *Store) Watermark(projectGID string) source.Watermark {
	return projectWatermark{store: s, projectGID: projectGID}
}

type projectWatermark struct {
	store      *Store
	projectGID string
}

func (w projectWatermark) Get(ctx context.Context) (time.Time, error) {
	return w.store.Get(ctx, w.projectGID)
}

func (w projectWatermark) Set(ctx context.Context, t time.Time) error {
	return w.store.Set(ctx, w.projectGID, t)
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
