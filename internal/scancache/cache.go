// Package scancache keeps parsed log-file contents in a local SQLite
// database keyed by (path, mtime, size), so repeated scans skip re-parsing
// files that have not changed. Only raw parsed events are stored, never
// computed usage results; deleting the database is always safe.
package scancache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/mlipski/tokengauge/internal/usage"
)

type Cache struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates or opens the cache database at path.
func Open(path string, log zerolog.Logger) (*Cache, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("scancache: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("scancache: opening DB: %w", err)
	}

	c := &Cache{db: db, log: log}
	if err := c.init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Cache) init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scanned_files (
			path TEXT PRIMARY KEY,
			mtime_unix_nano INTEGER NOT NULL,
			size INTEGER NOT NULL,
			scanned_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS file_events (
			path TEXT NOT NULL,
			seq INTEGER NOT NULL,
			identity TEXT NOT NULL,
			ts_unix_nano INTEGER NOT NULL,
			input_units INTEGER NOT NULL,
			output_units INTEGER NOT NULL,
			has_usage INTEGER NOT NULL,
			cli_version TEXT NOT NULL,
			PRIMARY KEY (path, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_file_events_ts ON file_events(ts_unix_nano);`,
	}
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("scancache: init schema: %w", err)
		}
	}
	return nil
}

// Events returns the parsed events for a file, reusing the stored copy
// when (mtime, size) still match and re-parsing (then storing) otherwise.
// Implements usage.FileCache.
func (c *Cache) Events(path string, modTime time.Time, size int64, parse func() []usage.Event) ([]usage.Event, error) {
	ctx := context.Background()

	if events, ok := c.load(ctx, path, modTime, size); ok {
		return events, nil
	}

	events := parse()
	if err := c.store(ctx, path, modTime, size, events); err != nil {
		// A failed write only costs a re-parse next time.
		c.log.Warn().Err(err).Str("path", path).Msg("scan cache write failed")
	}
	return events, nil
}

func (c *Cache) load(ctx context.Context, path string, modTime time.Time, size int64) ([]usage.Event, bool) {
	var storedMtime, storedSize int64
	err := c.db.QueryRowContext(ctx,
		`SELECT mtime_unix_nano, size FROM scanned_files WHERE path = ?`, path,
	).Scan(&storedMtime, &storedSize)
	if err != nil {
		return nil, false
	}
	if storedMtime != modTime.UnixNano() || storedSize != size {
		return nil, false
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT identity, ts_unix_nano, input_units, output_units, has_usage, cli_version
		FROM file_events WHERE path = ? ORDER BY seq
	`, path)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	var events []usage.Event
	for rows.Next() {
		var (
			ev       usage.Event
			tsNano   int64
			hasUsage int
		)
		if err := rows.Scan(&ev.Identity, &tsNano, &ev.InputUnits, &ev.OutputUnits, &hasUsage, &ev.CLIVersion); err != nil {
			return nil, false
		}
		ev.Timestamp = time.Unix(0, tsNano).UTC()
		ev.HasUsage = hasUsage != 0
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, false
	}
	return events, true
}

func (c *Cache) store(ctx context.Context, path string, modTime time.Time, size int64, events []usage.Event) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("scancache: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM file_events WHERE path = ?`, path); err != nil {
		return fmt.Errorf("scancache: clear stale events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO file_events (path, seq, identity, ts_unix_nano, input_units, output_units, has_usage, cli_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("scancache: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, ev := range events {
		hasUsage := 0
		if ev.HasUsage {
			hasUsage = 1
		}
		if _, err := stmt.ExecContext(ctx, path, i, ev.Identity, ev.Timestamp.UnixNano(),
			ev.InputUnits, ev.OutputUnits, hasUsage, ev.CLIVersion); err != nil {
			return fmt.Errorf("scancache: insert event: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scanned_files (path, mtime_unix_nano, size, scanned_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime_unix_nano = excluded.mtime_unix_nano,
			size = excluded.size,
			scanned_at = excluded.scanned_at
	`, path, modTime.UnixNano(), size, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("scancache: upsert file row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("scancache: commit: %w", err)
	}
	return nil
}

// Prune drops entries for files scanned before the retention horizon,
// keeping the database from growing with long-gone session logs.
func (c *Cache) Prune(ctx context.Context, olderThan time.Time) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("scancache: begin prune tx: %w", err)
	}
	defer tx.Rollback()

	cutoff := olderThan.UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM file_events WHERE path IN
			(SELECT path FROM scanned_files WHERE scanned_at < ?)
	`, cutoff); err != nil {
		return fmt.Errorf("scancache: prune events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM scanned_files WHERE scanned_at < ?`, cutoff); err != nil {
		return fmt.Errorf("scancache: prune files: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("scancache: commit prune: %w", err)
	}
	return nil
}

// DefaultPath is the cache database location under the config dir.
func DefaultPath(configDir string) string {
	return filepath.Join(configDir, "scan-cache.db")
}
