package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"usecasesync/internal/ident"
	"usecasesync/internal/logging"
)

const (
	metaNextID = "next_id"
	metaNotes  = "notes"
)

// SQLiteStore persists the registry and the run history in SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLiteStore opens or creates the database at path and applies migrations.
func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{
		db:     db,
		path:   path,
		logger: logging.NewComponentLogger(logger, "registry"),
	}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads the registry tables. A database that has never been saved to
// yields a fresh registry with exists=false.
func (s *SQLiteStore) Load(ctx context.Context) (*Registry, bool, error) {
	meta, err := s.readMeta(ctx)
	if err != nil {
		return nil, false, err
	}
	rawNext, saved := meta[metaNextID]
	if !saved {
		return New(), false, nil
	}
	next, err := strconv.ParseUint(rawNext, 10, 64)
	if err != nil {
		return nil, true, fmt.Errorf("parse stored next_id %q: %w", rawNext, err)
	}

	mapping := make(map[string]ident.ID)
	rows, err := s.db.QueryContext(ctx, "SELECT title, id FROM registry_titles")
	if err != nil {
		return nil, true, fmt.Errorf("query registry titles: %w", err)
	}
	for rows.Next() {
		var (
			title string
			id    int64
		)
		if err := rows.Scan(&title, &id); err != nil {
			_ = rows.Close()
			return nil, true, fmt.Errorf("scan registry title: %w", err)
		}
		mapping[title] = ident.ID(id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, true, fmt.Errorf("iterate registry titles: %w", err)
	}
	_ = rows.Close()

	retired, err := s.readRetired(ctx)
	if err != nil {
		return nil, true, err
	}

	reg, err := Restore(mapping, ident.ID(next), retired, meta[metaNotes])
	if err != nil {
		return nil, true, fmt.Errorf("restore registry %s: %w", s.path, err)
	}
	return reg, true, nil
}

func (s *SQLiteStore) readMeta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM registry_meta")
	if err != nil {
		return nil, fmt.Errorf("query registry meta: %w", err)
	}
	defer rows.Close()
	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan registry meta: %w", err)
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

func (s *SQLiteStore) readRetired(ctx context.Context) ([]ident.ID, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM registry_retired ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query retired ids: %w", err)
	}
	defer rows.Close()
	var retired []ident.ID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan retired id: %w", err)
		}
		retired = append(retired, ident.ID(id))
	}
	return retired, rows.Err()
}

// Save replaces the stored registry in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, reg *Registry) error {
	if reg == nil {
		return fmt.Errorf("save registry: nil registry")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		"DELETE FROM registry_titles",
		"DELETE FROM registry_retired",
		"DELETE FROM registry_meta",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear registry tables: %w", err)
		}
	}

	insertTitle, err := tx.PrepareContext(ctx, "INSERT INTO registry_titles (title, id) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare title insert: %w", err)
	}
	defer insertTitle.Close()
	for _, b := range reg.Entries() {
		if _, err := insertTitle.ExecContext(ctx, b.Title, int64(b.ID)); err != nil {
			return fmt.Errorf("insert title %q: %w", b.Title, err)
		}
	}

	insertRetired, err := tx.PrepareContext(ctx, "INSERT INTO registry_retired (id) VALUES (?)")
	if err != nil {
		return fmt.Errorf("prepare retired insert: %w", err)
	}
	defer insertRetired.Close()
	for _, id := range reg.Retired() {
		if _, err := insertRetired.ExecContext(ctx, int64(id)); err != nil {
			return fmt.Errorf("insert retired id %s: %w", id, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO registry_meta (key, value) VALUES (?, ?), (?, ?)",
		metaNextID, reg.NextID().String(),
		metaNotes, reg.Notes(),
	); err != nil {
		return fmt.Errorf("insert registry meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registry: %w", err)
	}
	s.logger.Debug("saved registry",
		logging.Int("title_count", reg.Len()),
		logging.String("next_id", reg.NextID().String()),
		logging.String("path", s.path))
	return nil
}

// RecordRun appends a run to the history table.
func (s *SQLiteStore) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("record run: missing run id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_runs (
            run_id, started_at, finished_at, mode, source_path, records,
            exact_matches, fuzzy_matches, allocated, newly_retired, warnings, dry_run
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Mode,
		run.Source,
		run.Records,
		run.Exact,
		run.Fuzzy,
		run.Allocated,
		run.NewlyRetired,
		run.Warnings,
		boolToInt(run.DryRun),
	)
	if err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns all.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT run_id, started_at, finished_at, mode, source_path, records,
            exact_matches, fuzzy_matches, allocated, newly_retired, warnings, dry_run
        FROM sync_runs ORDER BY started_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, finished string
			dryRun            int
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.Mode, &run.Source, &run.Records,
			&run.Exact, &run.Fuzzy, &run.Allocated, &run.NewlyRetired, &run.Warnings, &dryRun); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		run.DryRun = dryRun != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
