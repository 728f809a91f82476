package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"timeturner/internal/config"
	"timeturner/internal/control"
	"timeturner/internal/logging"
)

// Entry is one persisted clock adjustment.
type Entry struct {
	ID         string
	At         time.Time
	Trigger    control.Trigger
	Target     *time.Time
	NudgeMS    int64
	DriftMS    int64
	JitterMS   int64
	SyncStatus string
	Outcome    control.Outcome
	Error      string
}

// Store manages correction persistence backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open initializes or connects to the corrections database and applies
// migrations. The database lives next to the daemon's logs.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "corrections.db")
	db, err := sql.Open("sqlite", dbPath)
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

	store := &Store{
		db:     db,
		path:   dbPath,
		logger: logging.NewComponentLogger(logger, "history"),
	}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Insert persists one correction and returns it with its assigned identifier.
func (s *Store) Insert(ctx context.Context, c control.Correction) (*Entry, error) {
	entry := &Entry{
		ID:         uuid.NewString(),
		At:         c.At.UTC(),
		Trigger:    c.Trigger,
		NudgeMS:    c.NudgeMS,
		DriftMS:    c.DriftMS,
		JitterMS:   c.JitterMS,
		SyncStatus: string(c.Status),
		Outcome:    c.Outcome,
		Error:      c.Error,
	}
	if !c.Target.IsZero() {
		target := c.Target.UTC()
		entry.Target = &target
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO corrections (
            id, at, trigger_source, target, nudge_ms, drift_ms, jitter_ms,
            sync_status, outcome, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.At.Format(time.RFC3339Nano),
		string(entry.Trigger),
		nullableTime(entry.Target),
		entry.NudgeMS,
		entry.DriftMS,
		entry.JitterMS,
		nullableString(entry.SyncStatus),
		string(entry.Outcome),
		nullableString(entry.Error),
	)
	if err != nil {
		return nil, fmt.Errorf("insert correction: %w", err)
	}
	return entry, nil
}

// Record implements the control loop's audit hook. Persistence failures are
// logged and swallowed; losing one audit row must not stop correcting.
func (s *Store) Record(ctx context.Context, c control.Correction) {
	if _, err := s.Insert(ctx, c); err != nil {
		logging.WarnWithContext(s.logger, "correction not recorded", "history_insert_failed",
			logging.Error(err),
			logging.String("trigger", string(c.Trigger)),
			logging.String(logging.FieldErrorHint, "check the corrections database on disk"),
			logging.String(logging.FieldImpact, "audit trail is missing one entry"),
		)
	}
}

// Recent returns the newest corrections first, up to limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM corrections ORDER BY at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query corrections: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the total number of persisted corrections.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM corrections`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count corrections: %w", err)
	}
	return count, nil
}

// Prune deletes corrections older than cutoff and reports how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM corrections WHERE at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune corrections: %w", err)
	}
	return res.RowsAffected()
}

const entryColumns = "id, at, trigger_source, target, nudge_ms, drift_ms, jitter_ms, sync_status, outcome, error_message"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry      Entry
		atRaw      string
		trigger    string
		targetRaw  sql.NullString
		syncStatus sql.NullString
		outcome    string
		errMsg     sql.NullString
	)

	if err := scanner.Scan(
		&entry.ID,
		&atRaw,
		&trigger,
		&targetRaw,
		&entry.NudgeMS,
		&entry.DriftMS,
		&entry.JitterMS,
		&syncStatus,
		&outcome,
		&errMsg,
	); err != nil {
		return Entry{}, fmt.Errorf("scan correction: %w", err)
	}

	entry.Trigger = control.Trigger(trigger)
	entry.Outcome = control.Outcome(outcome)
	entry.SyncStatus = syncStatus.String
	entry.Error = errMsg.String

	at, err := time.Parse(time.RFC3339Nano, atRaw)
	if err != nil {
		return Entry{}, fmt.Errorf("parse correction timestamp %q: %w", atRaw, err)
	}
	entry.At = at

	if targetRaw.Valid && targetRaw.String != "" {
		target, err := time.Parse(time.RFC3339Nano, targetRaw.String)
		if err != nil {
			return Entry{}, fmt.Errorf("parse correction target %q: %w", targetRaw.String, err)
		}
		entry.Target = &target
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}
