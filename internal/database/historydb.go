package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/atlasharvest/internal/model"
)

// FileName is the database file name inside the database directory.
const FileName = "atlasharvest.db"

// HistoryDB stores crawl runs and record fingerprints.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per crawl run of a score type
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		score_type TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		state TEXT NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		new_records INTEGER NOT NULL DEFAULT 0,
		total_records INTEGER NOT NULL DEFAULT 0,
		duplicates INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		degraded INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_score_type ON runs(score_type);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	-- Latest canonical fingerprint of every record
	CREATE TABLE IF NOT EXISTS fingerprints (
		score_type TEXT NOT NULL,
		code TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		first_seen TEXT NOT NULL,
		last_seen TEXT NOT NULL,
		last_changed TEXT NOT NULL,
		PRIMARY KEY (score_type, code)
	);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one recorded crawl run.
type Run struct {
	ID           int64
	ScoreType    string
	StartedAt    time.Time
	FinishedAt   time.Time
	State        string
	Pages        int
	NewRecords   int
	TotalRecords int
	Duplicates   int
	Skipped      int
	Degraded     bool

	// Error is the terminal error message of a failed run.
	Error string
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// InsertRun stores a run and returns its ID.
func (hdb *HistoryDB) InsertRun(ctx context.Context, run *Run) (int64, error) {
	query := `
	INSERT INTO runs (score_type, started_at, finished_at, state, pages, new_records,
		total_records, duplicates, skipped, degraded, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		run.ScoreType,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		run.State,
		run.Pages,
		run.NewRecords,
		run.TotalRecords,
		run.Duplicates,
		run.Skipped,
		run.Degraded,
		run.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	run.ID = id
	return id, nil
}

// ListRuns returns runs newest first. An empty scoreType lists every
// score type; limit <= 0 means no limit.
func (hdb *HistoryDB) ListRuns(ctx context.Context, scoreType string, limit int) ([]Run, error) {
	query := `
	SELECT id, score_type, started_at, finished_at, state, pages, new_records,
		total_records, duplicates, skipped, degraded, error
	FROM runs
	WHERE ? = '' OR score_type = ?
	ORDER BY started_at DESC, id DESC
	`
	args := []any{scoreType, scoreType}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(
			&run.ID,
			&run.ScoreType,
			&started,
			&finished,
			&run.State,
			&run.Pages,
			&run.NewRecords,
			&run.TotalRecords,
			&run.Duplicates,
			&run.Skipped,
			&run.Degraded,
			&run.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt = parseTimestamp(started)
		run.FinishedAt = parseTimestamp(finished)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// SyncStats counts the outcome of a fingerprint sync.
type SyncStats struct {
	// Inserted records were not known before.
	Inserted int

	// Changed records were known with a different fingerprint.
	Changed int

	// Unchanged records matched their stored fingerprint.
	Unchanged int
}

// Fingerprint returns the hex sha3-256 digest of the record's canonical
// JSON encoding.
func Fingerprint(r model.Record) (string, error) {
	data, err := json.Marshal(r.Clone())
	if err != nil {
		return "", fmt.Errorf("failed to encode record %s: %w", r.Code, err)
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SyncFingerprints upserts the fingerprint of every record in one
// transaction and reports how many were new, changed or unchanged.
func (hdb *HistoryDB) SyncFingerprints(ctx context.Context, records []model.Record) (SyncStats, error) {
	var stats SyncStats

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	now := formatTimestamp(time.Now())
	for _, r := range records {
		fp, err := Fingerprint(r)
		if err != nil {
			return stats, err
		}

		var stored string
		err = tx.QueryRowContext(ctx,
			`SELECT fingerprint FROM fingerprints WHERE score_type = ? AND code = ?`,
			string(r.ScoreType), r.Code,
		).Scan(&stored)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, `
			INSERT INTO fingerprints (score_type, code, fingerprint, first_seen, last_seen, last_changed)
			VALUES (?, ?, ?, ?, ?, ?)
			`, string(r.ScoreType), r.Code, fp, now, now, now)
			stats.Inserted++
		case err != nil:
			return stats, fmt.Errorf("failed to read fingerprint of %s: %w", r.Code, err)
		case stored != fp:
			_, err = tx.ExecContext(ctx, `
			UPDATE fingerprints SET fingerprint = ?, last_seen = ?, last_changed = ?
			WHERE score_type = ? AND code = ?
			`, fp, now, now, string(r.ScoreType), r.Code)
			stats.Changed++
		default:
			_, err = tx.ExecContext(ctx, `
			UPDATE fingerprints SET last_seen = ? WHERE score_type = ? AND code = ?
			`, now, string(r.ScoreType), r.Code)
			stats.Unchanged++
		}
		if err != nil {
			return stats, fmt.Errorf("failed to store fingerprint of %s: %w", r.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit fingerprints: %w", err)
	}
	return stats, nil
}

// CountFingerprints returns the number of known records per score type.
func (hdb *HistoryDB) CountFingerprints(ctx context.Context) (map[string]int, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT score_type, COUNT(*) FROM fingerprints GROUP BY score_type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count fingerprints: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

// timestampLayout is RFC 3339 with a fixed-width fraction, so stored
// values sort chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses a stored timestamp, returning the zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
