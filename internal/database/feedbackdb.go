package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/plantaest/citronspam/internal/model"
	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the database file created inside the data directory.
const FileName = "citronspam.db"

// FeedbackDB is the local SQLite store.
type FeedbackDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL turns on write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns options that create the database with WAL enabled.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the database in dbDir.
func Open(dbDir string, opts Options) (*FeedbackDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	fdb := &FeedbackDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := fdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return fdb, nil
}

// Close closes the database.
func (f *FeedbackDB) Close() error {
	return f.db.Close()
}

// Path returns the database file path.
func (f *FeedbackDB) Path() string {
	return f.dbPath
}

func (f *FeedbackDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS feedbacks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		wiki_id TEXT NOT NULL,
		report_date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		created_by INTEGER NOT NULL,
		user_name TEXT NOT NULL DEFAULT '',
		hostname TEXT NOT NULL,
		status INTEGER NOT NULL,
		hash TEXT NOT NULL,
		UNIQUE(wiki_id, report_date, hash)
	);

	CREATE INDEX IF NOT EXISTS idx_feedbacks_hostname ON feedbacks(wiki_id, hostname);

	CREATE TABLE IF NOT EXISTS ignored_hostnames (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		wiki_id TEXT NOT NULL,
		hostname TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(wiki_id, hostname)
	);

	CREATE TABLE IF NOT EXISTS report_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		wiki_id TEXT NOT NULL,
		title TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		report_json TEXT NOT NULL,
		UNIQUE(wiki_id, title)
	);
	`
	_, err := f.db.ExecContext(context.Background(), schema)
	return err
}

// FeedbackRecord is a stored feedback entry.
type FeedbackRecord struct {
	ID         int64
	WikiID     string
	ReportDate string
	model.Feedback
}

// SaveFeedbacks stores the feedback of one report. Entries already stored
// (same wiki, date and hash) are skipped. It returns the number inserted.
func (f *FeedbackDB) SaveFeedbacks(ctx context.Context, wikiID, reportDate string, feedbacks []model.Feedback) (int, error) {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO feedbacks (wiki_id, report_date, created_at, created_by, user_name, hostname, status, hash)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(wiki_id, report_date, hash) DO NOTHING
	`

	inserted := 0
	for _, fb := range feedbacks {
		res, err := tx.ExecContext(ctx, query,
			wikiID, reportDate, fb.CreatedAt, fb.CreatedBy, fb.User, fb.Hostname, int(fb.Status), fb.Hash)
		if err != nil {
			return 0, fmt.Errorf("failed to insert feedback for %s: %w", fb.Hostname, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit feedback: %w", err)
	}
	return inserted, nil
}

// ListFeedbacks returns the stored feedback of one report in insertion order.
func (f *FeedbackDB) ListFeedbacks(ctx context.Context, wikiID, reportDate string) ([]FeedbackRecord, error) {
	query := `
	SELECT id, wiki_id, report_date, created_at, created_by, user_name, hostname, status, hash
	FROM feedbacks
	WHERE wiki_id = ? AND report_date = ?
	ORDER BY id
	`
	rows, err := f.db.QueryContext(ctx, query, wikiID, reportDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedbacks: %w", err)
	}
	defer rows.Close()

	var records []FeedbackRecord
	for rows.Next() {
		var (
			rec    FeedbackRecord
			status int
		)
		if err := rows.Scan(&rec.ID, &rec.WikiID, &rec.ReportDate, &rec.CreatedAt, &rec.CreatedBy,
			&rec.User, &rec.Hostname, &status, &rec.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		rec.Status = model.FeedbackStatus(status)
		rec.Synced = true
		records = append(records, rec)
	}
	return records, rows.Err()
}

// AddIgnoredHostname records hostname as legitimate on wikiID. It reports
// whether the hostname was new.
func (f *FeedbackDB) AddIgnoredHostname(ctx context.Context, wikiID, hostname string) (bool, error) {
	res, err := f.db.ExecContext(ctx, `
	INSERT INTO ignored_hostnames (wiki_id, hostname, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT(wiki_id, hostname) DO NOTHING
	`, wikiID, hostname, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("failed to add ignored hostname: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IgnoredHostnames returns the ignored hostnames of wikiID in alphabetical order.
func (f *FeedbackDB) IgnoredHostnames(ctx context.Context, wikiID string) ([]string, error) {
	rows, err := f.db.QueryContext(ctx,
		`SELECT hostname FROM ignored_hostnames WHERE wiki_id = ? ORDER BY hostname`, wikiID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ignored hostnames: %w", err)
	}
	defer rows.Close()

	var hostnames []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hostnames = append(hostnames, h)
	}
	return hostnames, rows.Err()
}

// CheckHostnames reports for each of hostnames whether it is ignored on wikiID.
func (f *FeedbackDB) CheckHostnames(ctx context.Context, wikiID string, hostnames []string) (map[string]bool, error) {
	result := make(map[string]bool, len(hostnames))
	if len(hostnames) == 0 {
		return result, nil
	}

	args := make([]any, 0, len(hostnames)+1)
	args = append(args, wikiID)
	for _, h := range hostnames {
		result[h] = false
		args = append(args, h)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(hostnames)), ",")

	query := `SELECT hostname FROM ignored_hostnames WHERE wiki_id = ? AND hostname IN (` + placeholders + `)`
	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to check hostnames: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		result[h] = true
	}
	return result, rows.Err()
}

// Snapshot is the stored copy of a report page.
type Snapshot struct {
	WikiID    string
	Title     string
	FetchedAt time.Time
	Report    *model.Report
}

// SaveSnapshot stores report as the latest copy of title, replacing any
// previous one.
func (f *FeedbackDB) SaveSnapshot(ctx context.Context, wikiID, title string, report *model.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	_, err = f.db.ExecContext(ctx, `
	INSERT INTO report_snapshots (wiki_id, title, fetched_at, report_json)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(wiki_id, title) DO UPDATE SET
		fetched_at = excluded.fetched_at,
		report_json = excluded.report_json
	`, wikiID, title, time.Now().UTC().Format(time.RFC3339Nano), string(data))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored copy of title, or ErrSnapshotNotFound.
func (f *FeedbackDB) LoadSnapshot(ctx context.Context, wikiID, title string) (*Snapshot, error) {
	var fetchedAt, reportJSON string
	err := f.db.QueryRowContext(ctx,
		`SELECT fetched_at, report_json FROM report_snapshots WHERE wiki_id = ? AND title = ?`,
		wikiID, title).Scan(&fetchedAt, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, title)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	report, err := model.ParseReport([]byte(reportJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &Snapshot{
		WikiID:    wikiID,
		Title:     title,
		FetchedAt: parseTimestamp(fetchedAt),
		Report:    report,
	}, nil
}

// timestampFormats are tried in order by parseTimestamp.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
