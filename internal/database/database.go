package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"logsweep/internal/scan"
)

// Actions recorded per glob match
const (
	ActionDelete = "DELETE"
	ActionSkip   = "SKIP"
	ActionError  = "ERROR"
)

// DeletionDB manages the SQLite database for sweep history
type DeletionDB struct {
	db *sql.DB
}

// DeletionRecord represents a single removal attempt
type DeletionRecord struct {
	ID           int64
	RunID        int64
	Timestamp    time.Time
	Action       string
	FileSet      string
	Path         string
	FileName     string
	Size         int64
	ErrorMessage string
}

// RunRecord represents one invocation of the sweep
type RunRecord struct {
	ID           int64
	StartedAt    time.Time
	FinishedAt   *time.Time
	LogsFound    int
	OutputsFound int
	Choice       string
	Message      string
}

// NewDeletionDB creates a new database connection and initializes schema
func NewDeletionDB(dbPath string) (*DeletionDB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Ping does not create the file; a query does
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	ddb := &DeletionDB{db: db}
	if err = ddb.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return ddb, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *DeletionDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		logs_found INTEGER NOT NULL,
		outputs_found INTEGER NOT NULL,
		choice TEXT,
		message TEXT
	);

	CREATE TABLE IF NOT EXISTS deletions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		file_set TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		size INTEGER NOT NULL,
		error_message TEXT,

		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON deletions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON deletions(action);
	CREATE INDEX IF NOT EXISTS idx_file_set ON deletions(file_set);
	CREATE INDEX IF NOT EXISTS idx_run_id ON deletions(run_id);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// BeginRun records the start of a sweep with the counts shown to the user
func (d *DeletionDB) BeginRun(startedAt time.Time, logsFound, outputsFound int) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO runs (started_at, logs_found, outputs_found) VALUES (?, ?, ?)`,
		startedAt.UTC(), logsFound, outputsFound,
	)
	if err != nil {
		return 0, fmt.Errorf("begin run: %w", err)
	}
	return result.LastInsertId()
}

// FinishRun stores the outcome of a sweep
func (d *DeletionDB) FinishRun(runID int64, choice, message string) error {
	_, err := d.db.Exec(
		`UPDATE runs SET finished_at = ?, choice = ?, message = ? WHERE id = ?`,
		time.Now().UTC(), choice, message, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", runID, err)
	}
	return nil
}

// RecordDeletion inserts a removal attempt into the database
func (d *DeletionDB) RecordDeletion(runID int64, action string, candidate scan.Candidate, errorMsg string) error {
	query := `
	INSERT INTO deletions (
		run_id, timestamp, action, file_set, path, file_name, size, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.Exec(
		query,
		runID,
		time.Now().UTC(),
		action,
		candidate.Set,
		candidate.Path,
		filepath.Base(candidate.Path),
		candidate.Size,
		errorMsg,
	)
	return err
}

// Close closes the database connection
func (d *DeletionDB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (d *DeletionDB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}
