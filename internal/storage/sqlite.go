// Package storage persists the run ledger: one row per pipeline invocation
// plus the per-document outcomes, so past runs stay inspectable from the
// CLI, the HTTP API, and MCP clients.
package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for runs and document results.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "qamine.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// --- Runs ---

// SaveRun inserts a new run in the running state.
func (s *Store) SaveRun(r Run) error {
	status := r.Status
	if status == "" {
		status = StatusRunning
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, completed_at, status, mode, document_count, record_count, artifact_path, error)
		VALUES (?, ?, '', ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC().Format(time.RFC3339), status, r.Mode,
		r.DocumentCount, r.RecordCount, r.ArtifactPath, r.Error,
	)
	return err
}

// CompleteRun marks a run completed with its final record count and artifact path.
func (s *Store) CompleteRun(id string, recordCount int, artifactPath string) error {
	return s.finishRun(id, StatusCompleted, recordCount, artifactPath, "")
}

// FailRun marks a run failed with the given error message.
func (s *Store) FailRun(id string, errMsg string) error {
	return s.finishRun(id, StatusFailed, 0, "", errMsg)
}

func (s *Store) finishRun(id, status string, recordCount int, artifactPath, errMsg string) error {
	res, err := s.db.Exec(`
		UPDATE runs SET status = ?, completed_at = ?, record_count = ?, artifact_path = ?, error = ?
		WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339), recordCount, artifactPath, errMsg, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const runColumns = `id, started_at, completed_at, status, mode, document_count, record_count, artifact_path, error`

func scanRun(scan func(dest ...any) error) (Run, error) {
	var r Run
	var startedAt, completedAt string
	err := scan(&r.ID, &startedAt, &completedAt, &r.Status, &r.Mode,
		&r.DocumentCount, &r.RecordCount, &r.ArtifactPath, &r.Error)
	if err != nil {
		return Run{}, err
	}
	if r.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return Run{}, fmt.Errorf("parsing started_at: %w", err)
	}
	if completedAt != "" {
		if r.CompletedAt, err = time.Parse(time.RFC3339, completedAt); err != nil {
			return Run{}, fmt.Errorf("parsing completed_at: %w", err)
		}
	}
	return r, nil
}

// GetRun returns the run with the given ID.
func (s *Store) GetRun(id string) (Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return Run{}, ErrNotFound
	}
	return r, err
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Run
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// --- Document results ---

// SaveDocumentResult records one document's outcome within a run.
func (s *Store) SaveDocumentResult(d DocumentResult) error {
	processedAt := d.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO run_documents (run_id, path, text_chars, record_count, error, processed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.RunID, d.Path, d.TextChars, d.RecordCount, d.Error,
		processedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListDocumentResults returns a run's document outcomes in insertion order.
func (s *Store) ListDocumentResults(runID string) ([]DocumentResult, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, path, text_chars, record_count, error, processed_at
		FROM run_documents WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DocumentResult
	for rows.Next() {
		var d DocumentResult
		var processedAt string
		if err := rows.Scan(&d.ID, &d.RunID, &d.Path, &d.TextChars, &d.RecordCount, &d.Error, &processedAt); err != nil {
			return nil, err
		}
		if d.ProcessedAt, err = time.Parse(time.RFC3339, processedAt); err != nil {
			return nil, fmt.Errorf("parsing processed_at: %w", err)
		}
		results = append(results, d)
	}
	return results, rows.Err()
}
