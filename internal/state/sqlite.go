// Package state persists planner state in SQLite: generator input signatures
// surviving across planner invocations, plus an informational history of
// planning runs. The signature table is the only state the planner reads
// back; run history is never consulted during planning.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RunStatus is the lifecycle state of one recorded planning run.
type RunStatus string

const (
	RunStatusPlanning  RunStatus = "planning"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded planner invocation.
type Run struct {
	ID               string
	Backend          string
	ToolchainVersion string
	Status           RunStatus
	Error            string
	StartedAt        time.Time
	CompletedAt      *time.Time
}

// SQLiteStore implements the signature store and run history on SQLite.
// database/sql serializes access, so per-key reads and writes are safe from
// concurrent generator jobs.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates an unopened store.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens the database, creating parent directories as needed.
// Use ":memory:" for tests.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping state database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened state store", "path", path)
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- Generator signatures ---

// GetSignature returns the persisted signature for a generator identity.
func (s *SQLiteStore) GetSignature(id string) (string, bool, error) {
	if s.db == nil {
		return "", false, fmt.Errorf("state database not opened")
	}

	var sig string
	err := s.db.QueryRow(
		`SELECT signature FROM generator_signatures WHERE generator_id = ?`, id,
	).Scan(&sig)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get signature for %q: %w", id, err)
	}
	return sig, true, nil
}

// SetSignature records the signature for a generator identity.
func (s *SQLiteStore) SetSignature(id, sig string) error {
	if s.db == nil {
		return fmt.Errorf("state database not opened")
	}

	_, err := s.db.Exec(
		`INSERT INTO generator_signatures (generator_id, signature, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(generator_id) DO UPDATE SET signature = excluded.signature, updated_at = excluded.updated_at`,
		id, sig, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set signature for %q: %w", id, err)
	}
	return nil
}

// --- Run history ---

// CreateRun records the start of a planning run.
func (s *SQLiteStore) CreateRun(backend, toolchainVersion string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("state database not opened")
	}

	run := &Run{
		ID:               uuid.New().String(),
		Backend:          backend,
		ToolchainVersion: toolchainVersion,
		Status:           RunStatusPlanning,
		StartedAt:        time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO plan_runs (id, backend, toolchain_version, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Backend, run.ToolchainVersion, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun records the outcome of a planning run.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("state database not opened")
	}

	_, err := s.db.Exec(
		`UPDATE plan_runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		status, errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", id, err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("state database not opened")
	}

	run := &Run{}
	var completedAt sql.NullTime
	var errMsg sql.NullString
	err := s.db.QueryRow(
		`SELECT id, backend, toolchain_version, status, error, started_at, completed_at FROM plan_runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.Backend, &run.ToolchainVersion, &run.Status, &errMsg, &run.StartedAt, &completedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	run.Error = errMsg.String
	return run, nil
}
