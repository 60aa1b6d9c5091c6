package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	// Register the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/oshokin/particle-injector/internal/domain/pulse"
)

// Repository records the lifecycle of runs.
type Repository interface {
	Start(ctx context.Context, record *pulse.RunRecord) error
	Finish(ctx context.Context, record *pulse.RunRecord) error
	List(ctx context.Context, limit int) ([]*pulse.RunRecord, error)
	Close() error
}

// ErrRunNotFound is returned by Finish for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	operator_host    TEXT NOT NULL DEFAULT '',
	operator_user    TEXT NOT NULL DEFAULT '',
	driver           TEXT NOT NULL,
	pulse_count      INTEGER NOT NULL,
	pulses_completed INTEGER NOT NULL DEFAULT 0,
	outcome          TEXT NOT NULL DEFAULT '',
	error            TEXT NOT NULL DEFAULT '',
	started_at       INTEGER NOT NULL,
	finished_at      INTEGER
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at);
`

// SQLiteRepository stores run records in a SQLite database file.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates the database file if needed and ensures the schema exists.
func Open(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// SQLite serialises writers anyway; one connection avoids "database is locked".
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Start inserts a new run row.
func (r *SQLiteRepository) Start(ctx context.Context, record *pulse.RunRecord) error {
	operator := record.Operator
	if operator == nil {
		operator = new(pulse.Operator)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, operator_host, operator_user, driver, pulse_count, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID,
		operator.Hostname,
		operator.Username,
		record.Driver,
		record.PulseCount,
		record.StartedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", record.ID, err)
	}

	return nil
}

// Finish stores the outcome of a run started earlier.
func (r *SQLiteRepository) Finish(ctx context.Context, record *pulse.RunRecord) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE runs SET pulses_completed = ?, outcome = ?, error = ?, finished_at = ? WHERE id = ?`,
		record.PulsesCompleted,
		string(record.Outcome),
		record.Error,
		record.FinishedAt.UnixNano(),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", record.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run %s: %w", record.ID, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, record.ID)
	}

	return nil
}

// List returns up to limit runs, newest first. A non-positive limit returns every run.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*pulse.RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, operator_host, operator_user, driver, pulse_count, pulses_completed,
		        outcome, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var records []*pulse.RunRecord

	for rows.Next() {
		var (
			record     = &pulse.RunRecord{Operator: new(pulse.Operator)}
			outcome    string
			startedAt  int64
			finishedAt sql.NullInt64
		)

		err = rows.Scan(
			&record.ID,
			&record.Operator.Hostname,
			&record.Operator.Username,
			&record.Driver,
			&record.PulseCount,
			&record.PulsesCompleted,
			&outcome,
			&record.Error,
			&startedAt,
			&finishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		record.Outcome = pulse.Outcome(outcome)
		record.StartedAt = time.Unix(0, startedAt)

		if finishedAt.Valid {
			record.FinishedAt = time.Unix(0, finishedAt.Int64)
		}

		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return records, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
