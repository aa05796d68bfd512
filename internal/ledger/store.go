package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"bidslite/internal/faults"
)

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

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

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts run with status running. A missing ID is replaced by a
// new UUID and a zero StartedAt by the current time.
func (s *Store) BeginRun(ctx context.Context, run Run) (*Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = StatusRunning
	run.FinishedAt = nil

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
            id, command, status, input_dir, metadata_path, output_dir, dataset_type,
            pipeline_name, move, planned, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Command,
		run.Status,
		nullableString(run.InputDir),
		nullableString(run.MetadataPath),
		nullableString(run.OutputDir),
		run.DatasetType,
		nullableString(run.PipelineName),
		boolToInt(run.Move),
		run.Planned,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &run, nil
}

// RecordOperation appends one operation outcome to runID.
func (s *Store) RecordOperation(ctx context.Context, runID string, op OperationRecord) error {
	if op.RecordedAt.IsZero() {
		op.RecordedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operations (
            run_id, seq, source_path, destination_path, action, status, bytes, error_message, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		op.Seq,
		op.Source,
		op.Destination,
		op.Action,
		op.Status,
		op.Bytes,
		nullableString(op.ErrorMessage),
		formatTime(op.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// FinishRun stores the outcome of runID.
func (s *Store) FinishRun(ctx context.Context, runID string, outcome Outcome) error {
	if outcome.Status == "" {
		outcome.Status = StatusCompleted
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, ok = ?, failed = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		outcome.Status,
		outcome.OK,
		outcome.Failed,
		nullableString(outcome.ErrorMessage),
		formatTime(time.Now()),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows affected: %w", err)
	}
	if affected == 0 {
		return faults.Wrap(faults.ErrNotFound, "ledger", "finish run", "unknown run "+runID, nil)
	}
	return nil
}

// GetRun fetches a run by full ID or unique ID prefix. It returns nil when
// nothing matches.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, idOrPrefix)
	run, err := scanRun(row)
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? ORDER BY started_at DESC LIMIT 2`,
		len(idOrPrefix), idOrPrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("get run by prefix: %w", err)
	}
	defer rows.Close()
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, faults.Wrap(faults.ErrValidation, "ledger", "get run", fmt.Sprintf("run id prefix %q is ambiguous", idOrPrefix), nil)
	}
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Operations returns the recorded operations of runID in sequence order.
func (s *Store) Operations(ctx context.Context, runID string) ([]OperationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, source_path, destination_path, action, status, bytes, error_message, recorded_at
         FROM operations WHERE run_id = ? ORDER BY seq, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var ops []OperationRecord
	for rows.Next() {
		var op OperationRecord
		var errMsg sql.NullString
		var recordedAt string
		if err := rows.Scan(&op.Seq, &op.Source, &op.Destination, &op.Action, &op.Status, &op.Bytes, &errMsg, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.ErrorMessage = errMsg.String
		if ts, err := parseTimeString(recordedAt); err == nil {
			op.RecordedAt = ts
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return ops, nil
}

// Prune deletes runs started before cutoff together with their operations.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
