package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/sentiment-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'configured',
	subjects     TEXT NOT NULL DEFAULT '[]',
	output       TEXT NOT NULL DEFAULT '',
	rows_written INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	kind       TEXT NOT NULL,
	indexed_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, kind model.RunKind, subjects []string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	if subjects == nil {
		subjects = []string{}
	}
	subjectsJSON, err := json.Marshal(subjects)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal subjects")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, status, subjects, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(kind), string(model.RunStatusConfigured), string(subjectsJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Kind:      kind,
		Status:    model.RunStatusConfigured,
		Subjects:  subjects,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID, output string, rows int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, output = ?, rows_written = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusDone), output, rows, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), reason, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

const sqliteRunColumns = `id, kind, status, subjects, output, rows_written, error, created_at, updated_at`

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteRunColumns+` FROM runs WHERE id = ?`, runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT ` + sqliteRunColumns + ` FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.CreatedAfter.UTC())
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) IndexRecords(ctx context.Context, runID string, kind model.RunKind, ids []string) (IndexResult, error) {
	ids = uniqueIDs(ids)
	result := IndexResult{Submitted: len(ids)}
	if len(ids) == 0 {
		return result, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, eris.Wrap(err, "sqlite: index records: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO records (id, run_id, kind, indexed_at) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return result, eris.Wrap(err, "sqlite: index records: prepare")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, id, runID, string(kind), now)
		if err != nil {
			return result, eris.Wrapf(err, "sqlite: index record %s", id)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return result, eris.Wrap(err, "rows affected")
		}
		result.New += int(n)
	}

	if err := tx.Commit(); err != nil {
		return IndexResult{Submitted: len(ids)}, eris.Wrap(err, "sqlite: index records: commit")
	}
	return result, nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var kind, status, subjectsJSON string

	err := row.Scan(&r.ID, &kind, &status, &subjectsJSON, &r.Output, &r.RowsWritten, &r.Error, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	r.Kind = model.RunKind(kind)
	r.Status = model.RunStatus(status)

	if err := json.Unmarshal([]byte(subjectsJSON), &r.Subjects); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal subjects")
	}
	return &r, nil
}
