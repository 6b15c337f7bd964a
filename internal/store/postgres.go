package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sentiment-cli/internal/db"
	"github.com/sells-group/sentiment-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const pgRunColumns = `id, kind, status, subjects, output, rows_written, error, created_at, updated_at`

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"insert_run":        `INSERT INTO runs (id, kind, status, subjects, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"update_run_status": `UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"complete_run":      `UPDATE runs SET status = $1, output = $2, rows_written = $3, updated_at = $4 WHERE id = $5`,
	"fail_run":          `UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
	"get_run":           `SELECT ` + pgRunColumns + ` FROM runs WHERE id = $1`,
}

var recordIndex = db.InsertConfig{
	Table:        "records",
	Columns:      []string{"id", "run_id", "kind", "indexed_at"},
	ConflictKeys: []string{"id"},
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	kind         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'configured',
	subjects     JSONB NOT NULL DEFAULT '[]'::jsonb,
	output       TEXT NOT NULL DEFAULT '',
	rows_written INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	kind       TEXT NOT NULL,
	indexed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, kind model.RunKind, subjects []string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	if subjects == nil {
		subjects = []string{}
	}
	subjectsJSON, err := json.Marshal(subjects)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal subjects")
	}

	_, err = s.pool.Exec(ctx, preparedStatements["insert_run"],
		id, string(kind), string(model.RunStatusConfigured), subjectsJSON, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
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

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx, preparedStatements["update_run_status"],
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID, output string, rows int) error {
	tag, err := s.pool.Exec(ctx, preparedStatements["complete_run"],
		string(model.RunStatusDone), output, rows, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID, reason string) error {
	tag, err := s.pool.Exec(ctx, preparedStatements["fail_run"],
		string(model.RunStatusFailed), reason, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx, preparedStatements["get_run"], runID)
	r, err := scanPgRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: get run: run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT ` + pgRunColumns + ` FROM runs WHERE 1=1`
	var args []any
	argN := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argN)
		args = append(args, string(filter.Status))
		argN++
	}
	if filter.Kind != "" {
		query += fmt.Sprintf(` AND kind = $%d`, argN)
		args = append(args, string(filter.Kind))
		argN++
	}
	if !filter.CreatedAfter.IsZero() {
		query += fmt.Sprintf(` AND created_at >= $%d`, argN)
		args = append(args, filter.CreatedAfter)
		argN++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argN)
	args = append(args, listLimit(filter.Limit))
	argN++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argN)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// IndexRecords bulk-inserts ids through a temp table so a large run costs
// one COPY and one INSERT ... ON CONFLICT DO NOTHING.
func (s *PostgresStore) IndexRecords(ctx context.Context, runID string, kind model.RunKind, ids []string) (IndexResult, error) {
	ids = uniqueIDs(ids)
	result := IndexResult{Submitted: len(ids)}
	if len(ids) == 0 {
		return result, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, len(ids))
	for i, id := range ids {
		rows[i] = []any{id, runID, string(kind), now}
	}

	n, err := db.BulkInsertIgnore(ctx, s.pool, recordIndex, rows)
	if err != nil {
		return result, eris.Wrap(err, "postgres: index records")
	}
	result.New = int(n)
	return result, nil
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var kind, status string
	var subjectsJSON []byte

	if err := row.Scan(&r.ID, &kind, &status, &subjectsJSON, &r.Output, &r.RowsWritten, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Kind = model.RunKind(kind)
	r.Status = model.RunStatus(status)

	if len(subjectsJSON) > 0 {
		if err := json.Unmarshal(subjectsJSON, &r.Subjects); err != nil {
			return nil, eris.Wrap(err, "unmarshal subjects")
		}
	}
	return &r, nil
}
