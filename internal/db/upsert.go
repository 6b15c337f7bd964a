package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// InsertConfig defines the parameters for a bulk insert-if-absent.
type InsertConfig struct {
	Table        string   // target table, optionally schema-qualified
	Columns      []string // all columns being inserted
	ConflictKeys []string // columns forming the unique constraint
}

// BulkInsertIgnore copies rows into a temp table and then runs
// INSERT ... SELECT ... ON CONFLICT (keys) DO NOTHING against the target.
// The returned count is the number of rows that were not already present.
func BulkInsertIgnore(ctx context.Context, pool Pool, cfg InsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: insert: no columns specified")
	}
	if len(cfg.ConflictKeys) == 0 {
		return 0, eris.New("db: insert: no conflict keys specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: insert: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tempTable := tempTableName(cfg.Table)

	createSQL := fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		pgx.Identifier{tempTable}.Sanitize(),
		sanitizeTable(cfg.Table),
	)
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: insert: create temp table for %s", cfg.Table)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{tempTable}, cfg.Columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: insert: COPY into temp table for %s", cfg.Table)
	}

	colList := quoteAndJoin(cfg.Columns)
	tag, err := tx.Exec(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT DISTINCT %s FROM %s ON CONFLICT (%s) DO NOTHING",
		sanitizeTable(cfg.Table),
		colList,
		colList,
		pgx.Identifier{tempTable}.Sanitize(),
		quoteAndJoin(cfg.ConflictKeys),
	))
	if err != nil {
		return 0, eris.Wrapf(err, "db: insert: INSERT ON CONFLICT for %s", cfg.Table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: insert: commit tx")
	}
	return tag.RowsAffected(), nil
}

func tempTableName(table string) string {
	return "_tmp_insert_" + strings.ReplaceAll(table, ".", "_")
}

func cutTable(table string) (schema, name string, ok bool) {
	return strings.Cut(table, ".")
}

// sanitizeTable handles schema-qualified table names like "ledger.records".
func sanitizeTable(table string) string {
	return identifier(table).Sanitize()
}

// quoteAndJoin quotes each column name and joins with commas.
func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
