package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopyFrom bulk-inserts rows into a table using the PostgreSQL COPY protocol.
func CopyFrom(ctx context.Context, pool Pool, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := pool.CopyFrom(ctx, identifier(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}
	return n, nil
}

// identifier splits an optionally schema-qualified name like "ledger.records".
func identifier(table string) pgx.Identifier {
	schema, name, ok := cutTable(table)
	if ok {
		return pgx.Identifier{schema, name}
	}
	return pgx.Identifier{table}
}
