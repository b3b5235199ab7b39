// Package ops runs queries built by the searchable engine.
package ops

import (
	"context"
	"database/sql"

	serrors "github.com/nonibytes/searchable/searchable/errors"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Row maps column names to scanned values. Byte slices are converted to
// strings.
type Row map[string]any

type Result struct {
	SQL     string
	Args    []any
	Columns []string
	Rows    []Row
}

// Render builds q and rewrites its placeholders for style.
func Render(style sqlbuilder.PlaceholderStyle, q *sqlbuilder.Query) (string, []any) {
	sqlText, args := q.Build()
	return sqlbuilder.Rebind(style, sqlText), args
}

// Fetch renders q for style, runs it and scans every row.
func Fetch(ctx context.Context, db Querier, style sqlbuilder.PlaceholderStyle, q *sqlbuilder.Query) (*Result, error) {
	sqlText, args := Render(style, q)
	res := &Result{SQL: sqlText, Args: args}

	rows, err := db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSQL, "query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSQL, "read columns", err)
	}
	res.Columns = cols

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, serrors.Wrap(serrors.ErrSQL, "scan row", err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = values[i]
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, serrors.Wrap(serrors.ErrSQL, "iterate rows", err)
	}
	return res, nil
}
