package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nonibytes/searchable/internal/config"
	"github.com/nonibytes/searchable/searchable/dialect"
	"github.com/nonibytes/searchable/searchable/ops"
	"github.com/nonibytes/searchable/searchable/storage"
	"github.com/nonibytes/searchable/searchable/storage/mysql"
	"github.com/nonibytes/searchable/searchable/storage/postgres"
	"github.com/nonibytes/searchable/searchable/storage/sqlite"
)

type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatSQL   OutputFormat = "sql"
)

func ParseOutputFormat(s string) OutputFormat {
	switch OutputFormat(s) {
	case FormatTable, FormatJSON, FormatSQL:
		return OutputFormat(s)
	default:
		return FormatTable
	}
}

func PrintJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

// NewTable returns a table writer mirrored to w in the style used by every
// command.
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// PrintRows renders query results with one column per result column.
func PrintRows(w io.Writer, cols []string, rows []ops.Row) {
	t := NewTable(w)
	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	t.AppendHeader(header)
	for _, r := range rows {
		row := make(table.Row, len(cols))
		for i, c := range cols {
			row[i] = r[c]
		}
		t.AppendRow(row)
	}
	t.Render()
}

// NewLogger writes text records to w; verbose enables debug records.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewAdapter creates the storage adapter for a configured connection.
func NewAdapter(conn config.ConnectionConfig) (storage.Adapter, error) {
	d, err := dialect.Lookup(conn.Driver)
	if err != nil {
		return nil, err
	}
	switch d.Name() {
	case dialect.MySQLName:
		return mysql.New(conn.DSN), nil
	case dialect.PostgresName:
		return postgres.New(conn.DSN, conn.Schema), nil
	case dialect.SQLiteName:
		return sqlite.New(conn.DSN), nil
	default:
		return nil, fmt.Errorf("no adapter for %s connections; use explain to print the query", d.Name())
	}
}
