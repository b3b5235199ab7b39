// Package dialect isolates the SQL differences that matter to relevance
// search: the case-insensitive match operator, identifier quoting, how the
// relevance threshold is filtered after grouping, and what GROUP BY must
// contain. A Dialect is picked once, by name, and consulted by the planner.
package dialect

import (
	"sort"
	"strings"

	serrors "github.com/nonibytes/searchable/searchable/errors"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

// Dialect is implemented once per supported SQL backend.
type Dialect interface {
	// Name is the canonical driver name: mysql, pgsql, sqlite or sqlsrv.
	Name() string

	// MatchOperator compares LOWER(column) with a LIKE pattern.
	MatchOperator() string

	// QuoteColumn quotes a possibly table-qualified column for use inside
	// LOWER(...).
	QuoteColumn(column string) string

	// QuoteTable quotes the alias given to the scored derived table.
	QuoteTable(name string) string

	// HavingUsesAlias reports whether HAVING may reference the relevance
	// alias. When false the summed expression is repeated in HAVING and its
	// literals are bound a second time.
	HavingUsesAlias() bool

	// GroupByAllColumns reports whether every selected column must appear in
	// GROUP BY, which rules out grouping by the primary key alone.
	GroupByAllColumns() bool

	// PlaceholderStyle is the parameter syntax the backend driver expects.
	PlaceholderStyle() sqlbuilder.PlaceholderStyle
}

const (
	MySQLName     = "mysql"
	PostgresName  = "pgsql"
	SQLiteName    = "sqlite"
	SQLServerName = "sqlsrv"
)

// Default is the dialect used when a connection names no driver.
const Default = MySQLName

var registry = map[string]Dialect{
	MySQLName:     MySQL{},
	"mariadb":     MySQL{},
	PostgresName:  Postgres{},
	"postgres":    Postgres{},
	"postgresql":  Postgres{},
	"pgx":         Postgres{},
	SQLiteName:    SQLite{},
	"sqlite3":     SQLite{},
	SQLServerName: SQLServer{},
	"sqlserver":   SQLServer{},
	"mssql":       SQLServer{},
}

// Lookup returns the dialect registered under name (case-insensitive). An
// empty name selects Default.
func Lookup(name string) (Dialect, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = Default
	}
	d, ok := registry[key]
	if !ok {
		return nil, serrors.ConfigurationErrorf("", "unsupported dialect %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names lists every accepted dialect name, aliases included.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// quoteSegments wraps each dot-separated segment of ident in open/close.
func quoteSegments(ident, open, close string) string {
	return open + strings.ReplaceAll(ident, ".", close+"."+open) + close
}
