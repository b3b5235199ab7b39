package dialect

import "github.com/nonibytes/searchable/searchable/storage/sqlbuilder"

// SQLite accepts MySQL-style backtick quoting. HAVING repeats the summed
// expression, as for every dialect other than MySQL.
type SQLite struct{}

func (SQLite) Name() string          { return SQLiteName }
func (SQLite) MatchOperator() string { return "LIKE" }

func (SQLite) QuoteColumn(column string) string { return quoteSegments(column, "`", "`") }
func (SQLite) QuoteTable(name string) string    { return "`" + name + "`" }

func (SQLite) HavingUsesAlias() bool   { return false }
func (SQLite) GroupByAllColumns() bool { return false }

func (SQLite) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}
