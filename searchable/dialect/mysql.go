package dialect

import "github.com/nonibytes/searchable/searchable/storage/sqlbuilder"

// MySQL covers MySQL and MariaDB.
type MySQL struct{}

func (MySQL) Name() string          { return MySQLName }
func (MySQL) MatchOperator() string { return "LIKE" }

func (MySQL) QuoteColumn(column string) string { return quoteSegments(column, "`", "`") }
func (MySQL) QuoteTable(name string) string    { return "`" + name + "`" }

// HavingUsesAlias is true: MySQL resolves select aliases in HAVING, and the
// literals were already consumed by the select list.
func (MySQL) HavingUsesAlias() bool   { return true }
func (MySQL) GroupByAllColumns() bool { return false }

func (MySQL) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}
