package dialect

import "github.com/nonibytes/searchable/searchable/storage/sqlbuilder"

// SQLServer covers Microsoft SQL Server and Azure SQL.
type SQLServer struct{}

func (SQLServer) Name() string          { return SQLServerName }
func (SQLServer) MatchOperator() string { return "LIKE" }

func (SQLServer) QuoteColumn(column string) string { return quoteSegments(column, "[", "]") }
func (SQLServer) QuoteTable(name string) string    { return "[" + name + "]" }

func (SQLServer) HavingUsesAlias() bool { return false }

// GroupByAllColumns is true: SQL Server rejects selected columns that are
// neither aggregated nor grouped, even when the primary key is grouped.
func (SQLServer) GroupByAllColumns() bool { return true }

func (SQLServer) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderAtP
}
