package dialect

import "github.com/nonibytes/searchable/searchable/storage/sqlbuilder"

type Postgres struct{}

func (Postgres) Name() string          { return PostgresName }
func (Postgres) MatchOperator() string { return "ILIKE" }

// Identifiers are left as written so Postgres folds them to lower case.
func (Postgres) QuoteColumn(column string) string { return column }
func (Postgres) QuoteTable(name string) string    { return name }

func (Postgres) HavingUsesAlias() bool   { return false }
func (Postgres) GroupByAllColumns() bool { return false }

func (Postgres) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderDollar
}
