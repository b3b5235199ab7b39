package planner

import (
	"fmt"

	"github.com/nonibytes/searchable/searchable/dialect"
	serrors "github.com/nonibytes/searchable/searchable/errors"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

// Merge replaces the FROM source of base with sub rendered as a derived table
// aliased to table. The subquery is rendered with its global scopes applied,
// then the scopes are removed from base so they do not filter twice.
//
// The subquery's bindings occupy the FROM slot of base, so after the merge
// they precede the bindings of base's own WHERE and HAVING clauses, matching
// the order of the placeholders in the rendered text.
func Merge(sub, base *sqlbuilder.Query, d dialect.Dialect, table string) error {
	sql, args := sub.Build()
	if n := sqlbuilder.CountPlaceholders(sql); n != len(args) {
		return serrors.InternalInvariantError(fmt.Sprintf(
			"subquery for %s has %d placeholders but %d bindings", table, n, len(args)))
	}

	base.FromRaw("("+sql+") as "+d.QuoteTable(table), args...)
	base.WithoutGlobalScopes()
	return nil
}
