package planner

import (
	"fmt"
	"strings"

	"github.com/nonibytes/searchable/searchable/dialect"
	serrors "github.com/nonibytes/searchable/searchable/errors"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

// Join is a LEFT JOIN applied to the scored subquery before scoring, so that
// qualified search columns of the joined table can be matched.
type Join struct {
	Table  string
	First  string
	Second string

	// FilterColumn and FilterValue add "and <FilterColumn> = ?" to the ON
	// clause. Both must be set for the filter to apply.
	FilterColumn string
	FilterValue  any
}

func (j Join) hasFilter() bool {
	return j.FilterColumn != "" && j.FilterValue != nil
}

// ApplyJoins adds one LEFT JOIN per join, in order.
func ApplyJoins(q *sqlbuilder.Query, entity string, joins []Join) error {
	for i, j := range joins {
		if j.Table == "" || j.First == "" || j.Second == "" {
			return serrors.ConfigurationErrorf(entity,
				"join %d: table, first and second keys are required (got table=%q first=%q second=%q)",
				i, j.Table, j.First, j.Second)
		}
		on := j.First + " = " + j.Second
		if j.hasFilter() {
			q.LeftJoin(j.Table, on+" and "+j.FilterColumn+" = ?", j.FilterValue)
			continue
		}
		q.LeftJoin(j.Table, on)
	}
	return nil
}

// Grouping describes how the scored subquery folds joined rows back into one
// row per entity.
type Grouping struct {
	Table      string
	PrimaryKey string

	// Explicit replaces every other rule when non-empty.
	Explicit []string
	// TableColumns is the full projection, grouped by dialects that require
	// every selected column in GROUP BY.
	TableColumns []string

	// Columns are the search columns, checked against Joins for the
	// joined-column rule.
	Columns []string
	Joins   []Join
}

// ApplyGroupBy adds the GROUP BY clause:
//   - an explicit list is used as is;
//   - otherwise the primary key, or the table columns when the dialect
//     groups by every column;
//   - plus any search column whose name contains a joined table's name.
//
// The last rule is a plain substring test: "users" also matches
// "power_users.name".
func ApplyGroupBy(q *sqlbuilder.Query, d dialect.Dialect, entity string, g Grouping) error {
	if len(g.Explicit) > 0 {
		q.GroupBy(g.Explicit...)
		return nil
	}

	if d.GroupByAllColumns() {
		if len(g.TableColumns) == 0 {
			return serrors.ConfigurationError(entity,
				fmt.Sprintf("dialect %s groups by every column but no table columns are configured", d.Name()))
		}
		q.GroupBy(g.TableColumns...)
	} else {
		q.GroupBy(g.Table + "." + g.PrimaryKey)
	}

	for _, column := range g.Columns {
		for _, j := range g.Joins {
			if j.Table != "" && strings.Contains(column, j.Table) {
				q.GroupBy(column)
			}
		}
	}
	return nil
}
