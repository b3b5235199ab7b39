// Package searchable adds relevance-ranked keyword search to a SQL query.
//
// A Searcher scores every configured column of an entity against the terms of
// a search string, keeps rows whose relevance reaches a threshold, orders them
// by relevance and exposes the result to the caller's query as a derived table
// named after the entity's table.
package searchable

import (
	"math"
	"slices"
	"sort"

	"github.com/nonibytes/searchable/searchable/planner"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

// Columns maps a column identifier to its weight. Identifiers may be
// qualified ("users.name") when the column belongs to a joined table.
type Columns map[string]float64

// Names returns the column identifiers in sorted order.
func (c Columns) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy.
func (c Columns) Clone() Columns {
	out := make(Columns, len(c))
	for name, weight := range c {
		out[name] = weight
	}
	return out
}

// Validate checks that every weight is a finite positive number.
func (c Columns) Validate(entity string) error {
	for _, name := range c.Names() {
		if !positive(c[name]) {
			return ConfigurationErrorf(entity, "column %q: weight must be a positive number, got %v", name, c[name])
		}
	}
	return nil
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type Join = planner.Join

// Entity is the searchable description of one table.
type Entity struct {
	// Name identifies the entity in errors and logs. Defaults to Table.
	Name       string
	Table      string
	PrimaryKey string // default "id"

	// Connection selects the database connection whose driver decides the
	// dialect. Empty means the default connection.
	Connection string

	Columns Columns
	// PrefixColumns prepends the connection's table prefix to every column.
	PrefixColumns bool

	Joins []Join
	// GroupBy replaces the derived GROUP BY list when set.
	GroupBy []string
	// TableColumns is grouped by dialects that need every selected column in
	// GROUP BY (SQL Server). Required there unless GroupBy is set.
	TableColumns []string
	// SelectFields is the projection of the scored subquery. Defaults to
	// "<table>.*".
	SelectFields []string
}

func (e Entity) name() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Table
}

func (e Entity) clone() Entity {
	e.Columns = e.Columns.Clone()
	e.Joins = slices.Clone(e.Joins)
	e.GroupBy = slices.Clone(e.GroupBy)
	e.TableColumns = slices.Clone(e.TableColumns)
	e.SelectFields = slices.Clone(e.SelectFields)
	return e
}

func (e Entity) primaryKey() string {
	if e.PrimaryKey != "" {
		return e.PrimaryKey
	}
	return DefaultPrimaryKey
}

func (e Entity) selectFields() []string {
	if len(e.SelectFields) > 0 {
		return e.SelectFields
	}
	return []string{e.Table + ".*"}
}

// ResolveColumns returns a copy of the columns to score. With PrefixColumns
// set every identifier gets prefix prepended.
func (e Entity) ResolveColumns(prefix string) Columns {
	if !e.PrefixColumns || prefix == "" {
		return e.Columns.Clone()
	}
	out := make(Columns, len(e.Columns))
	for column, weight := range e.Columns {
		out[prefix+column] = weight
	}
	return out
}

// DefaultColumns weighs a list of fillable columns: the usual headline
// columns (name, title, description, body, message) get 10, the rest 1.
func DefaultColumns(fillable []string) Columns {
	cols := make(Columns, len(fillable))
	for _, c := range fillable {
		cols[c] = DefaultWeight
		for _, important := range defaultImportantColumns {
			if c == important {
				cols[c] = DefaultImportantWeight
				break
			}
		}
	}
	return cols
}

// SearchOptions tunes one search.
type SearchOptions struct {
	// Threshold is the minimum relevance. Nil uses the average column weight;
	// an explicit zero keeps every row.
	Threshold *float64
	// EntireText also scores the whole search text when it has more than one
	// term.
	EntireText bool
	// EntireTextOnly scores the whole search text and nothing else.
	EntireTextOnly bool
}

// Threshold is a convenience for SearchOptions.Threshold.
func Threshold(v float64) *float64 { return &v }

// Text is a convenience for the search text argument of Search.
func Text(s string) *string { return &s }

// Restriction narrows the scored subquery before it is merged.
type Restriction func(q *sqlbuilder.Query) *sqlbuilder.Query
