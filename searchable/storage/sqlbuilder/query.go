package sqlbuilder

import (
	"strconv"
	"strings"
)

// Slot names the clause a binding belongs to. Slots are flattened in the
// order their clauses appear in the rendered statement.
type Slot int

const (
	SlotSelect Slot = iota
	SlotFrom
	SlotJoin
	SlotWhere
	SlotHaving
	slotCount
)

// Scope is a filter applied to a query every time it is rendered, until it is
// removed with WithoutGlobalScopes.
type Scope func(q *Query)

type namedScope struct {
	name string
	fn   Scope
}

// Query is a mutable SELECT statement builder. Identifiers and raw fragments
// are written verbatim; only values passed as args are bound.
type Query struct {
	table    string
	from     string
	columns  []string
	raws     []string
	joins    []string
	wheres   []string
	groups   []string
	havings  []string
	orders   []string
	limit    int
	offset   int
	bindings [slotCount][]any
	scopes   []namedScope
}

// NewQuery starts a query selecting from table.
func NewQuery(table string) *Query {
	return &Query{table: table}
}

func (q *Query) Table() string { return q.table }

// Clone returns a deep copy. Scopes are carried over.
func (q *Query) Clone() *Query {
	c := &Query{
		table:   q.table,
		from:    q.from,
		columns: cloneStrings(q.columns),
		raws:    cloneStrings(q.raws),
		joins:   cloneStrings(q.joins),
		wheres:  cloneStrings(q.wheres),
		groups:  cloneStrings(q.groups),
		havings: cloneStrings(q.havings),
		orders:  cloneStrings(q.orders),
		limit:   q.limit,
		offset:  q.offset,
		scopes:  append([]namedScope(nil), q.scopes...),
	}
	for i := range q.bindings {
		c.bindings[i] = append([]any(nil), q.bindings[i]...)
	}
	return c
}

// Select replaces the whole projection: plain columns, raw expressions and
// their select bindings.
func (q *Query) Select(columns ...string) *Query {
	q.columns = cloneStrings(columns)
	q.raws = nil
	q.bindings[SlotSelect] = nil
	return q
}

func (q *Query) AddSelect(columns ...string) *Query {
	q.columns = append(q.columns, columns...)
	return q
}

// SelectRaw appends a raw select expression and its bindings.
func (q *Query) SelectRaw(expr string, args ...any) *Query {
	q.raws = append(q.raws, expr)
	q.bindings[SlotSelect] = append(q.bindings[SlotSelect], args...)
	return q
}

// FromRaw replaces the FROM source with a raw expression, typically a
// parenthesized subquery with an alias. args replace the FROM bindings.
func (q *Query) FromRaw(expr string, args ...any) *Query {
	q.from = expr
	q.bindings[SlotFrom] = append([]any(nil), args...)
	return q
}

// LeftJoin adds "left join <table> on <on>".
func (q *Query) LeftJoin(table, on string, args ...any) *Query {
	q.joins = append(q.joins, "left join "+table+" on "+on)
	q.bindings[SlotJoin] = append(q.bindings[SlotJoin], args...)
	return q
}

// Where adds a condition, ANDed with the others.
func (q *Query) Where(cond string, args ...any) *Query {
	q.wheres = append(q.wheres, cond)
	q.bindings[SlotWhere] = append(q.bindings[SlotWhere], args...)
	return q
}

// GroupBy appends grouping columns, skipping ones already present.
func (q *Query) GroupBy(columns ...string) *Query {
	for _, c := range columns {
		if !containsString(q.groups, c) {
			q.groups = append(q.groups, c)
		}
	}
	return q
}

func (q *Query) Groups() []string { return cloneStrings(q.groups) }

// HavingRaw adds a raw HAVING condition and its bindings.
func (q *Query) HavingRaw(cond string, args ...any) *Query {
	q.havings = append(q.havings, cond)
	q.bindings[SlotHaving] = append(q.bindings[SlotHaving], args...)
	return q
}

func (q *Query) OrderBy(column, direction string) *Query {
	o := column
	if direction != "" {
		o += " " + strings.ToLower(direction)
	}
	q.orders = append(q.orders, o)
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) Offset(n int) *Query {
	q.offset = n
	return q
}

// WithGlobalScope registers a scope applied at render time. A scope with the
// same name replaces the earlier one.
func (q *Query) WithGlobalScope(name string, fn Scope) *Query {
	for i, s := range q.scopes {
		if s.name == name {
			q.scopes[i].fn = fn
			return q
		}
	}
	q.scopes = append(q.scopes, namedScope{name: name, fn: fn})
	return q
}

// WithoutGlobalScopes removes the named scopes, or all of them when no name
// is given.
func (q *Query) WithoutGlobalScopes(names ...string) *Query {
	if len(names) == 0 {
		q.scopes = nil
		return q
	}
	kept := q.scopes[:0]
	for _, s := range q.scopes {
		if !containsString(names, s.name) {
			kept = append(kept, s)
		}
	}
	q.scopes = kept
	return q
}

func (q *Query) GlobalScopes() []string {
	names := make([]string, 0, len(q.scopes))
	for _, s := range q.scopes {
		names = append(names, s.name)
	}
	return names
}

// RawBindings returns the bindings of one slot, ignoring scopes.
func (q *Query) RawBindings(slot Slot) []any {
	return append([]any(nil), q.bindings[slot]...)
}

// SetBindings replaces the bindings of one slot.
func (q *Query) SetBindings(args []any, slot Slot) *Query {
	q.bindings[slot] = append([]any(nil), args...)
	return q
}

// Build applies the global scopes to a copy of the query and renders it with
// "?" placeholders. The returned bindings are in placeholder order.
func (q *Query) Build() (string, []any) {
	applied := q.applyScopes()
	return applied.render(), applied.flatBindings()
}

func (q *Query) ToSQL() string {
	sql, _ := q.Build()
	return sql
}

func (q *Query) Bindings() []any {
	_, args := q.Build()
	return args
}

func (q *Query) applyScopes() *Query {
	if len(q.scopes) == 0 {
		return q
	}
	c := q.Clone()
	c.scopes = nil
	for _, s := range q.scopes {
		s.fn(c)
	}
	return c
}

func (q *Query) flatBindings() []any {
	var out []any
	for _, b := range q.bindings {
		out = append(out, b...)
	}
	return out
}

func (q *Query) render() string {
	var sb strings.Builder
	sb.WriteString("select ")
	cols := append(cloneStrings(q.columns), q.raws...)
	if len(cols) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(cols, ", "))
	}
	sb.WriteString(" from ")
	if q.from != "" {
		sb.WriteString(q.from)
	} else {
		sb.WriteString(q.table)
	}
	for _, j := range q.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}
	if len(q.wheres) > 0 {
		sb.WriteString(" where ")
		sb.WriteString(strings.Join(q.wheres, " and "))
	}
	if len(q.groups) > 0 {
		sb.WriteString(" group by ")
		sb.WriteString(strings.Join(q.groups, ", "))
	}
	if len(q.havings) > 0 {
		sb.WriteString(" having ")
		sb.WriteString(strings.Join(q.havings, " and "))
	}
	if len(q.orders) > 0 {
		sb.WriteString(" order by ")
		sb.WriteString(strings.Join(q.orders, ", "))
	}
	if q.limit > 0 {
		sb.WriteString(" limit ")
		sb.WriteString(strconv.Itoa(q.limit))
	}
	if q.offset > 0 {
		sb.WriteString(" offset ")
		sb.WriteString(strconv.Itoa(q.offset))
	}
	return sb.String()
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
