package searchable

import (
	"fmt"
	"log/slog"

	"github.com/nonibytes/searchable/searchable/dialect"
	"github.com/nonibytes/searchable/searchable/planner"
	"github.com/nonibytes/searchable/searchable/query"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

// Searcher builds relevance-ranked searches for one entity. It is immutable
// after New and safe for concurrent use.
type Searcher struct {
	entity    Entity
	columns   Columns
	dialect   dialect.Dialect
	tokenizer query.Tokenizer
	logger    *slog.Logger
}

type Option func(*Searcher)

func WithLogger(l *slog.Logger) Option {
	return func(s *Searcher) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTokenizer sets the tokenizer, typically to fold case for a specific
// language.
func WithTokenizer(t query.Tokenizer) Option {
	return func(s *Searcher) { s.tokenizer = t }
}

// New resolves the entity's connection, dialect and columns and keeps its own
// copy of e. Weights, joins and grouping are checked here so that a bad
// description fails before any query is built.
func New(e Entity, cfg Lookup, opts ...Option) (*Searcher, error) {
	if e.Table == "" {
		return nil, ConfigurationError(e.Name, "entity has no table")
	}

	info, err := resolveConnection(e, cfg)
	if err != nil {
		return nil, err
	}
	d, err := dialect.Lookup(info.Driver)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", e.name(), err)
	}

	columns := e.ResolveColumns(info.Prefix)
	if err := columns.Validate(e.name()); err != nil {
		return nil, err
	}
	e = e.clone()

	s := &Searcher{
		entity:  e,
		columns: columns,
		dialect: d,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	scratch := sqlbuilder.NewQuery(e.Table)
	if err := planner.ApplyJoins(scratch, e.name(), e.Joins); err != nil {
		return nil, err
	}
	if err := planner.ApplyGroupBy(scratch, d, e.name(), s.grouping()); err != nil {
		return nil, err
	}
	return s, nil
}

func resolveConnection(e Entity, cfg Lookup) (ConnectionInfo, error) {
	if cfg == nil {
		return ConnectionInfo{Driver: dialect.Default}, nil
	}
	name := e.Connection
	if name == "" {
		name = cfg.DefaultConnection()
	}
	info, ok := cfg.Connection(name)
	if !ok {
		if e.Connection != "" {
			return ConnectionInfo{}, ConfigurationError(e.name(), fmt.Sprintf("unknown connection %q", name))
		}
		return ConnectionInfo{Driver: dialect.Default}, nil
	}
	return info, nil
}

func (s *Searcher) Entity() Entity           { return s.entity.clone() }
func (s *Searcher) Columns() Columns         { return s.columns.Clone() }
func (s *Searcher) Dialect() dialect.Dialect { return s.dialect }

// Terms returns the search terms text is scored on.
func (s *Searcher) Terms(text string) query.Terms {
	return s.tokenizer.Tokenize(text)
}

// NewQuery starts a base query on the entity's table.
func (s *Searcher) NewQuery() *sqlbuilder.Query {
	return sqlbuilder.NewQuery(s.entity.Table)
}

// Search adds relevance scoring, the threshold filter and relevance ordering
// to base and returns it. A nil text means no search was requested and base
// is returned untouched.
func (s *Searcher) Search(base *sqlbuilder.Query, text *string, o SearchOptions) (*sqlbuilder.Query, error) {
	return s.SearchRestricted(base, text, o, nil)
}

// SearchRestricted is Search with restrict applied to the scored subquery
// after grouping and before the merge. A nil restrict behaves like Search.
func (s *Searcher) SearchRestricted(base *sqlbuilder.Query, text *string, o SearchOptions, restrict Restriction) (*sqlbuilder.Query, error) {
	if text == nil {
		return base, nil
	}
	if base == nil {
		base = s.NewQuery()
	}
	entity := s.entity.name()

	sub := base.Clone().Select(s.entity.selectFields()...)
	if err := planner.ApplyJoins(sub, entity, s.entity.Joins); err != nil {
		return nil, err
	}

	terms := s.tokenizer.Tokenize(*text)
	whole := s.tokenizer.Normalize(*text)
	mode := planner.Mode{EntireText: o.EntireText, EntireTextOnly: o.EntireTextOnly}

	var fragments []planner.Fragment
	for _, column := range s.columns.Names() {
		frags, err := planner.BuildColumn(s.dialect, column, s.columns[column], terms, whole, mode)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", entity, err)
		}
		fragments = append(fragments, frags...)
	}

	threshold, err := s.threshold(o)
	if err != nil {
		return nil, err
	}
	if err := planner.ApplyRelevance(sub, s.dialect, fragments, threshold); err != nil {
		return nil, fmt.Errorf("entity %s: %w", entity, err)
	}
	if err := planner.ApplyGroupBy(sub, s.dialect, entity, s.grouping()); err != nil {
		return nil, err
	}

	if restrict != nil {
		if sub = restrict(sub); sub == nil {
			return nil, InternalInvariantError("restriction returned no query for " + entity)
		}
	}

	if err := planner.Merge(sub, base, s.dialect, s.entity.Table); err != nil {
		return nil, err
	}

	s.logger.Debug("search built",
		"entity", entity,
		"dialect", s.dialect.Name(),
		"terms", len(terms),
		"fragments", len(fragments),
		"threshold", threshold,
	)
	return base, nil
}

func (s *Searcher) threshold(o SearchOptions) (float64, error) {
	if o.Threshold != nil {
		if !finite(*o.Threshold) {
			return 0, ConfigurationErrorf(s.entity.name(), "threshold must be a finite number, got %v", *o.Threshold)
		}
		return *o.Threshold, nil
	}
	return planner.DefaultThreshold(s.entity.name(), s.columns)
}

func (s *Searcher) grouping() planner.Grouping {
	return planner.Grouping{
		Table:        s.entity.Table,
		PrimaryKey:   s.entity.primaryKey(),
		Explicit:     s.entity.GroupBy,
		TableColumns: s.entity.TableColumns,
		Columns:      s.columns.Names(),
		Joins:        s.entity.Joins,
	}
}
