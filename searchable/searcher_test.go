package searchable_test

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/nonibytes/searchable/internal/testutil"
	"github.com/nonibytes/searchable/searchable"
	"github.com/nonibytes/searchable/searchable/query"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

func postsEntity() searchable.Entity {
	return searchable.Entity{
		Table:   "posts",
		Columns: searchable.Columns{"title": 10, "body": 1},
	}
}

func newSearcher(t *testing.T, driver string, e searchable.Entity) *searchable.Searcher {
	t.Helper()
	s, err := searchable.New(e, searchable.SingleConnection(driver), searchable.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	return s
}

func TestSearchNilTextReturnsBaseUnchanged(t *testing.T) {
	s := newSearcher(t, "mysql", postsEntity())
	base := s.NewQuery().Where("posts.user_id = ?", 3)
	before, beforeArgs := base.Build()

	got, err := s.Search(base, nil, searchable.SearchOptions{})
	require.NoError(t, err)
	assert.Same(t, base, got)

	after, afterArgs := got.Build()
	assert.Equal(t, before, after)
	assert.Equal(t, beforeArgs, afterArgs)
}

func TestSearchMySQL(t *testing.T) {
	s := newSearcher(t, "mysql", postsEntity())

	q, err := s.Search(s.NewQuery(), searchable.Text("  Go "), searchable.SearchOptions{})
	require.NoError(t, err)

	sum := strings.Join([]string{
		"(case when LOWER(`body`) LIKE ? then 15 else 0 end)",
		"(case when LOWER(`body`) LIKE ? then 5 else 0 end)",
		"(case when LOWER(`body`) LIKE ? then 1 else 0 end)",
		"(case when LOWER(`title`) LIKE ? then 150 else 0 end)",
		"(case when LOWER(`title`) LIKE ? then 50 else 0 end)",
		"(case when LOWER(`title`) LIKE ? then 10 else 0 end)",
	}, " + ")
	want := "select * from (select posts.*, max(" + sum + ") as relevance from posts " +
		"group by posts.id having relevance >= 5.50 order by relevance desc) as `posts`"

	sql, args := q.Build()
	assert.Equal(t, want, sql)
	assert.Equal(t, []any{"go", "go%", "%go%", "go", "go%", "%go%"}, args)
}

func TestSearchPostgresRebindsHaving(t *testing.T) {
	s := newSearcher(t, "pgsql", postsEntity())

	q, err := s.Search(s.NewQuery(), searchable.Text("go"), searchable.SearchOptions{})
	require.NoError(t, err)

	sql, args := q.Build()
	assert.Contains(t, sql, "LOWER(title) ILIKE ?")
	assert.Contains(t, sql, "then 10 else 0 end) >= 5.50")
	assert.NotContains(t, sql, "having relevance")
	assert.Equal(t, strings.Count(sql, "?"), len(args))
	assert.Len(t, args, 12)
	assert.Equal(t, args[:6], args[6:])

	rebound := sqlbuilder.Rebind(s.Dialect().PlaceholderStyle(), sql)
	assert.Contains(t, rebound, "$12")
	assert.NotContains(t, rebound, "?")
}

func TestSearchBindingOrderWithBasePredicate(t *testing.T) {
	s := newSearcher(t, "mysql", searchable.Entity{Table: "posts", Columns: searchable.Columns{"title": 1}})
	base := s.NewQuery().Where("posts.user_id = ?", 3)

	q, err := s.Search(base, searchable.Text("x"), searchable.SearchOptions{})
	require.NoError(t, err)

	sql, args := q.Build()
	assert.Equal(t, []any{"x", "x%", "%x%", 3, 3}, args)
	assert.True(t, strings.HasSuffix(sql, ") as `posts` where posts.user_id = ?"), sql)
}

func TestSearchThreshold(t *testing.T) {
	s := newSearcher(t, "mysql", postsEntity())

	tests := []struct {
		name      string
		threshold *float64
		want      string
	}{
		{"default is average weight", nil, "having relevance >= 5.50"},
		{"explicit", searchable.Threshold(20), "having relevance >= 20.00"},
		{"explicit zero", searchable.Threshold(0), "having relevance >= 0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := s.Search(s.NewQuery(), searchable.Text("go"), searchable.SearchOptions{Threshold: tt.threshold})
			require.NoError(t, err)
			assert.Contains(t, q.ToSQL(), tt.want)
		})
	}
}

func TestSearchRejectsNonFiniteThreshold(t *testing.T) {
	s := newSearcher(t, "mysql", postsEntity())

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		t.Run(fmt.Sprint(v), func(t *testing.T) {
			_, err := s.Search(s.NewQuery(), searchable.Text("go"), searchable.SearchOptions{Threshold: searchable.Threshold(v)})
			require.Error(t, err)
			assert.True(t, searchable.IsKind(err, searchable.ErrConfiguration), err.Error())
			assert.Contains(t, err.Error(), "threshold must be a finite number")
		})
	}

	q, err := s.Search(s.NewQuery(), searchable.Text("go"), searchable.SearchOptions{Threshold: searchable.Threshold(-1)})
	require.NoError(t, err)
	assert.Contains(t, q.ToSQL(), "having relevance >= -1.00")
}

func TestSearchNoColumns(t *testing.T) {
	s := newSearcher(t, "mysql", searchable.Entity{Name: "Post", Table: "posts"})

	_, err := s.Search(s.NewQuery(), searchable.Text("go"), searchable.SearchOptions{})
	require.Error(t, err)
	assert.True(t, searchable.IsKind(err, searchable.ErrConfiguration))
	assert.Contains(t, err.Error(), "Post")

	// With an explicit threshold nothing is scored and nothing fails.
	q, err := s.Search(s.NewQuery(), searchable.Text("go"), searchable.SearchOptions{Threshold: searchable.Threshold(1)})
	require.NoError(t, err)
	assert.Equal(t, "select * from (select posts.* from posts group by posts.id) as `posts`", q.ToSQL())
}

func TestSearchEmptyTextScoresNothing(t *testing.T) {
	s := newSearcher(t, "mysql", postsEntity())
	q, err := s.Search(s.NewQuery(), searchable.Text("   "), searchable.SearchOptions{})
	require.NoError(t, err)
	assert.NotContains(t, q.ToSQL(), "relevance")
	assert.Empty(t, q.Bindings())
}

func TestSearchEntireText(t *testing.T) {
	s := newSearcher(t, "mysql", searchable.Entity{Table: "posts", Columns: searchable.Columns{"title": 1}})

	q, err := s.Search(s.NewQuery(), searchable.Text(`Go "Data Base"`), searchable.SearchOptions{EntireText: true})
	require.NoError(t, err)
	assert.Equal(t, []any{
		"go", "data base",
		"go%", "data base%",
		"%go%", "%data base%",
		`go "data base"`,
		`%go "data base"%`,
	}, q.Bindings())

	q, err = s.Search(s.NewQuery(), searchable.Text("a b"), searchable.SearchOptions{EntireTextOnly: true})
	require.NoError(t, err)
	sql, args := q.Build()
	assert.Equal(t, []any{"a b", "%a b%"}, args)
	assert.Contains(t, sql, "then 50 else 0 end) + (case when LOWER(`title`) LIKE ? then 30 else 0 end)")
}

func TestSearchAppliesGlobalScopesOnce(t *testing.T) {
	s := newSearcher(t, "mysql", postsEntity())
	base := s.NewQuery().WithGlobalScope("published", func(q *sqlbuilder.Query) {
		q.Where("posts.published = ?", 1)
	})

	q, err := s.Search(base, searchable.Text("go"), searchable.SearchOptions{})
	require.NoError(t, err)

	sql, args := q.Build()
	assert.Equal(t, 1, strings.Count(sql, "posts.published = ?"))
	assert.Contains(t, sql, "from posts where posts.published = ? group by posts.id")
	assert.Empty(t, q.GlobalScopes())
	assert.Equal(t, 1, args[len(args)-1])
	assert.Len(t, args, 7)
}

func TestSearchRestricted(t *testing.T) {
	s := newSearcher(t, "mysql", postsEntity())

	restrict := func(q *sqlbuilder.Query) *sqlbuilder.Query {
		return q.Where("posts.tenant_id = ?", 42).Limit(10)
	}
	q, err := s.SearchRestricted(s.NewQuery(), searchable.Text("go"), searchable.SearchOptions{}, restrict)
	require.NoError(t, err)

	sql, args := q.Build()
	assert.Contains(t, sql, "from posts where posts.tenant_id = ? group by posts.id")
	assert.Contains(t, sql, "order by relevance desc limit 10) as `posts`")
	assert.Equal(t, 42, args[len(args)-1])

	plain, err := s.SearchRestricted(s.NewQuery(), searchable.Text("go"), searchable.SearchOptions{}, nil)
	require.NoError(t, err)
	viaSearch, err := s.Search(s.NewQuery(), searchable.Text("go"), searchable.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, viaSearch.ToSQL(), plain.ToSQL())

	_, err = s.SearchRestricted(s.NewQuery(), searchable.Text("go"), searchable.SearchOptions{},
		func(*sqlbuilder.Query) *sqlbuilder.Query { return nil })
	assert.True(t, searchable.IsKind(err, searchable.ErrInternalInvariant))
}

func TestSearchJoins(t *testing.T) {
	s := newSearcher(t, "mysql", searchable.Entity{
		Table:   "posts",
		Columns: searchable.Columns{"posts.title": 10, "users.name": 5},
		Joins: []searchable.Join{
			{Table: "users", First: "posts.user_id", Second: "users.id", FilterColumn: "users.active", FilterValue: 1},
		},
	})

	q, err := s.Search(s.NewQuery(), searchable.Text("ann"), searchable.SearchOptions{})
	require.NoError(t, err)

	sql, args := q.Build()
	assert.Contains(t, sql, "from posts left join users on posts.user_id = users.id and users.active = ? group by posts.id, users.name having")
	assert.Contains(t, sql, "LOWER(`users`.`name`) LIKE ?")
	// select bindings precede the join filter
	assert.Equal(t, []any{"ann", "ann%", "%ann%", "ann", "ann%", "%ann%", 1}, args)
}

func TestSearchSelectFieldsAndGroupBy(t *testing.T) {
	s := newSearcher(t, "mysql", searchable.Entity{
		Table:        "posts",
		Columns:      searchable.Columns{"title": 1},
		SelectFields: []string{"posts.id", "posts.title"},
		GroupBy:      []string{"posts.id", "posts.title"},
	})
	q, err := s.Search(s.NewQuery(), searchable.Text("x"), searchable.SearchOptions{})
	require.NoError(t, err)
	sql := q.ToSQL()
	assert.Contains(t, sql, "(select posts.id, posts.title, max(")
	assert.Contains(t, sql, "group by posts.id, posts.title having")
}

func TestSearchSQLServer(t *testing.T) {
	e := postsEntity()
	e.TableColumns = []string{"posts.id", "posts.title", "posts.body"}
	s := newSearcher(t, "sqlsrv", e)

	q, err := s.Search(s.NewQuery(), searchable.Text("go"), searchable.SearchOptions{})
	require.NoError(t, err)
	sql := q.ToSQL()
	assert.Contains(t, sql, "LOWER([title]) LIKE ?")
	assert.Contains(t, sql, "group by posts.id, posts.title, posts.body having")
	assert.True(t, strings.HasSuffix(sql, ") as [posts]"), sql)
}

func weighted(w float64) searchable.Entity {
	return searchable.Entity{Table: "posts", Columns: searchable.Columns{"body": 1, "title": w}}
}

func TestNewConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		entity searchable.Entity
		cfg    searchable.Lookup
		errMsg string
	}{
		{"no table", searchable.Entity{Name: "Post"}, nil, "no table"},
		{"unknown driver", postsEntity(), searchable.SingleConnection("oracle"), "oracle"},
		{
			"unknown connection",
			searchable.Entity{Table: "posts", Connection: "replica", Columns: searchable.Columns{"title": 1}},
			searchable.SingleConnection("mysql"),
			"replica",
		},
		{"sqlsrv without table columns", postsEntity(), searchable.SingleConnection("sqlsrv"), "table columns"},
		{
			"join without keys",
			searchable.Entity{Table: "posts", Joins: []searchable.Join{{Table: "users"}}},
			searchable.SingleConnection("mysql"),
			"join 0",
		},
		{"NaN weight", weighted(math.NaN()), nil, `column "title": weight must be a positive number`},
		{"infinite weight", weighted(math.Inf(1)), nil, `column "title"`},
		{"negative infinite weight", weighted(math.Inf(-1)), nil, `column "title"`},
		{"zero weight", weighted(0), nil, `column "title"`},
		{"negative weight", weighted(-2), nil, `column "title"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := searchable.New(tt.entity, tt.cfg)
			require.Error(t, err)
			assert.True(t, searchable.IsKind(err, searchable.ErrConfiguration), err.Error())
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewResolvesConnection(t *testing.T) {
	cfg := searchable.StaticLookup{
		Default: "main",
		Connections: map[string]searchable.ConnectionInfo{
			"main":      {Driver: "mysql"},
			"analytics": {Driver: "postgres", Prefix: "app_"},
		},
	}

	s, err := searchable.New(postsEntity(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "mysql", s.Dialect().Name())

	e := postsEntity()
	e.Connection = "analytics"
	e.PrefixColumns = true
	s, err = searchable.New(e, cfg)
	require.NoError(t, err)
	assert.Equal(t, "pgsql", s.Dialect().Name())
	assert.Equal(t, searchable.Columns{"app_title": 10, "app_body": 1}, s.Columns())

	// No configuration at all falls back to the default dialect.
	s, err = searchable.New(postsEntity(), nil)
	require.NoError(t, err)
	assert.Equal(t, "mysql", s.Dialect().Name())
}

func TestSearchConcurrent(t *testing.T) {
	s := newSearcher(t, "pgsql", postsEntity())

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := range 32 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			term := fmt.Sprintf("term%d", i)
			q, err := s.Search(s.NewQuery(), searchable.Text(term), searchable.SearchOptions{})
			if err != nil {
				errs <- err
				return
			}
			for _, a := range q.Bindings() {
				if !strings.Contains(a.(string), term) {
					errs <- fmt.Errorf("search %d got foreign binding %v", i, a)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestSearchLogs(t *testing.T) {
	logger, buf := testutil.NewCaptureLogger()
	s, err := searchable.New(postsEntity(), searchable.SingleConnection("mysql"), searchable.WithLogger(logger))
	require.NoError(t, err)

	_, err = s.Search(s.NewQuery(), searchable.Text("a b"), searchable.SearchOptions{})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "search built")
	assert.Contains(t, out, "entity=posts")
	assert.Contains(t, out, "terms=2")
	assert.Contains(t, out, "fragments=6")
}

func TestWithTokenizer(t *testing.T) {
	s, err := searchable.New(searchable.Entity{Table: "cities", Columns: searchable.Columns{"name": 1}},
		searchable.SingleConnection("mysql"), searchable.WithTokenizer(query.Tokenizer{Lang: language.Turkish}))
	require.NoError(t, err)

	q, err := s.Search(s.NewQuery(), searchable.Text("ISTANBUL"), searchable.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ıstanbul", q.Bindings()[0])
}

func TestDefaultColumns(t *testing.T) {
	cols := searchable.DefaultColumns([]string{"title", "slug", "body", "author"})
	assert.Equal(t, searchable.Columns{"title": 10, "slug": 1, "body": 10, "author": 1}, cols)
	assert.Equal(t, []string{"author", "body", "slug", "title"}, cols.Names())
}

func TestSearchDoesNotCopyBaseSelect(t *testing.T) {
	s := newSearcher(t, "mysql", postsEntity())
	base := s.NewQuery().SelectRaw("? as tag", "x")

	q, err := s.Search(base, searchable.Text("go"), searchable.SearchOptions{})
	require.NoError(t, err)

	sql, args := q.Build()
	assert.Equal(t, 1, strings.Count(sql, "? as tag"), sql)
	assert.True(t, strings.HasPrefix(sql, "select ? as tag from (select posts.*, max("), sql)
	assert.Equal(t, []any{"x", "go", "go%", "%go%", "go", "go%", "%go%"}, args)
}

func TestSearcherOwnsItsEntity(t *testing.T) {
	e := postsEntity()
	s := newSearcher(t, "mysql", e)

	e.Columns["title"] = 100
	e.Columns["summary"] = 3
	s.Columns()["body"] = 50
	s.Entity().Columns["body"] = 50

	assert.Equal(t, searchable.Columns{"title": 10, "body": 1}, s.Columns())
	q, err := s.Search(s.NewQuery(), searchable.Text("go"), searchable.SearchOptions{})
	require.NoError(t, err)
	assert.Contains(t, q.ToSQL(), "having relevance >= 5.50")
	assert.NotContains(t, q.ToSQL(), "summary")
}

func TestSearcherTerms(t *testing.T) {
	s, err := searchable.New(searchable.Entity{Table: "cities", Columns: searchable.Columns{"name": 1}},
		nil, searchable.WithTokenizer(query.Tokenizer{Lang: language.Turkish}))
	require.NoError(t, err)
	assert.Equal(t, query.Terms{"ırmak", "kara kıyı"}, s.Terms(`IRMAK "KARA KIYI"`))
}
