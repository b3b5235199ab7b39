package searchable_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/nonibytes/searchable/searchable"
	"github.com/nonibytes/searchable/searchable/ops"
	"github.com/nonibytes/searchable/searchable/storage/sqlite"
)

func openPosts(t *testing.T) (*sql.DB, *sqlite.Adapter) {
	t.Helper()

	adapter := sqlite.New(filepath.Join(t.TempDir(), "posts.db"))
	db, err := adapter.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	stmts := []string{
		`create table users (id integer primary key, name text not null)`,
		`create table posts (id integer primary key, user_id integer, title text not null, body text not null)`,
		`insert into users (id, name) values (1, 'Ann'), (2, 'Bob')`,
		`insert into posts (id, user_id, title, body) values
			(1, 1, 'Go concurrency patterns', 'channels and goroutines'),
			(2, 2, 'Cooking pasta', 'boil water, go slowly'),
			(3, 1, 'Go', 'short'),
			(4, 2, 'Learning Rust', 'a book about golang'),
			(5, 2, 'Gardening', 'tomatoes')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
	return db, adapter
}

func ids(t *testing.T, rows []ops.Row) []int64 {
	t.Helper()
	var out []int64
	for _, r := range rows {
		id, ok := r["id"].(int64)
		if !ok {
			t.Fatalf("id has type %T", r["id"])
		}
		out = append(out, id)
	}
	return out
}

func TestSearch_SQLite(t *testing.T) {
	db, adapter := openPosts(t)
	ctx := context.Background()

	s, err := searchable.New(
		searchable.Entity{Table: "posts", Columns: searchable.Columns{"title": 10, "body": 1}},
		searchable.SingleConnection(adapter.Dialect()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name      string
		text      string
		threshold *float64
		wantIDs   []int64
		wantRel   []int64
	}{
		// 3: title exact+prefix+substring; 1: title prefix+substring, body
		// substring; 4: body substring only; 2: body substring only.
		{"default threshold", "go", nil, []int64{3, 1}, []int64{210, 61}},
		{"low threshold", "go", searchable.Threshold(1), []int64{3, 1, 2, 4}, []int64{210, 61, 1, 1}},
		{"zero threshold keeps everything", "go", searchable.Threshold(0), []int64{3, 1, 2, 4, 5}, []int64{210, 61, 1, 1, 0}},
		{"case folded", "GO", nil, []int64{3, 1}, []int64{210, 61}},
		{"no match", "zebra", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := s.NewQuery().OrderBy("relevance", "desc").OrderBy("id", "asc")
			q, err := s.Search(base, searchable.Text(tt.text), searchable.SearchOptions{Threshold: tt.threshold})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}

			res, err := ops.Fetch(ctx, db, adapter.PlaceholderStyle(), q)
			if err != nil {
				t.Fatalf("Fetch: %v\nsql: %s", err, q.ToSQL())
			}

			got := ids(t, res.Rows)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", got, tt.wantIDs)
			}
			for i := range got {
				if got[i] != tt.wantIDs[i] {
					t.Fatalf("ids = %v, want %v", got, tt.wantIDs)
				}
				if rel := res.Rows[i]["relevance"]; rel != tt.wantRel[i] {
					t.Errorf("row %d relevance = %v (%T), want %d", got[i], rel, rel, tt.wantRel[i])
				}
			}
		})
	}
}

func TestSearchJoined_SQLite(t *testing.T) {
	db, adapter := openPosts(t)

	s, err := searchable.New(
		searchable.Entity{
			Table:   "posts",
			Columns: searchable.Columns{"posts.title": 10, "users.name": 5},
			Joins:   []searchable.Join{{Table: "users", First: "posts.user_id", Second: "users.id"}},
		},
		searchable.SingleConnection(adapter.Dialect()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	base := s.NewQuery().Where("posts.id <> ?", 3).OrderBy("id", "asc")
	q, err := s.Search(base, searchable.Text("ann"), searchable.SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	res, err := ops.Fetch(context.Background(), db, adapter.PlaceholderStyle(), q)
	if err != nil {
		t.Fatalf("Fetch: %v\nsql: %s", err, q.ToSQL())
	}
	got := ids(t, res.Rows)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("ids = %v, want [1]", got)
	}
}

func TestSearchWithoutText_SQLite(t *testing.T) {
	db, adapter := openPosts(t)
	s, err := searchable.New(
		searchable.Entity{Table: "posts", Columns: searchable.Columns{"title": 1}},
		searchable.SingleConnection(adapter.Dialect()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	q, err := s.Search(s.NewQuery().Select("id"), nil, searchable.SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	res, err := ops.Fetch(context.Background(), db, adapter.PlaceholderStyle(), q)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Rows) != 5 {
		t.Errorf("rows = %d, want 5", len(res.Rows))
	}
}
