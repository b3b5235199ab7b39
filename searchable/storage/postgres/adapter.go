package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/nonibytes/searchable/searchable/dialect"
	"github.com/nonibytes/searchable/searchable/storage"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

type Adapter struct {
	DSN    string
	Schema string // optional; pinned first on search_path
}

func New(dsn, schema string) *Adapter {
	return &Adapter{DSN: dsn, Schema: schema}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendPostgres }

func (a *Adapter) Dialect() string { return dialect.PostgresName }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle { return sqlbuilder.PlaceholderDollar }

func (a *Adapter) Close() error { return nil }

var schemaNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(ident string) string {
	// ident is validated to contain no quotes; safe to wrap
	return `"` + ident + `"`
}

// Config parses the DSN and applies the schema to search_path.
func (a *Adapter) Config() (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	if a.Schema == "" {
		return cfg, nil
	}
	if !schemaNameRe.MatchString(a.Schema) {
		return nil, fmt.Errorf("invalid postgres schema name %q (must match %s)", a.Schema, schemaNameRe.String())
	}
	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = make(map[string]string)
	}
	// Include public as a fallback for built-ins; schema is first.
	cfg.RuntimeParams["search_path"] = fmt.Sprintf("%s,public", quoteIdent(a.Schema))
	return cfg, nil
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	db := stdlib.OpenDB(*cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
