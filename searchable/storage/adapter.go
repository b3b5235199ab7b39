package storage

import (
	"context"
	"database/sql"

	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
)

// Adapter opens connections to one database backend and tells callers how
// queries for it are written.
type Adapter interface {
	Backend() Backend
	// Dialect is the dialect name understood by dialect.Lookup.
	Dialect() string
	PlaceholderStyle() sqlbuilder.PlaceholderStyle

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error
}
