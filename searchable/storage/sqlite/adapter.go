package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/nonibytes/searchable/searchable/dialect"
	"github.com/nonibytes/searchable/searchable/storage"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

type Adapter struct {
	Path       string
	DriverName string
}

// New uses the driver selected at build time, see DriverName.
func New(path string) *Adapter {
	return &Adapter{Path: path, DriverName: DriverName}
}

func NewWithDriver(path, driver string) *Adapter {
	return &Adapter{Path: path, DriverName: driver}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendSQLite }

func (a *Adapter) Dialect() string { return dialect.SQLiteName }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(a.DriverName, a.dsn())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) dsn() string {
	if a.Path == ":memory:" || strings.HasPrefix(a.Path, "file::memory:") {
		return a.Path
	}
	if strings.Contains(a.Path, "?") {
		return a.Path + "&" + pragmas
	}
	return a.Path + "?" + pragmas
}

func (a *Adapter) Close() error {
	return nil
}
