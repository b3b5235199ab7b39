package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/nonibytes/searchable/searchable/dialect"
	"github.com/nonibytes/searchable/searchable/storage"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

type Adapter struct {
	DSN string
}

func New(dsn string) *Adapter {
	return &Adapter{DSN: dsn}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendMySQL }

func (a *Adapter) Dialect() string { return dialect.MySQLName }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle { return sqlbuilder.PlaceholderQuestion }

func (a *Adapter) Close() error { return nil }

// Config parses the DSN. Results are scanned into Go values, so parseTime is
// always on and a missing timeout defaults to 10s.
func (a *Adapter) Config() (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(a.DSN)
	if err != nil {
		return nil, err
	}
	cfg.ParseTime = true
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return cfg, nil
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	conn, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(conn)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
