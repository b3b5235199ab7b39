//go:build cgo_sqlite

package sqlite

// Built with CGO_ENABLED=1 go build -tags cgo_sqlite ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverName = "sqlite3"
	BuildMode  = "cgo"

	pragmas = "_busy_timeout=5000&_foreign_keys=on"
)
