//go:build !cgo_sqlite

package sqlite

// Default build. No C compiler required.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	DriverName = "sqlite"
	BuildMode  = "purego"

	pragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
)
