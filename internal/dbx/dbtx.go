// Package dbx provides tiny DB helpers shared by repositories: a minimal
// interface (DBTX) implemented by both *sql.DB and *sql.Tx, and a helper
// that opens the local SQLite file and brings its schema up to date.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sync"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// RunMigrations applies every pending goose migration found at the root of
// migrations. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB, migrations fs.FS) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetLogger(goose.NopLogger())

	return goose.UpContext(ctx, db, ".")
}

// OpenSQLite opens (creating if needed) the SQLite database at dsn and runs
// migrations against it.
func OpenSQLite(ctx context.Context, dsn string, migrations fs.FS) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}

	if err := RunMigrations(ctx, db, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}
	return db, nil
}
