package client

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskdesk/internal/client/migrations"
	"github.com/dmitrijs2005/taskdesk/internal/client/repositories/kv"
	"github.com/dmitrijs2005/taskdesk/internal/dbx"
	"github.com/dmitrijs2005/taskdesk/internal/filex"
)

// Repositories groups the local stores opened over one SQLite file.
type Repositories struct {
	KV kv.Repository
	db *sql.DB
}

// Close releases the database handle.
func (r *Repositories) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// InitDatabase opens the SQLite file at dsn, creating its directory, and
// brings the schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	path, err := filex.EnsureParentDir(dsn)
	if err != nil {
		return nil, err
	}

	db, err := dbx.OpenSQLite(ctx, path, migrations.Migrations)
	if err != nil {
		return nil, err
	}

	return &Repositories{KV: kv.NewSQLiteRepository(db), db: db}, nil
}

// InitMemoryDatabase opens a private in-memory database. Values live as long
// as the returned Repositories.
func InitMemoryDatabase(ctx context.Context) (*Repositories, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// every pooled connection would see its own empty database
	db.SetMaxOpenConns(1)

	if err := dbx.RunMigrations(ctx, db, migrations.Migrations); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repositories{KV: kv.NewSQLiteRepository(db), db: db}, nil
}
