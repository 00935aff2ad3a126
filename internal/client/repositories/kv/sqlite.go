package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskdesk/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, origin, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE origin = ? AND key = ?`, origin, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get kv[%s/%s]: %w", origin, key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, origin, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (origin, key, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(origin, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, origin, key, value)
	if err != nil {
		return fmt.Errorf("failed to set kv[%s/%s]: %w", origin, key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, origin, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE origin = ? AND key = ?`, origin, key)
	if err != nil {
		return fmt.Errorf("failed to delete kv[%s/%s]: %w", origin, key, err)
	}
	return nil
}
