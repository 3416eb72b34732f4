package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// SQLiteBackend stores each collection as one row of the collections table
// created by the goose migrations.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data string
	err := b.db.QueryRowContext(ctx, `SELECT data FROM collections WHERE name = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query collection %s: %w", key, err)
	}
	return []byte(data), true, nil
}

func (b *SQLiteBackend) PutMany(ctx context.Context, values map[string][]byte) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin collections transaction: %w", err)
	}

	for _, key := range slices.Sorted(maps.Keys(values)) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO collections (name, data, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(name) DO UPDATE SET
				data = excluded.data,
				updated_at = CURRENT_TIMESTAMP
		`, key, string(values[key])); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert collection %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit collections transaction: %w", err)
	}
	return nil
}
