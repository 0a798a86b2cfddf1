package metadata

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/dbx"
)

// SQLiteRepository runs on a *sql.DB or inside a transaction.
type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func placeholders(keys []string) (string, []any) {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(keys)), ","), args
}

func (r *SQLiteRepository) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	in, args := placeholders(keys)
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM metadata WHERE key IN (`+in+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata %v: %w", keys, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metadata rows: %w", err)
	}
	return result, nil
}

// Put writes keys in sorted order.
func (r *SQLiteRepository) Put(ctx context.Context, values map[string][]byte) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO metadata (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, values[k])
		if err != nil {
			return fmt.Errorf("failed to set metadata[%s]: %w", k, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	in, args := placeholders(keys)
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key IN (`+in+`)`, args...); err != nil {
		return fmt.Errorf("failed to delete metadata %v: %w", keys, err)
	}
	return nil
}
