package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"calmcompanion/internal/database"
)

// SQLBackend stores entries in the kv_entries table of any supported dialect
type SQLBackend struct {
	db *database.DB
}

// NewSQLBackend creates a backend over an initialized, migrated database
func NewSQLBackend(db *database.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) Get(ctx context.Context, key string) (string, error) {
	var value string
	query := "SELECT entry_value FROM kv_entries WHERE entry_key = ?"
	err := b.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", unavailable("get "+key, err)
	}
	return value, nil
}

func (b *SQLBackend) Set(ctx context.Context, key, value string) error {
	return upsert(ctx, b.db, key, value)
}

func (b *SQLBackend) SetMany(ctx context.Context, entries map[string]string) error {
	err := b.db.WithTx(ctx, func(tx *database.Tx) error {
		for k, v := range entries {
			if err := upsert(ctx, tx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrUnavailable) {
		return unavailable("set many", err)
	}
	return err
}

func upsert(ctx context.Context, q database.DBTX, key, value string) error {
	if _, err := q.ExecContext(ctx, q.GetDialect().UpsertEntryQuery(), key, value); err != nil {
		return unavailable("set "+key, err)
	}
	return nil
}

func (b *SQLBackend) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	query := fmt.Sprintf("DELETE FROM kv_entries WHERE entry_key LIKE ? ESCAPE '%s'", database.LikeEscapeChar)
	result, err := b.db.ExecContext(ctx, query, database.EscapeLike(prefix)+"%")
	if err != nil {
		return 0, unavailable("delete prefix", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, unavailable("delete prefix", err)
	}
	return int(n), nil
}

func (b *SQLBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := fmt.Sprintf("SELECT entry_key FROM kv_entries WHERE entry_key LIKE ? ESCAPE '%s' ORDER BY entry_key", database.LikeEscapeChar)
	rows, err := b.db.QueryContext(ctx, query, database.EscapeLike(prefix)+"%")
	if err != nil {
		return nil, unavailable("list keys", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, unavailable("scan key", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list keys", err)
	}
	return keys, nil
}

func (b *SQLBackend) Close() error {
	return b.db.Close()
}
