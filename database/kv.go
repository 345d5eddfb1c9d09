package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// KV stores the quiz gateway's keys as rows of the kv table.
type KV struct {
	db *sql.DB
}

func NewKV(db *sql.DB) *KV {
	return &KV{db}
}

func (kv *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := kv.db.
		QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("db.kv.get %s: %w", key, err)
	}
	return value, true, nil
}

func (kv *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := kv.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE
		SET value = excluded.value,
			updated_at = excluded.updated_at`,
		key,
		value,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("db.kv.set %s: %w", key, err)
	}
	return nil
}

func (kv *KV) Delete(ctx context.Context, key string) error {
	_, err := kv.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("db.kv.delete %s: %w", key, err)
	}
	return nil
}
