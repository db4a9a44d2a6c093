package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/foodman/internal/storage"
)

const (
	getStateSQL = `SELECT value FROM cart_state WHERE key = $1`

	setStateSQL = `INSERT INTO cart_state (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	deleteStateSQL = `DELETE FROM cart_state WHERE key = $1`
)

var _ storage.KV = (*KV)(nil)

// KV implements storage.KV on the cart_state table. Every Set is a single
// upsert, so a value is always replaced whole.
type KV struct {
	pool *pgxpool.Pool
}

// NewKV returns a KV that uses the given pool.
func NewKV(pool *pgxpool.Pool) *KV {
	return &KV{pool: pool}
}

func (r *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	if err := r.pool.QueryRow(ctx, getStateSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "get state %q", key)
	}
	return value, true, nil
}

func (r *KV) Set(ctx context.Context, key, value string) error {
	if _, err := r.pool.Exec(ctx, setStateSQL, key, value); err != nil {
		return errors.Wrapf(err, "set state %q", key)
	}
	return nil
}

func (r *KV) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, deleteStateSQL, key); err != nil {
		return errors.Wrapf(err, "delete state %q", key)
	}
	return nil
}

func (r *KV) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
