package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moonuidesign/quotagate/internal/model"
)

// PG is a PostgreSQL-backed ledger over the usage_ledger table.
type PG struct {
	pool pgxQuerier
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed ledger.
func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

// NewPGWithQuerier constructs a PostgreSQL-backed ledger over a custom querier.
func NewPGWithQuerier(q pgxQuerier) *PG {
	return &PG{pool: q}
}

// Count reads consumed quota for the window; missing rows count as zero.
func (l *PG) Count(ctx context.Context, key string, action model.ActionKind, windowStart time.Time) (int64, error) {
	const q = `SELECT count FROM usage_ledger WHERE identity=$1 AND action=$2 AND window_start=$3`
	var count int64
	err := l.pool.QueryRow(ctx, q, key, string(action), windowStart).Scan(&count)
	switch err {
	case nil:
		return count, nil
	case pgx.ErrNoRows:
		return 0, nil
	default:
		return 0, err
	}
}

// Increment upserts the window row and bumps the counter atomically.
func (l *PG) Increment(ctx context.Context, key string, action model.ActionKind, windowStart time.Time) (int64, error) {
	const q = `
INSERT INTO usage_ledger (identity, action, window_start, count, updated_at)
VALUES ($1,$2,$3,1,now())
ON CONFLICT (identity, action, window_start)
DO UPDATE SET count = usage_ledger.count + 1, updated_at = now()
RETURNING count`
	var count int64
	if err := l.pool.QueryRow(ctx, q, key, string(action), windowStart).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// PurgeBefore deletes rows from windows that ended before the cutoff.
// Expired windows are logically dead; this keeps the table from growing forever.
func (l *PG) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM usage_ledger WHERE window_start < $1`
	tag, err := l.pool.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
