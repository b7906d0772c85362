package entitlement

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moonuidesign/quotagate/internal/model"
)

// PgxPool is a minimal abstraction over a Postgres connection pool.
// It is implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	// Exec executes a SQL command and returns the command tag.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	// QueryRow executes a query expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PG implements Store using PostgreSQL.
type PG struct{ pool PgxPool }

// NewPG constructs a PostgreSQL-backed entitlement store.
func NewPG(pool *pgxpool.Pool) *PG { return &PG{pool: pool} }

// NewPGWithPool constructs an entitlement store over a custom pool.
func NewPGWithPool(pool PgxPool) *PG { return &PG{pool: pool} }

// TierFor selects the user's tier; users without a row default to free.
func (s *PG) TierFor(ctx context.Context, userID uuid.UUID) (model.Tier, error) {
	const q = `SELECT tier FROM user_entitlements WHERE user_id=$1`
	var raw string
	err := s.pool.QueryRow(ctx, q, userID).Scan(&raw)
	switch {
	case err == nil:
		tier, perr := model.ParseTier(raw)
		if perr != nil {
			return "", perr
		}
		return tier, nil
	case errors.Is(err, pgx.ErrNoRows):
		return model.TierFree, nil
	default:
		return "", err
	}
}

// SetTier upserts the user's tier.
func (s *PG) SetTier(ctx context.Context, userID uuid.UUID, tier model.Tier) error {
	const q = `
INSERT INTO user_entitlements (user_id, tier, updated_at)
VALUES ($1,$2,now())
ON CONFLICT (user_id)
DO UPDATE SET tier=$2, updated_at=now()`
	_, err := s.pool.Exec(ctx, q, userID, string(tier))
	return err
}
