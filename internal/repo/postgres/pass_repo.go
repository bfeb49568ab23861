package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PassRepo struct {
	pool *pgxpool.Pool
}

func NewPassRepo(pool *pgxpool.Pool) *PassRepo {
	return &PassRepo{pool: pool}
}

func (r *PassRepo) Upsert(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) error {
	if fromUserID <= 0 || toUserID <= 0 {
		return fmt.Errorf("invalid pass payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO passes (from_user_id, to_user_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (from_user_id, to_user_id) DO NOTHING
`, fromUserID, toUserID); err != nil {
		return fmt.Errorf("upsert pass: %w", err)
	}

	return nil
}

// DeleteAllFrom clears the viewer's pass history, re-admitting previously
// passed users into the deck.
func (r *PassRepo) DeleteAllFrom(ctx context.Context, fromUserID int64) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if fromUserID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM passes
WHERE from_user_id = $1
`, fromUserID)
	if err != nil {
		return 0, fmt.Errorf("reset passes: %w", err)
	}

	return result.RowsAffected(), nil
}
