package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

// Upsert records the directed like edge. A duplicate insert, sequential or
// concurrent, is a no-op: the unique (from, to) constraint plus DO NOTHING
// makes the conflict benign.
func (r *LikeRepo) Upsert(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) error {
	if fromUserID <= 0 || toUserID <= 0 {
		return fmt.Errorf("invalid like payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO likes (from_user_id, to_user_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (from_user_id, to_user_id) DO NOTHING
`, fromUserID, toUserID); err != nil {
		return fmt.Errorf("upsert like: %w", err)
	}

	return nil
}
