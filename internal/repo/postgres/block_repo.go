package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BlockRepo struct {
	pool *pgxpool.Pool
}

func NewBlockRepo(pool *pgxpool.Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

func (r *BlockRepo) Upsert(ctx context.Context, tx pgx.Tx, blockerUserID, blockedUserID int64) error {
	if blockerUserID <= 0 || blockedUserID <= 0 || blockerUserID == blockedUserID {
		return fmt.Errorf("invalid block payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO blocks (blocker_user_id, blocked_user_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (blocker_user_id, blocked_user_id) DO NOTHING
`, blockerUserID, blockedUserID); err != nil {
		return fmt.Errorf("upsert block: %w", err)
	}

	return nil
}
