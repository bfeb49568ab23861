package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

type MatchRecord struct {
	ID             int64
	TargetUserID   int64
	Nickname       string
	School         string
	PhotoObjectKey *string
	CreatedAt      time.Time
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// CreateIfMutualLike reports whether the pair is mutual and, if so, makes
// sure exactly one match row exists for it. The pair is stored in canonical
// order (smaller id first) so the unique constraint collapses concurrent
// reciprocal likes into a single row; the conflicting insert is ignored.
func (r *MatchRepo) CreateIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM likes
WHERE from_user_id = $1 AND to_user_id = $2
LIMIT 1
`, targetID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	userA := userID
	userB := targetID
	if userA > userB {
		userA, userB = userB, userA
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO matches (user_a_id, user_b_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
`, userA, userB); err != nil {
		return false, fmt.Errorf("create match: %w", err)
	}

	return true, nil
}

// ListForUser returns the user's match history, newest first, with the
// counterpart's display fields and primary photo key.
func (r *MatchRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]MatchRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END AS target_user_id,
	COALESCE(u.nickname, ''),
	COALESCE(u.school, ''),
	(
		SELECT p.object_key
		FROM photos p
		WHERE p.user_id = u.id
		ORDER BY p.position ASC, p.id ASC
		LIMIT 1
	),
	m.created_at
FROM matches m
JOIN users u ON u.id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE m.user_a_id = $1 OR m.user_b_id = $1
ORDER BY m.created_at DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchRecord, 0, limit)
	for rows.Next() {
		var item MatchRecord
		if err := rows.Scan(
			&item.ID,
			&item.TargetUserID,
			&item.Nickname,
			&item.School,
			&item.PhotoObjectKey,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}
