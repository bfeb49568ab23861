package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antonvlk/emberline/internal/domain/enums"
)

type DeckRepo struct {
	pool *pgxpool.Pool
}

type DeckQuery struct {
	ViewerUserID int64
	TargetGender enums.Gender
	Limit        int
}

type DeckCandidate struct {
	UserID         int64
	Nickname       string
	School         string
	PhotoObjectKey *string
	CreatedAt      time.Time
}

func NewDeckRepo(pool *pgxpool.Pool) *DeckRepo {
	return &DeckRepo{pool: pool}
}

// ListCandidates computes the next swipe batch for a viewer. Excluded: the
// viewer, users the viewer already liked or passed, users blocked in either
// direction, users the viewer reported, and anyone not ACTIVE or not of the
// target gender. Passed users stay excluded until an explicit pass reset.
func (r *DeckRepo) ListCandidates(ctx context.Context, q DeckQuery) ([]DeckCandidate, error) {
	if q.ViewerUserID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if r.pool == nil {
		return []DeckCandidate{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	u.id,
	COALESCE(u.nickname, ''),
	COALESCE(u.school, ''),
	(
		SELECT p.object_key
		FROM photos p
		WHERE p.user_id = u.id
		ORDER BY p.position ASC, p.id ASC
		LIMIT 1
	),
	u.created_at
FROM users u
WHERE
	u.id <> $1
	AND u.status = 'ACTIVE'
	AND u.gender = $2
	AND NOT EXISTS (
		SELECT 1
		FROM likes l
		WHERE l.from_user_id = $1 AND l.to_user_id = u.id
	)
	AND NOT EXISTS (
		SELECT 1
		FROM passes ps
		WHERE ps.from_user_id = $1 AND ps.to_user_id = u.id
	)
	AND NOT EXISTS (
		SELECT 1
		FROM blocks b
		WHERE (b.blocker_user_id = $1 AND b.blocked_user_id = u.id)
			OR (b.blocker_user_id = u.id AND b.blocked_user_id = $1)
	)
	AND NOT EXISTS (
		SELECT 1
		FROM reports rp
		WHERE rp.reporter_user_id = $1 AND rp.target_user_id = u.id
	)
ORDER BY u.created_at DESC, u.id DESC
LIMIT $3
`, q.ViewerUserID, q.TargetGender, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list deck candidates: %w", err)
	}
	defer rows.Close()

	items := make([]DeckCandidate, 0, q.Limit)
	for rows.Next() {
		var item DeckCandidate
		if err := rows.Scan(
			&item.UserID,
			&item.Nickname,
			&item.School,
			&item.PhotoObjectKey,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan deck candidate: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate deck candidates: %w", rows.Err())
	}

	return items, nil
}
