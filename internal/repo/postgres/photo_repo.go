package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antonvlk/emberline/internal/domain/enums"
)

var (
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrPhotoLimitReached = errors.New("photo limit reached")
)

const maxActivePhotos = 6

type PhotoRepo struct {
	pool *pgxpool.Pool
}

type PhotoRecord struct {
	ID                 int64
	UserID             int64
	ObjectKey          string
	Position           int
	VerificationStatus enums.PhotoStatus
	RejectionReason    *string
	LikeCount          int
	CreatedAt          time.Time
}

func NewPhotoRepo(pool *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{pool: pool}
}

// Create inserts a photo at the first free position. Positions are locked
// with FOR UPDATE so two concurrent uploads cannot claim the same slot or
// exceed the per-user limit.
func (r *PhotoRepo) Create(ctx context.Context, userID int64, objectKey string) (PhotoRecord, error) {
	if r.pool == nil {
		return PhotoRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || strings.TrimSpace(objectKey) == "" {
		return PhotoRecord{}, fmt.Errorf("invalid photo payload")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, `
SELECT position
FROM photos
WHERE user_id = $1
ORDER BY position
FOR UPDATE
`, userID)
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("query photo positions: %w", err)
	}

	taken := map[int]struct{}{}
	for rows.Next() {
		var position int
		if err := rows.Scan(&position); err != nil {
			rows.Close()
			return PhotoRecord{}, fmt.Errorf("scan photo position: %w", err)
		}
		taken[position] = struct{}{}
	}
	rows.Close()
	if rows.Err() != nil {
		return PhotoRecord{}, fmt.Errorf("iterate photo positions: %w", rows.Err())
	}

	if len(taken) >= maxActivePhotos {
		return PhotoRecord{}, ErrPhotoLimitReached
	}

	position := 0
	for slot := 1; slot <= maxActivePhotos; slot++ {
		if _, used := taken[slot]; !used {
			position = slot
			break
		}
	}
	if position == 0 {
		return PhotoRecord{}, ErrPhotoLimitReached
	}

	var record PhotoRecord
	err = tx.QueryRow(ctx, `
INSERT INTO photos (user_id, object_key, position, verification_status, like_count, created_at)
VALUES ($1, $2, $3, 'NOT_APPLIED', 0, NOW())
RETURNING id, user_id, object_key, position, verification_status, rejection_reason, like_count, created_at
`, userID, objectKey, position).Scan(
		&record.ID,
		&record.UserID,
		&record.ObjectKey,
		&record.Position,
		&record.VerificationStatus,
		&record.RejectionReason,
		&record.LikeCount,
		&record.CreatedAt,
	)
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("insert photo: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return PhotoRecord{}, fmt.Errorf("commit transaction: %w", err)
	}

	return record, nil
}

func (r *PhotoRepo) GetByID(ctx context.Context, photoID int64) (PhotoRecord, error) {
	if r.pool == nil {
		return PhotoRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if photoID <= 0 {
		return PhotoRecord{}, fmt.Errorf("invalid photo id")
	}

	var record PhotoRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, object_key, position, verification_status, rejection_reason, like_count, created_at
FROM photos
WHERE id = $1
`, photoID).Scan(
		&record.ID,
		&record.UserID,
		&record.ObjectKey,
		&record.Position,
		&record.VerificationStatus,
		&record.RejectionReason,
		&record.LikeCount,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PhotoRecord{}, ErrPhotoNotFound
		}
		return PhotoRecord{}, fmt.Errorf("get photo: %w", err)
	}

	return record, nil
}

func (r *PhotoRepo) OwnerOf(ctx context.Context, photoID int64) (int64, error) {
	record, err := r.GetByID(ctx, photoID)
	if err != nil {
		return 0, err
	}
	return record.UserID, nil
}

func (r *PhotoRepo) ListByUser(ctx context.Context, userID int64) ([]PhotoRecord, error) {
	if r.pool == nil {
		return []PhotoRecord{}, nil
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, object_key, position, verification_status, rejection_reason, like_count, created_at
FROM photos
WHERE user_id = $1
ORDER BY position ASC, id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos := make([]PhotoRecord, 0)
	for rows.Next() {
		var record PhotoRecord
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.ObjectKey,
			&record.Position,
			&record.VerificationStatus,
			&record.RejectionReason,
			&record.LikeCount,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, record)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate photos: %w", rows.Err())
	}

	return photos, nil
}

// TransitionVerification applies a verification state transition guarded by
// the allowed source states. It reports false when the row was not in any of
// them (or does not exist); the caller distinguishes the two.
func (r *PhotoRepo) TransitionVerification(ctx context.Context, photoID int64, from []enums.PhotoStatus, to enums.PhotoStatus, reason *string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if photoID <= 0 || len(from) == 0 {
		return false, fmt.Errorf("invalid transition payload")
	}

	states := make([]string, 0, len(from))
	for _, s := range from {
		states = append(states, string(s))
	}

	result, err := r.pool.Exec(ctx, `
UPDATE photos
SET verification_status = $2, rejection_reason = $3
WHERE id = $1 AND verification_status = ANY($4)
`, photoID, to, reason, states)
	if err != nil {
		return false, fmt.Errorf("transition photo verification: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// DeleteWithLikes removes the photo and its dependent photo likes in one
// transaction and returns the object key for storage cleanup.
func (r *PhotoRepo) DeleteWithLikes(ctx context.Context, photoID int64) (string, error) {
	if r.pool == nil {
		return "", fmt.Errorf("postgres pool is nil")
	}
	if photoID <= 0 {
		return "", fmt.Errorf("invalid photo id")
	}

	var objectKey string
	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
DELETE FROM photo_likes
WHERE photo_id = $1
`, photoID); err != nil {
			return fmt.Errorf("delete photo likes: %w", err)
		}

		err := tx.QueryRow(txCtx, `
DELETE FROM photos
WHERE id = $1
RETURNING object_key
`, photoID).Scan(&objectKey)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPhotoNotFound
			}
			return fmt.Errorf("delete photo: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return objectKey, nil
}

// ToggleLike flips the user's like on a photo. The edge mutation and the
// denormalized counter update run in one transaction so the counter cannot
// drift from the edge table.
func (r *PhotoRepo) ToggleLike(ctx context.Context, userID, photoID int64) (bool, int, error) {
	if r.pool == nil {
		return false, 0, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || photoID <= 0 {
		return false, 0, fmt.Errorf("invalid photo like payload")
	}

	liked := false
	likeCount := 0
	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		var one int
		err := tx.QueryRow(txCtx, `
SELECT 1
FROM photos
WHERE id = $1
FOR UPDATE
`, photoID).Scan(&one)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPhotoNotFound
			}
			return fmt.Errorf("lock photo for like toggle: %w", err)
		}

		result, err := tx.Exec(txCtx, `
DELETE FROM photo_likes
WHERE user_id = $1 AND photo_id = $2
`, userID, photoID)
		if err != nil {
			return fmt.Errorf("delete photo like: %w", err)
		}

		if result.RowsAffected() == 0 {
			if _, err := tx.Exec(txCtx, `
INSERT INTO photo_likes (user_id, photo_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id, photo_id) DO NOTHING
`, userID, photoID); err != nil {
				return fmt.Errorf("insert photo like: %w", err)
			}
			liked = true
		}

		delta := -1
		if liked {
			delta = 1
		}
		err = tx.QueryRow(txCtx, `
UPDATE photos
SET like_count = GREATEST(like_count + $2, 0)
WHERE id = $1
RETURNING like_count
`, photoID, delta).Scan(&likeCount)
		if err != nil {
			return fmt.Errorf("update photo like count: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	return liked, likeCount, nil
}
