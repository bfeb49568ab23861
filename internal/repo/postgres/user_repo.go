package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antonvlk/emberline/internal/domain/enums"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	pool *pgxpool.Pool
}

type UserRecord struct {
	ID               int64
	ExternalID       string
	Nickname         string
	School           string
	Bio              string
	SocialHandle     string
	Gender           enums.Gender
	Status           enums.UserStatus
	VerificationCode *string
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// GetOrCreateByExternalID resolves the internal account for an identity
// provider subject, creating a PENDING account with the given verification
// code on the first sign-in.
func (r *UserRepo) GetOrCreateByExternalID(ctx context.Context, externalID, verificationCode string) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(externalID) == "" {
		return UserRecord{}, fmt.Errorf("external id is required")
	}

	var user UserRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (external_id, nickname, gender, status, verification_code, created_at, updated_at)
VALUES ($1, '', '', 'PENDING', $2, NOW(), NOW())
ON CONFLICT (external_id) DO UPDATE SET
	updated_at = NOW()
RETURNING id, external_id, nickname, school, bio, social_handle, gender, status, verification_code
`, strings.TrimSpace(externalID), verificationCode).Scan(
		&user.ID,
		&user.ExternalID,
		&user.Nickname,
		&user.School,
		&user.Bio,
		&user.SocialHandle,
		&user.Gender,
		&user.Status,
		&user.VerificationCode,
	)
	if err != nil {
		return UserRecord{}, fmt.Errorf("get or create user by external id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}

	var user UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, external_id, nickname, school, bio, social_handle, gender, status, verification_code
FROM users
WHERE id = $1
`, userID).Scan(
		&user.ID,
		&user.ExternalID,
		&user.Nickname,
		&user.School,
		&user.Bio,
		&user.SocialHandle,
		&user.Gender,
		&user.Status,
		&user.VerificationCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) Exists(ctx context.Context, userID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM users
WHERE id = $1
LIMIT 1
`, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return true, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID int64, nickname, school, bio, socialHandle string, gender enums.Gender) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE users
SET
	nickname = $2,
	school = $3,
	bio = $4,
	social_handle = $5,
	gender = $6,
	updated_at = NOW()
WHERE id = $1
`, userID, strings.TrimSpace(nickname), strings.TrimSpace(school), strings.TrimSpace(bio), strings.TrimSpace(socialHandle), gender)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GetForUpdate row-locks the account so an account state transition cannot
// race a concurrent one within the enclosing transaction.
func (r *UserRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (UserRecord, error) {
	if tx == nil {
		return UserRecord{}, fmt.Errorf("transaction is required")
	}
	if userID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}

	var user UserRecord
	err := tx.QueryRow(ctx, `
SELECT id, external_id, nickname, school, bio, social_handle, gender, status, verification_code
FROM users
WHERE id = $1
FOR UPDATE
`, userID).Scan(
		&user.ID,
		&user.ExternalID,
		&user.Nickname,
		&user.School,
		&user.Bio,
		&user.SocialHandle,
		&user.Gender,
		&user.Status,
		&user.VerificationCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("get user for update: %w", err)
	}

	return user, nil
}

// Activate moves the account to ACTIVE and clears the verification code so
// it cannot be replayed.
func (r *UserRepo) Activate(ctx context.Context, tx pgx.Tx, userID int64) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	result, err := tx.Exec(ctx, `
UPDATE users
SET status = 'ACTIVE', verification_code = NULL, updated_at = NOW()
WHERE id = $1
`, userID)
	if err != nil {
		return fmt.Errorf("activate user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *UserRepo) SetStatus(ctx context.Context, tx pgx.Tx, userID int64, status enums.UserStatus) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	result, err := tx.Exec(ctx, `
UPDATE users
SET status = $2, updated_at = NOW()
WHERE id = $1
`, userID, status)
	if err != nil {
		return fmt.Errorf("set user status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// DeleteCascade removes the account and every relationship row referencing
// it, returning the object keys of the user's photos so the caller can clean
// up stored objects after commit.
func (r *UserRepo) DeleteCascade(ctx context.Context, tx pgx.Tx, userID int64) ([]string, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	rows, err := tx.Query(ctx, `
SELECT object_key
FROM photos
WHERE user_id = $1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list photo keys for delete: %w", err)
	}

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan photo key: %w", err)
		}
		keys = append(keys, key)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate photo keys: %w", rows.Err())
	}

	statements := []string{
		`DELETE FROM photo_likes WHERE user_id = $1 OR photo_id IN (SELECT id FROM photos WHERE user_id = $1)`,
		`DELETE FROM photos WHERE user_id = $1`,
		`DELETE FROM likes WHERE from_user_id = $1 OR to_user_id = $1`,
		`DELETE FROM passes WHERE from_user_id = $1 OR to_user_id = $1`,
		`DELETE FROM blocks WHERE blocker_user_id = $1 OR blocked_user_id = $1`,
		`DELETE FROM reports WHERE reporter_user_id = $1 OR target_user_id = $1`,
		`DELETE FROM matches WHERE user_a_id = $1 OR user_b_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, userID); err != nil {
			return nil, fmt.Errorf("cascade delete user rows: %w", err)
		}
	}

	result, err := tx.Exec(ctx, `
DELETE FROM users
WHERE id = $1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}

	return keys, nil
}
