package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/antonvlk/emberline/internal/repo/postgres"
	"github.com/antonvlk/emberline/internal/services/auth"
)

var (
	ErrForbidden = errors.New("operation not allowed")
	ErrNotFound  = errors.New("user not found")
)

type UserStore interface {
	DeleteCascade(ctx context.Context, tx pgx.Tx, userID int64) ([]string, error)
}

type ObjectStorage interface {
	Delete(ctx context.Context, objectKey string) error
}

type Dependencies struct {
	Users   UserStore
	Storage ObjectStorage
	RunTx   func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	Logger  *zap.Logger
}

// Service covers admin account management.
type Service struct {
	deps Dependencies
}

func New(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.RunTx == nil {
		deps.RunTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		}
	}
	return &Service{deps: deps}
}

// DeleteAccount removes the account and everything referencing it in one
// transaction, then clears the stored photo objects best effort. A failed
// object delete leaves an orphan in the bucket, never a dangling row.
func (s *Service) DeleteAccount(ctx context.Context, identity auth.Identity, userID int64) error {
	if !identity.IsAdmin() {
		return ErrForbidden
	}
	if userID <= 0 {
		return ErrNotFound
	}

	var objectKeys []string
	err := s.deps.RunTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		keys, err := s.deps.Users.DeleteCascade(txCtx, tx, userID)
		if err != nil {
			if errors.Is(err, postgres.ErrUserNotFound) {
				return ErrNotFound
			}
			return err
		}
		objectKeys = keys
		return nil
	})
	if err != nil {
		return err
	}

	if s.deps.Storage != nil {
		for _, key := range objectKeys {
			if err := s.deps.Storage.Delete(ctx, key); err != nil {
				s.deps.Logger.Warn("delete photo object failed",
					zap.String("object_key", key),
					zap.Error(err),
				)
			}
		}
	}

	s.deps.Logger.Info("account deleted",
		zap.Int64("user_id", userID),
		zap.Int64("admin_id", identity.UserID),
	)
	return nil
}
