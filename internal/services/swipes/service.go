package swipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/antonvlk/emberline/internal/domain/enums"
)

var (
	ErrInvalidTarget     = errors.New("invalid swipe target")
	ErrTargetNotFound    = errors.New("swipe target not found")
	ErrUnsupportedAction = errors.New("unsupported swipe action")
)

type UserStore interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

type LikeStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) error
}

type PassStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) error
}

type MatchStore interface {
	CreateIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error)
}

type PhotoResolver interface {
	OwnerOf(ctx context.Context, photoID int64) (int64, error)
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID int64) error
}

type Dependencies struct {
	Users   UserStore
	Likes   LikeStore
	Passes  PassStore
	Matches MatchStore
	Photos  PhotoResolver
	Limiter RateLimiter
	RunTx   func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	Logger  *zap.Logger
}

// Service records like and pass edges and derives matches from reciprocal
// likes. Edges are idempotent: repeating a swipe changes nothing and a repeat
// like on an already mutual pair still reports the match.
type Service struct {
	deps Dependencies
	now  func() time.Time
}

type Result struct {
	Action  enums.SwipeAction
	Matched bool
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
	return &Service{
		deps: deps,
		now:  time.Now,
	}
}

// RecordSwipe applies a swipe from userID to targetUserID. The edge write
// and the mutual-match check run in one transaction so a reciprocal pair of
// likes produces exactly one match regardless of arrival order.
func (s *Service) RecordSwipe(ctx context.Context, userID, targetUserID int64, action enums.SwipeAction) (Result, error) {
	if userID <= 0 {
		return Result{}, fmt.Errorf("invalid user id")
	}
	if targetUserID <= 0 || targetUserID == userID {
		return Result{}, ErrInvalidTarget
	}
	if action != enums.SwipeActionLike && action != enums.SwipeActionPass {
		return Result{}, ErrUnsupportedAction
	}

	if s.deps.Limiter != nil {
		if err := s.deps.Limiter.AllowSwipe(ctx, userID); err != nil {
			return Result{}, err
		}
	}

	exists, err := s.deps.Users.Exists(ctx, targetUserID)
	if err != nil {
		return Result{}, fmt.Errorf("check swipe target: %w", err)
	}
	if !exists {
		return Result{}, ErrTargetNotFound
	}

	result := Result{Action: action}
	err = s.deps.RunTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		switch action {
		case enums.SwipeActionLike:
			if err := s.deps.Likes.Upsert(txCtx, tx, userID, targetUserID); err != nil {
				return fmt.Errorf("record like: %w", err)
			}
			matched, err := s.deps.Matches.CreateIfMutualLike(txCtx, tx, userID, targetUserID)
			if err != nil {
				return fmt.Errorf("check mutual like: %w", err)
			}
			result.Matched = matched
		case enums.SwipeActionPass:
			if err := s.deps.Passes.Upsert(txCtx, tx, userID, targetUserID); err != nil {
				return fmt.Errorf("record pass: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if result.Matched {
		s.deps.Logger.Info("match created",
			zap.Int64("user_id", userID),
			zap.Int64("target_user_id", targetUserID),
		)
	}

	return result, nil
}

// RecordSwipeOnPhoto resolves the photo to its owner and swipes on the
// owner. Swiping on your own photo is rejected the same way as swiping on
// yourself.
func (s *Service) RecordSwipeOnPhoto(ctx context.Context, userID, photoID int64, action enums.SwipeAction) (Result, error) {
	if userID <= 0 {
		return Result{}, fmt.Errorf("invalid user id")
	}
	if photoID <= 0 {
		return Result{}, ErrInvalidTarget
	}
	if s.deps.Photos == nil {
		return Result{}, fmt.Errorf("photo resolver is not configured")
	}

	ownerID, err := s.deps.Photos.OwnerOf(ctx, photoID)
	if err != nil {
		return Result{}, err
	}

	return s.RecordSwipe(ctx, userID, ownerID, action)
}
