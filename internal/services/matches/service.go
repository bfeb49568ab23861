package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/antonvlk/emberline/internal/domain/enums"
	"github.com/antonvlk/emberline/internal/repo/postgres"
)

var (
	ErrInvalidTarget  = errors.New("invalid target user")
	ErrTargetNotFound = errors.New("target user not found")
	ErrInvalidReason  = errors.New("invalid report reason")
)

type MatchStore interface {
	ListForUser(ctx context.Context, userID int64, limit int) ([]postgres.MatchRecord, error)
}

type BlockStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, blockerUserID, blockedUserID int64) error
}

type ReportStore interface {
	Create(ctx context.Context, tx pgx.Tx, reporterUserID, targetUserID int64, reason enums.ReportReason, details string) error
}

type UserStore interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

type PhotoSigner interface {
	PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

type Config struct {
	ListLimit   int
	PhotoURLTTL time.Duration
}

type Dependencies struct {
	Matches MatchStore
	Blocks  BlockStore
	Reports ReportStore
	Users   UserStore
	Signer  PhotoSigner
	RunTx   func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	Logger  *zap.Logger
}

// Service serves the match list and the safety actions around it. Blocking
// hides both users from each other's decks but keeps an existing match row;
// the client decides how to render a blocked match.
type Service struct {
	deps Dependencies
	cfg  Config
}

type Match struct {
	ID           int64
	TargetUserID int64
	Nickname     string
	School       string
	PhotoURL     string
	CreatedAt    time.Time
}

func New(deps Dependencies, cfg Config) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.RunTx == nil {
		deps.RunTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		}
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 100
	}
	if cfg.PhotoURLTTL <= 0 {
		cfg.PhotoURLTTL = 15 * time.Minute
	}
	return &Service{deps: deps, cfg: cfg}
}

// List returns the caller's matches, newest first, with the counterpart's
// primary photo presigned.
func (s *Service) List(ctx context.Context, userID int64) ([]Match, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	records, err := s.deps.Matches.ListForUser(ctx, userID, s.cfg.ListLimit)
	if err != nil {
		return nil, err
	}

	items := make([]Match, 0, len(records))
	for _, record := range records {
		item := Match{
			ID:           record.ID,
			TargetUserID: record.TargetUserID,
			Nickname:     record.Nickname,
			School:       record.School,
			CreatedAt:    record.CreatedAt,
		}
		if record.PhotoObjectKey != nil && s.deps.Signer != nil {
			url, err := s.deps.Signer.PresignGet(ctx, *record.PhotoObjectKey, s.cfg.PhotoURLTTL)
			if err != nil {
				s.deps.Logger.Warn("presign match photo failed",
					zap.Int64("match_id", record.ID),
					zap.Error(err),
				)
			} else {
				item.PhotoURL = url
			}
		}
		items = append(items, item)
	}

	return items, nil
}

// Block records a block edge from the caller to the target. Repeating a
// block changes nothing.
func (s *Service) Block(ctx context.Context, userID, targetUserID int64) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if targetUserID <= 0 || targetUserID == userID {
		return ErrInvalidTarget
	}

	exists, err := s.deps.Users.Exists(ctx, targetUserID)
	if err != nil {
		return fmt.Errorf("check block target: %w", err)
	}
	if !exists {
		return ErrTargetNotFound
	}

	return s.deps.RunTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		return s.deps.Blocks.Upsert(txCtx, tx, userID, targetUserID)
	})
}

// Report files a report against the target. Reported users disappear from
// the reporter's deck immediately.
func (s *Service) Report(ctx context.Context, userID, targetUserID int64, reason string, details string) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if targetUserID <= 0 || targetUserID == userID {
		return ErrInvalidTarget
	}

	parsedReason, ok := enums.ParseReportReason(reason)
	if !ok {
		return ErrInvalidReason
	}

	exists, err := s.deps.Users.Exists(ctx, targetUserID)
	if err != nil {
		return fmt.Errorf("check report target: %w", err)
	}
	if !exists {
		return ErrTargetNotFound
	}

	err = s.deps.RunTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		return s.deps.Reports.Create(txCtx, tx, userID, targetUserID, parsedReason, details)
	})
	if err != nil {
		return err
	}

	s.deps.Logger.Info("report filed",
		zap.Int64("reporter_id", userID),
		zap.Int64("target_id", targetUserID),
		zap.String("reason", string(parsedReason)),
	)
	return nil
}
