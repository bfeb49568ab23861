package deck

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/antonvlk/emberline/internal/repo/postgres"
)

type CandidateStore interface {
	ListCandidates(ctx context.Context, query postgres.DeckQuery) ([]postgres.DeckCandidate, error)
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (postgres.UserRecord, error)
}

type PassStore interface {
	DeleteAllFrom(ctx context.Context, fromUserID int64) (int64, error)
}

type PhotoSigner interface {
	PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

type Config struct {
	DefaultLimit int
	MaxLimit     int
	PhotoURLTTL  time.Duration
}

type Dependencies struct {
	Candidates CandidateStore
	Users      UserStore
	Passes     PassStore
	Signer     PhotoSigner
	Logger     *zap.Logger
}

// Service builds the viewer's candidate deck. Candidates are active users of
// the complementary gender the viewer has no prior edge with, newest first.
type Service struct {
	deps Dependencies
	cfg  Config
}

type Candidate struct {
	UserID    int64
	Nickname  string
	School    string
	PhotoURL  string
	CreatedAt time.Time
}

func New(deps Dependencies, cfg Config) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 50
	}
	if cfg.PhotoURLTTL <= 0 {
		cfg.PhotoURLTTL = 15 * time.Minute
	}
	return &Service{deps: deps, cfg: cfg}
}

// GetDeck returns up to limit candidates for the viewer. A viewer whose
// gender has no defined complement gets an empty deck rather than a guess.
func (s *Service) GetDeck(ctx context.Context, viewerID int64, limit int) ([]Candidate, error) {
	if viewerID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	viewer, err := s.deps.Users.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	targetGender, ok := viewer.Gender.Opposite()
	if !ok {
		return []Candidate{}, nil
	}

	records, err := s.deps.Candidates.ListCandidates(ctx, postgres.DeckQuery{
		ViewerUserID: viewerID,
		TargetGender: targetGender,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list deck candidates: %w", err)
	}

	candidates := make([]Candidate, 0, len(records))
	for _, record := range records {
		candidate := Candidate{
			UserID:    record.UserID,
			Nickname:  record.Nickname,
			School:    record.School,
			CreatedAt: record.CreatedAt,
		}
		if record.PhotoObjectKey != nil && s.deps.Signer != nil {
			url, err := s.deps.Signer.PresignGet(ctx, *record.PhotoObjectKey, s.cfg.PhotoURLTTL)
			if err != nil {
				s.deps.Logger.Warn("presign deck photo failed",
					zap.Int64("candidate_id", record.UserID),
					zap.Error(err),
				)
			} else {
				candidate.PhotoURL = url
			}
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// ResetPasses clears the viewer's pass history so previously passed profiles
// can reappear in the deck.
func (s *Service) ResetPasses(ctx context.Context, viewerID int64) (int64, error) {
	if viewerID <= 0 {
		return 0, fmt.Errorf("invalid viewer id")
	}

	cleared, err := s.deps.Passes.DeleteAllFrom(ctx, viewerID)
	if err != nil {
		return 0, fmt.Errorf("reset passes: %w", err)
	}

	s.deps.Logger.Info("passes reset",
		zap.Int64("user_id", viewerID),
		zap.Int64("cleared", cleared),
	)

	return cleared, nil
}
