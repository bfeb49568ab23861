package profiles

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/zap"

	"github.com/antonvlk/emberline/internal/domain/enums"
	"github.com/antonvlk/emberline/internal/repo/postgres"
)

var (
	ErrNotFound       = errors.New("profile not found")
	ErrInvalidProfile = errors.New("invalid profile payload")
)

const (
	maxNicknameLen = 32
	maxSchoolLen   = 64
	maxBioLen      = 500
	maxHandleLen   = 64
)

type UserStore interface {
	GetOrCreateByExternalID(ctx context.Context, externalID, verificationCode string) (postgres.UserRecord, error)
	GetByID(ctx context.Context, userID int64) (postgres.UserRecord, error)
	UpdateProfile(ctx context.Context, userID int64, nickname, school, bio, socialHandle string, gender enums.Gender) error
}

type Dependencies struct {
	Users  UserStore
	Logger *zap.Logger
}

type Service struct {
	deps Dependencies
}

type UpdateInput struct {
	Nickname     string
	School       string
	Bio          string
	SocialHandle string
	Gender       string
}

func New(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{deps: deps}
}

// Resolve maps an identity provider subject to the internal account. First
// sign-in creates a PENDING account with a fresh verification code.
func (s *Service) Resolve(ctx context.Context, subject string) (postgres.UserRecord, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return postgres.UserRecord{}, fmt.Errorf("subject is required")
	}

	code, err := generateVerificationCode()
	if err != nil {
		return postgres.UserRecord{}, fmt.Errorf("generate verification code: %w", err)
	}

	return s.deps.Users.GetOrCreateByExternalID(ctx, subject, code)
}

func (s *Service) Me(ctx context.Context, userID int64) (postgres.UserRecord, error) {
	if userID <= 0 {
		return postgres.UserRecord{}, fmt.Errorf("invalid user id")
	}

	user, err := s.deps.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return postgres.UserRecord{}, ErrNotFound
		}
		return postgres.UserRecord{}, err
	}
	return user, nil
}

// Update replaces the editable profile fields. Gender is one of the known
// values or empty to leave the profile unmatched.
func (s *Service) Update(ctx context.Context, userID int64, input UpdateInput) (postgres.UserRecord, error) {
	if userID <= 0 {
		return postgres.UserRecord{}, fmt.Errorf("invalid user id")
	}

	nickname := strings.TrimSpace(input.Nickname)
	if nickname == "" || len([]rune(nickname)) > maxNicknameLen {
		return postgres.UserRecord{}, ErrInvalidProfile
	}
	if len([]rune(input.School)) > maxSchoolLen ||
		len([]rune(input.Bio)) > maxBioLen ||
		len([]rune(input.SocialHandle)) > maxHandleLen {
		return postgres.UserRecord{}, ErrInvalidProfile
	}

	gender := enums.GenderUnset
	if strings.TrimSpace(input.Gender) != "" {
		parsed, ok := enums.ParseGender(input.Gender)
		if !ok {
			return postgres.UserRecord{}, ErrInvalidProfile
		}
		gender = parsed
	}

	err := s.deps.Users.UpdateProfile(ctx, userID, nickname, input.School, input.Bio, input.SocialHandle, gender)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return postgres.UserRecord{}, ErrNotFound
		}
		return postgres.UserRecord{}, err
	}

	return s.Me(ctx, userID)
}

func generateVerificationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
