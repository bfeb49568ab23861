package profiles

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/antonvlk/emberline/internal/domain/enums"
	"github.com/antonvlk/emberline/internal/repo/postgres"
)

type userStoreStub struct {
	nextID     int64
	byExternal map[string]int64
	users      map[int64]*postgres.UserRecord
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{
		nextID:     1,
		byExternal: map[string]int64{},
		users:      map[int64]*postgres.UserRecord{},
	}
}

func (s *userStoreStub) GetOrCreateByExternalID(_ context.Context, externalID, verificationCode string) (postgres.UserRecord, error) {
	if id, ok := s.byExternal[externalID]; ok {
		return *s.users[id], nil
	}
	code := verificationCode
	record := &postgres.UserRecord{
		ID:               s.nextID,
		ExternalID:       externalID,
		Status:           enums.UserStatusPending,
		VerificationCode: &code,
	}
	s.users[s.nextID] = record
	s.byExternal[externalID] = s.nextID
	s.nextID++
	return *record, nil
}

func (s *userStoreStub) GetByID(_ context.Context, userID int64) (postgres.UserRecord, error) {
	user, ok := s.users[userID]
	if !ok {
		return postgres.UserRecord{}, postgres.ErrUserNotFound
	}
	return *user, nil
}

func (s *userStoreStub) UpdateProfile(_ context.Context, userID int64, nickname, school, bio, socialHandle string, gender enums.Gender) error {
	user, ok := s.users[userID]
	if !ok {
		return postgres.ErrUserNotFound
	}
	user.Nickname = nickname
	user.School = school
	user.Bio = bio
	user.SocialHandle = socialHandle
	user.Gender = gender
	return nil
}

func TestResolveCreatesPendingAccountOnce(t *testing.T) {
	store := newUserStoreStub()
	svc := New(Dependencies{Users: store})

	first, err := svc.Resolve(context.Background(), "subject-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first.Status != enums.UserStatusPending {
		t.Fatalf("new account should be PENDING, got %q", first.Status)
	}
	if first.VerificationCode == nil || len(*first.VerificationCode) != 6 {
		t.Fatalf("new account should carry a 6-digit code")
	}

	second, err := svc.Resolve(context.Background(), "subject-1")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("repeat resolve should return the same account")
	}
	if len(store.users) != 1 {
		t.Fatalf("expected one account, got %d", len(store.users))
	}
}

func TestResolveEmptySubject(t *testing.T) {
	svc := New(Dependencies{Users: newUserStoreStub()})
	if _, err := svc.Resolve(context.Background(), "   "); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}

func TestUpdateProfile(t *testing.T) {
	store := newUserStoreStub()
	svc := New(Dependencies{Users: store})

	created, err := svc.Resolve(context.Background(), "subject-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{
		Nickname:     "ada",
		School:       "Hilltop High",
		Bio:          "likes climbing",
		SocialHandle: "@ada",
		Gender:       "female",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Nickname != "ada" {
		t.Fatalf("unexpected nickname: %q", updated.Nickname)
	}
	if updated.Gender != enums.GenderFemale {
		t.Fatalf("unexpected gender: %q", updated.Gender)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	store := newUserStoreStub()
	svc := New(Dependencies{Users: store})

	created, err := svc.Resolve(context.Background(), "subject-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	cases := []UpdateInput{
		{Nickname: ""},
		{Nickname: "  "},
		{Nickname: strings.Repeat("a", maxNicknameLen+1)},
		{Nickname: "ada", Bio: strings.Repeat("b", maxBioLen+1)},
		{Nickname: "ada", Gender: "UNKNOWN"},
	}
	for i, input := range cases {
		if _, err := svc.Update(context.Background(), created.ID, input); !errors.Is(err, ErrInvalidProfile) {
			t.Fatalf("case %d: expected ErrInvalidProfile, got %v", i, err)
		}
	}
}

func TestUpdateMissingUser(t *testing.T) {
	svc := New(Dependencies{Users: newUserStoreStub()})
	if _, err := svc.Update(context.Background(), 404, UpdateInput{Nickname: "ada"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMeMissingUser(t *testing.T) {
	svc := New(Dependencies{Users: newUserStoreStub()})
	if _, err := svc.Me(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
