package swipes

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/antonvlk/emberline/internal/domain/enums"
)

type edgeKey struct {
	from int64
	to   int64
}

type edgeStoreStub struct {
	edges map[edgeKey]struct{}
}

func newEdgeStoreStub() *edgeStoreStub {
	return &edgeStoreStub{edges: map[edgeKey]struct{}{}}
}

func (s *edgeStoreStub) Upsert(_ context.Context, _ pgx.Tx, fromUserID, toUserID int64) error {
	s.edges[edgeKey{from: fromUserID, to: toUserID}] = struct{}{}
	return nil
}

func (s *edgeStoreStub) has(from, to int64) bool {
	_, ok := s.edges[edgeKey{from: from, to: to}]
	return ok
}

type matchStoreStub struct {
	likes   *edgeStoreStub
	matches map[edgeKey]struct{}
}

func newMatchStoreStub(likes *edgeStoreStub) *matchStoreStub {
	return &matchStoreStub{likes: likes, matches: map[edgeKey]struct{}{}}
}

func (s *matchStoreStub) CreateIfMutualLike(_ context.Context, _ pgx.Tx, userID, targetID int64) (bool, error) {
	if !s.likes.has(targetID, userID) {
		return false, nil
	}
	a, b := userID, targetID
	if a > b {
		a, b = b, a
	}
	s.matches[edgeKey{from: a, to: b}] = struct{}{}
	return true, nil
}

type userStoreStub struct {
	known map[int64]bool
	err   error
}

func (s *userStoreStub) Exists(_ context.Context, userID int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.known[userID], nil
}

type photoResolverStub struct {
	owners map[int64]int64
	err    error
}

func (s *photoResolverStub) OwnerOf(_ context.Context, photoID int64) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	owner, ok := s.owners[photoID]
	if !ok {
		return 0, ErrTargetNotFound
	}
	return owner, nil
}

type limiterStub struct {
	err   error
	calls int
}

func (s *limiterStub) AllowSwipe(context.Context, int64) error {
	s.calls++
	return s.err
}

func newTestService(users *userStoreStub) (*Service, *edgeStoreStub, *edgeStoreStub, *matchStoreStub) {
	likes := newEdgeStoreStub()
	passes := newEdgeStoreStub()
	matches := newMatchStoreStub(likes)
	svc := New(Dependencies{
		Users:   users,
		Likes:   likes,
		Passes:  passes,
		Matches: matches,
	})
	return svc, likes, passes, matches
}

func TestRecordSwipeMutualLikeMatchesBothOrders(t *testing.T) {
	users := &userStoreStub{known: map[int64]bool{1: true, 2: true}}

	for _, order := range [][2]int64{{1, 2}, {2, 1}} {
		svc, likes, _, matches := newTestService(users)

		first, err := svc.RecordSwipe(context.Background(), order[0], order[1], enums.SwipeActionLike)
		if err != nil {
			t.Fatalf("first swipe: %v", err)
		}
		if first.Matched {
			t.Fatalf("first like should not match yet")
		}

		second, err := svc.RecordSwipe(context.Background(), order[1], order[0], enums.SwipeActionLike)
		if err != nil {
			t.Fatalf("second swipe: %v", err)
		}
		if !second.Matched {
			t.Fatalf("reciprocal like should match")
		}

		if !likes.has(order[0], order[1]) || !likes.has(order[1], order[0]) {
			t.Fatalf("both like edges should exist")
		}
		if len(matches.matches) != 1 {
			t.Fatalf("expected exactly one match, got %d", len(matches.matches))
		}
		if _, ok := matches.matches[edgeKey{from: 1, to: 2}]; !ok {
			t.Fatalf("match should be stored in canonical order")
		}
	}
}

func TestRecordSwipeRepeatLikeStillReportsMatch(t *testing.T) {
	users := &userStoreStub{known: map[int64]bool{1: true, 2: true}}
	svc, _, _, matches := newTestService(users)

	if _, err := svc.RecordSwipe(context.Background(), 2, 1, enums.SwipeActionLike); err != nil {
		t.Fatalf("seed like: %v", err)
	}
	if _, err := svc.RecordSwipe(context.Background(), 1, 2, enums.SwipeActionLike); err != nil {
		t.Fatalf("matching like: %v", err)
	}

	repeat, err := svc.RecordSwipe(context.Background(), 1, 2, enums.SwipeActionLike)
	if err != nil {
		t.Fatalf("repeat like: %v", err)
	}
	if !repeat.Matched {
		t.Fatalf("repeat like on a mutual pair should still report the match")
	}
	if len(matches.matches) != 1 {
		t.Fatalf("repeat like should not create another match, got %d", len(matches.matches))
	}
}

func TestRecordSwipeSelfTarget(t *testing.T) {
	users := &userStoreStub{known: map[int64]bool{1: true}}
	svc, _, _, _ := newTestService(users)

	if _, err := svc.RecordSwipe(context.Background(), 1, 1, enums.SwipeActionLike); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestRecordSwipeUnknownTarget(t *testing.T) {
	users := &userStoreStub{known: map[int64]bool{1: true}}
	svc, _, _, _ := newTestService(users)

	if _, err := svc.RecordSwipe(context.Background(), 1, 99, enums.SwipeActionLike); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
}

func TestRecordSwipeUnsupportedAction(t *testing.T) {
	users := &userStoreStub{known: map[int64]bool{1: true, 2: true}}
	svc, _, _, _ := newTestService(users)

	if _, err := svc.RecordSwipe(context.Background(), 1, 2, enums.SwipeAction("SUPERLIKE")); !errors.Is(err, ErrUnsupportedAction) {
		t.Fatalf("expected ErrUnsupportedAction, got %v", err)
	}
}

func TestRecordSwipePassDoesNotMatch(t *testing.T) {
	users := &userStoreStub{known: map[int64]bool{1: true, 2: true}}
	svc, likes, passes, matches := newTestService(users)

	if _, err := svc.RecordSwipe(context.Background(), 2, 1, enums.SwipeActionLike); err != nil {
		t.Fatalf("seed like: %v", err)
	}

	result, err := svc.RecordSwipe(context.Background(), 1, 2, enums.SwipeActionPass)
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if result.Matched {
		t.Fatalf("pass should never match")
	}
	if !passes.has(1, 2) {
		t.Fatalf("pass edge should exist")
	}
	if likes.has(1, 2) {
		t.Fatalf("pass should not create a like edge")
	}
	if len(matches.matches) != 0 {
		t.Fatalf("pass should not create a match")
	}
}

func TestRecordSwipeRateLimited(t *testing.T) {
	users := &userStoreStub{known: map[int64]bool{1: true, 2: true}}
	limiter := &limiterStub{err: errors.New("rate limited")}
	likes := newEdgeStoreStub()
	svc := New(Dependencies{
		Users:   users,
		Likes:   likes,
		Passes:  newEdgeStoreStub(),
		Matches: newMatchStoreStub(likes),
		Limiter: limiter,
	})

	if _, err := svc.RecordSwipe(context.Background(), 1, 2, enums.SwipeActionLike); err == nil {
		t.Fatalf("expected rate limit error")
	}
	if limiter.calls != 1 {
		t.Fatalf("expected one limiter call, got %d", limiter.calls)
	}
	if len(likes.edges) != 0 {
		t.Fatalf("rate limited swipe should not write edges")
	}
}

func TestRecordSwipeOnPhotoResolvesOwner(t *testing.T) {
	users := &userStoreStub{known: map[int64]bool{1: true, 2: true}}
	likes := newEdgeStoreStub()
	svc := New(Dependencies{
		Users:   users,
		Likes:   likes,
		Passes:  newEdgeStoreStub(),
		Matches: newMatchStoreStub(likes),
		Photos:  &photoResolverStub{owners: map[int64]int64{77: 2}},
	})

	result, err := svc.RecordSwipeOnPhoto(context.Background(), 1, 77, enums.SwipeActionLike)
	if err != nil {
		t.Fatalf("swipe on photo: %v", err)
	}
	if result.Matched {
		t.Fatalf("no reciprocal like expected")
	}
	if !likes.has(1, 2) {
		t.Fatalf("like edge should target the photo owner")
	}
}

func TestRecordSwipeOnOwnPhoto(t *testing.T) {
	users := &userStoreStub{known: map[int64]bool{1: true}}
	likes := newEdgeStoreStub()
	svc := New(Dependencies{
		Users:   users,
		Likes:   likes,
		Passes:  newEdgeStoreStub(),
		Matches: newMatchStoreStub(likes),
		Photos:  &photoResolverStub{owners: map[int64]int64{77: 1}},
	})

	if _, err := svc.RecordSwipeOnPhoto(context.Background(), 1, 77, enums.SwipeActionLike); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestRecordSwipeOnMissingPhoto(t *testing.T) {
	users := &userStoreStub{known: map[int64]bool{1: true}}
	likes := newEdgeStoreStub()
	svc := New(Dependencies{
		Users:   users,
		Likes:   likes,
		Passes:  newEdgeStoreStub(),
		Matches: newMatchStoreStub(likes),
		Photos:  &photoResolverStub{owners: map[int64]int64{}},
	})

	if _, err := svc.RecordSwipeOnPhoto(context.Background(), 1, 404, enums.SwipeActionLike); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
}
