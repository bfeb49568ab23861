package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/antonvlk/emberline/internal/domain/enums"
	"github.com/antonvlk/emberline/internal/repo/postgres"
	"github.com/antonvlk/emberline/internal/services/auth"
)

var (
	ErrForbidden     = errors.New("operation not allowed")
	ErrNotFound      = errors.New("moderation target not found")
	ErrInvalidState  = errors.New("invalid state for transition")
	ErrInvalidCode   = errors.New("verification code mismatch")
	ErrInvalidReason = errors.New("rejection reason too short")
)

const minRejectionReasonLen = 10

type PhotoStore interface {
	GetByID(ctx context.Context, photoID int64) (postgres.PhotoRecord, error)
	TransitionVerification(ctx context.Context, photoID int64, from []enums.PhotoStatus, to enums.PhotoStatus, reason *string) (bool, error)
}

type UserStore interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (postgres.UserRecord, error)
	Activate(ctx context.Context, tx pgx.Tx, userID int64) error
	SetStatus(ctx context.Context, tx pgx.Tx, userID int64, status enums.UserStatus) error
}

type ReportStore interface {
	GetByID(ctx context.Context, reportID int64) (postgres.ReportRecord, error)
	ListByStatus(ctx context.Context, status enums.ReportStatus, limit int) ([]postgres.ReportRecord, error)
	MarkResolved(ctx context.Context, tx pgx.Tx, reportID int64, action enums.ReportAction) (bool, error)
}

type Dependencies struct {
	Photos  PhotoStore
	Users   UserStore
	Reports ReportStore
	RunTx   func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	Logger  *zap.Logger
}

// Service owns the photo verification and account state machines. Photo
// verification moves NOT_APPLIED or REJECTED to PENDING on request, and
// PENDING to APPROVED or REJECTED by admin review. Accounts move PENDING to
// ACTIVE via the verification code; BANNED is terminal.
type Service struct {
	deps Dependencies
	now  func() time.Time
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

// RequestPhotoVerification puts the caller's photo into the review queue.
// Only the owner may apply, and only from NOT_APPLIED or REJECTED; a
// re-application clears the previous rejection reason.
func (s *Service) RequestPhotoVerification(ctx context.Context, identity auth.Identity, photoID int64) error {
	if photoID <= 0 {
		return ErrNotFound
	}

	record, err := s.deps.Photos.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, postgres.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return err
	}
	if record.UserID != identity.UserID {
		return ErrForbidden
	}

	moved, err := s.deps.Photos.TransitionVerification(ctx, photoID,
		[]enums.PhotoStatus{enums.PhotoStatusNotApplied, enums.PhotoStatusRejected},
		enums.PhotoStatusPending, nil)
	if err != nil {
		return err
	}
	if !moved {
		return ErrInvalidState
	}

	return nil
}

// ApprovePhoto moves a PENDING photo to APPROVED.
func (s *Service) ApprovePhoto(ctx context.Context, identity auth.Identity, photoID int64) error {
	if !identity.IsAdmin() {
		return ErrForbidden
	}
	return s.reviewPhoto(ctx, photoID, enums.PhotoStatusApproved, nil)
}

// RejectPhoto moves a PENDING photo to REJECTED with a reason. The reason is
// validated before any state is read so a short reason never reveals whether
// the photo exists.
func (s *Service) RejectPhoto(ctx context.Context, identity auth.Identity, photoID int64, reason string) error {
	if !identity.IsAdmin() {
		return ErrForbidden
	}

	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < minRejectionReasonLen {
		return ErrInvalidReason
	}

	return s.reviewPhoto(ctx, photoID, enums.PhotoStatusRejected, &reason)
}

func (s *Service) reviewPhoto(ctx context.Context, photoID int64, to enums.PhotoStatus, reason *string) error {
	if photoID <= 0 {
		return ErrNotFound
	}

	moved, err := s.deps.Photos.TransitionVerification(ctx, photoID,
		[]enums.PhotoStatus{enums.PhotoStatusPending}, to, reason)
	if err != nil {
		return err
	}
	if moved {
		return nil
	}

	if _, err := s.deps.Photos.GetByID(ctx, photoID); err != nil {
		if errors.Is(err, postgres.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return err
	}
	return ErrInvalidState
}

// VerifyAccount activates the caller's PENDING account when the submitted
// code matches. The row is locked so two concurrent attempts cannot both
// consume the code.
func (s *Service) VerifyAccount(ctx context.Context, identity auth.Identity, code string) error {
	if identity.UserID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidCode
	}

	return s.activateWithCode(ctx, identity.UserID, code)
}

// VerifyAccountByAdmin activates a PENDING account on the user's behalf. The
// admin still has to present the account's verification code.
func (s *Service) VerifyAccountByAdmin(ctx context.Context, identity auth.Identity, userID int64, code string) error {
	if !identity.IsAdmin() {
		return ErrForbidden
	}
	if userID <= 0 {
		return ErrNotFound
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidCode
	}

	return s.activateWithCode(ctx, userID, code)
}

func (s *Service) activateWithCode(ctx context.Context, userID int64, code string) error {
	return s.deps.RunTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		user, err := s.deps.Users.GetForUpdate(txCtx, tx, userID)
		if err != nil {
			if errors.Is(err, postgres.ErrUserNotFound) {
				return ErrNotFound
			}
			return err
		}

		if user.Status != enums.UserStatusPending {
			return ErrInvalidState
		}
		if user.VerificationCode == nil || *user.VerificationCode != code {
			return ErrInvalidCode
		}

		return s.deps.Users.Activate(txCtx, tx, userID)
	})
}

// BanUser moves an account to BANNED. Banning an already banned account is
// a no-op; there is no way back out.
func (s *Service) BanUser(ctx context.Context, identity auth.Identity, userID int64) error {
	if !identity.IsAdmin() {
		return ErrForbidden
	}
	if userID <= 0 {
		return ErrNotFound
	}

	err := s.deps.RunTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		user, err := s.deps.Users.GetForUpdate(txCtx, tx, userID)
		if err != nil {
			if errors.Is(err, postgres.ErrUserNotFound) {
				return ErrNotFound
			}
			return err
		}
		if user.Status == enums.UserStatusBanned {
			return nil
		}
		return s.deps.Users.SetStatus(txCtx, tx, userID, enums.UserStatusBanned)
	})
	if err != nil {
		return err
	}

	s.deps.Logger.Info("user banned",
		zap.Int64("user_id", userID),
		zap.Int64("admin_id", identity.UserID),
	)
	return nil
}

// ResolveReport closes an OPEN report with the chosen action. A BAN action
// bans the reported user in the same transaction as the resolution, so a
// crash cannot leave a resolved report without the ban.
func (s *Service) ResolveReport(ctx context.Context, identity auth.Identity, reportID int64, action enums.ReportAction) error {
	if !identity.IsAdmin() {
		return ErrForbidden
	}
	if reportID <= 0 {
		return ErrNotFound
	}

	report, err := s.deps.Reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, postgres.ErrReportNotFound) {
			return ErrNotFound
		}
		return err
	}

	err = s.deps.RunTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		resolved, err := s.deps.Reports.MarkResolved(txCtx, tx, reportID, action)
		if err != nil {
			return err
		}
		if !resolved {
			return ErrInvalidState
		}
		if action == enums.ReportActionBan {
			return s.deps.Users.SetStatus(txCtx, tx, report.TargetUserID, enums.UserStatusBanned)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deps.Logger.Info("report resolved",
		zap.Int64("report_id", reportID),
		zap.String("action", string(action)),
		zap.Int64("admin_id", identity.UserID),
	)
	return nil
}

// ListOpenReports returns the moderation queue, oldest first.
func (s *Service) ListOpenReports(ctx context.Context, identity auth.Identity, limit int) ([]postgres.ReportRecord, error) {
	if !identity.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.deps.Reports.ListByStatus(ctx, enums.ReportStatusOpen, limit)
}
