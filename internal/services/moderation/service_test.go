package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/antonvlk/emberline/internal/domain/enums"
	"github.com/antonvlk/emberline/internal/repo/postgres"
	"github.com/antonvlk/emberline/internal/services/auth"
)

type photoStoreStub struct {
	photos map[int64]*postgres.PhotoRecord
}

func (s *photoStoreStub) GetByID(_ context.Context, photoID int64) (postgres.PhotoRecord, error) {
	record, ok := s.photos[photoID]
	if !ok {
		return postgres.PhotoRecord{}, postgres.ErrPhotoNotFound
	}
	return *record, nil
}

func (s *photoStoreStub) TransitionVerification(_ context.Context, photoID int64, from []enums.PhotoStatus, to enums.PhotoStatus, reason *string) (bool, error) {
	record, ok := s.photos[photoID]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, state := range from {
		if record.VerificationStatus == state {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	record.VerificationStatus = to
	record.RejectionReason = reason
	return true, nil
}

type userStoreStub struct {
	users map[int64]*postgres.UserRecord
}

func (s *userStoreStub) GetForUpdate(_ context.Context, _ pgx.Tx, userID int64) (postgres.UserRecord, error) {
	user, ok := s.users[userID]
	if !ok {
		return postgres.UserRecord{}, postgres.ErrUserNotFound
	}
	return *user, nil
}

func (s *userStoreStub) Activate(_ context.Context, _ pgx.Tx, userID int64) error {
	user, ok := s.users[userID]
	if !ok {
		return postgres.ErrUserNotFound
	}
	user.Status = enums.UserStatusActive
	user.VerificationCode = nil
	return nil
}

func (s *userStoreStub) SetStatus(_ context.Context, _ pgx.Tx, userID int64, status enums.UserStatus) error {
	user, ok := s.users[userID]
	if !ok {
		return postgres.ErrUserNotFound
	}
	user.Status = status
	return nil
}

type reportStoreStub struct {
	reports map[int64]*postgres.ReportRecord
}

func (s *reportStoreStub) GetByID(_ context.Context, reportID int64) (postgres.ReportRecord, error) {
	report, ok := s.reports[reportID]
	if !ok {
		return postgres.ReportRecord{}, postgres.ErrReportNotFound
	}
	return *report, nil
}

func (s *reportStoreStub) ListByStatus(_ context.Context, status enums.ReportStatus, _ int) ([]postgres.ReportRecord, error) {
	out := make([]postgres.ReportRecord, 0)
	for _, report := range s.reports {
		if report.Status == string(status) {
			out = append(out, *report)
		}
	}
	return out, nil
}

func (s *reportStoreStub) MarkResolved(_ context.Context, _ pgx.Tx, reportID int64, action enums.ReportAction) (bool, error) {
	report, ok := s.reports[reportID]
	if !ok || report.Status != "OPEN" {
		return false, nil
	}
	report.Status = "RESOLVED"
	actionValue := string(action)
	report.Action = &actionValue
	return true, nil
}

var (
	member = auth.Identity{UserID: 1, Role: enums.RoleUser}
	admin  = auth.Identity{UserID: 900, Role: enums.RoleAdmin}
)

func strPtr(v string) *string { return &v }

func newService(photos *photoStoreStub, users *userStoreStub, reports *reportStoreStub) *Service {
	if photos == nil {
		photos = &photoStoreStub{photos: map[int64]*postgres.PhotoRecord{}}
	}
	if users == nil {
		users = &userStoreStub{users: map[int64]*postgres.UserRecord{}}
	}
	if reports == nil {
		reports = &reportStoreStub{reports: map[int64]*postgres.ReportRecord{}}
	}
	return New(Dependencies{Photos: photos, Users: users, Reports: reports})
}

func TestRequestPhotoVerification(t *testing.T) {
	photos := &photoStoreStub{photos: map[int64]*postgres.PhotoRecord{
		10: {ID: 10, UserID: 1, VerificationStatus: enums.PhotoStatusNotApplied},
	}}
	svc := newService(photos, nil, nil)

	if err := svc.RequestPhotoVerification(context.Background(), member, 10); err != nil {
		t.Fatalf("request verification: %v", err)
	}
	if photos.photos[10].VerificationStatus != enums.PhotoStatusPending {
		t.Fatalf("photo should be PENDING, got %q", photos.photos[10].VerificationStatus)
	}
}

func TestRequestPhotoVerificationReapplyClearsReason(t *testing.T) {
	photos := &photoStoreStub{photos: map[int64]*postgres.PhotoRecord{
		10: {ID: 10, UserID: 1, VerificationStatus: enums.PhotoStatusRejected, RejectionReason: strPtr("photo is too blurry")},
	}}
	svc := newService(photos, nil, nil)

	if err := svc.RequestPhotoVerification(context.Background(), member, 10); err != nil {
		t.Fatalf("re-apply: %v", err)
	}
	if photos.photos[10].VerificationStatus != enums.PhotoStatusPending {
		t.Fatalf("photo should be PENDING, got %q", photos.photos[10].VerificationStatus)
	}
	if photos.photos[10].RejectionReason != nil {
		t.Fatalf("re-apply should clear the rejection reason")
	}
}

func TestRequestPhotoVerificationWrongState(t *testing.T) {
	photos := &photoStoreStub{photos: map[int64]*postgres.PhotoRecord{
		10: {ID: 10, UserID: 1, VerificationStatus: enums.PhotoStatusApproved},
	}}
	svc := newService(photos, nil, nil)

	if err := svc.RequestPhotoVerification(context.Background(), member, 10); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestRequestPhotoVerificationNotOwner(t *testing.T) {
	photos := &photoStoreStub{photos: map[int64]*postgres.PhotoRecord{
		10: {ID: 10, UserID: 2, VerificationStatus: enums.PhotoStatusNotApplied},
	}}
	svc := newService(photos, nil, nil)

	if err := svc.RequestPhotoVerification(context.Background(), member, 10); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestApprovePhoto(t *testing.T) {
	photos := &photoStoreStub{photos: map[int64]*postgres.PhotoRecord{
		10: {ID: 10, UserID: 1, VerificationStatus: enums.PhotoStatusPending},
	}}
	svc := newService(photos, nil, nil)

	if err := svc.ApprovePhoto(context.Background(), admin, 10); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if photos.photos[10].VerificationStatus != enums.PhotoStatusApproved {
		t.Fatalf("photo should be APPROVED, got %q", photos.photos[10].VerificationStatus)
	}
}

func TestApprovePhotoRequiresAdmin(t *testing.T) {
	svc := newService(nil, nil, nil)
	if err := svc.ApprovePhoto(context.Background(), member, 10); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestApprovePhotoNotPending(t *testing.T) {
	photos := &photoStoreStub{photos: map[int64]*postgres.PhotoRecord{
		10: {ID: 10, UserID: 1, VerificationStatus: enums.PhotoStatusNotApplied},
	}}
	svc := newService(photos, nil, nil)

	if err := svc.ApprovePhoto(context.Background(), admin, 10); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestRejectPhotoShortReasonCheckedFirst(t *testing.T) {
	svc := newService(nil, nil, nil)

	// The photo does not exist; the reason check must fire before any lookup.
	if err := svc.RejectPhoto(context.Background(), admin, 404, "too short"); !errors.Is(err, ErrInvalidReason) {
		t.Fatalf("expected ErrInvalidReason, got %v", err)
	}
}

func TestRejectPhoto(t *testing.T) {
	photos := &photoStoreStub{photos: map[int64]*postgres.PhotoRecord{
		10: {ID: 10, UserID: 1, VerificationStatus: enums.PhotoStatusPending},
	}}
	svc := newService(photos, nil, nil)

	if err := svc.RejectPhoto(context.Background(), admin, 10, "face is not clearly visible"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if photos.photos[10].VerificationStatus != enums.PhotoStatusRejected {
		t.Fatalf("photo should be REJECTED, got %q", photos.photos[10].VerificationStatus)
	}
	if photos.photos[10].RejectionReason == nil || *photos.photos[10].RejectionReason != "face is not clearly visible" {
		t.Fatalf("rejection reason should be stored")
	}
}

func TestRejectMissingPhoto(t *testing.T) {
	svc := newService(nil, nil, nil)
	if err := svc.RejectPhoto(context.Background(), admin, 404, "face is not clearly visible"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVerifyAccount(t *testing.T) {
	users := &userStoreStub{users: map[int64]*postgres.UserRecord{
		1: {ID: 1, Status: enums.UserStatusPending, VerificationCode: strPtr("123456")},
	}}
	svc := newService(nil, users, nil)

	if err := svc.VerifyAccount(context.Background(), member, "123456"); err != nil {
		t.Fatalf("verify account: %v", err)
	}
	if users.users[1].Status != enums.UserStatusActive {
		t.Fatalf("account should be ACTIVE, got %q", users.users[1].Status)
	}
	if users.users[1].VerificationCode != nil {
		t.Fatalf("verification code should be cleared")
	}
}

func TestVerifyAccountWrongCode(t *testing.T) {
	users := &userStoreStub{users: map[int64]*postgres.UserRecord{
		1: {ID: 1, Status: enums.UserStatusPending, VerificationCode: strPtr("123456")},
	}}
	svc := newService(nil, users, nil)

	if err := svc.VerifyAccount(context.Background(), member, "654321"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if users.users[1].Status != enums.UserStatusPending {
		t.Fatalf("account should stay PENDING")
	}
}

func TestVerifyAccountNotPending(t *testing.T) {
	users := &userStoreStub{users: map[int64]*postgres.UserRecord{
		1: {ID: 1, Status: enums.UserStatusActive},
	}}
	svc := newService(nil, users, nil)

	if err := svc.VerifyAccount(context.Background(), member, "123456"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestVerifyAccountBannedStaysBanned(t *testing.T) {
	users := &userStoreStub{users: map[int64]*postgres.UserRecord{
		1: {ID: 1, Status: enums.UserStatusBanned, VerificationCode: strPtr("123456")},
	}}
	svc := newService(nil, users, nil)

	if err := svc.VerifyAccount(context.Background(), member, "123456"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if users.users[1].Status != enums.UserStatusBanned {
		t.Fatalf("banned account must stay BANNED")
	}
}

func TestVerifyAccountByAdmin(t *testing.T) {
	users := &userStoreStub{users: map[int64]*postgres.UserRecord{
		5: {ID: 5, Status: enums.UserStatusPending, VerificationCode: strPtr("123456")},
	}}
	svc := newService(nil, users, nil)

	if err := svc.VerifyAccountByAdmin(context.Background(), admin, 5, "123456"); err != nil {
		t.Fatalf("admin verify: %v", err)
	}
	if users.users[5].Status != enums.UserStatusActive {
		t.Fatalf("account should be ACTIVE")
	}

	if err := svc.VerifyAccountByAdmin(context.Background(), member, 5, "123456"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
}

func TestVerifyAccountByAdminWrongCode(t *testing.T) {
	users := &userStoreStub{users: map[int64]*postgres.UserRecord{
		5: {ID: 5, Status: enums.UserStatusPending, VerificationCode: strPtr("123456")},
	}}
	svc := newService(nil, users, nil)

	if err := svc.VerifyAccountByAdmin(context.Background(), admin, 5, "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if users.users[5].Status != enums.UserStatusPending {
		t.Fatalf("account should stay PENDING")
	}
}

func TestBanUser(t *testing.T) {
	users := &userStoreStub{users: map[int64]*postgres.UserRecord{
		5: {ID: 5, Status: enums.UserStatusActive},
	}}
	svc := newService(nil, users, nil)

	if err := svc.BanUser(context.Background(), admin, 5); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if users.users[5].Status != enums.UserStatusBanned {
		t.Fatalf("account should be BANNED")
	}

	// Banning again is a no-op.
	if err := svc.BanUser(context.Background(), admin, 5); err != nil {
		t.Fatalf("repeat ban: %v", err)
	}

	if err := svc.BanUser(context.Background(), member, 5); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
}

func TestResolveReportWithBan(t *testing.T) {
	users := &userStoreStub{users: map[int64]*postgres.UserRecord{
		2: {ID: 2, Status: enums.UserStatusActive},
	}}
	reports := &reportStoreStub{reports: map[int64]*postgres.ReportRecord{
		30: {ID: 30, ReporterUserID: 1, TargetUserID: 2, Status: "OPEN"},
	}}
	svc := newService(nil, users, reports)

	if err := svc.ResolveReport(context.Background(), admin, 30, enums.ReportActionBan); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if reports.reports[30].Status != "RESOLVED" {
		t.Fatalf("report should be RESOLVED")
	}
	if users.users[2].Status != enums.UserStatusBanned {
		t.Fatalf("BAN resolution should ban the target")
	}
}

func TestResolveReportDismissLeavesUser(t *testing.T) {
	users := &userStoreStub{users: map[int64]*postgres.UserRecord{
		2: {ID: 2, Status: enums.UserStatusActive},
	}}
	reports := &reportStoreStub{reports: map[int64]*postgres.ReportRecord{
		30: {ID: 30, ReporterUserID: 1, TargetUserID: 2, Status: "OPEN"},
	}}
	svc := newService(nil, users, reports)

	if err := svc.ResolveReport(context.Background(), admin, 30, enums.ReportActionDismiss); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if users.users[2].Status != enums.UserStatusActive {
		t.Fatalf("DISMISS must not touch the target account")
	}
}

func TestResolveReportAlreadyResolved(t *testing.T) {
	reports := &reportStoreStub{reports: map[int64]*postgres.ReportRecord{
		30: {ID: 30, ReporterUserID: 1, TargetUserID: 2, Status: "RESOLVED"},
	}}
	svc := newService(nil, nil, reports)

	if err := svc.ResolveReport(context.Background(), admin, 30, enums.ReportActionWarn); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestResolveReportNotFound(t *testing.T) {
	svc := newService(nil, nil, nil)
	if err := svc.ResolveReport(context.Background(), admin, 404, enums.ReportActionWarn); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListOpenReportsRequiresAdmin(t *testing.T) {
	reports := &reportStoreStub{reports: map[int64]*postgres.ReportRecord{
		30: {ID: 30, Status: "OPEN"},
		31: {ID: 31, Status: "RESOLVED"},
	}}
	svc := newService(nil, nil, reports)

	if _, err := svc.ListOpenReports(context.Background(), member, 10); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	open, err := svc.ListOpenReports(context.Background(), admin, 10)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 || open[0].ID != 30 {
		t.Fatalf("expected only the open report, got %+v", open)
	}
}
