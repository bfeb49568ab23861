package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/antonvlk/emberline/internal/domain/enums"
	authsvc "github.com/antonvlk/emberline/internal/services/auth"
	moderationsvc "github.com/antonvlk/emberline/internal/services/moderation"
	usersvc "github.com/antonvlk/emberline/internal/services/users"
	"github.com/antonvlk/emberline/internal/transport/http/dto"
	httperrors "github.com/antonvlk/emberline/internal/transport/http/errors"
)

type AdminHandler struct {
	moderation *moderationsvc.Service
	users      *usersvc.Service
}

func NewAdminHandler(moderation *moderationsvc.Service, users *usersvc.Service) *AdminHandler {
	return &AdminHandler{moderation: moderation, users: users}
}

func (h *AdminHandler) ApprovePhoto(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	photoID, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid photo id")
		return
	}

	h.writeModerationResult(w, h.moderation.ApprovePhoto(r.Context(), identity, photoID), "photo")
}

func (h *AdminHandler) RejectPhoto(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	photoID, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid photo id")
		return
	}

	var req dto.RejectPhotoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	h.writeModerationResult(w, h.moderation.RejectPhoto(r.Context(), identity, photoID, req.Reason), "photo")
}

func (h *AdminHandler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	userID, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	var req dto.VerifyAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	h.writeModerationResult(w, h.moderation.VerifyAccountByAdmin(r.Context(), identity, userID, req.Code), "user")
}

func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	userID, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	h.writeModerationResult(w, h.moderation.BanUser(r.Context(), identity, userID), "user")
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	userID, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	if err := h.users.DeleteAccount(r.Context(), identity, userID); err != nil {
		switch {
		case errors.Is(err, usersvc.ErrForbidden):
			writeForbidden(w, "FORBIDDEN", "admin role required")
		case errors.Is(err, usersvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "user not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to delete user")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	reports, err := h.moderation.ListOpenReports(r.Context(), identity, limit)
	if err != nil {
		if errors.Is(err, moderationsvc.ErrForbidden) {
			writeForbidden(w, "FORBIDDEN", "admin role required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to list reports")
		return
	}

	items := make([]dto.ReportItem, 0, len(reports))
	for _, report := range reports {
		items = append(items, dto.ReportItem{
			ID:             report.ID,
			ReporterUserID: report.ReporterUserID,
			TargetUserID:   report.TargetUserID,
			Reason:         report.Reason,
			Details:        report.Details,
			Status:         report.Status,
			Action:         report.Action,
			CreatedAt:      report.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ReportsResponse{Reports: items})
}

func (h *AdminHandler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	reportID, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid report id")
		return
	}

	var req dto.ResolveReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	action, ok := enums.ParseReportAction(req.Action)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown report action")
		return
	}

	h.writeModerationResult(w, h.moderation.ResolveReport(r.Context(), identity, reportID, action), "report")
}

func (h *AdminHandler) writeModerationResult(w http.ResponseWriter, err error, subject string) {
	if err != nil {
		switch {
		case errors.Is(err, moderationsvc.ErrForbidden):
			writeForbidden(w, "FORBIDDEN", "admin role required")
		case errors.Is(err, moderationsvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", subject+" not found")
		case errors.Is(err, moderationsvc.ErrInvalidState):
			writeConflict(w, "INVALID_STATE", subject+" is not in a state that allows this transition")
		case errors.Is(err, moderationsvc.ErrInvalidCode):
			writeBadRequest(w, "INVALID_CODE", "verification code mismatch")
		case errors.Is(err, moderationsvc.ErrInvalidReason):
			writeBadRequest(w, "VALIDATION_ERROR", "rejection reason must be at least 10 characters")
		default:
			writeInternal(w, "INTERNAL_ERROR", "moderation action failed")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}
