package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/antonvlk/emberline/internal/services/auth"
	matchsvc "github.com/antonvlk/emberline/internal/services/matches"
	"github.com/antonvlk/emberline/internal/transport/http/dto"
	httperrors "github.com/antonvlk/emberline/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchsvc.Service
}

func NewMatchesHandler(service *matchsvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	matches, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list matches")
		return
	}

	items := make([]dto.MatchItem, 0, len(matches))
	for _, match := range matches {
		items = append(items, dto.MatchItem{
			ID:           match.ID,
			TargetUserID: match.TargetUserID,
			Nickname:     match.Nickname,
			School:       match.School,
			PhotoURL:     match.PhotoURL,
			CreatedAt:    match.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Matches: items})
}

func (h *MatchesHandler) Block(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.BlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.service.Block(r.Context(), identity.UserID, req.TargetUserID); err != nil {
		switch {
		case errors.Is(err, matchsvc.ErrInvalidTarget):
			writeBadRequest(w, "INVALID_TARGET", "cannot block this target")
		case errors.Is(err, matchsvc.ErrTargetNotFound):
			writeNotFound(w, "NOT_FOUND", "target user not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to block user")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *MatchesHandler) Report(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.ReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.service.Report(r.Context(), identity.UserID, req.TargetUserID, req.Reason, req.Details); err != nil {
		switch {
		case errors.Is(err, matchsvc.ErrInvalidTarget):
			writeBadRequest(w, "INVALID_TARGET", "cannot report this target")
		case errors.Is(err, matchsvc.ErrInvalidReason):
			writeBadRequest(w, "VALIDATION_ERROR", "unknown report reason")
		case errors.Is(err, matchsvc.ErrTargetNotFound):
			writeNotFound(w, "NOT_FOUND", "target user not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to file report")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}
