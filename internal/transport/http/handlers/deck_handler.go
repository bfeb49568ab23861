package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/antonvlk/emberline/internal/repo/postgres"
	authsvc "github.com/antonvlk/emberline/internal/services/auth"
	decksvc "github.com/antonvlk/emberline/internal/services/deck"
	"github.com/antonvlk/emberline/internal/transport/http/dto"
	httperrors "github.com/antonvlk/emberline/internal/transport/http/errors"
)

type DeckHandler struct {
	service *decksvc.Service
}

func NewDeckHandler(service *decksvc.Service) *DeckHandler {
	return &DeckHandler{service: service}
}

func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	candidates, err := h.service.GetDeck(r.Context(), identity.UserID, limit)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			writeNotFound(w, "NOT_FOUND", "profile not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to build deck")
		return
	}

	items := make([]dto.DeckCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, dto.DeckCandidate{
			UserID:    candidate.UserID,
			Nickname:  candidate.Nickname,
			School:    candidate.School,
			PhotoURL:  candidate.PhotoURL,
			CreatedAt: candidate.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.DeckResponse{Candidates: items})
}

func (h *DeckHandler) ResetPasses(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	cleared, err := h.service.ResetPasses(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to reset passes")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ResetPassesResponse{OK: true, Cleared: cleared})
}
