package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/antonvlk/emberline/internal/repo/postgres"
	authsvc "github.com/antonvlk/emberline/internal/services/auth"
	moderationsvc "github.com/antonvlk/emberline/internal/services/moderation"
	profilesvc "github.com/antonvlk/emberline/internal/services/profiles"
	"github.com/antonvlk/emberline/internal/transport/http/dto"
	httperrors "github.com/antonvlk/emberline/internal/transport/http/errors"
)

type ProfileHandler struct {
	profiles   *profilesvc.Service
	moderation *moderationsvc.Service
}

func NewProfileHandler(profiles *profilesvc.Service, moderation *moderationsvc.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, moderation: moderation}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	user, err := h.profiles.Me(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, profilesvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "profile not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load profile")
		return
	}

	httperrors.Write(w, http.StatusOK, toMeResponse(user))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	user, err := h.profiles.Update(r.Context(), identity.UserID, profilesvc.UpdateInput{
		Nickname:     req.Nickname,
		School:       req.School,
		Bio:          req.Bio,
		SocialHandle: req.SocialHandle,
		Gender:       req.Gender,
	})
	if err != nil {
		switch {
		case errors.Is(err, profilesvc.ErrInvalidProfile):
			writeBadRequest(w, "VALIDATION_ERROR", "profile validation failed")
		case errors.Is(err, profilesvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to update profile")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, toMeResponse(user))
}

func (h *ProfileHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.VerifyAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "code is required")
		return
	}

	if err := h.moderation.VerifyAccount(r.Context(), identity, req.Code); err != nil {
		switch {
		case errors.Is(err, moderationsvc.ErrInvalidCode):
			writeBadRequest(w, "INVALID_CODE", "verification code mismatch")
		case errors.Is(err, moderationsvc.ErrInvalidState):
			writeConflict(w, "INVALID_STATE", "account is not pending verification")
		case errors.Is(err, moderationsvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "account not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to verify account")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func toMeResponse(user postgres.UserRecord) dto.MeResponse {
	return dto.MeResponse{
		ID:           user.ID,
		Nickname:     user.Nickname,
		School:       user.School,
		Bio:          user.Bio,
		SocialHandle: user.SocialHandle,
		Gender:       string(user.Gender),
		Status:       string(user.Status),
	}
}
