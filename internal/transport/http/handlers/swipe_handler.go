package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/antonvlk/emberline/internal/domain/enums"
	"github.com/antonvlk/emberline/internal/repo/postgres"
	authsvc "github.com/antonvlk/emberline/internal/services/auth"
	ratesvc "github.com/antonvlk/emberline/internal/services/rate"
	swipesvc "github.com/antonvlk/emberline/internal/services/swipes"
	"github.com/antonvlk/emberline/internal/transport/http/dto"
	httperrors "github.com/antonvlk/emberline/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Action) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "action is required")
		return
	}
	if (req.TargetUserID <= 0) == (req.PhotoID <= 0) {
		writeBadRequest(w, "VALIDATION_ERROR", "exactly one of target_user_id or photo_id is required")
		return
	}

	action, ok := enums.ParseSwipeAction(req.Action)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unsupported action")
		return
	}

	var (
		result swipesvc.Result
		err    error
	)
	if req.PhotoID > 0 {
		result, err = h.service.RecordSwipeOnPhoto(r.Context(), identity.UserID, req.PhotoID, action)
	} else {
		result, err = h.service.RecordSwipe(r.Context(), identity.UserID, req.TargetUserID, action)
	}
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrInvalidTarget):
			writeBadRequest(w, "INVALID_TARGET", "cannot swipe on this target")
		case errors.Is(err, swipesvc.ErrUnsupportedAction):
			writeBadRequest(w, "VALIDATION_ERROR", "unsupported action")
		case errors.Is(err, swipesvc.ErrTargetNotFound), errors.Is(err, postgres.ErrPhotoNotFound):
			writeNotFound(w, "NOT_FOUND", "swipe target not found")
		case errors.Is(err, ratesvc.ErrRateLimited):
			writeTooManyRequests(w, "RATE_LIMITED", "too many swipes, slow down")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		OK:      true,
		Matched: result.Matched,
	})
}
