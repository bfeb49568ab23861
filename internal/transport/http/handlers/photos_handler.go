package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/antonvlk/emberline/internal/services/auth"
	moderationsvc "github.com/antonvlk/emberline/internal/services/moderation"
	photosvc "github.com/antonvlk/emberline/internal/services/photos"
	"github.com/antonvlk/emberline/internal/transport/http/dto"
	httperrors "github.com/antonvlk/emberline/internal/transport/http/errors"
)

// Photo uploads are capped well above the largest phone camera output.
const maxUploadBytes = 15 << 20

type PhotosHandler struct {
	photos     *photosvc.Service
	moderation *moderationsvc.Service
}

func NewPhotosHandler(photos *photosvc.Service, moderation *moderationsvc.Service) *PhotosHandler {
	return &PhotosHandler{photos: photos, moderation: moderation}
}

func (h *PhotosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	defer body.Close()

	photo, err := h.photos.Upload(r.Context(), identity, body, r.ContentLength, r.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, photosvc.ErrUnsupportedContent):
			writeBadRequest(w, "UNSUPPORTED_CONTENT_TYPE", "only jpeg, png and webp images are accepted")
		case errors.Is(err, photosvc.ErrLimitReached):
			writeConflict(w, "PHOTO_LIMIT_REACHED", "photo limit reached")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to upload photo")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, toPhotoItem(photo))
}

func (h *PhotosHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	photos, err := h.photos.List(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list photos")
		return
	}

	items := make([]dto.PhotoItem, 0, len(photos))
	for _, photo := range photos {
		items = append(items, toPhotoItem(photo))
	}

	httperrors.Write(w, http.StatusOK, dto.PhotosResponse{Photos: items})
}

func (h *PhotosHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.photos.Delete(r.Context(), identity, photoID); err != nil {
		switch {
		case errors.Is(err, photosvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "photo not found")
		case errors.Is(err, photosvc.ErrForbidden):
			writeForbidden(w, "FORBIDDEN", "only the owner can delete this photo")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to delete photo")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *PhotosHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
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

	liked, likeCount, err := h.photos.ToggleLike(r.Context(), identity, photoID)
	if err != nil {
		if errors.Is(err, photosvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "photo not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to toggle photo like")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PhotoLikeResponse{Liked: liked, LikeCount: likeCount})
}

func (h *PhotosHandler) RequestVerification(w http.ResponseWriter, r *http.Request) {
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

	if err := h.moderation.RequestPhotoVerification(r.Context(), identity, photoID); err != nil {
		switch {
		case errors.Is(err, moderationsvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "photo not found")
		case errors.Is(err, moderationsvc.ErrForbidden):
			writeForbidden(w, "FORBIDDEN", "only the owner can request verification")
		case errors.Is(err, moderationsvc.ErrInvalidState):
			writeConflict(w, "INVALID_STATE", "photo cannot be submitted for verification")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to request verification")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func toPhotoItem(photo photosvc.Photo) dto.PhotoItem {
	return dto.PhotoItem{
		ID:                 photo.ID,
		Position:           photo.Position,
		URL:                photo.URL,
		VerificationStatus: photo.VerificationStatus,
		RejectionReason:    photo.RejectionReason,
		LikeCount:          photo.LikeCount,
		CreatedAt:          photo.CreatedAt,
	}
}
