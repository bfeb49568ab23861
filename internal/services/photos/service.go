package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/antonvlk/emberline/internal/repo/postgres"
	"github.com/antonvlk/emberline/internal/services/auth"
)

var (
	ErrNotFound           = errors.New("photo not found")
	ErrForbidden          = errors.New("operation not allowed")
	ErrLimitReached       = errors.New("photo limit reached")
	ErrUnsupportedContent = errors.New("unsupported content type")
)

var allowedContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type PhotoStore interface {
	Create(ctx context.Context, userID int64, objectKey string) (postgres.PhotoRecord, error)
	GetByID(ctx context.Context, photoID int64) (postgres.PhotoRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]postgres.PhotoRecord, error)
	DeleteWithLikes(ctx context.Context, photoID int64) (string, error)
	ToggleLike(ctx context.Context, userID, photoID int64) (bool, int, error)
}

type ObjectStorage interface {
	PutPhoto(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, objectKey string) error
}

type Config struct {
	PhotoURLTTL time.Duration
}

type Dependencies struct {
	Photos  PhotoStore
	Storage ObjectStorage
	Logger  *zap.Logger
}

type Service struct {
	deps Dependencies
	cfg  Config
}

type Photo struct {
	ID                 int64
	Position           int
	URL                string
	VerificationStatus string
	RejectionReason    *string
	LikeCount          int
	CreatedAt          time.Time
}

func New(deps Dependencies, cfg Config) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.PhotoURLTTL <= 0 {
		cfg.PhotoURLTTL = 15 * time.Minute
	}
	return &Service{deps: deps, cfg: cfg}
}

// Upload stores the image under a generated object key and records the photo
// at the first free position. New photos start unverified.
func (s *Service) Upload(ctx context.Context, identity auth.Identity, body io.Reader, size int64, contentType string) (Photo, error) {
	if identity.UserID <= 0 {
		return Photo{}, fmt.Errorf("invalid user id")
	}

	ext, ok := allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return Photo{}, ErrUnsupportedContent
	}

	objectKey := fmt.Sprintf("photos/%d/%s.%s", identity.UserID, uuid.NewString(), ext)
	if err := s.deps.Storage.PutPhoto(ctx, objectKey, body, size, contentType); err != nil {
		return Photo{}, fmt.Errorf("store photo object: %w", err)
	}

	record, err := s.deps.Photos.Create(ctx, identity.UserID, objectKey)
	if err != nil {
		// The object is already stored; drop it so a failed insert does not
		// leak an orphan.
		if removeErr := s.deps.Storage.Delete(ctx, objectKey); removeErr != nil {
			s.deps.Logger.Warn("cleanup of orphaned photo object failed",
				zap.String("object_key", objectKey),
				zap.Error(removeErr),
			)
		}
		if errors.Is(err, postgres.ErrPhotoLimitReached) {
			return Photo{}, ErrLimitReached
		}
		return Photo{}, err
	}

	return s.toPhoto(ctx, record), nil
}

// List returns the user's photos, position order, with presigned links.
func (s *Service) List(ctx context.Context, userID int64) ([]Photo, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	records, err := s.deps.Photos.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	photos := make([]Photo, 0, len(records))
	for _, record := range records {
		photos = append(photos, s.toPhoto(ctx, record))
	}
	return photos, nil
}

// Delete removes a photo. Only the owner or an admin may delete; the stored
// object is removed best effort after the rows are gone.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, photoID int64) error {
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
	if record.UserID != identity.UserID && !identity.IsAdmin() {
		return ErrForbidden
	}

	objectKey, err := s.deps.Photos.DeleteWithLikes(ctx, photoID)
	if err != nil {
		if errors.Is(err, postgres.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.deps.Storage.Delete(ctx, objectKey); err != nil {
		s.deps.Logger.Warn("delete photo object failed",
			zap.String("object_key", objectKey),
			zap.Error(err),
		)
	}

	return nil
}

// ToggleLike flips the caller's like on a photo and returns the new state
// and counter.
func (s *Service) ToggleLike(ctx context.Context, identity auth.Identity, photoID int64) (bool, int, error) {
	if identity.UserID <= 0 {
		return false, 0, fmt.Errorf("invalid user id")
	}
	if photoID <= 0 {
		return false, 0, ErrNotFound
	}

	liked, likeCount, err := s.deps.Photos.ToggleLike(ctx, identity.UserID, photoID)
	if err != nil {
		if errors.Is(err, postgres.ErrPhotoNotFound) {
			return false, 0, ErrNotFound
		}
		return false, 0, err
	}

	return liked, likeCount, nil
}

func (s *Service) toPhoto(ctx context.Context, record postgres.PhotoRecord) Photo {
	photo := Photo{
		ID:                 record.ID,
		Position:           record.Position,
		VerificationStatus: string(record.VerificationStatus),
		RejectionReason:    record.RejectionReason,
		LikeCount:          record.LikeCount,
		CreatedAt:          record.CreatedAt,
	}
	if s.deps.Storage != nil {
		url, err := s.deps.Storage.PresignGet(ctx, record.ObjectKey, s.cfg.PhotoURLTTL)
		if err != nil {
			s.deps.Logger.Warn("presign photo failed",
				zap.Int64("photo_id", record.ID),
				zap.Error(err),
			)
		} else {
			photo.URL = url
		}
	}
	return photo
}
