package inventory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"belongings/internal/config"
	"belongings/internal/domain"
	models "belongings/internal/domain/models/inventory"
	invRepo "belongings/internal/domain/repositories/inventory"
	invSvc "belongings/internal/domain/services/inventory"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// allowedPhotoTypes are the detected content types accepted for upload
var allowedPhotoTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/heic",
	"image/heif",
	"image/gif",
}

type photoService struct {
	photoRepo    invRepo.PhotoRepository
	itemRepo     invRepo.ItemRepository
	store        invRepo.ObjectStore
	publisher    invSvc.EventPublisher
	thumbnailURL string
	urlExpiry    time.Duration
	logger       *slog.Logger
}

// NewPhotoService creates a new photo service. thumbnailBaseURL is the
// external thumbnailing endpoint; empty disables thumbnail URLs.
func NewPhotoService(
	photoRepo invRepo.PhotoRepository,
	itemRepo invRepo.ItemRepository,
	store invRepo.ObjectStore,
	publisher invSvc.EventPublisher,
	thumbnailBaseURL string,
	logger *slog.Logger,
) invSvc.PhotoService {
	return &photoService{
		photoRepo:    photoRepo,
		itemRepo:     itemRepo,
		store:        store,
		publisher:    publisher,
		thumbnailURL: thumbnailBaseURL,
		urlExpiry:    config.PhotoURLExpiry,
		logger:       logger,
	}
}

// UploadPhoto sniffs the image type, stores the bytes and records the row.
// If the row cannot be written the stored object is removed again.
func (s *photoService) UploadPhoto(ctx context.Context, userID, itemID string, upload *invSvc.PhotoUpload) (*models.Photo, error) {
	if _, err := s.itemRepo.GetByID(ctx, userID, itemID); err != nil {
		return nil, err
	}

	count, err := s.photoRepo.CountByItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if count >= config.MaxPhotosPerItem {
		return nil, domain.Invalidf("an item can have at most %d photos", config.MaxPhotosPerItem)
	}

	data, err := readLimited(upload.Body, config.MaxPhotoUploadBytes)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &domain.ValidationError{Message: "file is empty"}
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedPhotoTypes...) {
		return nil, fmt.Errorf("%w: %s is not a supported image type", domain.ErrUnsupported, mtype.String())
	}
	contentType := baseType(mtype.String())

	photo := &models.Photo{
		ItemID:      itemID,
		UserID:      userID,
		ObjectKey:   fmt.Sprintf("users/%s/items/%s/%s%s", userID, itemID, uuid.NewString(), mtype.Extension()),
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
	}

	if err := s.store.Put(ctx, photo.ObjectKey, contentType, bytes.NewReader(data), photo.SizeBytes); err != nil {
		return nil, fmt.Errorf("%w: store photo: %v", domain.ErrUpstream, err)
	}

	if err := s.photoRepo.Create(ctx, photo); err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), photo.ObjectKey); delErr != nil {
			s.logger.Warn("failed to remove object after insert failure", "key", photo.ObjectKey, "error", delErr)
		}
		return nil, err
	}

	s.decorate(ctx, photo)

	s.logger.Info("photo uploaded",
		"id", photo.ID,
		"item_id", itemID,
		"user_id", userID,
		"content_type", contentType,
		"size", humanize.Bytes(uint64(photo.SizeBytes)),
		"filename", upload.Filename,
	)
	s.publishItem(userID, itemID)

	return photo, nil
}

// ListPhotos lists an item's photos with fresh presigned URLs
func (s *photoService) ListPhotos(ctx context.Context, userID, itemID string) ([]models.Photo, error) {
	if _, err := s.itemRepo.GetByID(ctx, userID, itemID); err != nil {
		return nil, err
	}

	photos, err := s.photoRepo.ListByItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	for i := range photos {
		s.decorate(ctx, &photos[i])
	}
	return photos, nil
}

// DeletePhoto removes the row, then the object
func (s *photoService) DeletePhoto(ctx context.Context, userID, itemID, photoID string) error {
	photo, err := s.photoRepo.GetByID(ctx, userID, photoID)
	if err != nil {
		return err
	}
	if photo.ItemID != itemID {
		return fmt.Errorf("photo %s: %w", photoID, domain.ErrNotFound)
	}

	if err := s.photoRepo.Delete(ctx, userID, photoID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, photo.ObjectKey); err != nil {
		s.logger.Warn("failed to delete photo object", "key", photo.ObjectKey, "error", err)
	}

	s.logger.Info("photo deleted", "id", photoID, "item_id", itemID, "user_id", userID)
	s.publishItem(userID, itemID)

	return nil
}

// ReadPhoto loads a stored photo's bytes
func (s *photoService) ReadPhoto(ctx context.Context, userID, photoID string) (*models.Photo, []byte, error) {
	photo, err := s.photoRepo.GetByID(ctx, userID, photoID)
	if err != nil {
		return nil, nil, err
	}

	body, err := s.store.Get(ctx, photo.ObjectKey)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close()

	data, err := readLimited(body, config.MaxPhotoUploadBytes)
	if err != nil {
		return nil, nil, err
	}
	return photo, data, nil
}

// decorate fills in the per-response URLs. A presign failure leaves URL
// empty rather than failing the request.
func (s *photoService) decorate(ctx context.Context, photo *models.Photo) {
	url, err := s.store.PresignGet(ctx, photo.ObjectKey, s.urlExpiry)
	if err != nil {
		s.logger.Warn("failed to presign photo", "id", photo.ID, "error", err)
	} else {
		photo.URL = url
	}
	if s.thumbnailURL != "" {
		photo.ThumbnailURL = s.thumbnailURL + "/" + photo.ObjectKey
	}
}

func (s *photoService) publishItem(userID, itemID string) {
	s.publisher.Publish(models.Event{
		Type:       models.EventItemUpdated,
		UserID:     userID,
		ResourceID: itemID,
		Action:     "photos",
		At:         time.Now().UTC(),
	})
}

// readLimited reads at most limit bytes and reports ErrTooLarge beyond that
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: file exceeds %s", domain.ErrTooLarge, humanize.IBytes(uint64(limit)))
	}
	return data, nil
}

// baseType drops parameters such as "; charset=binary"
func baseType(mediaType string) string {
	base, _, _ := strings.Cut(mediaType, ";")
	return strings.TrimSpace(base)
}
