package inventory

import (
	"context"
	"io"

	"belongings/internal/domain/models/inventory"
)

// PhotoService manages item photos in external file storage
type PhotoService interface {
	// UploadPhoto stores an image and attaches it to the item
	UploadPhoto(ctx context.Context, userID, itemID string, upload *PhotoUpload) (*inventory.Photo, error)

	// ListPhotos lists an item's photos with presigned URLs
	ListPhotos(ctx context.Context, userID, itemID string) ([]inventory.Photo, error)

	// DeletePhoto removes the row and the stored object
	DeletePhoto(ctx context.Context, userID, itemID, photoID string) error

	// ReadPhoto returns the photo and its bytes
	ReadPhoto(ctx context.Context, userID, photoID string) (*inventory.Photo, []byte, error)
}

// PhotoUpload is an incoming image file
type PhotoUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}
