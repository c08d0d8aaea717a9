package inventory

import (
	"context"
	"io"
	"time"

	"belongings/internal/domain/models/inventory"
)

// PhotoRepository stores photo metadata rows
type PhotoRepository interface {
	// Create inserts a photo row at the end of the item's photo list
	Create(ctx context.Context, photo *inventory.Photo) error

	// GetByID retrieves a photo owned by userID
	GetByID(ctx context.Context, userID, id string) (*inventory.Photo, error)

	// ListByItem lists an item's photos in display order
	ListByItem(ctx context.Context, userID, itemID string) ([]inventory.Photo, error)

	// CountByItem counts an item's photos
	CountByItem(ctx context.Context, userID, itemID string) (int, error)

	// Delete removes a photo row
	Delete(ctx context.Context, userID, id string) error
}

// ObjectStore is the external file storage that holds photo bytes.
type ObjectStore interface {
	// Put uploads body under key
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error

	// Get opens the object stored under key
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object stored under key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// PresignGet returns a time-limited download URL for key
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
