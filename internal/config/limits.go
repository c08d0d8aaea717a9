package config

import "time"

const (
	// MaxFolderDepth is the number of folder levels a user may create.
	// Root-level folders are depth 1.
	MaxFolderDepth = 3

	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxItemNameLength is the maximum length for item names.
	MaxItemNameLength = 255

	// MaxItemTextLength bounds description and notes fields.
	MaxItemTextLength = 10000

	// MaxItemTags is the maximum number of tags on a single item.
	MaxItemTags = 30

	// MaxTagLength is the maximum length of one tag.
	MaxTagLength = 50

	// DefaultItemPageSize is used when a list request has no limit.
	DefaultItemPageSize = 24

	// MaxItemPageSize caps list requests.
	MaxItemPageSize = 100

	// MaxPhotoUploadBytes is the largest accepted photo upload (10MB).
	MaxPhotoUploadBytes = 10 << 20

	// MaxPhotosPerItem caps the photos attached to one item.
	MaxPhotosPerItem = 20

	// PhotoURLExpiry is how long presigned photo URLs stay valid.
	PhotoURLExpiry = 15 * time.Minute
)
