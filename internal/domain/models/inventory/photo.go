package inventory

import "time"

// Photo is an image attached to an item. The bytes live in object storage
// under ObjectKey; URL and ThumbnailURL are filled in per response.
type Photo struct {
	ID           string    `json:"id" db:"id"`
	ItemID       string    `json:"item_id" db:"item_id"`
	UserID       string    `json:"-" db:"user_id"`
	ObjectKey    string    `json:"-" db:"object_key"`
	ContentType  string    `json:"content_type" db:"content_type"`
	SizeBytes    int64     `json:"size_bytes" db:"size_bytes"`
	Position     int       `json:"position" db:"position"`
	URL          string    `json:"url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
