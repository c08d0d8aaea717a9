package inventory

import "time"

// Event types broadcast to a user's open clients.
const (
	EventFolderUpdated = "folder-updated"
	EventItemUpdated   = "item-updated"
)

// Event tells clients that their cached view of a resource is stale.
// It carries ids only; clients re-fetch what they display.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"-"`
	ResourceID string    `json:"resource_id,omitempty"`
	Action     string    `json:"action,omitempty"` // created, updated, moved, deleted
	At         time.Time `json:"at"`
}
