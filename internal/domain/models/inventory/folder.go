package inventory

import (
	"time"
)

// Folder is a node of a user's folder forest.
// ItemCount, ChildCount and Depth are computed by the server on read and are
// never maintained incrementally by clients.
type Folder struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	ParentID   *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	Name       string    `json:"name" db:"name"`
	ItemCount  int       `json:"item_count" db:"item_count"`
	ChildCount int       `json:"child_count" db:"child_count"`
	Depth      int       `json:"depth" db:"depth"` // 1 = root level
	Path       string    `json:"path,omitempty"`   // Display path, not stored
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder sits at the top level.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
