package inventory

import (
	"context"

	"belongings/internal/domain/models/inventory"
	"belongings/internal/httputil"
)

// FolderService handles folder business logic
type FolderService interface {
	// ListFolders returns the user's flat folder list with item/child counts and depth
	ListFolders(ctx context.Context, userID string) ([]inventory.Folder, error)

	// GetTree returns the user's nested folder forest
	GetTree(ctx context.Context, userID string) (*inventory.FolderTree, error)

	// CreateFolder creates a folder at the root or under ParentID
	CreateFolder(ctx context.Context, userID string, req *CreateFolderRequest) (*inventory.Folder, error)

	// GetFolder retrieves a folder with its computed path
	GetFolder(ctx context.Context, userID, folderID string) (*inventory.Folder, error)

	// UpdateFolder renames and/or reparents a folder
	UpdateFolder(ctx context.Context, userID, folderID string, req *UpdateFolderRequest) (*inventory.Folder, error)

	// MoveFolder changes a folder's parent (nil = root level)
	MoveFolder(ctx context.Context, userID, folderID string, parentID *string) (*inventory.Folder, error)

	// DeleteFolder deletes an empty folder, or with recursive set the folder
	// and every descendant folder; items inside become unfiled
	DeleteFolder(ctx context.Context, userID, folderID string, recursive bool) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // null for root
}

// UpdateFolderRequest represents a folder update request.
// ParentID is tri-state: absent leaves the parent alone, null moves the
// folder to the root level, a string moves it under that folder.
type UpdateFolderRequest struct {
	Name     *string                 `json:"name,omitempty"`
	ParentID httputil.OptionalString `json:"parent_id"`
}

// EventPublisher broadcasts change notifications to a user's clients.
type EventPublisher interface {
	Publish(event inventory.Event)
}
