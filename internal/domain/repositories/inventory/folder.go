package inventory

import (
	"context"

	"belongings/internal/domain/models/inventory"
)

// FolderRepository defines data access operations for folders.
// Every method is scoped to one user; a folder owned by someone else is
// reported as not found.
type FolderRepository interface {
	// Create inserts a folder and fills in ID and timestamps
	Create(ctx context.Context, folder *inventory.Folder) error

	// GetByID retrieves a folder with its item and child counts
	GetByID(ctx context.Context, userID, id string) (*inventory.Folder, error)

	// Update writes name and parent_id
	Update(ctx context.Context, folder *inventory.Folder) error

	// Delete removes one folder
	Delete(ctx context.Context, userID, id string) error

	// DeleteMany removes the given folders in one statement
	DeleteMany(ctx context.Context, userID string, ids []string) error

	// ListByUser returns the user's whole forest as a flat list with
	// item_count and child_count computed by the database
	ListByUser(ctx context.Context, userID string) ([]inventory.Folder, error)

	// ListChildren lists immediate child folders (nil = root level)
	ListChildren(ctx context.Context, userID string, parentID *string) ([]inventory.Folder, error)

	// LockForest serializes structural changes to one user's forest until the
	// surrounding transaction ends. Must be called inside ExecTx.
	LockForest(ctx context.Context, userID string) error
}
