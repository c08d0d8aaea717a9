package inventory

import (
	"context"

	"belongings/internal/domain/models/inventory"
)

// ItemRepository defines data access operations for items
type ItemRepository interface {
	// Create inserts an item and fills in ID and timestamps
	Create(ctx context.Context, item *inventory.Item) error

	// GetByID retrieves an item owned by userID
	GetByID(ctx context.Context, userID, id string) (*inventory.Item, error)

	// Update writes every mutable column of item
	Update(ctx context.Context, item *inventory.Item) error

	// Delete removes an item (photos rows cascade)
	Delete(ctx context.Context, userID, id string) error

	// List returns one page of items matching opts
	List(ctx context.Context, opts *inventory.ItemListOptions) (*inventory.ItemPage, error)

	// UnfileByFolders clears folder_id on every item in the given folders
	UnfileByFolders(ctx context.Context, userID string, folderIDs []string) (int64, error)

	// CountUnfiled counts items without a folder
	CountUnfiled(ctx context.Context, userID string) (int, error)
}
