package inventory

import (
	"context"

	"belongings/internal/domain/models/inventory"
	"belongings/internal/httputil"
)

// ItemService handles item business logic
type ItemService interface {
	CreateItem(ctx context.Context, userID string, req *CreateItemRequest) (*inventory.Item, error)
	GetItem(ctx context.Context, userID, itemID string) (*inventory.Item, error)
	UpdateItem(ctx context.Context, userID, itemID string, req *UpdateItemRequest) (*inventory.Item, error)

	// DeleteItem removes the item, its photo rows and the stored photo objects
	DeleteItem(ctx context.Context, userID, itemID string) error

	// ListItems returns one page of the user's items
	ListItems(ctx context.Context, opts *inventory.ItemListOptions) (*inventory.ItemPage, error)
}

// CreateItemRequest represents an item creation request
type CreateItemRequest struct {
	FolderID       *string  `json:"folder_id,omitempty"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Brand          string   `json:"brand"`
	Model          string   `json:"model"`
	SerialNumber   string   `json:"serial_number"`
	Category       string   `json:"category"`
	Condition      string   `json:"condition"`
	Quantity       *int     `json:"quantity,omitempty"`
	PurchasePrice  *float64 `json:"purchase_price,omitempty"`
	PurchaseDate   *string  `json:"purchase_date,omitempty"` // YYYY-MM-DD
	EstimatedValue *float64 `json:"estimated_value,omitempty"`
	Currency       string   `json:"currency"`
	Tags           []string `json:"tags"`
	Notes          string   `json:"notes"`
}

// UpdateItemRequest represents a partial item update.
// FolderID and PurchaseDate are tri-state (absent, null, value).
type UpdateItemRequest struct {
	FolderID       httputil.OptionalString `json:"folder_id"`
	Name           *string                 `json:"name,omitempty"`
	Description    *string                 `json:"description,omitempty"`
	Brand          *string                 `json:"brand,omitempty"`
	Model          *string                 `json:"model,omitempty"`
	SerialNumber   *string                 `json:"serial_number,omitempty"`
	Category       *string                 `json:"category,omitempty"`
	Condition      *string                 `json:"condition,omitempty"`
	Quantity       *int                    `json:"quantity,omitempty"`
	PurchasePrice  *float64                `json:"purchase_price,omitempty"`
	PurchaseDate   httputil.OptionalString `json:"purchase_date"`
	EstimatedValue *float64                `json:"estimated_value,omitempty"`
	Currency       *string                 `json:"currency,omitempty"`
	Tags           *[]string               `json:"tags,omitempty"`
	Notes          *string                 `json:"notes,omitempty"`
}
