package inventory

import (
	"fmt"

	"belongings/internal/config"
)

// ItemSort names a sortable item column.
type ItemSort string

const (
	SortUpdated ItemSort = "updated"
	SortCreated ItemSort = "created"
	SortName    ItemSort = "name"
	SortValue   ItemSort = "value"
)

// ItemListOptions filters and paginates an item listing.
type ItemListOptions struct {
	UserID string

	// FolderID limits results to one folder. Ignored when Unfiled is set.
	FolderID *string

	// Unfiled limits results to items without a folder.
	Unfiled bool

	// Query is matched with PostgreSQL full-text search against
	// name, description, brand and notes.
	Query string

	Category string
	Tag      string

	Sort      ItemSort
	Ascending bool

	Limit  int
	Offset int
}

// ApplyDefaults fills in default values for unset fields
func (o *ItemListOptions) ApplyDefaults() {
	if o.Limit <= 0 {
		o.Limit = config.DefaultItemPageSize
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.Sort == "" {
		o.Sort = SortUpdated
	}
}

// Validate checks that values are in range and the sort key is known.
func (o *ItemListOptions) Validate() error {
	if o.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if o.Limit > config.MaxItemPageSize {
		return fmt.Errorf("limit cannot exceed %d (requested: %d)", config.MaxItemPageSize, o.Limit)
	}
	if o.Offset < 0 {
		return fmt.Errorf("offset cannot be negative")
	}
	switch o.Sort {
	case SortUpdated, SortCreated, SortName, SortValue:
	default:
		return fmt.Errorf("unknown sort: %q (supported: updated, created, name, value)", o.Sort)
	}
	return nil
}

// ItemPage is one page of a listing with pagination metadata.
type ItemPage struct {
	Items      []Item `json:"items"`
	TotalCount int    `json:"total_count"`
	HasMore    bool   `json:"has_more"`
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
}

// NewItemPage creates an ItemPage with a calculated HasMore flag.
func NewItemPage(items []Item, total int, opts *ItemListOptions) *ItemPage {
	if items == nil {
		items = []Item{}
	}
	return &ItemPage{
		Items:      items,
		TotalCount: total,
		HasMore:    opts.Offset+len(items) < total,
		Offset:     opts.Offset,
		Limit:      opts.Limit,
	}
}
