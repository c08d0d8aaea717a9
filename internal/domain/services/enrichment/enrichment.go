package enrichment

import (
	"context"

	"belongings/internal/domain/models/inventory"
)

// Recognizer suggests item details from a photo.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, mediaType string) (*inventory.Recognition, error)
}

// PriceResearcher estimates the market value of an item.
type PriceResearcher interface {
	ResearchPrice(ctx context.Context, query *inventory.PriceQuery) (*inventory.PriceEstimate, error)
}

// Service exposes the AI-backed enrichment operations.
type Service interface {
	// RecognizePhoto runs recognition on one of the user's stored photos
	RecognizePhoto(ctx context.Context, userID, photoID string) (*inventory.Recognition, error)

	// RecognizeImage runs recognition on an uploaded image that is not stored
	RecognizeImage(ctx context.Context, userID string, image []byte) (*inventory.Recognition, error)

	// ResearchPrice estimates a price for an existing item or a free-form query
	ResearchPrice(ctx context.Context, userID string, req *PriceRequest) (*inventory.PriceEstimate, error)

	// EnrichItem runs recognition and/or price research for an item and fills
	// in fields the user left empty
	EnrichItem(ctx context.Context, userID, itemID string, req *EnrichRequest) (*inventory.EnrichResult, error)
}

// PriceRequest targets either a stored item or an ad-hoc query.
type PriceRequest struct {
	ItemID string `json:"item_id,omitempty"`
	inventory.PriceQuery
}

// EnrichRequest selects which enrichers run. Both default to true.
type EnrichRequest struct {
	Recognize *bool `json:"recognize,omitempty"`
	Price     *bool `json:"price,omitempty"`
	// Overwrite replaces existing values instead of filling only empty fields
	Overwrite bool `json:"overwrite"`
}
