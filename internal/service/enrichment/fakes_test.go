package enrichment

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"belongings/internal/domain"
	models "belongings/internal/domain/models/inventory"
	invSvc "belongings/internal/domain/services/inventory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeMessages replays canned model replies and records requests.
type fakeMessages struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []anthropic.MessageNewParams
}

func (f *fakeMessages) New(_ context.Context, body anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, body)
	if f.err != nil {
		return nil, f.err
	}
	reply := ""
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{{Type: "text", Text: reply}},
	}, nil
}

type fakeSearch struct {
	results []SearchResult
	err     error
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, query string, _ int) ([]SearchResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type fakeRecognizer struct {
	rec       *models.Recognition
	err       error
	mediaType string
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte, mediaType string) (*models.Recognition, error) {
	f.mediaType = mediaType
	return f.rec, f.err
}

type fakeResearcher struct {
	est   *models.PriceEstimate
	err   error
	query *models.PriceQuery
}

func (f *fakeResearcher) ResearchPrice(_ context.Context, q *models.PriceQuery) (*models.PriceEstimate, error) {
	f.query = q
	return f.est, f.err
}

// fakeItems serves a single user's items and records updates.
type fakeItems struct {
	invSvc.ItemService
	items   map[string]*models.Item
	updates []*invSvc.UpdateItemRequest
}

func (f *fakeItems) GetItem(_ context.Context, _, itemID string) (*models.Item, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, &domain.NotFoundError{Message: "item not found"}
	}
	cp := *item
	return &cp, nil
}

func (f *fakeItems) UpdateItem(_ context.Context, _, itemID string, req *invSvc.UpdateItemRequest) (*models.Item, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, &domain.NotFoundError{Message: "item not found"}
	}
	f.updates = append(f.updates, req)
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Brand != nil {
		item.Brand = *req.Brand
	}
	if req.Model != nil {
		item.Model = *req.Model
	}
	if req.Condition != nil {
		item.Condition = *req.Condition
	}
	if req.Tags != nil {
		item.Tags = *req.Tags
	}
	if req.EstimatedValue != nil {
		item.EstimatedValue = req.EstimatedValue
	}
	cp := *item
	return &cp, nil
}

type fakePhotos struct {
	invSvc.PhotoService
	photos map[string][]models.Photo
	data   map[string][]byte
}

func (f *fakePhotos) ListPhotos(_ context.Context, _, itemID string) ([]models.Photo, error) {
	return f.photos[itemID], nil
}

func (f *fakePhotos) ReadPhoto(_ context.Context, _, photoID string) (*models.Photo, []byte, error) {
	for _, list := range f.photos {
		for i := range list {
			if list[i].ID == photoID {
				return &list[i], f.data[photoID], nil
			}
		}
	}
	return nil, nil, &domain.NotFoundError{Message: "photo not found"}
}
