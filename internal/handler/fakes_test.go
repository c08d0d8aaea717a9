package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"belongings/internal/domain"
	"belongings/internal/domain/models/inventory"
	aiSvc "belongings/internal/domain/services/enrichment"
	invSvc "belongings/internal/domain/services/inventory"
	"belongings/internal/httputil"
)

const testUser = "0f5e2a58-0d3c-4b8e-9a1e-6c4a1c7b9f10"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// asUser injects the user id the way the auth middleware does.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, httputil.WithUserID(r, testUser))
	})
}

type stubFolders struct {
	invSvc.FolderService
	folders   map[string]*inventory.Folder
	createErr error
	updateErr error
	deleteErr error
	lastReq   *invSvc.UpdateFolderRequest
	recursive bool
}

func (s *stubFolders) ListFolders(context.Context, string) ([]inventory.Folder, error) {
	out := []inventory.Folder{}
	for _, f := range s.folders {
		out = append(out, *f)
	}
	return out, nil
}

func (s *stubFolders) GetFolder(_ context.Context, _, id string) (*inventory.Folder, error) {
	f, ok := s.folders[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "folder not found"}
	}
	return f, nil
}

func (s *stubFolders) CreateFolder(_ context.Context, _ string, req *invSvc.CreateFolderRequest) (*inventory.Folder, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &inventory.Folder{ID: "new", Name: req.Name, ParentID: req.ParentID, Depth: 1}, nil
}

func (s *stubFolders) UpdateFolder(_ context.Context, _, id string, req *invSvc.UpdateFolderRequest) (*inventory.Folder, error) {
	s.lastReq = req
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.GetFolder(context.Background(), testUser, id)
}

func (s *stubFolders) DeleteFolder(_ context.Context, _, _ string, recursive bool) error {
	s.recursive = recursive
	return s.deleteErr
}

type stubItems struct {
	invSvc.ItemService
	lastOpts *inventory.ItemListOptions
}

func (s *stubItems) ListItems(_ context.Context, opts *inventory.ItemListOptions) (*inventory.ItemPage, error) {
	s.lastOpts = opts
	if opts.Limit > 100 {
		return nil, &domain.ValidationError{Message: "limit too large"}
	}
	return inventory.NewItemPage(nil, 0, opts), nil
}

type stubPhotos struct {
	invSvc.PhotoService
	uploaded []byte
	filename string
}

func (s *stubPhotos) UploadPhoto(_ context.Context, _, itemID string, upload *invSvc.PhotoUpload) (*inventory.Photo, error) {
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return nil, err
	}
	s.uploaded = data
	s.filename = upload.Filename
	return &inventory.Photo{ID: "photo-1", ItemID: itemID, ContentType: "image/png", SizeBytes: int64(len(data))}, nil
}

type stubEnrichment struct {
	err         error
	image       []byte
	photoID     string
	enrichReq   *aiSvc.EnrichRequest
	priceReq    *aiSvc.PriceRequest
	recognition *inventory.Recognition
}

func (s *stubEnrichment) RecognizePhoto(_ context.Context, _, photoID string) (*inventory.Recognition, error) {
	s.photoID = photoID
	return s.recognition, s.err
}

func (s *stubEnrichment) RecognizeImage(_ context.Context, _ string, image []byte) (*inventory.Recognition, error) {
	s.image = image
	return s.recognition, s.err
}

func (s *stubEnrichment) ResearchPrice(_ context.Context, _ string, req *aiSvc.PriceRequest) (*inventory.PriceEstimate, error) {
	s.priceReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &inventory.PriceEstimate{Currency: "USD", Estimate: 10, Sources: []inventory.PriceSource{}}, nil
}

func (s *stubEnrichment) EnrichItem(_ context.Context, _, itemID string, req *aiSvc.EnrichRequest) (*inventory.EnrichResult, error) {
	s.enrichReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &inventory.EnrichResult{Item: &inventory.Item{ID: itemID}, Applied: []string{}}, nil
}
