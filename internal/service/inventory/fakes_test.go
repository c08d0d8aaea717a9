package inventory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"belongings/internal/domain"
	models "belongings/internal/domain/models/inventory"
	"belongings/internal/domain/repositories"

	"github.com/google/uuid"
)

// memDB is a shared in-memory backing store for the fake repositories so
// counts stay consistent across folders, items and photos.
type memDB struct {
	mu      sync.Mutex
	folders map[string]*models.Folder
	items   map[string]*models.Item
	photos  map[string]*models.Photo
	locks   int
	updates int
}

func newMemDB() *memDB {
	return &memDB{
		folders: map[string]*models.Folder{},
		items:   map[string]*models.Item{},
		photos:  map[string]*models.Photo{},
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

// ---- folders ----

type memFolderRepo struct{ db *memDB }

func (r *memFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	folder.ID = uuid.NewString()
	folder.CreatedAt = time.Now()
	folder.UpdatedAt = folder.CreatedAt
	stored := *folder
	r.db.folders[folder.ID] = &stored
	return nil
}

func (r *memFolderRepo) withCounts(f models.Folder) models.Folder {
	f.ItemCount, f.ChildCount = 0, 0
	for _, item := range r.db.items {
		if item.UserID == f.UserID && item.FolderID != nil && *item.FolderID == f.ID {
			f.ItemCount++
		}
	}
	for _, other := range r.db.folders {
		if other.ParentID != nil && *other.ParentID == f.ID {
			f.ChildCount++
		}
	}
	return f
}

func (r *memFolderRepo) GetByID(ctx context.Context, userID, id string) (*models.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.folders[id]
	if !ok || f.UserID != userID {
		return nil, notFound("folder", id)
	}
	out := r.withCounts(*f)
	return &out, nil
}

func (r *memFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.folders[folder.ID]
	if !ok || f.UserID != folder.UserID {
		return notFound("folder", folder.ID)
	}
	r.db.updates++
	f.Name = folder.Name
	f.ParentID = folder.ParentID
	f.UpdatedAt = time.Now()
	return nil
}

func (r *memFolderRepo) Delete(ctx context.Context, userID, id string) error {
	return r.DeleteMany(ctx, userID, []string{id})
}

func (r *memFolderRepo) DeleteMany(ctx context.Context, userID string, ids []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	gone := map[string]bool{}
	for _, id := range ids {
		gone[id] = true
	}
	for id, f := range r.db.folders {
		if !gone[id] && f.ParentID != nil && gone[*f.ParentID] {
			return fmt.Errorf("foreign key violation: %s still references a deleted folder", id)
		}
	}
	for id := range gone {
		delete(r.db.folders, id)
	}
	return nil
}

func (r *memFolderRepo) ListByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Folder{}
	for _, f := range r.db.folders {
		if f.UserID == userID {
			out = append(out, r.withCounts(*f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memFolderRepo) ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error) {
	all, _ := r.ListByUser(ctx, userID)
	out := []models.Folder{}
	for _, f := range all {
		if sameID(f.ParentID, parentID) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memFolderRepo) LockForest(ctx context.Context, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.locks++
	return nil
}

// ---- items ----

type memItemRepo struct{ db *memDB }

func (r *memItemRepo) Create(ctx context.Context, item *models.Item) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	item.ID = uuid.NewString()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	stored := *item
	r.db.items[item.ID] = &stored
	return nil
}

func (r *memItemRepo) GetByID(ctx context.Context, userID, id string) (*models.Item, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	item, ok := r.db.items[id]
	if !ok || item.UserID != userID {
		return nil, notFound("item", id)
	}
	out := *item
	for _, p := range r.db.photos {
		if p.ItemID == id {
			out.PhotoCount++
		}
	}
	return &out, nil
}

func (r *memItemRepo) Update(ctx context.Context, item *models.Item) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.items[item.ID]; !ok {
		return notFound("item", item.ID)
	}
	stored := *item
	stored.UpdatedAt = time.Now()
	r.db.items[item.ID] = &stored
	return nil
}

func (r *memItemRepo) Delete(ctx context.Context, userID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	item, ok := r.db.items[id]
	if !ok || item.UserID != userID {
		return notFound("item", id)
	}
	delete(r.db.items, id)
	for pid, p := range r.db.photos {
		if p.ItemID == id {
			delete(r.db.photos, pid)
		}
	}
	return nil
}

func (r *memItemRepo) List(ctx context.Context, opts *models.ItemListOptions) (*models.ItemPage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var matched []models.Item
	for _, item := range r.db.items {
		if item.UserID != opts.UserID {
			continue
		}
		if opts.Unfiled && item.FolderID != nil {
			continue
		}
		if !opts.Unfiled && opts.FolderID != nil && !sameID(item.FolderID, opts.FolderID) {
			continue
		}
		if opts.Query != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(opts.Query)) {
			continue
		}
		if opts.Category != "" && !strings.EqualFold(item.Category, opts.Category) {
			continue
		}
		matched = append(matched, *item)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return models.NewItemPage(matched[start:end], total, opts), nil
}

func (r *memItemRepo) UnfileByFolders(ctx context.Context, userID string, folderIDs []string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	in := map[string]bool{}
	for _, id := range folderIDs {
		in[id] = true
	}
	var n int64
	for _, item := range r.db.items {
		if item.UserID == userID && item.FolderID != nil && in[*item.FolderID] {
			item.FolderID = nil
			n++
		}
	}
	return n, nil
}

func (r *memItemRepo) CountUnfiled(ctx context.Context, userID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, item := range r.db.items {
		if item.UserID == userID && item.FolderID == nil {
			n++
		}
	}
	return n, nil
}

// ---- photos ----

type memPhotoRepo struct{ db *memDB }

func (r *memPhotoRepo) Create(ctx context.Context, photo *models.Photo) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	photo.ID = uuid.NewString()
	photo.CreatedAt = time.Now()
	for _, p := range r.db.photos {
		if p.ItemID == photo.ItemID && p.Position >= photo.Position {
			photo.Position = p.Position + 1
		}
	}
	stored := *photo
	r.db.photos[photo.ID] = &stored
	return nil
}

func (r *memPhotoRepo) GetByID(ctx context.Context, userID, id string) (*models.Photo, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.photos[id]
	if !ok || p.UserID != userID {
		return nil, notFound("photo", id)
	}
	out := *p
	return &out, nil
}

func (r *memPhotoRepo) ListByItem(ctx context.Context, userID, itemID string) ([]models.Photo, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Photo{}
	for _, p := range r.db.photos {
		if p.ItemID == itemID && p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memPhotoRepo) CountByItem(ctx context.Context, userID, itemID string) (int, error) {
	photos, err := r.ListByItem(ctx, userID, itemID)
	return len(photos), err
}

func (r *memPhotoRepo) Delete(ctx context.Context, userID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p, ok := r.db.photos[id]; !ok || p.UserID != userID {
		return notFound("photo", id)
	}
	delete(r.db.photos, id)
	return nil
}

// ---- plumbing ----

type passthroughTx struct{}

func (passthroughTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *recordingPublisher) Publish(event models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) ofType(eventType string) []models.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
