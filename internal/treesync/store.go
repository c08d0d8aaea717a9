// Package treesync keeps a client-side copy of the folder forest and runs
// drag-and-drop moves against it.
package treesync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"belongings/internal/config"
	"belongings/internal/domain/models/inventory"
	"belongings/internal/foldertree"
)

// FolderLister is the read side of the API the store loads from.
type FolderLister interface {
	ListFolders(ctx context.Context) ([]inventory.Folder, error)
}

// Store holds the current folder snapshot. Snapshots are never mutated;
// Reload swaps in a new one.
type Store struct {
	lister   FolderLister
	maxDepth int
	logger   *slog.Logger

	mu        sync.RWMutex
	forest    *foldertree.Forest
	stale     bool
	nextID    int
	listeners map[int]func()
}

// NewStore creates an empty store. Call Reload before reading.
func NewStore(lister FolderLister, logger *slog.Logger) *Store {
	return &Store{
		lister:    lister,
		maxDepth:  config.MaxFolderDepth,
		logger:    logger,
		forest:    foldertree.NewForest(nil, foldertree.WithMaxDepth(config.MaxFolderDepth)),
		stale:     true,
		listeners: make(map[int]func()),
	}
}

// Reload fetches the folder list and replaces the snapshot wholesale. On
// error the previous snapshot stays in place.
func (s *Store) Reload(ctx context.Context) error {
	folders, err := s.lister.ListFolders(ctx)
	if err != nil {
		return err
	}
	forest := foldertree.NewForest(folders, foldertree.WithMaxDepth(s.maxDepth))

	s.mu.Lock()
	s.forest = forest
	s.stale = false
	s.mu.Unlock()

	s.logger.Debug("folder tree reloaded", "folders", forest.Len())
	return nil
}

// Snapshot returns the current forest. It is safe to keep and read
// concurrently; a later Reload does not change it.
func (s *Store) Snapshot() *foldertree.Forest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forest
}

// Stale reports whether the snapshot was invalidated since the last reload.
func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

// OnInvalidate registers fn to run on every Invalidate. The returned func
// unregisters it.
func (s *Store) OnInvalidate(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Invalidate marks the snapshot stale and runs the registered callbacks.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.stale = true
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// EventSource yields server change events.
type EventSource interface {
	Next() (inventory.Event, error)
}

// Watch invalidates the store for every folder-updated event until the
// source ends. A clean end of stream returns nil.
func (s *Store) Watch(ctx context.Context, events EventSource) error {
	for {
		event, err := events.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if event.Type == inventory.EventFolderUpdated {
			s.logger.Debug("folder tree invalidated", "folder_id", event.ResourceID, "action", event.Action)
			s.Invalidate()
		}
	}
}
