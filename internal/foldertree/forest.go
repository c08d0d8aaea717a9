// Package foldertree indexes a user's folder forest and decides whether a
// folder may be reparented.
//
// The forest is kept as a flat map keyed by id with parent back-references.
// Nothing here owns a nested structure; nested views are produced on demand by
// Build. A Forest is never mutated after construction, so it is safe to share
// between goroutines and to validate against repeatedly while a drag is in
// progress.
package foldertree

import (
	"sort"
	"strings"

	"belongings/internal/config"
	"belongings/internal/domain/models/inventory"
)

// rootKey indexes top-level folders in the children map.
const rootKey = ""

// Forest is a read-only snapshot of all folders of one user.
type Forest struct {
	folders  map[string]*inventory.Folder
	children map[string][]string
	order    []string
	maxDepth int
}

// Option configures a Forest.
type Option func(*Forest)

// WithMaxDepth overrides the maximum number of levels (root = 1).
func WithMaxDepth(depth int) Option {
	return func(f *Forest) {
		if depth > 0 {
			f.maxDepth = depth
		}
	}
}

// NewForest indexes folders. Later duplicates of an id replace earlier ones.
func NewForest(folders []inventory.Folder, opts ...Option) *Forest {
	f := &Forest{
		folders:  make(map[string]*inventory.Folder, len(folders)),
		children: make(map[string][]string),
		maxDepth: config.MaxFolderDepth,
	}
	for _, opt := range opts {
		opt(f)
	}

	for i := range folders {
		folder := folders[i]
		if _, seen := f.folders[folder.ID]; !seen {
			f.order = append(f.order, folder.ID)
		}
		f.folders[folder.ID] = &folder
	}

	for _, id := range f.order {
		parent := rootKey
		if p := f.folders[id].ParentID; p != nil {
			parent = *p
		}
		f.children[parent] = append(f.children[parent], id)
	}

	for parent := range f.children {
		ids := f.children[parent]
		sort.SliceStable(ids, func(i, j int) bool {
			return strings.ToLower(f.folders[ids[i]].Name) < strings.ToLower(f.folders[ids[j]].Name)
		})
	}

	return f
}

// MaxDepth returns the configured level limit.
func (f *Forest) MaxDepth() int {
	return f.maxDepth
}

// Len returns the number of folders in the snapshot.
func (f *Forest) Len() int {
	return len(f.order)
}

// Contains reports whether id is part of the snapshot.
func (f *Forest) Contains(id string) bool {
	_, ok := f.folders[id]
	return ok
}

// Get returns a copy of the folder with the given id.
func (f *Forest) Get(id string) (inventory.Folder, bool) {
	folder, ok := f.folders[id]
	if !ok {
		return inventory.Folder{}, false
	}
	return *folder, true
}

// Children returns the direct children of parentID (nil = root level), sorted by name.
func (f *Forest) Children(parentID *string) []inventory.Folder {
	key := rootKey
	if parentID != nil {
		key = *parentID
	}
	ids := f.children[key]
	out := make([]inventory.Folder, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.folders[id])
	}
	return out
}

// Roots returns the root-level folders, sorted by name.
func (f *Forest) Roots() []inventory.Folder {
	return f.Children(nil)
}

// Path returns the slash-joined names from the root down to id.
func (f *Forest) Path(id string) string {
	folder, ok := f.folders[id]
	if !ok {
		return ""
	}
	ancestors := f.Ancestors(id)
	names := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		names = append(names, f.folders[ancestors[i]].Name)
	}
	return strings.Join(append(names, folder.Name), "/")
}

// Ancestors returns the ancestor chain of id, nearest parent first.
// The walk stops at the root, at a parent missing from the snapshot, or when
// the chain loops back on itself.
func (f *Forest) Ancestors(id string) []string {
	var chain []string
	seen := map[string]bool{id: true}

	current, ok := f.folders[id]
	for ok && current.ParentID != nil {
		parentID := *current.ParentID
		if seen[parentID] {
			break
		}
		if _, known := f.folders[parentID]; !known {
			break
		}
		seen[parentID] = true
		chain = append(chain, parentID)
		current = f.folders[parentID]
	}
	return chain
}

// Depth returns the 1-indexed depth of id, or 0 if the folder is unknown.
func (f *Forest) Depth(id string) int {
	if !f.Contains(id) {
		return 0
	}
	return len(f.Ancestors(id)) + 1
}

// depthCapped walks at most limit levels up from id.
func (f *Forest) depthCapped(id string, limit int) int {
	depth := 1
	current := f.folders[id]
	for depth < limit && current != nil && current.ParentID != nil {
		parent, ok := f.folders[*current.ParentID]
		if !ok {
			break
		}
		depth++
		current = parent
	}
	return depth
}

// Height returns the number of levels in the subtree rooted at id (a leaf is 1),
// or 0 if the folder is unknown.
func (f *Forest) Height(id string) int {
	if !f.Contains(id) {
		return 0
	}
	return f.height(id, map[string]bool{})
}

func (f *Forest) height(id string, visiting map[string]bool) int {
	if visiting[id] {
		return 0
	}
	visiting[id] = true
	defer delete(visiting, id)

	tallest := 0
	for _, child := range f.children[id] {
		if h := f.height(child, visiting); h > tallest {
			tallest = h
		}
	}
	return tallest + 1
}

// Descendants returns every folder below id, breadth first.
func (f *Forest) Descendants(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	queue := append([]string(nil), f.children[id]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, f.children[next]...)
	}
	return out
}

// Folders returns all folders in input order with Depth filled in.
func (f *Forest) Folders() []inventory.Folder {
	out := make([]inventory.Folder, 0, len(f.order))
	for _, id := range f.order {
		folder := *f.folders[id]
		folder.Depth = f.Depth(id)
		out = append(out, folder)
	}
	return out
}
