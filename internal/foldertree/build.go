package foldertree

import "belongings/internal/domain/models/inventory"

// Build returns the nested forest with Depth filled in on every node.
// Folders whose parent is missing from the snapshot are shown at the top
// level. Folders caught in a parent loop are unreachable and omitted.
func (f *Forest) Build() []*inventory.FolderNode {
	roots := make([]*inventory.FolderNode, 0)
	for _, id := range f.children[rootKey] {
		roots = append(roots, f.buildNode(id, 1, map[string]bool{}))
	}

	for _, id := range f.order {
		parent := f.folders[id].ParentID
		if parent != nil && !f.Contains(*parent) {
			roots = append(roots, f.buildNode(id, 1, map[string]bool{}))
		}
	}

	return roots
}

func (f *Forest) buildNode(id string, depth int, visiting map[string]bool) *inventory.FolderNode {
	visiting[id] = true
	defer delete(visiting, id)

	node := &inventory.FolderNode{
		Folder:   *f.folders[id],
		Children: []*inventory.FolderNode{},
	}
	node.Depth = depth

	for _, child := range f.children[id] {
		if visiting[child] {
			continue
		}
		node.Children = append(node.Children, f.buildNode(child, depth+1, visiting))
	}
	node.ChildCount = len(node.Children)

	return node
}
