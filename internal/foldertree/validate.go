package foldertree

import (
	"errors"
	"fmt"
)

// ErrInvalidMove matches every *MoveError with errors.Is.
var ErrInvalidMove = errors.New("invalid folder move")

// Reason names the rule a rejected move broke.
type Reason string

const (
	ReasonSelf    Reason = "self"    // folder dropped onto itself
	ReasonUnknown Reason = "unknown" // folder or target missing from the snapshot
	ReasonCycle   Reason = "cycle"   // target is the folder or one of its descendants
	ReasonDepth   Reason = "depth"   // result would exceed the level limit
)

// MoveError describes a rejected reparent.
type MoveError struct {
	FolderID string
	TargetID *string
	Reason   Reason
	MaxDepth int
}

func (e *MoveError) Error() string {
	switch e.Reason {
	case ReasonSelf:
		return "cannot move folder into itself"
	case ReasonCycle:
		return "cannot move folder into one of its own subfolders"
	case ReasonDepth:
		return fmt.Sprintf("folders can be nested at most %d levels deep", e.MaxDepth)
	case ReasonUnknown:
		return "folder or destination no longer exists"
	default:
		return ErrInvalidMove.Error()
	}
}

// Is lets errors.Is match ErrInvalidMove.
func (e *MoveError) Is(target error) bool {
	return target == ErrInvalidMove
}

// ValidateMove decides whether folderID may become a child of targetParentID
// (nil = root level). It returns nil for a legal move and a *MoveError
// otherwise. The forest is not modified.
//
// Rules are applied in order: self-move, root target, unknown ids, no-op,
// cycle, target depth, subtree fit.
func (f *Forest) ValidateMove(folderID string, targetParentID *string) error {
	reject := func(reason Reason) error {
		return &MoveError{
			FolderID: folderID,
			TargetID: targetParentID,
			Reason:   reason,
			MaxDepth: f.maxDepth,
		}
	}

	if targetParentID != nil && *targetParentID == folderID {
		return reject(ReasonSelf)
	}

	// Depth resets to 1 at the top level and a root has no ancestors to cycle through.
	if targetParentID == nil {
		return nil
	}

	target := *targetParentID
	if !f.Contains(folderID) || !f.Contains(target) {
		return reject(ReasonUnknown)
	}

	if f.IsNoop(folderID, targetParentID) {
		return nil
	}

	if f.inAncestorChain(folderID, target) {
		return reject(ReasonCycle)
	}

	targetDepth := f.depthCapped(target, f.maxDepth)
	if targetDepth >= f.maxDepth {
		return reject(ReasonDepth)
	}
	if targetDepth+f.Height(folderID) > f.maxDepth {
		return reject(ReasonDepth)
	}

	return nil
}

// IsValidMove is ValidateMove reduced to a boolean.
func (f *Forest) IsValidMove(folderID string, targetParentID *string) bool {
	return f.ValidateMove(folderID, targetParentID) == nil
}

// IsNoop reports whether targetParentID already is the folder's parent.
func (f *Forest) IsNoop(folderID string, targetParentID *string) bool {
	folder, ok := f.folders[folderID]
	if !ok {
		return false
	}
	if folder.ParentID == nil || targetParentID == nil {
		return folder.ParentID == nil && targetParentID == nil
	}
	return *folder.ParentID == *targetParentID
}

// inAncestorChain walks up from start (inclusive) looking for needle.
// A chain that loops is reported as containing needle.
func (f *Forest) inAncestorChain(needle, start string) bool {
	seen := make(map[string]bool)
	current := start
	for {
		if current == needle || seen[current] {
			return true
		}
		seen[current] = true

		folder, ok := f.folders[current]
		if !ok || folder.ParentID == nil {
			return false
		}
		current = *folder.ParentID
	}
}
