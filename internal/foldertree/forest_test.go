package foldertree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"belongings/internal/domain/models/inventory"
)

func strPtr(s string) *string { return &s }

func folder(id, name string, parent *string) inventory.Folder {
	return inventory.Folder{ID: id, Name: name, ParentID: parent}
}

// chain returns A (root) -> B -> C plus an unrelated root D.
func chain() *Forest {
	return NewForest([]inventory.Folder{
		folder("a", "A", nil),
		folder("b", "B", strPtr("a")),
		folder("c", "C", strPtr("b")),
		folder("d", "D", nil),
	})
}

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var moveErr *MoveError
	require.True(t, errors.As(err, &moveErr), "expected *MoveError, got %v", err)
	return moveErr.Reason
}

func TestValidateMove_Scenario(t *testing.T) {
	f := chain()

	tests := []struct {
		name   string
		folder string
		target *string
		reason Reason // empty = valid
	}{
		{name: "ancestor onto descendant", folder: "a", target: strPtr("c"), reason: ReasonCycle},
		{name: "ancestor onto child", folder: "a", target: strPtr("b"), reason: ReasonCycle},
		{name: "leaf to root", folder: "c", target: nil},
		{name: "child onto current parent is a no-op", folder: "b", target: strPtr("a")},
		{name: "grandchild onto root folder", folder: "c", target: strPtr("a")},
		{name: "onto depth-3 folder", folder: "d", target: strPtr("c"), reason: ReasonDepth},
		{name: "root onto depth-2 folder", folder: "d", target: strPtr("b")},
		{name: "self", folder: "b", target: strPtr("b"), reason: ReasonSelf},
		{name: "unknown target", folder: "b", target: strPtr("zzz"), reason: ReasonUnknown},
		{name: "unknown folder", folder: "zzz", target: strPtr("a"), reason: ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.ValidateMove(tt.folder, tt.target)
			if tt.reason == "" {
				assert.NoError(t, err)
				assert.True(t, f.IsValidMove(tt.folder, tt.target))
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidMove)
			assert.Equal(t, tt.reason, reasonOf(t, err))
			assert.False(t, f.IsValidMove(tt.folder, tt.target))
		})
	}
}

func TestValidateMove_NeverSelf(t *testing.T) {
	f := chain()
	for _, id := range []string{"a", "b", "c", "d"} {
		assert.False(t, f.IsValidMove(id, strPtr(id)), id)
	}
}

func TestValidateMove_RootAlwaysValid(t *testing.T) {
	f := chain()
	for _, id := range []string{"a", "b", "c", "d"} {
		assert.True(t, f.IsValidMove(id, nil), id)
	}
}

func TestValidateMove_NoDescendantTargets(t *testing.T) {
	f := NewForest([]inventory.Folder{
		folder("home", "Home", nil),
		folder("kitchen", "Kitchen", strPtr("home")),
		folder("garage", "Garage", strPtr("home")),
		folder("drawer", "Drawer", strPtr("kitchen")),
		folder("shelf", "Shelf", strPtr("garage")),
	})

	for _, id := range []string{"home", "kitchen", "garage"} {
		for _, descendant := range f.Descendants(id) {
			err := f.ValidateMove(id, strPtr(descendant))
			require.Error(t, err, "%s -> %s", id, descendant)
			assert.Equal(t, ReasonCycle, reasonOf(t, err))
		}
	}
}

func TestValidateMove_SubtreeMustFit(t *testing.T) {
	// X -> Y is two levels tall; it fits under a root folder but not under a depth-2 one.
	f := NewForest([]inventory.Folder{
		folder("a", "A", nil),
		folder("b", "B", strPtr("a")),
		folder("x", "X", nil),
		folder("y", "Y", strPtr("x")),
	})

	assert.NoError(t, f.ValidateMove("x", strPtr("a")))

	err := f.ValidateMove("x", strPtr("b"))
	require.Error(t, err)
	assert.Equal(t, ReasonDepth, reasonOf(t, err))
	assert.Contains(t, err.Error(), "3 levels")

	// A leaf still fits under the depth-2 folder.
	assert.NoError(t, f.ValidateMove("y", strPtr("b")))
}

func TestValidateMove_CustomMaxDepth(t *testing.T) {
	folders := []inventory.Folder{
		folder("a", "A", nil),
		folder("b", "B", strPtr("a")),
		folder("c", "C", nil),
	}

	assert.True(t, NewForest(folders).IsValidMove("c", strPtr("b")))
	assert.False(t, NewForest(folders, WithMaxDepth(2)).IsValidMove("c", strPtr("b")))
	assert.True(t, NewForest(folders, WithMaxDepth(2)).IsValidMove("c", strPtr("a")))
}

func TestValidateMove_CorruptLoopIsRejected(t *testing.T) {
	f := NewForest([]inventory.Folder{
		folder("p", "P", strPtr("q")),
		folder("q", "Q", strPtr("p")),
		folder("r", "R", nil),
	})

	err := f.ValidateMove("r", strPtr("p"))
	require.Error(t, err)
	assert.Equal(t, ReasonCycle, reasonOf(t, err))
}

func TestValidateMove_Idempotent(t *testing.T) {
	f := chain()
	pairs := []struct {
		folder string
		target *string
	}{
		{"a", strPtr("c")}, {"c", nil}, {"c", strPtr("a")}, {"d", strPtr("c")},
	}
	for _, p := range pairs {
		first := f.IsValidMove(p.folder, p.target)
		second := f.IsValidMove(p.folder, p.target)
		assert.Equal(t, first, second)
	}
}

func TestIsNoop(t *testing.T) {
	f := chain()
	assert.True(t, f.IsNoop("b", strPtr("a")))
	assert.True(t, f.IsNoop("a", nil))
	assert.False(t, f.IsNoop("c", nil))
	assert.False(t, f.IsNoop("c", strPtr("a")))
	assert.False(t, f.IsNoop("missing", nil))
}

func TestDepthAndHeight(t *testing.T) {
	f := chain()

	assert.Equal(t, 1, f.Depth("a"))
	assert.Equal(t, 2, f.Depth("b"))
	assert.Equal(t, 3, f.Depth("c"))
	assert.Equal(t, 0, f.Depth("missing"))

	assert.Equal(t, 3, f.Height("a"))
	assert.Equal(t, 1, f.Height("c"))
	assert.Equal(t, 1, f.Height("d"))

	assert.Equal(t, []string{"b", "a"}, f.Ancestors("c"))
	assert.Empty(t, f.Ancestors("a"))
	assert.ElementsMatch(t, []string{"b", "c"}, f.Descendants("a"))
}

func TestChildrenSortedByName(t *testing.T) {
	f := NewForest([]inventory.Folder{
		folder("1", "zebra", nil),
		folder("2", "Apple", nil),
		folder("3", "mango", nil),
	})

	var names []string
	for _, c := range f.Children(nil) {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Apple", "mango", "zebra"}, names)
}

func TestBuild(t *testing.T) {
	f := NewForest([]inventory.Folder{
		folder("a", "A", nil),
		folder("b", "B", strPtr("a")),
		folder("c", "C", strPtr("b")),
		folder("orphan", "Orphan", strPtr("deleted")),
	})

	roots := f.Build()
	require.Len(t, roots, 2)

	a := roots[0]
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, 1, a.Depth)
	assert.Equal(t, 1, a.ChildCount)
	require.Len(t, a.Children, 1)
	assert.Equal(t, 2, a.Children[0].Depth)
	require.Len(t, a.Children[0].Children, 1)
	assert.Equal(t, 3, a.Children[0].Children[0].Depth)
	assert.NotNil(t, a.Children[0].Children[0].Children)

	assert.Equal(t, "orphan", roots[1].ID)
	assert.Equal(t, 1, roots[1].Depth)
}

func TestFoldersCarryDepth(t *testing.T) {
	for _, fo := range chain().Folders() {
		switch fo.ID {
		case "a", "d":
			assert.Equal(t, 1, fo.Depth)
		case "b":
			assert.Equal(t, 2, fo.Depth)
		case "c":
			assert.Equal(t, 3, fo.Depth)
		}
	}
}

func TestPathAndRoots(t *testing.T) {
	f := chain()

	assert.Equal(t, "A/B/C", f.Path("c"))
	assert.Equal(t, "D", f.Path("d"))
	assert.Equal(t, "", f.Path("missing"))

	var roots []string
	for _, r := range f.Roots() {
		roots = append(roots, r.ID)
	}
	assert.Equal(t, []string{"a", "d"}, roots)
}
