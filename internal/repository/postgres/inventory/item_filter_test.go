package inventory

import (
	"strings"
	"testing"

	models "belongings/internal/domain/models/inventory"
)

func TestBuildItemFilter(t *testing.T) {
	folderID := "folder-1"

	tests := []struct {
		name         string
		opts         *models.ItemListOptions
		wantClauses  []string
		wantArgCount int
	}{
		{
			name:         "user only",
			opts:         &models.ItemListOptions{UserID: "u1"},
			wantClauses:  []string{"i.user_id = $1"},
			wantArgCount: 1,
		},
		{
			name:         "folder filter",
			opts:         &models.ItemListOptions{UserID: "u1", FolderID: &folderID},
			wantClauses:  []string{"i.folder_id = $2"},
			wantArgCount: 2,
		},
		{
			name:         "unfiled wins over folder",
			opts:         &models.ItemListOptions{UserID: "u1", FolderID: &folderID, Unfiled: true},
			wantClauses:  []string{"i.folder_id IS NULL"},
			wantArgCount: 1,
		},
		{
			name: "search, category and tag numbered in order",
			opts: &models.ItemListOptions{UserID: "u1", Query: " camera ", Category: "Electronics", Tag: "travel"},
			wantClauses: []string{
				"websearch_to_tsquery('simple', $2)",
				"lower(i.category) = lower($3)",
				"$4 = ANY(i.tags)",
			},
			wantArgCount: 4,
		},
		{
			name:         "blank search ignored",
			opts:         &models.ItemListOptions{UserID: "u1", Query: "   "},
			wantClauses:  []string{"i.user_id = $1"},
			wantArgCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildItemFilter(tt.opts)
			for _, clause := range tt.wantClauses {
				if !strings.Contains(where, clause) {
					t.Errorf("where %q missing %q", where, clause)
				}
			}
			if len(args) != tt.wantArgCount {
				t.Errorf("got %d args, want %d", len(args), tt.wantArgCount)
			}
		})
	}
}

func TestBuildItemFilter_TrimsQuery(t *testing.T) {
	_, args := buildItemFilter(&models.ItemListOptions{UserID: "u1", Query: "  red bike "})
	if got := args[1]; got != "red bike" {
		t.Errorf("query arg = %q, want %q", got, "red bike")
	}
}

func TestItemOrderBy(t *testing.T) {
	tests := []struct {
		sort      models.ItemSort
		ascending bool
		want      string
	}{
		{models.SortUpdated, false, "i.updated_at DESC NULLS LAST, i.id DESC"},
		{models.SortCreated, true, "i.created_at ASC NULLS LAST, i.id ASC"},
		{models.SortName, true, "lower(i.name) ASC NULLS LAST, i.id ASC"},
		{models.SortValue, false, "i.estimated_value DESC NULLS LAST, i.id DESC"},
		{"", false, "i.updated_at DESC NULLS LAST, i.id DESC"},
	}

	for _, tt := range tests {
		got := itemOrderBy(&models.ItemListOptions{Sort: tt.sort, Ascending: tt.ascending})
		if got != tt.want {
			t.Errorf("itemOrderBy(%q, asc=%v) = %q, want %q", tt.sort, tt.ascending, got, tt.want)
		}
	}
}
