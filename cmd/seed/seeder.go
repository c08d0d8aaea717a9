package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	invSvc "belongings/internal/domain/services/inventory"
)

var errMissingUser = errors.New("no seed user: pass --user, set DEV_USER_ID, or set SUPABASE_URL, SUPABASE_SERVICE_KEY and SEED_EMAIL")

type seedFolder struct {
	name     string
	items    []invSvc.CreateItemRequest
	children []seedFolder
}

type seeder struct {
	folders invSvc.FolderService
	items   invSvc.ItemService
	userID  string
	logger  *slog.Logger

	folderCount int
	itemCount   int
}

func (s *seeder) run(ctx context.Context, roots []seedFolder) error {
	for _, root := range roots {
		if err := s.create(ctx, nil, root); err != nil {
			return err
		}
	}
	for _, req := range unfiledItems() {
		if err := s.createItem(ctx, nil, req); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) create(ctx context.Context, parentID *string, f seedFolder) error {
	folder, err := s.folders.CreateFolder(ctx, s.userID, &invSvc.CreateFolderRequest{Name: f.name, ParentID: parentID})
	if err != nil {
		return fmt.Errorf("folder %q: %w", f.name, err)
	}
	s.folderCount++
	s.logger.Info("created folder", "name", folder.Name, "id", folder.ID)

	for _, req := range f.items {
		if err := s.createItem(ctx, &folder.ID, req); err != nil {
			return err
		}
	}
	for _, child := range f.children {
		if err := s.create(ctx, &folder.ID, child); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) createItem(ctx context.Context, folderID *string, req invSvc.CreateItemRequest) error {
	req.FolderID = folderID
	item, err := s.items.CreateItem(ctx, s.userID, &req)
	if err != nil {
		return fmt.Errorf("item %q: %w", req.Name, err)
	}
	s.itemCount++
	s.logger.Debug("created item", "name", item.Name, "id", item.ID)
	return nil
}

func price(v float64) *float64 { return &v }
func date(s string) *string    { return &s }

func seedFolders() []seedFolder {
	return []seedFolder{
		{
			name: "Garage",
			items: []invSvc.CreateItemRequest{
				{Name: "Cordless Drill", Brand: "DeWalt", Model: "DCD791", Category: "tools", Condition: "good", PurchasePrice: price(149), PurchaseDate: date("2022-04-18"), Tags: []string{"power-tools"}},
			},
			children: []seedFolder{
				{
					name: "Shelf A",
					items: []invSvc.CreateItemRequest{
						{Name: "Camping Tent", Brand: "REI", Model: "Half Dome 2", Category: "outdoor", Condition: "like_new", PurchasePrice: price(279), Tags: []string{"camping"}},
						{Name: "Sleeping Bag", Brand: "Marmot", Category: "outdoor", Condition: "fair", Tags: []string{"camping"}},
					},
					children: []seedFolder{
						{
							name: "Bin 1",
							items: []invSvc.CreateItemRequest{
								{Name: "Headlamp", Brand: "Petzl", Model: "Actik", Category: "outdoor", Condition: "good"},
							},
						},
					},
				},
			},
		},
		{
			name: "Office",
			items: []invSvc.CreateItemRequest{
				{Name: "Laptop", Brand: "Apple", Model: "MacBook Air M2", SerialNumber: "C02XK0AAJG5H", Category: "electronics", Condition: "good", PurchasePrice: price(1199), PurchaseDate: date("2023-01-09"), EstimatedValue: price(750), Tags: []string{"computer", "work"}},
				{Name: "Monitor", Brand: "Dell", Model: "U2723QE", Category: "electronics", Condition: "like_new", PurchasePrice: price(579)},
			},
			children: []seedFolder{
				{name: "Desk Drawer"},
			},
		},
		{
			name: "Living Room",
			items: []invSvc.CreateItemRequest{
				{Name: "Record Player", Brand: "Audio-Technica", Model: "AT-LP120X", Category: "electronics", Condition: "good", PurchasePrice: price(299), Tags: []string{"audio", "vinyl"}},
			},
		},
	}
}

func unfiledItems() []invSvc.CreateItemRequest {
	return []invSvc.CreateItemRequest{
		{Name: "Winter Jacket", Brand: "Patagonia", Category: "clothing", Condition: "good"},
		{Name: "Bike Lock", Category: "outdoor", Condition: "new", Description: "U-lock with two keys"},
	}
}
