package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"belongings/internal/config"
	"belongings/internal/domain"
	models "belongings/internal/domain/models/inventory"
	invRepo "belongings/internal/domain/repositories/inventory"
	invSvc "belongings/internal/domain/services/inventory"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCurrency = "USD"
	dateLayout      = "2006-01-02"
)

var currencyRule = validation.Match(regexp.MustCompile(`^[A-Z]{3}$`)).Error("must be a 3-letter ISO 4217 code")

type itemService struct {
	itemRepo   invRepo.ItemRepository
	folderRepo invRepo.FolderRepository
	photoRepo  invRepo.PhotoRepository
	store      invRepo.ObjectStore
	publisher  invSvc.EventPublisher
	sanitizer  *TextSanitizer
	logger     *slog.Logger
}

// NewItemService creates a new item service
func NewItemService(
	itemRepo invRepo.ItemRepository,
	folderRepo invRepo.FolderRepository,
	photoRepo invRepo.PhotoRepository,
	store invRepo.ObjectStore,
	publisher invSvc.EventPublisher,
	logger *slog.Logger,
) invSvc.ItemService {
	return &itemService{
		itemRepo:   itemRepo,
		folderRepo: folderRepo,
		photoRepo:  photoRepo,
		store:      store,
		publisher:  publisher,
		sanitizer:  NewTextSanitizer(),
		logger:     logger,
	}
}

// CreateItem creates an item, unfiled unless FolderID is set
func (s *itemService) CreateItem(ctx context.Context, userID string, req *invSvc.CreateItemRequest) (*models.Item, error) {
	item := &models.Item{
		UserID:         userID,
		FolderID:       normalizeID(req.FolderID),
		Name:           s.sanitizer.Clean(req.Name),
		Description:    s.sanitizer.Clean(req.Description),
		Brand:          s.sanitizer.Clean(req.Brand),
		Model:          s.sanitizer.Clean(req.Model),
		SerialNumber:   s.sanitizer.Clean(req.SerialNumber),
		Category:       s.sanitizer.Clean(req.Category),
		Condition:      strings.ToLower(strings.TrimSpace(req.Condition)),
		Quantity:       1,
		PurchasePrice:  req.PurchasePrice,
		EstimatedValue: req.EstimatedValue,
		Currency:       strings.ToUpper(strings.TrimSpace(req.Currency)),
		Tags:           s.sanitizer.CleanTags(req.Tags),
		Notes:          s.sanitizer.Clean(req.Notes),
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if item.Currency == "" {
		item.Currency = defaultCurrency
	}

	if req.PurchaseDate != nil && *req.PurchaseDate != "" {
		date, err := parseDate(*req.PurchaseDate)
		if err != nil {
			return nil, err
		}
		item.PurchaseDate = date
	}

	if err := validateItem(item); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if item.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, userID, *item.FolderID); err != nil {
			return nil, fmt.Errorf("invalid folder: %w", err)
		}
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("item created",
		"id", item.ID,
		"name", item.Name,
		"user_id", userID,
		"folder_id", item.FolderID,
	)
	s.publishItem(userID, item.ID, "created")
	if item.FolderID != nil {
		s.publishFolder(userID, *item.FolderID)
	}

	return item, nil
}

// GetItem retrieves an item
func (s *itemService) GetItem(ctx context.Context, userID, itemID string) (*models.Item, error) {
	return s.itemRepo.GetByID(ctx, userID, itemID)
}

// UpdateItem applies the fields present in req
func (s *itemService) UpdateItem(ctx context.Context, userID, itemID string, req *invSvc.UpdateItemRequest) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	previousFolder := item.FolderID

	if err := s.applyUpdate(item, req); err != nil {
		return nil, err
	}

	if err := validateItem(item); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folderChanged := req.FolderID.Present && !sameID(previousFolder, item.FolderID)
	if folderChanged && item.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, userID, *item.FolderID); err != nil {
			return nil, fmt.Errorf("invalid folder: %w", err)
		}
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("item updated",
		"id", item.ID,
		"user_id", userID,
		"folder_changed", folderChanged,
	)
	s.publishItem(userID, item.ID, "updated")
	if folderChanged {
		for _, id := range []*string{previousFolder, item.FolderID} {
			if id != nil {
				s.publishFolder(userID, *id)
			}
		}
	}

	return item, nil
}

func (s *itemService) applyUpdate(item *models.Item, req *invSvc.UpdateItemRequest) error {
	if req.FolderID.Present {
		item.FolderID = normalizeID(req.FolderID.Value)
	}
	if req.Name != nil {
		item.Name = s.sanitizer.Clean(*req.Name)
	}
	if req.Description != nil {
		item.Description = s.sanitizer.Clean(*req.Description)
	}
	if req.Brand != nil {
		item.Brand = s.sanitizer.Clean(*req.Brand)
	}
	if req.Model != nil {
		item.Model = s.sanitizer.Clean(*req.Model)
	}
	if req.SerialNumber != nil {
		item.SerialNumber = s.sanitizer.Clean(*req.SerialNumber)
	}
	if req.Category != nil {
		item.Category = s.sanitizer.Clean(*req.Category)
	}
	if req.Condition != nil {
		item.Condition = strings.ToLower(strings.TrimSpace(*req.Condition))
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.PurchasePrice != nil {
		item.PurchasePrice = req.PurchasePrice
	}
	if req.PurchaseDate.Present {
		item.PurchaseDate = nil
		if req.PurchaseDate.Value != nil && *req.PurchaseDate.Value != "" {
			date, err := parseDate(*req.PurchaseDate.Value)
			if err != nil {
				return err
			}
			item.PurchaseDate = date
		}
	}
	if req.EstimatedValue != nil {
		item.EstimatedValue = req.EstimatedValue
	}
	if req.Currency != nil {
		item.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.Tags != nil {
		item.Tags = s.sanitizer.CleanTags(*req.Tags)
	}
	if req.Notes != nil {
		item.Notes = s.sanitizer.Clean(*req.Notes)
	}
	return nil
}

// DeleteItem removes the item and then its stored photos. Object deletion
// failures are logged and leave orphaned objects behind; the item is gone
// either way.
func (s *itemService) DeleteItem(ctx context.Context, userID, itemID string) error {
	item, err := s.itemRepo.GetByID(ctx, userID, itemID)
	if err != nil {
		return err
	}

	photos, err := s.photoRepo.ListByItem(ctx, userID, itemID)
	if err != nil {
		return err
	}

	if err := s.itemRepo.Delete(ctx, userID, itemID); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, photo := range photos {
		key := photo.ObjectKey
		g.Go(func() error {
			return s.store.Delete(gctx, key)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("failed to delete photo objects",
			"item_id", itemID,
			"photos", len(photos),
			"error", err,
		)
	}

	s.logger.Info("item deleted",
		"id", itemID,
		"user_id", userID,
		"photos_removed", len(photos),
	)
	s.publishItem(userID, itemID, "deleted")
	if item.FolderID != nil {
		s.publishFolder(userID, *item.FolderID)
	}

	return nil
}

// ListItems returns one page of the user's items
func (s *itemService) ListItems(ctx context.Context, opts *models.ItemListOptions) (*models.ItemPage, error) {
	opts.ApplyDefaults()
	opts.FolderID = normalizeID(opts.FolderID)
	opts.Tag = strings.ToLower(strings.TrimSpace(opts.Tag))
	opts.Query = strings.TrimSpace(opts.Query)

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := uuidRule.Validate(opts.FolderID); err != nil {
		return nil, fmt.Errorf("%w: folder_id: %v", domain.ErrValidation, err)
	}

	return s.itemRepo.List(ctx, opts)
}

func (s *itemService) publishItem(userID, itemID, action string) {
	s.publisher.Publish(models.Event{
		Type:       models.EventItemUpdated,
		UserID:     userID,
		ResourceID: itemID,
		Action:     action,
		At:         time.Now().UTC(),
	})
}

// publishFolder tells clients a folder's item count changed
func (s *itemService) publishFolder(userID, folderID string) {
	s.publisher.Publish(models.Event{
		Type:       models.EventFolderUpdated,
		UserID:     userID,
		ResourceID: folderID,
		Action:     "items",
		At:         time.Now().UTC(),
	})
}

func validateItem(item *models.Item) error {
	return validation.ValidateStruct(item,
		validation.Field(&item.Name, validation.Required, validation.RuneLength(1, config.MaxItemNameLength)),
		validation.Field(&item.FolderID, uuidRule),
		validation.Field(&item.Description, validation.RuneLength(0, config.MaxItemTextLength)),
		validation.Field(&item.Brand, validation.RuneLength(0, config.MaxItemNameLength)),
		validation.Field(&item.Model, validation.RuneLength(0, config.MaxItemNameLength)),
		validation.Field(&item.SerialNumber, validation.RuneLength(0, config.MaxItemNameLength)),
		validation.Field(&item.Category, validation.RuneLength(0, config.MaxItemNameLength)),
		validation.Field(&item.Condition, validation.In(models.Conditions...)),
		validation.Field(&item.Quantity, validation.Min(0)),
		validation.Field(&item.PurchasePrice, validation.Min(0.0)),
		validation.Field(&item.EstimatedValue, validation.Min(0.0)),
		validation.Field(&item.Currency, validation.Required, currencyRule),
		validation.Field(&item.Tags,
			validation.Length(0, config.MaxItemTags),
			validation.Each(validation.RuneLength(1, config.MaxTagLength)),
		),
		validation.Field(&item.Notes, validation.RuneLength(0, config.MaxItemTextLength)),
	)
}

func parseDate(value string) (*time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return nil, &domain.ValidationError{Message: "purchase_date must be formatted as YYYY-MM-DD"}
	}
	return &date, nil
}

// normalizeID turns an empty id into nil
func normalizeID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	return &trimmed
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
