package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"belongings/internal/config"
	"belongings/internal/domain"
	models "belongings/internal/domain/models/inventory"
	"belongings/internal/domain/repositories"
	invRepo "belongings/internal/domain/repositories/inventory"
	invSvc "belongings/internal/domain/services/inventory"
	"belongings/internal/foldertree"
	"belongings/internal/httputil"
	"belongings/internal/metrics"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var folderNameRule = validation.Match(regexp.MustCompile(`^[^/]+$`)).Error("folder name cannot contain slashes")

// uuidRule accepts nil pointers and empty strings; anything else must parse as a UUID.
var uuidRule = validation.By(func(value interface{}) error {
	var id string
	switch v := value.(type) {
	case string:
		id = v
	case *string:
		if v == nil {
			return nil
		}
		id = *v
	}
	if id == "" {
		return nil
	}
	if err := uuid.Validate(id); err != nil {
		return errors.New("must be a valid id")
	}
	return nil
})

type folderService struct {
	folderRepo invRepo.FolderRepository
	itemRepo   invRepo.ItemRepository
	txManager  repositories.TransactionManager
	publisher  invSvc.EventPublisher
	sanitizer  *TextSanitizer
	metrics    *metrics.Metrics
	maxDepth   int
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo invRepo.FolderRepository,
	itemRepo invRepo.ItemRepository,
	txManager repositories.TransactionManager,
	publisher invSvc.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) invSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		itemRepo:   itemRepo,
		txManager:  txManager,
		publisher:  publisher,
		sanitizer:  NewTextSanitizer(),
		metrics:    m,
		maxDepth:   config.MaxFolderDepth,
		logger:     logger,
	}
}

func (s *folderService) loadForest(ctx context.Context, userID string) (*foldertree.Forest, error) {
	folders, err := s.folderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return foldertree.NewForest(folders, foldertree.WithMaxDepth(s.maxDepth)), nil
}

// ListFolders returns every folder with server-computed counts and depth
func (s *folderService) ListFolders(ctx context.Context, userID string) ([]models.Folder, error) {
	forest, err := s.loadForest(ctx, userID)
	if err != nil {
		return nil, err
	}
	return forest.Folders(), nil
}

// GetTree returns the nested forest plus the number of unfiled items
func (s *folderService) GetTree(ctx context.Context, userID string) (*models.FolderTree, error) {
	forest, err := s.loadForest(ctx, userID)
	if err != nil {
		return nil, err
	}

	unfiled, err := s.itemRepo.CountUnfiled(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.FolderTree{
		Folders:      forest.Build(),
		UnfiledItems: unfiled,
		TotalFolders: forest.Len(),
		MaxDepth:     forest.MaxDepth(),
	}, nil
}

// CreateFolder creates a folder at the root or under req.ParentID
func (s *folderService) CreateFolder(ctx context.Context, userID string, req *invSvc.CreateFolderRequest) (*models.Folder, error) {
	req.Name = s.sanitizer.Clean(req.Name)
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder := &models.Folder{
		UserID:   userID,
		ParentID: req.ParentID,
		Name:     req.Name,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.LockForest(txCtx, userID); err != nil {
			return err
		}

		forest, err := s.loadForest(txCtx, userID)
		if err != nil {
			return err
		}

		if req.ParentID != nil {
			if !forest.Contains(*req.ParentID) {
				return &domain.NotFoundError{Message: "parent folder not found"}
			}
			if forest.Depth(*req.ParentID) >= forest.MaxDepth() {
				return domain.Invalidf("folders can be nested at most %d levels deep", forest.MaxDepth())
			}
		}

		if err := checkSiblingName(forest, req.ParentID, "", folder.Name); err != nil {
			return err
		}

		if err := s.folderRepo.Create(txCtx, folder); err != nil {
			return err
		}

		folder.Depth = 1
		folder.Path = folder.Name
		if req.ParentID != nil {
			folder.Depth = forest.Depth(*req.ParentID) + 1
			folder.Path = forest.Path(*req.ParentID) + "/" + folder.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"user_id", userID,
		"parent_id", folder.ParentID,
		"depth", folder.Depth,
	)
	s.publish(userID, folder.ID, "created")

	return folder, nil
}

// GetFolder retrieves a folder with its counts, depth and path
func (s *folderService) GetFolder(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	forest, err := s.loadForest(ctx, userID)
	if err != nil {
		return nil, err
	}

	folder, ok := forest.Get(folderID)
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	folder.Depth = forest.Depth(folderID)
	folder.Path = forest.Path(folderID)

	return &folder, nil
}

// MoveFolder changes a folder's parent (nil = root level)
func (s *folderService) MoveFolder(ctx context.Context, userID, folderID string, parentID *string) (*models.Folder, error) {
	return s.UpdateFolder(ctx, userID, folderID, &invSvc.UpdateFolderRequest{
		ParentID: httputil.Set(parentID),
	})
}

// UpdateFolder renames and/or reparents a folder.
//
// The user's forest is locked and reloaded inside the transaction, and the
// move is checked by the same validator clients run before sending it. A
// client working from a stale tree gets a conflict naming the broken rule.
func (s *folderService) UpdateFolder(ctx context.Context, userID, folderID string, req *invSvc.UpdateFolderRequest) (*models.Folder, error) {
	if req.Name != nil {
		cleaned := s.sanitizer.Clean(*req.Name)
		req.Name = &cleaned
	}
	if req.ParentID.Present && req.ParentID.Value != nil && *req.ParentID.Value == "" {
		req.ParentID.Value = nil
	}

	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var (
		updated models.Folder
		changed bool
		moved   bool
	)

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.LockForest(txCtx, userID); err != nil {
			return err
		}

		forest, err := s.loadForest(txCtx, userID)
		if err != nil {
			return err
		}

		current, ok := forest.Get(folderID)
		if !ok {
			return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
		}
		updated = current

		if req.ParentID.Present {
			target := req.ParentID.Value
			if err := forest.ValidateMove(folderID, target); err != nil {
				var moveErr *foldertree.MoveError
				if errors.As(err, &moveErr) {
					s.metrics.FolderMove(string(moveErr.Reason))
				}
				s.logger.Info("folder move rejected",
					"folder_id", folderID,
					"target_parent_id", target,
					"user_id", userID,
					"error", err,
				)
				return moveRejection(folderID, err)
			}

			if forest.IsNoop(folderID, target) {
				s.metrics.FolderMove("noop")
			} else {
				updated.ParentID = target
				moved = true
				changed = true
			}
		}

		if req.Name != nil && *req.Name != current.Name {
			updated.Name = *req.Name
			changed = true
		}

		if changed {
			if err := checkSiblingName(forest, updated.ParentID, folderID, updated.Name); err != nil {
				return err
			}
			if err := s.folderRepo.Update(txCtx, &updated); err != nil {
				return err
			}
		}

		updated.Depth = 1
		updated.Path = updated.Name
		if updated.ParentID != nil {
			updated.Depth = forest.Depth(*updated.ParentID) + 1
			updated.Path = forest.Path(*updated.ParentID) + "/" + updated.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !changed {
		return &updated, nil
	}

	action := "updated"
	if moved {
		action = "moved"
		s.metrics.FolderMove("moved")
	}

	s.logger.Info("folder updated",
		"id", updated.ID,
		"name", updated.Name,
		"parent_id", updated.ParentID,
		"action", action,
		"user_id", userID,
	)
	s.publish(userID, folderID, action)

	return &updated, nil
}

// DeleteFolder deletes a folder. A non-empty folder is refused unless
// recursive is set, in which case every descendant folder goes too and the
// items inside all of them become unfiled.
func (s *folderService) DeleteFolder(ctx context.Context, userID, folderID string, recursive bool) error {
	var (
		removed []string
		unfiled int64
	)

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.LockForest(txCtx, userID); err != nil {
			return err
		}

		forest, err := s.loadForest(txCtx, userID)
		if err != nil {
			return err
		}

		folder, ok := forest.Get(folderID)
		if !ok {
			return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
		}

		descendants := forest.Descendants(folderID)
		if !recursive && (len(descendants) > 0 || folder.ItemCount > 0) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder '%s' is not empty", folder.Name),
				ResourceType: "folder",
				ResourceID:   folderID,
				Reason:       domain.ReasonNotEmpty,
			}
		}

		removed = append([]string{folderID}, descendants...)

		unfiled, err = s.itemRepo.UnfileByFolders(txCtx, userID, removed)
		if err != nil {
			return err
		}
		return s.folderRepo.DeleteMany(txCtx, userID, removed)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted",
		"id", folderID,
		"user_id", userID,
		"folders_removed", len(removed),
		"items_unfiled", unfiled,
	)
	s.publish(userID, folderID, "deleted")
	if unfiled > 0 {
		s.publisher.Publish(models.Event{Type: models.EventItemUpdated, UserID: userID, Action: "unfiled"})
	}

	return nil
}

func (s *folderService) publish(userID, folderID, action string) {
	s.publisher.Publish(models.Event{
		Type:       models.EventFolderUpdated,
		UserID:     userID,
		ResourceID: folderID,
		Action:     action,
		At:         time.Now().UTC(),
	})
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *invSvc.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.RuneLength(1, config.MaxFolderNameLength),
			folderNameRule,
		),
		validation.Field(&req.ParentID, uuidRule),
	)
}

// validateUpdateRequest validates a folder update request
func (s *folderService) validateUpdateRequest(req *invSvc.UpdateFolderRequest) error {
	if req.Name == nil && !req.ParentID.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	if req.Name == nil {
		return nil
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.RuneLength(1, config.MaxFolderNameLength),
			folderNameRule,
		),
	)
}

// moveRejection maps a validator rejection to the error the API reports:
// dropping a folder on itself is a bad request, anything else means the
// client's tree was out of date.
func moveRejection(folderID string, err error) error {
	var moveErr *foldertree.MoveError
	if !errors.As(err, &moveErr) {
		return err
	}
	if moveErr.Reason == foldertree.ReasonSelf {
		return &domain.ValidationError{Message: moveErr.Error()}
	}
	return &domain.ConflictError{
		Message:      moveErr.Error(),
		ResourceType: "folder",
		ResourceID:   folderID,
		Reason:       string(moveErr.Reason),
	}
}

// checkSiblingName rejects a name already used (case-insensitively) by
// another child of parentID.
func checkSiblingName(forest *foldertree.Forest, parentID *string, selfID, name string) error {
	for _, sibling := range forest.Children(parentID) {
		if sibling.ID != selfID && strings.EqualFold(sibling.Name, name) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
				ResourceType: "folder",
				ResourceID:   sibling.ID,
				Reason:       domain.ReasonDuplicate,
			}
		}
	}
	return nil
}
