package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"belongings/internal/domain"
	models "belongings/internal/domain/models/inventory"
	invRepo "belongings/internal/domain/repositories/inventory"
	"belongings/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) invRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// folderColumns selects a folder row with its computed counts. The folder
// table must be aliased as f.
func (r *PostgresFolderRepository) folderColumns() string {
	return fmt.Sprintf(`
		f.id, f.user_id, f.parent_id, f.name,
		(SELECT COUNT(*) FROM %s i WHERE i.folder_id = f.id) AS item_count,
		(SELECT COUNT(*) FROM %s c WHERE c.parent_id = f.id) AS child_count,
		f.created_at, f.updated_at`, r.tables.Items, r.tables.Folders)
}

func scanFolder(row interface{ Scan(...interface{}) error }, folder *models.Folder) error {
	return row.Scan(
		&folder.ID,
		&folder.UserID,
		&folder.ParentID,
		&folder.Name,
		&folder.ItemCount,
		&folder.ChildCount,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	now := time.Now()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, parent_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.UserID,
		folder.ParentID,
		folder.Name,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.duplicateNameError(ctx, folder)
		}
		if postgres.IsPgForeignKeyError(err) {
			return &domain.NotFoundError{Message: "parent folder not found"}
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, userID, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s f
		WHERE f.id = $1 AND f.user_id = $2
	`, r.folderColumns(), r.tables.Folders)

	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanFolder(executor.QueryRow(ctx, query, id, userID), &folder); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// Update updates a folder's name and parent
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	folder.UpdatedAt = time.Now()

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, parent_id = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.Name,
		folder.ParentID,
		folder.UpdatedAt,
		folder.ID,
		folder.UserID,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.duplicateNameError(ctx, folder)
		}
		if postgres.IsPgForeignKeyError(err) {
			return &domain.NotFoundError{Message: "parent folder not found"}
		}
		if postgres.IsPgCheckError(err) {
			return &domain.ValidationError{Message: "cannot move folder into itself"}
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a folder
func (r *PostgresFolderRepository) Delete(ctx context.Context, userID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      "folder still contains subfolders",
				ResourceType: "folder",
				ResourceID:   id,
				Reason:       domain.ReasonNotEmpty,
			}
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteMany deletes a folder subtree in one statement so the self-referencing
// foreign key is checked only once every row is gone.
func (r *PostgresFolderRepository) DeleteMany(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND id = ANY($2)`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID, ids); err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      "folder tree changed while deleting, try again",
				ResourceType: "folder",
			}
		}
		return fmt.Errorf("delete folders: %w", err)
	}

	return nil
}

// ListByUser returns every folder of the user, ordered by name
func (r *PostgresFolderRepository) ListByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s f
		WHERE f.user_id = $1
		ORDER BY lower(f.name), f.id
	`, r.folderColumns(), r.tables.Folders)

	return r.queryFolders(ctx, query, userID)
}

// ListChildren lists the immediate children of parentID (nil = root level)
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s f
		WHERE f.user_id = $1 AND f.parent_id IS NOT DISTINCT FROM $2
		ORDER BY lower(f.name), f.id
	`, r.folderColumns(), r.tables.Folders)

	return r.queryFolders(ctx, query, userID, parentID)
}

// LockForest takes a transaction-scoped advisory lock keyed by table and user.
func (r *PostgresFolderRepository) LockForest(ctx context.Context, userID string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, r.tables.Folders+":"+userID); err != nil {
		return fmt.Errorf("lock folder forest: %w", err)
	}
	return nil
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, query string, args ...interface{}) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		var folder models.Folder
		if err := scanFolder(rows, &folder); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// duplicateNameError builds a ConflictError pointing at the sibling that
// already uses the folder's name.
func (r *PostgresFolderRepository) duplicateNameError(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE user_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND lower(name) = lower($3)
	`, r.tables.Folders)

	var existingID string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, folder.UserID, folder.ParentID, folder.Name).Scan(&existingID); err != nil {
		r.logger.Debug("lookup of duplicate folder failed", "name", folder.Name, "error", err)
		return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
	}

	return &domain.ConflictError{
		Message:      fmt.Sprintf("folder '%s' already exists", folder.Name),
		ResourceType: "folder",
		ResourceID:   existingID,
		Reason:       domain.ReasonDuplicate,
	}
}
