package inventory

import (
	"context"
	"fmt"
	"time"

	"belongings/internal/domain"
	models "belongings/internal/domain/models/inventory"
	invRepo "belongings/internal/domain/repositories/inventory"
	"belongings/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPhotoRepository implements the PhotoRepository interface
type PostgresPhotoRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(config *postgres.RepositoryConfig) invRepo.PhotoRepository {
	return &PostgresPhotoRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanPhoto(row interface{ Scan(...interface{}) error }, photo *models.Photo) error {
	return row.Scan(
		&photo.ID,
		&photo.ItemID,
		&photo.UserID,
		&photo.ObjectKey,
		&photo.ContentType,
		&photo.SizeBytes,
		&photo.Position,
		&photo.CreatedAt,
	)
}

// Create appends a photo after the item's existing photos
func (r *PostgresPhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	photo.CreatedAt = time.Now()

	query := fmt.Sprintf(`
		INSERT INTO %s (item_id, user_id, object_key, content_type, size_bytes, position, created_at)
		SELECT $1, $2, $3, $4, $5, COALESCE(MAX(position) + 1, 0), $6
		FROM %s
		WHERE item_id = $1
		RETURNING id, position
	`, r.tables.Photos, r.tables.Photos)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		photo.ItemID,
		photo.UserID,
		photo.ObjectKey,
		photo.ContentType,
		photo.SizeBytes,
		photo.CreatedAt,
	).Scan(&photo.ID, &photo.Position)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("item %s: %w", photo.ItemID, domain.ErrNotFound)
		}
		return fmt.Errorf("create photo: %w", err)
	}

	return nil
}

// GetByID retrieves a photo by ID
func (r *PostgresPhotoRepository) GetByID(ctx context.Context, userID, id string) (*models.Photo, error) {
	query := fmt.Sprintf(`
		SELECT id, item_id, user_id, object_key, content_type, size_bytes, position, created_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Photos)

	var photo models.Photo
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanPhoto(executor.QueryRow(ctx, query, id, userID), &photo); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("photo %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get photo: %w", err)
	}

	return &photo, nil
}

// ListByItem lists an item's photos by position
func (r *PostgresPhotoRepository) ListByItem(ctx context.Context, userID, itemID string) ([]models.Photo, error) {
	query := fmt.Sprintf(`
		SELECT id, item_id, user_id, object_key, content_type, size_bytes, position, created_at
		FROM %s
		WHERE item_id = $1 AND user_id = $2
		ORDER BY position, created_at
	`, r.tables.Photos)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, itemID, userID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos := []models.Photo{}
	for rows.Next() {
		var photo models.Photo
		if err := scanPhoto(rows, &photo); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}

	return photos, nil
}

// CountByItem counts an item's photos
func (r *PostgresPhotoRepository) CountByItem(ctx context.Context, userID, itemID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE item_id = $1 AND user_id = $2`, r.tables.Photos)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, itemID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}
	return count, nil
}

// Delete deletes a photo row
func (r *PostgresPhotoRepository) Delete(ctx context.Context, userID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Photos)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("photo %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
