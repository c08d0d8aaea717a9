package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"belongings/internal/domain"
	models "belongings/internal/domain/models/inventory"
	invRepo "belongings/internal/domain/repositories/inventory"
	"belongings/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresItemRepository implements the ItemRepository interface
type PostgresItemRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(config *postgres.RepositoryConfig) invRepo.ItemRepository {
	return &PostgresItemRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// itemColumns selects an item row with its photo count. The item table must
// be aliased as i.
func (r *PostgresItemRepository) itemColumns() string {
	return fmt.Sprintf(`
		i.id, i.user_id, i.folder_id, i.name, i.description, i.brand, i.model,
		i.serial_number, i.category, i.condition, i.quantity, i.purchase_price::float8,
		i.purchase_date, i.estimated_value::float8, i.currency, i.tags, i.notes,
		(SELECT COUNT(*) FROM %s p WHERE p.item_id = i.id) AS photo_count,
		i.created_at, i.updated_at`, r.tables.Photos)
}

func scanItem(row interface{ Scan(...interface{}) error }, item *models.Item) error {
	return row.Scan(
		&item.ID,
		&item.UserID,
		&item.FolderID,
		&item.Name,
		&item.Description,
		&item.Brand,
		&item.Model,
		&item.SerialNumber,
		&item.Category,
		&item.Condition,
		&item.Quantity,
		&item.PurchasePrice,
		&item.PurchaseDate,
		&item.EstimatedValue,
		&item.Currency,
		&item.Tags,
		&item.Notes,
		&item.PhotoCount,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
}

// Create creates a new item
func (r *PostgresItemRepository) Create(ctx context.Context, item *models.Item) error {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Tags == nil {
		item.Tags = []string{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			user_id, folder_id, name, description, brand, model, serial_number,
			category, condition, quantity, purchase_price, purchase_date,
			estimated_value, currency, tags, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		item.UserID,
		item.FolderID,
		item.Name,
		item.Description,
		item.Brand,
		item.Model,
		item.SerialNumber,
		item.Category,
		item.Condition,
		item.Quantity,
		item.PurchasePrice,
		item.PurchaseDate,
		item.EstimatedValue,
		item.Currency,
		item.Tags,
		item.Notes,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.NotFoundError{Message: "folder not found"}
		}
		return fmt.Errorf("create item: %w", err)
	}

	return nil
}

// GetByID retrieves an item by ID
func (r *PostgresItemRepository) GetByID(ctx context.Context, userID, id string) (*models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s i
		WHERE i.id = $1 AND i.user_id = $2
	`, r.itemColumns(), r.tables.Items)

	var item models.Item
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanItem(executor.QueryRow(ctx, query, id, userID), &item); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return &item, nil
}

// Update writes every mutable column
func (r *PostgresItemRepository) Update(ctx context.Context, item *models.Item) error {
	item.UpdatedAt = time.Now()
	if item.Tags == nil {
		item.Tags = []string{}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, name = $2, description = $3, brand = $4, model = $5,
			serial_number = $6, category = $7, condition = $8, quantity = $9,
			purchase_price = $10, purchase_date = $11, estimated_value = $12,
			currency = $13, tags = $14, notes = $15, updated_at = $16
		WHERE id = $17 AND user_id = $18
	`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		item.FolderID,
		item.Name,
		item.Description,
		item.Brand,
		item.Model,
		item.SerialNumber,
		item.Category,
		item.Condition,
		item.Quantity,
		item.PurchasePrice,
		item.PurchaseDate,
		item.EstimatedValue,
		item.Currency,
		item.Tags,
		item.Notes,
		item.UpdatedAt,
		item.ID,
		item.UserID,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.NotFoundError{Message: "folder not found"}
		}
		return fmt.Errorf("update item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes an item; its photo rows cascade
func (r *PostgresItemRepository) Delete(ctx context.Context, userID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List returns one page of items plus the total number of matches
func (r *PostgresItemRepository) List(ctx context.Context, opts *models.ItemListOptions) (*models.ItemPage, error) {
	where, args := buildItemFilter(opts)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s i WHERE %s`, r.tables.Items, where)

	executor := postgres.GetExecutor(ctx, r.pool)
	var total int
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	limitArg := len(args) + 1
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s i
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, r.itemColumns(), r.tables.Items, where, itemOrderBy(opts), limitArg, limitArg+1)

	rows, err := executor.Query(ctx, query, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := scanItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return models.NewItemPage(items, total, opts), nil
}

// UnfileByFolders moves every item in folderIDs to the unfiled list
func (r *PostgresItemRepository) UnfileByFolders(ctx context.Context, userID string, folderIDs []string) (int64, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = NULL, updated_at = NOW()
		WHERE user_id = $1 AND folder_id = ANY($2)
	`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, userID, folderIDs)
	if err != nil {
		return 0, fmt.Errorf("unfile items: %w", err)
	}

	return result.RowsAffected(), nil
}

// CountUnfiled counts items that are not in any folder
func (r *PostgresItemRepository) CountUnfiled(ctx context.Context, userID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = $1 AND folder_id IS NULL`, r.tables.Items)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unfiled items: %w", err)
	}
	return count, nil
}

// buildItemFilter turns list options into a WHERE clause and its arguments.
func buildItemFilter(opts *models.ItemListOptions) (string, []interface{}) {
	conditions := []string{"i.user_id = $1"}
	args := []interface{}{opts.UserID}

	add := func(format string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}

	switch {
	case opts.Unfiled:
		conditions = append(conditions, "i.folder_id IS NULL")
	case opts.FolderID != nil:
		add("i.folder_id = $%d", *opts.FolderID)
	}

	if q := strings.TrimSpace(opts.Query); q != "" {
		add("i.search_vector @@ websearch_to_tsquery('simple', $%d)", q)
	}
	if opts.Category != "" {
		add("lower(i.category) = lower($%d)", opts.Category)
	}
	if opts.Tag != "" {
		add("$%d = ANY(i.tags)", opts.Tag)
	}

	return strings.Join(conditions, " AND "), args
}

// itemOrderBy maps the sort option to an ORDER BY clause. The id tiebreak
// keeps pagination stable.
func itemOrderBy(opts *models.ItemListOptions) string {
	dir := "DESC"
	if opts.Ascending {
		dir = "ASC"
	}

	var column string
	switch opts.Sort {
	case models.SortCreated:
		column = "i.created_at"
	case models.SortName:
		column = "lower(i.name)"
	case models.SortValue:
		column = "i.estimated_value"
	default:
		column = "i.updated_at"
	}

	return fmt.Sprintf("%s %s NULLS LAST, i.id %s", column, dir, dir)
}
