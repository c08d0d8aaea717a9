package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the inventory tables and indexes if they don't exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, prefix string) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			parent_id UUID REFERENCES ` + tables.Folders + `(id),
			name TEXT NOT NULL CHECK (char_length(name) BETWEEN 1 AND 255),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (parent_id IS NULL OR parent_id <> id)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Items + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			folder_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE SET NULL,
			name TEXT NOT NULL CHECK (char_length(name) BETWEEN 1 AND 255),
			description TEXT NOT NULL DEFAULT '',
			brand TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			serial_number TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			condition TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 0),
			purchase_price NUMERIC(12,2),
			purchase_date DATE,
			estimated_value NUMERIC(12,2),
			currency TEXT NOT NULL DEFAULT 'USD',
			tags TEXT[] NOT NULL DEFAULT '{}',
			notes TEXT NOT NULL DEFAULT '',
			search_vector TSVECTOR GENERATED ALWAYS AS (
				setweight(to_tsvector('simple', coalesce(name, '')), 'A') ||
				setweight(to_tsvector('simple', coalesce(brand, '')), 'B') ||
				setweight(to_tsvector('simple', coalesce(description, '')), 'C') ||
				setweight(to_tsvector('simple', coalesce(notes, '')), 'D')
			) STORED,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Photos + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			item_id UUID NOT NULL REFERENCES ` + tables.Items + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			object_key TEXT NOT NULL UNIQUE,
			content_type TEXT NOT NULL,
			size_bytes BIGINT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sfolders_user_parent ON %s(user_id, parent_id)`, prefix, tables.Folders),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%sfolders_sibling_name ON %s(user_id, parent_id, lower(name)) WHERE parent_id IS NOT NULL`, prefix, tables.Folders),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%sfolders_root_name ON %s(user_id, lower(name)) WHERE parent_id IS NULL`, prefix, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sitems_user_folder ON %s(user_id, folder_id)`, prefix, tables.Items),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sitems_user_updated ON %s(user_id, updated_at DESC)`, prefix, tables.Items),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sitems_search ON %s USING GIN(search_vector)`, prefix, tables.Items),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sitems_tags ON %s USING GIN(tags)`, prefix, tables.Items),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sitem_photos_item ON %s(item_id, position)`, prefix, tables.Photos),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops the inventory tables, children first.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.Photos, tables.Items, tables.Folders} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
