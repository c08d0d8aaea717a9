package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"belongings/internal/auth"
	"belongings/internal/config"
	"belongings/internal/events"
	"belongings/internal/metrics"
	"belongings/internal/repository/postgres"
	pgInventory "belongings/internal/repository/postgres/inventory"
	"belongings/internal/service/inventory"
	"belongings/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed folders and items")
	clearData := flag.Bool("clear-data", false, "Clear the seed user's folders and items (keep schema)")
	userID := flag.String("user", "", "User ID to seed for (defaults to DEV_USER_ID, or the SEED_EMAIL account)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: cannot run --drop-tables or --clear-data in production")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		logger.Info("dropping tables", "prefix", cfg.TablePrefix)
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	logger.Info("schema ready", "prefix", cfg.TablePrefix)
	if *schemaOnly {
		return
	}

	owner, err := resolveUser(ctx, *userID, cfg)
	if err != nil {
		log.Fatalf("Failed to resolve seed user: %v", err)
	}

	if err := clearUserData(ctx, pool, tables, owner); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	if *clearData {
		logger.Info("data cleared", "user_id", owner)
		return
	}

	repoConfig := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
	folderRepo := pgInventory.NewFolderRepository(repoConfig)
	itemRepo := pgInventory.NewItemRepository(repoConfig)
	photoRepo := pgInventory.NewPhotoRepository(repoConfig)
	hub := events.NewHub(logger)

	folders := inventory.NewFolderService(folderRepo, itemRepo, postgres.NewTransactionManager(pool, logger), hub, metrics.New(), logger)
	items := inventory.NewItemService(itemRepo, folderRepo, photoRepo, storage.NewMemoryStore(""), hub, logger)

	sd := &seeder{folders: folders, items: items, userID: owner, logger: logger}
	if err := sd.run(ctx, seedFolders()); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	logger.Info("seeding complete", "user_id", owner, "folders", sd.folderCount, "items", sd.itemCount)
}

// resolveUser picks the owner of the seeded rows. With Supabase admin
// credentials and SEED_EMAIL set, the account is created when missing.
func resolveUser(ctx context.Context, flagUser string, cfg *config.Config) (string, error) {
	if flagUser != "" {
		return flagUser, nil
	}
	if cfg.DevUserID != "" {
		return cfg.DevUserID, nil
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	serviceKey := os.Getenv("SUPABASE_SERVICE_KEY")
	email := os.Getenv("SEED_EMAIL")
	if supabaseURL == "" || serviceKey == "" || email == "" {
		return "", errMissingUser
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "belongings-seed-password"
	}
	return auth.NewAdminClient(supabaseURL, serviceKey).EnsureUser(ctx, email, password)
}

// clearUserData removes every item and folder owned by userID. Photos go
// with their items.
func clearUserData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, userID string) error {
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Items+" WHERE user_id = $1", userID); err != nil {
		return err
	}
	_, err := pool.Exec(ctx, "DELETE FROM "+tables.Folders+" WHERE user_id = $1", userID)
	return err
}
