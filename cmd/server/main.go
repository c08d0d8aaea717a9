package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"belongings/internal/auth"
	"belongings/internal/config"
	invRepo "belongings/internal/domain/repositories/inventory"
	aiSvc "belongings/internal/domain/services/enrichment"
	invSvc "belongings/internal/domain/services/inventory"
	"belongings/internal/events"
	"belongings/internal/handler"
	"belongings/internal/handler/sse"
	"belongings/internal/metrics"
	"belongings/internal/middleware"
	"belongings/internal/repository/postgres"
	pgInventory "belongings/internal/repository/postgres/inventory"
	"belongings/internal/service/enrichment"
	"belongings/internal/service/inventory"
	"belongings/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"ai_enabled", cfg.AIEnabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := newVerifier(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer verifier.Close()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	logger.Info("database ready", "folders", tables.Folders, "items", tables.Items)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	folderRepo := pgInventory.NewFolderRepository(repoConfig)
	itemRepo := pgInventory.NewItemRepository(repoConfig)
	photoRepo := pgInventory.NewPhotoRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	m := metrics.New()
	hub := events.NewHub(logger, events.WithDropHook(m.EventDropped))

	store, err := newObjectStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create photo store: %v", err)
	}

	folderService := inventory.NewFolderService(folderRepo, itemRepo, txManager, hub, m, logger)
	itemService := inventory.NewItemService(itemRepo, folderRepo, photoRepo, store, hub, logger)
	photoService := inventory.NewPhotoService(photoRepo, itemRepo, store, hub, cfg.ThumbnailBaseURL, logger)

	enrichService, err := newEnrichmentService(cfg, itemService, photoService, m, logger)
	if err != nil {
		log.Fatalf("Failed to create enrichment service: %v", err)
	}

	handlers := &handler.Handlers{
		Health:     handler.NewHealthHandler(pool),
		Folders:    handler.NewFolderHandler(folderService, logger),
		Items:      handler.NewItemHandler(itemService, logger),
		Photos:     handler.NewPhotoHandler(photoService, logger),
		Enrichment: handler.NewEnrichmentHandler(enrichService, logger),
		Events:     handler.NewEventsHandler(hub, sse.DefaultConfig(), logger),
		Metrics:    m.Handler(),
	}

	mux := http.NewServeMux()
	handlers.Register(mux, middleware.RateLimit(middleware.NewUserRateLimiter(cfg.AIRatePerMinute)))

	// Order: CORS → RequestLogger → Recovery → Auth → Routes
	var h http.Handler = middleware.Route(mux)
	h = middleware.Auth(verifier, logger)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger, m)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      0, // Disabled to allow long-lived SSE streams
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("server shutting down")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}

// newVerifier picks the token verifier. In dev without a JWKS endpoint every
// request runs as DEV_USER_ID.
func newVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.TokenVerifier, error) {
	if cfg.JWKSURL == "" {
		if cfg.Environment == "dev" && cfg.DevUserID != "" {
			logger.Warn("JWKS not configured, authenticating every request as dev user", "user_id", cfg.DevUserID)
			return auth.StaticVerifier{UserID: cfg.DevUserID}, nil
		}
		return nil, errors.New("SUPABASE_URL or JWKS_URL must be set")
	}
	return auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
}

func newObjectStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (invRepo.ObjectStore, error) {
	if cfg.S3Bucket == "" {
		logger.Warn("S3_BUCKET not set, photos are kept in memory")
		return storage.NewMemoryStore("http://localhost:" + cfg.Port + "/photos"), nil
	}
	return storage.NewS3PhotoStore(ctx, cfg, logger)
}

// newEnrichmentService wires the model-backed enrichers. Without an API key
// the service still exists but answers ErrUnavailable.
func newEnrichmentService(
	cfg *config.Config,
	items invSvc.ItemService,
	photos invSvc.PhotoService,
	m *metrics.Metrics,
	logger *slog.Logger,
) (aiSvc.Service, error) {
	timeout := time.Duration(cfg.AIRequestTimeout) * time.Second

	var recognizer aiSvc.Recognizer
	var researcher aiSvc.PriceResearcher
	if cfg.AIEnabled() {
		prompts, err := enrichment.LoadPrompts()
		if err != nil {
			return nil, err
		}
		messages := enrichment.NewMessageCreator(cfg.AnthropicAPIKey)

		var search enrichment.SearchClient
		if cfg.TavilyAPIKey != "" {
			search = enrichment.NewTavilyClient(cfg.TavilyAPIKey, "", 20*time.Second)
		} else {
			logger.Info("TAVILY_API_KEY not set, price estimates run without web search")
		}

		recognizer = enrichment.NewAnthropicRecognizer(messages, cfg.AIModel, prompts, logger)
		researcher = enrichment.NewAnthropicPriceResearcher(messages, search, cfg.AIModel, prompts, logger)
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, AI endpoints are disabled")
	}

	return enrichment.NewService(items, photos, recognizer, researcher, timeout, m, logger), nil
}
