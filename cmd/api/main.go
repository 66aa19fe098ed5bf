package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/lezatlabs/scheduling-backend/pkg/validator"

	"github.com/lezatlabs/scheduling-backend/internal/adapter/destination"
	"github.com/lezatlabs/scheduling-backend/internal/adapter/handler"
	"github.com/lezatlabs/scheduling-backend/internal/adapter/repository"
	"github.com/lezatlabs/scheduling-backend/internal/infrastructure/cache"
	"github.com/lezatlabs/scheduling-backend/internal/infrastructure/database"
	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/internal/usecase/enrichment"
	"github.com/lezatlabs/scheduling-backend/pkg/clients"
	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Applying migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	transcriptionRepo := repository.NewTranscriptionRepository(db)
	creationRepo := repository.NewActionItemCreationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Initialize provider clients
	log.Println("🌐 Initializing provider clients...")
	fetchers := map[entities.Provider]enrichment.TranscriptFetcher{}
	if firefliesClient := clients.NewFirefliesClient(&cfg.Fireflies); firefliesClient != nil {
		fetchers[entities.ProviderFireflies] = firefliesClient
		log.Println("✅ Fireflies transcript fetch enabled")
	} else {
		log.Println("⚠️  FIREFLIES_API_KEY not set; fireflies transcript fetch disabled")
	}
	if readAIClient := clients.NewReadAIClient(&cfg.ReadAI); readAIClient != nil {
		fetchers[entities.ProviderReadAI] = readAIClient
		log.Println("✅ Read AI transcript fetch enabled")
	} else {
		log.Println("⚠️  READ_AI_API_KEY not set; read.ai transcript fetch disabled")
	}

	var extractor enrichment.TaskExtractor
	if geminiClient := clients.NewGeminiClient(&cfg.Gemini); geminiClient != nil {
		extractor = geminiClient
		log.Println("✅ Gemini task extraction enabled")
	} else {
		log.Println("⚠️  GEMINI_API_KEY not set; task extraction disabled")
	}

	// Initialize enrichment pipeline
	log.Println("⚡ Initializing enrichment pipeline...")
	dispatcher := enrichment.NewDispatcher(destination.NewFactory(cfg), logger)
	backfillLock := cache.NewBackfillLock(redisClient)
	enrichmentService := enrichment.NewService(
		transcriptionRepo,
		creationRepo,
		settingsRepo,
		fetchers,
		extractor,
		dispatcher,
		backfillLock,
		cfg,
		logger,
	)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	transcriptionHandler := handler.NewTranscription(enrichmentService, logger)
	router := handler.NewRouter(cfg, transcriptionHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
