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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/tradejournal/internal/config"
	"github.com/tradejournal/internal/handler"
	"github.com/tradejournal/internal/middleware"
	"github.com/tradejournal/internal/models"
	"github.com/tradejournal/internal/repository"
	"github.com/tradejournal/internal/service"
	"github.com/tradejournal/internal/stream"
	"github.com/tradejournal/internal/worker"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize file logging
	if err := middleware.InitLogger(cfg.Log.Dir); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis
	rdb := initRedis(cfg)

	// Auto migrate database
	if err := autoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	// Background worker batching last-used touches from key resolution
	keyTouchWorker := worker.NewKeyTouchWorker(apiKeyRepo, 5*time.Second)
	go keyTouchWorker.Start()

	// Live trade stream hub
	hub := stream.NewHub()

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, keyTouchWorker)
	statsService := service.NewStatsService(tradeRepo, rdb)
	tradeService := service.NewTradeService(tradeRepo, statsService, hub, cfg.Ingest.DefaultPlatform)
	feedbackService := service.NewFeedbackService(feedbackRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	apiKeyHandler := handler.NewAPIKeyHandler(apiKeyService)
	tradeHandler := handler.NewTradeHandler(tradeService)
	statsHandler := handler.NewStatsHandler(statsService)
	adminHandler := handler.NewAdminHandler(authService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	streamHandler := handler.NewStreamHandler(authService, hub)
	ingestHandler := handler.NewIngestHandler(tradeService)

	// Create Gin router
	router := gin.Default()

	// Add request logging middleware
	router.Use(middleware.RequestLoggerMiddleware())

	// Add CORS middleware
	router.Use(corsMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"version":    Version,
			"commit":     Commit,
			"build_time": BuildTime,
			"time":       time.Now().Unix(),
		})
	})

	// Dashboard API routes
	authMiddleware := middleware.AuthMiddleware(authService)
	adminMiddleware := middleware.RequireAdmin()

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1, authMiddleware)
		apiKeyHandler.RegisterRoutes(v1, authMiddleware)
		tradeHandler.RegisterRoutes(v1, authMiddleware)
		statsHandler.RegisterRoutes(v1, authMiddleware)
		adminHandler.RegisterRoutes(v1, authMiddleware, adminMiddleware)
		feedbackHandler.RegisterRoutes(v1, authMiddleware, adminMiddleware)
		streamHandler.RegisterRoutes(v1)
	}

	// Bot-facing ingestion routes, authenticated by API key
	apiKeyAuth := middleware.APIKeyAuthMiddleware(apiKeyService)
	ingestHandler.RegisterRoutes(router, apiKeyAuth)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Flush pending key touches and drop stream subscribers
	keyTouchWorker.Stop()
	hub.Close()

	// Close Redis connection
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}

	log.Println("Server exited properly")
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.Server.Mode == "release" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.APIKey{},
		&models.Trade{},
		&models.Feedback{},
		&models.FeedbackVote{},
		&models.FeedbackComment{},
	)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, x-api-key")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
