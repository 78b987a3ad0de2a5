package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/pronounce/backend/docs"
	"github.com/pronounce/backend/internal/auth"
	"github.com/pronounce/backend/internal/config"
	"github.com/pronounce/backend/internal/handlers"
	"github.com/pronounce/backend/internal/logger"
	"github.com/pronounce/backend/internal/middleware"
	"github.com/pronounce/backend/internal/repositories"
	"github.com/pronounce/backend/internal/services"
	"github.com/pronounce/backend/internal/storage"
	"github.com/pronounce/backend/internal/token"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const (
	maxRequestSize = 1 * 1024 * 1024 // 1MB, audio is uploaded to the ASR worker, not here
	// accessTokenExpiry only matters for tokens generated locally; issued tokens carry their own exp
	accessTokenExpiry = 15 * time.Minute
)

// @title Pronunciation Practice API
// @version 1.0
// @description API for lesson attempts, audio submissions, validation verdicts and teacher review

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting pronunciation backend")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize artifact storage
	ctx := context.Background()
	var minioCfg *storage.MinIOConfig
	if cfg.Storage.Backend == config.StorageBackendMinIO {
		c := storage.MinIOConfig(cfg.Storage.MinIO)
		minioCfg = &c
	}
	artifacts, err := storage.Open(ctx, cfg.Storage.AudioPath, minioCfg)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Initialize tokens
	codec := token.NewCodec(cfg.Token.Secret)
	accessTokens := auth.NewAccessTokens(cfg.Auth.JWTSecret, accessTokenExpiry)

	// Initialize repositories
	lessonRepo := repositories.NewLessonRecordRepository(db)
	referenceRepo := repositories.NewReferenceRecordRepository(db)
	audioRepo := repositories.NewAudioRecordRepository(db)
	promptRepo := repositories.NewPromptRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)

	// Initialize services
	recordService := services.NewRecordService(lessonRepo, referenceRepo, audioRepo, promptRepo, codec, cfg.Token.MaxAge)
	verdictService := services.NewVerdictService(lessonRepo, referenceRepo, audioRepo, promptRepo, codec, cfg.Token.MaxAge)
	reviewService := services.NewReviewService(lessonRepo, referenceRepo, audioRepo, promptRepo, reviewRepo, artifacts, codec, cfg.Token.MaxAge)

	// Initialize middleware
	learnerAuth := middleware.RequireRole(accessTokens, auth.RoleLearner)
	teacherAuth := middleware.RequireRole(accessTokens, auth.RoleTeacher)
	apiKeyAuth := middleware.APIKey(cfg.Callback.APIKey)
	httpMetrics := middleware.NewHTTPMetrics(prometheus.DefaultRegisterer)
	if cfg.Callback.APIKey == "" {
		logger.Logger.Warn("CALLBACK_API_KEY is not set, verdict callback is unauthenticated")
	}

	// Initialize handlers
	recordHandler := handlers.NewRecordHandler(recordService, logger.Logger)
	callbackHandler := handlers.NewCallbackHandler(verdictService, logger.Logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, recordService, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger.Logger))
	r.Use(middleware.Recovery(logger.Logger))
	r.Use(httpMetrics.Middleware)
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.RequestSizeLimit(maxRequestSize))

	// Metrics and documentation
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Verdict callback from the validation pipeline, not rate limited
	callbackHandler.RegisterRoutes(r, apiKeyAuth)

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(100, time.Minute))
		recordHandler.RegisterRoutes(r, learnerAuth, teacherAuth)
		reviewHandler.RegisterRoutes(r, teacherAuth)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "pronounce_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Running from cmd/api
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
