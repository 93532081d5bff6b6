package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/robostage/backend/config"
	"github.com/robostage/backend/db"
	"github.com/robostage/backend/handlers"
	"github.com/robostage/backend/live"
	"github.com/robostage/backend/middleware"
	"github.com/robostage/backend/repositories"
	"github.com/robostage/backend/routes"
	"github.com/robostage/backend/services"
	"github.com/robostage/backend/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Object storage is optional: without R2 credentials the backend runs
	// with logo uploads disabled.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewR2Uploader(storage.R2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("object storage not configured, logo uploads disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run()

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	stageRepo := repositories.NewPostgresStageRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey)
	teamService := services.NewTeamService(teamRepo, uploader, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, stageRepo)
	bracketService := services.NewBracketService(stageRepo, matchRepo)
	stageService := services.NewStageService(dbConn, stageRepo, matchRepo, bracketService, hub, logger)

	authHandler := handlers.NewAuthHandler(authService)
	teamHandler := handlers.NewTeamHandler(teamService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, stageService)
	stageHandler := handlers.NewStageHandler(stageService, bracketService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, stageService, logger)

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		middleware.NewAuth(cfg.JWTSecretKey),
		cfg.CORSOrigins,
		authHandler,
		teamHandler,
		tournamentHandler,
		stageHandler,
		webSocketHandler,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
	}
	logger.Info("server stopped")
}
