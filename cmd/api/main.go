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

	"github.com/llun/fitfeed/internal/api"
	"github.com/llun/fitfeed/internal/config"
	"github.com/llun/fitfeed/internal/fitness"
	"github.com/llun/fitfeed/internal/logger"
	"github.com/llun/fitfeed/internal/mapimage"
	"github.com/llun/fitfeed/internal/queue"
	"github.com/llun/fitfeed/internal/repository"
	"github.com/llun/fitfeed/internal/service"
	"github.com/llun/fitfeed/internal/storage"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(&logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "fitfeed",
		File:        cfg.Logging.File,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
	})
	logger.SetDefaultLogger(appLogger)

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	jobRepo := repository.NewJobRepository(db)
	fileRepo := repository.NewFileRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Initialize blob storage
	objectStorage, err := storage.NewStorage(&storage.Config{
		Backend:   storage.Backend(cfg.Storage.Backend),
		LocalPath: cfg.Storage.LocalPath,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if s3Storage, ok := objectStorage.(*storage.S3Storage); ok {
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
	}

	// Initialize the import pipeline
	renderer := mapimage.NewRenderer(mapimage.Config{
		StaticMapURL: cfg.Map.StaticMapURL,
		APIKey:       cfg.Map.APIKey,
		TileURL:      cfg.Map.TileURL,
		Width:        cfg.Map.Width,
		Height:       cfg.Map.Height,
	})
	parser := fitness.NewParser(fitness.NewFitDecoder())
	importQueue := queue.New(cfg.Import.QueueCapacity, cfg.Import.Workers, cfg.Import.MessageTimeout)
	quotaService := service.NewQuotaService(fileRepo, mediaRepo, cfg.Quota.LimitBytes)
	importService := service.NewImportService(service.ImportDeps{
		Jobs:       jobRepo,
		Files:      fileRepo,
		Media:      mediaRepo,
		Activities: activityRepo,
		Blobs:      objectStorage,
		Publisher:  importQueue,
		Parser:     parser,
		Renderer:   renderer,
		Quota:      quotaService,
	}, cfg.Import.MediaRetryLimit)

	workerCtx, workerCancel := context.WithCancel(appLogger.WithContext(context.Background()))
	defer workerCancel()
	importQueue.Start(workerCtx, importService.HandleMessage)

	// Setup router
	router := api.SetupRouter(importService, importQueue, appLogger, &cfg.Server)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout; drain in-flight import messages
	// before stopping the HTTP listener loses its last responses.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	importQueue.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
