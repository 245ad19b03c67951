package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bilgisen/addconnect/internal/api"
	"github.com/bilgisen/addconnect/internal/cache"
	"github.com/bilgisen/addconnect/internal/config"
	"github.com/bilgisen/addconnect/internal/logger"
	"github.com/bilgisen/addconnect/internal/preview"
	"github.com/bilgisen/addconnect/internal/service"
	"github.com/bilgisen/addconnect/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: "stdout",
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting application...")

	var previewCache cache.PreviewCache
	if cfg.RedisURL != "" {
		previewCache, err = cache.NewRedisClient(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis client")
		}
	} else {
		log.Warn().Msg("REDIS_URL not set, using in-memory preview cache")
		previewCache = cache.NewMemoryCache()
	}
	defer func() {
		log.Info().Msg("Closing preview cache...")
		if err := previewCache.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing preview cache")
		}
	}()

	store, err := storage.NewStorage(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize blob store")
	}

	previews := preview.NewService(preview.NewFetcher(cfg.PreviewTimeout), previewCache, cfg.PreviewCacheTTL)
	handlers := api.NewHandlers(service.NewContentService(store, blobs), previews)

	app := api.NewApp(handlers, api.ServerConfig{
		AdminAPIKey:  cfg.AdminAPIKey,
		BodyLimit:    int(cfg.MaxFileSize),
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	})

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("blob_backend", cfg.BlobBackend).
			Str("storage_path", cfg.StoragePath).
			Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func newBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	if cfg.BlobBackend == "s3" {
		return storage.NewS3BlobStore(context.Background(), storage.S3Config{
			Endpoint:  cfg.R2Endpoint,
			Region:    cfg.R2Region,
			Bucket:    cfg.R2Bucket,
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			KeyPrefix: "uploads/",
		})
	}
	return storage.NewLocalBlobStore(filepath.Join(cfg.DataDir, "uploads"))
}
