package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/memeverse/internal/api"
	"github.com/timmy/memeverse/internal/config"
	"github.com/timmy/memeverse/internal/logger"
	"github.com/timmy/memeverse/internal/repository"
	"github.com/timmy/memeverse/internal/service"
	"github.com/timmy/memeverse/internal/source"
	"github.com/timmy/memeverse/internal/source/imgflip"
	"github.com/timmy/memeverse/internal/source/staging"
	"github.com/timmy/memeverse/internal/storage"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	envCfg := logger.LoadFromEnv()
	envCfg.Level = cfg.Log.Level
	envCfg.Format = cfg.Log.Format
	envCfg.ServiceName = "memeverse-api"
	appLogger := logger.NewFromEnv(envCfg)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	kv, err := repository.NewKVStore(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize key-value store")
	}

	// Object storage is optional; without it multipart uploads need a url field.
	ctx := context.Background()
	storageCfg := cfg.GetStorageConfig()
	objectStorage, err := storage.NewFromConfig(storageCfg)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if objectStorage != nil {
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
	} else {
		appLogger.Info("Object storage disabled")
	}

	trending := imgflip.NewAdapter(&imgflip.Config{
		BaseURL:    cfg.Trending.BaseURL,
		Timeout:    cfg.Trending.Timeout,
		RetryCount: cfg.Trending.RetryCount,
	})

	sources := map[string]source.TrendingSource{
		trending.GetSourceID(): trending,
	}
	stagingIDs, err := staging.ListStagingSources(cfg.Sources.Staging.BasePath)
	if err != nil {
		appLogger.WithError(err).Warn("Failed to list staging sources")
	}
	for _, id := range stagingIDs {
		adapter := staging.NewAdapter(cfg.Sources.Staging.BasePath, id)
		sources[adapter.GetSourceID()] = adapter
	}

	random := service.NewRandom()
	svc := api.Services{
		Store: service.NewMemeStore(kv, trending, appLogger, &service.MemeStoreConfig{
			MaxSeedLikes: cfg.Trending.MaxLikes,
			Random:       random,
		}),
		Media: service.NewMediaService(objectStorage, appLogger, service.MediaConfig{
			MaxBytes:      cfg.Upload.MaxBytes,
			DefaultWidth:  cfg.Upload.DefaultWidth,
			DefaultHeight: cfg.Upload.DefaultHeight,
		}),
		Users:    service.NewUserService(kv, appLogger, nil),
		Captions: service.NewCaptionService(random, cfg.Caption.Delay),
		Sources:  sources,
		Backend:  cfg.Database.Driver,
	}

	router := api.SetupRouter(svc, cfg.Server, appLogger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":    cfg.Server.Port,
			"mode":    cfg.Server.Mode,
			"backend": cfg.Database.Driver,
			"sources": len(sources),
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
