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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/logging"
	"yatube/internal/router"
	"yatube/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Yatube server")

	// Initialize Database
	gdb, err := db.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := db.SeedGroups(gdb, db.DefaultGroups, logger); err != nil {
		logger.Fatal("Failed to seed groups", zap.Error(err))
	}

	ctx := context.Background()

	pageCache, err := newPageCache(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Fatal("Failed to initialize page cache", zap.Error(err))
	}

	images, err := services.NewImageStore(ctx, cfg.Media)
	if err != nil {
		logger.Fatal("Failed to initialize image storage", zap.Error(err))
	}
	logger.Info("Image storage ready", zap.String("storage", cfg.Media.Storage))

	gin.SetMode(cfg.Server.Mode)
	r := router.New(router.Deps{
		Config: cfg,
		DB:     gdb,
		Cache:  pageCache,
		Images: images,
		Log:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newPageCache uses Redis when configured and an in-process LRU otherwise.
func newPageCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (cache.PageCache, error) {
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Page cache backed by Redis")
		return rc, nil
	}
	logger.Info("Page cache in memory", zap.Int("size", cfg.Size))
	return cache.NewMemory(cfg.Size)
}
