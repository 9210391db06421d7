package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rogerio-castellano/catalog-service/internal/catalog"
	"github.com/rogerio-castellano/catalog-service/internal/config"
	"github.com/rogerio-castellano/catalog-service/internal/db"
	"github.com/rogerio-castellano/catalog-service/internal/http/handlers"
	rl "github.com/rogerio-castellano/catalog-service/internal/http/rate_limiter"
	"github.com/rogerio-castellano/catalog-service/internal/http/router"
	"github.com/rogerio-castellano/catalog-service/internal/logger"
	"github.com/rogerio-castellano/catalog-service/internal/redissvc"
	"github.com/rogerio-castellano/catalog-service/internal/repo"
	"github.com/rogerio-castellano/catalog-service/internal/storage"
	"go.uber.org/zap"
)

// @title Catalog Service API
// @version 1.0
// @description REST API for managing catalog products and their images.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("invalid configuration", zap.Error(err))
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("could not build logger", zap.Error(err))
	}
	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver, err := db.ParseDriver(cfg.DatabaseDriver)
	if err != nil {
		return err
	}
	database, err := db.Connect(driver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.EnsureSchema(ctx, database, driver); err != nil {
		return err
	}
	log.Info("database ready", zap.String("driver", string(driver)))

	var products repo.ProductRepository = repo.NewSQLProductRepository(database, driver, cfg.QueryTimeout)
	if cfg.RedisURL != "" {
		rdb, err := redissvc.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		products = redissvc.NewCachedProductRepository(products, redissvc.NewRedisService(rdb, cfg.CacheTTL), log)
		log.Info("product cache enabled", zap.Duration("ttl", cfg.CacheTTL))
	}

	opts := router.Options{Log: log, TrustProxy: cfg.TrustProxy}

	var images storage.ImageStore
	switch cfg.ImageStorage {
	case config.StorageS3:
		client, err := storage.NewS3Client(ctx, storage.S3Options{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.AWSEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return err
		}
		images = storage.NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix, cfg.AWSRegion, cfg.S3PublicURL)
		log.Info("storing images in s3", zap.String("bucket", cfg.S3Bucket))
	default:
		local, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix)
		if err != nil {
			return err
		}
		images = local
		opts.UploadDir = local.Dir()
		opts.UploadURLPrefix = local.Prefix()
		log.Info("storing images on disk", zap.String("dir", local.Dir()))
	}

	if cfg.RateLimitRPS > 0 {
		limiter := rl.New(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go limiter.StartVisitorCleanupLoop(ctx)
		opts.RateLimiter = limiter
	}

	svc := catalog.NewService(products, images, log)
	h := handlers.NewHandler(svc, database, log, cfg.MaxUploadBytes)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.NewRouter(h, opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
