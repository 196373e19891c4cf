package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/echobench/echobench/internal/config"
	"github.com/echobench/echobench/internal/metric"
	"github.com/echobench/echobench/internal/model"
	"github.com/echobench/echobench/internal/pkg/logger"
	"github.com/echobench/echobench/internal/runner"
	"github.com/echobench/echobench/internal/storage"
	"github.com/echobench/echobench/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(logger.Config(cfg.Log)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Log

	log.Info("starting benchmark worker")

	catalog, err := buildCatalog(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize dataset catalog", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	run := runner.New(log, model.Default, metric.Default, catalog)
	benchmarkWorker := worker.NewBenchmarkWorker(log, run, rdb)
	workerServer := worker.NewServer(log, cfg, benchmarkWorker)

	// Start worker in a goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- workerServer.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("shutting down worker...")
		workerServer.Stop()
	case err := <-errCh:
		if err != nil {
			log.Error("worker server error", zap.Error(err))
		}
	}

	log.Info("worker stopped")
}

func buildCatalog(cfg *config.Config, log *zap.Logger) (storage.Catalog, error) {
	if !cfg.MinIO.Enabled {
		return storage.NewDirCatalog(cfg.Benchmark.CatalogPath, log), nil
	}
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing object storage: %w", err)
	}
	return storage.NewBucketCatalog(client, cfg.MinIO.Bucket, cfg.MinIO.CacheDir, log), nil
}
