package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/echobench/echobench/internal/backend"
	"github.com/echobench/echobench/internal/benchmark"
	"github.com/echobench/echobench/internal/config"
	"github.com/echobench/echobench/internal/domain"
	"github.com/echobench/echobench/internal/pkg/logger"
	"github.com/echobench/echobench/internal/report"
	"github.com/echobench/echobench/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "echobench: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := logger.Init(logger.Config(cfg.Log)); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Log

	ctx := context.Background()

	catalog, minioClient, err := buildCatalog(cfg, log)
	if err != nil {
		return err
	}

	opts := benchmark.Options{
		MaxEntities: cfg.Benchmark.MaxEntities,
		SampleSize:  cfg.Benchmark.SampleSize,
		Workers:     cfg.Benchmark.Workers,
		Catalog:     catalog,
		OutputPath:  cfg.Benchmark.OutputPath,
		Logger:      log,
	}
	if len(cfg.Benchmark.Models) > 0 {
		opts.Models = domain.SpecsFromNames(cfg.Benchmark.Models)
	}
	if len(cfg.Benchmark.Datasets) > 0 {
		opts.Datasets = domain.SpecsFromNames(cfg.Benchmark.Datasets)
	}
	if len(cfg.Benchmark.Metrics) > 0 {
		opts.Metrics = domain.SpecsFromNames(cfg.Benchmark.Metrics)
	}

	if cfg.Benchmark.Distributed {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		client := asynq.NewClient(redisOpt)
		defer client.Close()
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		var distOpts []backend.DistributedOption
		if cfg.Benchmark.GatherTimeout > 0 {
			distOpts = append(distOpts, backend.WithGatherTimeout(cfg.Benchmark.GatherTimeout))
		}
		opts.Backend = backend.NewDistributed(log, client, rdb, cfg.Worker.Queue, distOpts...)
	}

	started := time.Now()
	rep, err := benchmark.Run(ctx, opts)
	if err != nil {
		return err
	}
	log.Info("benchmark complete",
		zap.String("run_id", rep.RunID),
		zap.Int("rows", len(rep.Rows)),
		zap.Duration("elapsed", time.Since(started)),
	)

	fmt.Print(report.Markdown(rep))

	if cfg.MinIO.Enabled && cfg.MinIO.ReportKey != "" && minioClient != nil {
		if err := report.Upload(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.ReportKey, rep); err != nil {
			return err
		}
		log.Info("report uploaded",
			zap.String("bucket", cfg.MinIO.Bucket),
			zap.String("key", cfg.MinIO.ReportKey),
		)
	}

	if cfg.Postgres.Enabled {
		store, err := report.OpenStore(ctx, cfg.Postgres.DSN, log)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(ctx, rep); err != nil {
			return err
		}
	}

	return nil
}

// buildCatalog selects the dataset catalog: an S3-compatible bucket with
// a local cache when object storage is configured, a plain directory
// otherwise.
func buildCatalog(cfg *config.Config, log *zap.Logger) (storage.Catalog, *minio.Client, error) {
	if !cfg.MinIO.Enabled {
		return storage.NewDirCatalog(cfg.Benchmark.CatalogPath, log), nil, nil
	}
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing object storage: %w", err)
	}
	return storage.NewBucketCatalog(client, cfg.MinIO.Bucket, cfg.MinIO.CacheDir, log), client, nil
}
