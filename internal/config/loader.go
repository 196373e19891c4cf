package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Optionally read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/echobench")

	// Ignore error if config file not found
	_ = v.ReadInConfig()

	var cfg Config

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	// Redis
	cfg.Redis.Host = v.GetString("redis_host")
	cfg.Redis.Port = v.GetInt("redis_port")
	cfg.Redis.Password = v.GetString("redis_password")
	cfg.Redis.DB = v.GetInt("redis_db")

	// Worker
	cfg.Worker.Concurrency = v.GetInt("worker_concurrency")
	cfg.Worker.Queue = v.GetString("worker_queue")

	// Benchmark
	cfg.Benchmark.Models = v.GetStringSlice("benchmark_models")
	cfg.Benchmark.Datasets = v.GetStringSlice("benchmark_datasets")
	cfg.Benchmark.Metrics = v.GetStringSlice("benchmark_metrics")
	cfg.Benchmark.CatalogPath = v.GetString("benchmark_catalog_path")
	cfg.Benchmark.OutputPath = v.GetString("benchmark_output_path")
	cfg.Benchmark.MaxEntities = v.GetInt("benchmark_max_entities")
	cfg.Benchmark.SampleSize = v.GetInt("benchmark_sample_size")
	cfg.Benchmark.Distributed = v.GetBool("benchmark_distributed")
	cfg.Benchmark.Workers = v.GetInt("benchmark_workers")
	cfg.Benchmark.GatherTimeout = time.Duration(v.GetInt("benchmark_gather_timeout_seconds")) * time.Second

	// MinIO
	cfg.MinIO.Enabled = v.GetBool("minio_enabled")
	cfg.MinIO.Endpoint = v.GetString("minio_endpoint")
	cfg.MinIO.AccessKey = v.GetString("minio_access_key")
	cfg.MinIO.SecretKey = v.GetString("minio_secret_key")
	cfg.MinIO.UseSSL = v.GetBool("minio_use_ssl")
	cfg.MinIO.Bucket = v.GetString("minio_bucket")
	cfg.MinIO.CacheDir = v.GetString("minio_cache_dir")
	cfg.MinIO.ReportKey = v.GetString("minio_report_key")

	// Postgres results store
	cfg.Postgres.Enabled = v.GetBool("postgres_enabled")
	cfg.Postgres.DSN = v.GetString("postgres_dsn")

	// Validate required fields
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	// Redis defaults
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_db", 0)

	// Worker defaults
	v.SetDefault("worker_concurrency", 4)
	v.SetDefault("worker_queue", "benchmark")

	// Benchmark defaults
	v.SetDefault("benchmark_catalog_path", "./datasets")
	v.SetDefault("benchmark_workers", 1)
	v.SetDefault("benchmark_gather_timeout_seconds", 7200)

	// MinIO defaults
	v.SetDefault("minio_use_ssl", true)
	v.SetDefault("minio_cache_dir", "./datasets-cache")
}

func validate(cfg *Config) error {
	if cfg.Benchmark.Distributed && cfg.Redis.Host == "" {
		return fmt.Errorf("redis_host is required when benchmark_distributed is enabled")
	}
	if cfg.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker_concurrency must be positive")
	}
	if cfg.Worker.Queue == "" {
		return fmt.Errorf("worker_queue is required")
	}
	if cfg.Benchmark.MaxEntities < 0 {
		return fmt.Errorf("benchmark_max_entities must not be negative")
	}
	if cfg.MinIO.Enabled {
		if cfg.MinIO.Endpoint == "" {
			return fmt.Errorf("minio_endpoint is required when minio_enabled is set")
		}
		if cfg.MinIO.Bucket == "" {
			return fmt.Errorf("minio_bucket is required when minio_enabled is set")
		}
	}
	if cfg.Postgres.Enabled && cfg.Postgres.DSN == "" {
		return fmt.Errorf("postgres_dsn is required when postgres_enabled is set")
	}
	return nil
}
