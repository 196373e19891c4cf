package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Log       LogConfig
	Redis     RedisConfig
	Worker    WorkerConfig
	Benchmark BenchmarkConfig
	MinIO     MinIOConfig
	Postgres  PostgresConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig holds Redis configuration for the distributed backend
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WorkerConfig holds worker process configuration
type WorkerConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	Queue       string `mapstructure:"queue"`
}

// BenchmarkConfig holds the benchmark run configuration
type BenchmarkConfig struct {
	// Models, Datasets and Metrics select what to benchmark by
	// registered name. Empty means the full default catalog.
	Models   []string `mapstructure:"models"`
	Datasets []string `mapstructure:"datasets"`
	Metrics  []string `mapstructure:"metrics"`

	CatalogPath string `mapstructure:"catalog_path"`
	OutputPath  string `mapstructure:"output_path"`
	MaxEntities int    `mapstructure:"max_entities"`
	SampleSize  int    `mapstructure:"sample_size"`
	Distributed bool   `mapstructure:"distributed"`
	// Workers sizes the in-process pool; 1 runs sequentially.
	Workers       int           `mapstructure:"workers"`
	GatherTimeout time.Duration `mapstructure:"-"`
}

// MinIOConfig holds object storage configuration
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	CacheDir  string `mapstructure:"cache_dir"`
	ReportKey string `mapstructure:"report_key"`
}

// PostgresConfig holds the optional results store configuration
type PostgresConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}
