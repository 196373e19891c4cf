package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/echobench/echobench/internal/domain"
)

// BucketCatalog serves datasets from an S3-compatible bucket. Each
// dataset lives under a top-level prefix holding the descriptor and data
// file. Objects are downloaded into a local cache directory once and then
// served through a DirCatalog.
type BucketCatalog struct {
	client   *minio.Client
	bucket   string
	cacheDir string
	logger   *zap.Logger

	mu     sync.Mutex
	cached map[string]bool
	local  *DirCatalog
}

// NewBucketCatalog creates a bucket-backed catalog caching into cacheDir.
func NewBucketCatalog(client *minio.Client, bucket, cacheDir string, logger *zap.Logger) *BucketCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BucketCatalog{
		client:   client,
		bucket:   bucket,
		cacheDir: cacheDir,
		logger:   logger,
		cached:   make(map[string]bool),
		local:    NewDirCatalog(cacheDir, logger),
	}
}

// Names lists the dataset prefixes in the bucket.
func (c *BucketCatalog) Names(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", c.bucket, obj.Err)
		}
		name := strings.TrimSuffix(obj.Key, "/")
		if strings.HasSuffix(obj.Key, "/") && !strings.Contains(name, "/") {
			names = append(names, name)
		}
	}
	return names, nil
}

// Load downloads the named dataset into the cache if needed and loads it
// from there.
func (c *BucketCatalog) Load(ctx context.Context, name string, maxEntities int) (*domain.Dataset, error) {
	if err := c.ensureCached(ctx, name); err != nil {
		return nil, err
	}
	return c.local.Load(ctx, name, maxEntities)
}

func (c *BucketCatalog) ensureCached(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached[name] {
		return nil
	}

	dir := filepath.Join(c.cacheDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	prefix := name + "/"
	found := false
	for obj := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return fmt.Errorf("listing dataset %s: %w", name, obj.Err)
		}
		found = true
		local := filepath.Join(c.cacheDir, filepath.FromSlash(obj.Key))
		if err := c.client.FGetObject(ctx, c.bucket, obj.Key, local, minio.GetObjectOptions{}); err != nil {
			return fmt.Errorf("downloading %s: %w", obj.Key, err)
		}
		c.logger.Debug("cached dataset object",
			zap.String("dataset", name),
			zap.String("key", obj.Key),
		)
	}
	if !found {
		return fmt.Errorf("dataset %s not found in bucket %s", name, c.bucket)
	}

	c.cached[name] = true
	return nil
}
