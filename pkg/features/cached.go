package features

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/haivivi/speechbatch/pkg/errs"
	"github.com/haivivi/speechbatch/pkg/featcache"
)

// FileExtractor extracts features from an audio file.
type FileExtractor interface {
	ExtractFile(ctx context.Context, path string) ([][]float32, error)
	Width() int
}

var (
	_ FileExtractor = (*Extractor)(nil)
	_ FileExtractor = (*Cached)(nil)
)

// Cached wraps an Extractor with a persistent feature cache. Entries are
// keyed by the extractor fingerprint and the file's absolute path, size and
// modification time, so editing a file or changing the configuration
// invalidates its entry.
type Cached struct {
	*Extractor
	store featcache.Store
}

// NewCached returns an extractor that consults store before computing.
func NewCached(e *Extractor, store featcache.Store) *Cached {
	return &Cached{Extractor: e, store: store}
}

// ExtractFile returns cached features for path, computing and storing them
// on a miss. Cache failures are returned rather than ignored.
func (c *Cached) ExtractFile(ctx context.Context, path string) ([][]float32, error) {
	key, err := c.key(path)
	if err != nil {
		return nil, err
	}
	m, err := c.store.Get(ctx, key)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, featcache.ErrNotFound) {
		return nil, errs.IO(err, "feature cache get %s", key)
	}
	m, err = c.Extractor.ExtractFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, key, m); err != nil {
		return nil, errs.IO(err, "feature cache set %s", key)
	}
	return m, nil
}

// Purge drops every cached entry produced by this configuration.
func (c *Cached) Purge(ctx context.Context) error {
	return c.store.Purge(ctx, c.Fingerprint())
}

func (c *Cached) key(path string) (featcache.Key, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return featcache.Key{}, errs.IO(err, "resolve %s", path)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return featcache.Key{}, errs.IO(err, "stat %s", path)
	}
	return featcache.Key{
		Namespace: c.Fingerprint(),
		Source:    fmt.Sprintf("%s|%d|%d", abs, fi.Size(), fi.ModTime().UnixNano()),
	}, nil
}
