// Package cache stores solver results so repeated runs over the same input
// skip the solve.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spboyer/loadout/internal/models"
	"github.com/spboyer/loadout/internal/solver"
)

// Store is implemented by every cache backend.
type Store interface {
	Get(ctx context.Context, key string) (*models.Solution, bool)
	Put(ctx context.Context, key string, sol *models.Solution) error
	Clear(ctx context.Context) error
}

var (
	_ Store = (*Cache)(nil)
	_ Store = (*RedisCache)(nil)
)

// Cache is the on-disk backend: one JSON file per key.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key generates a cache key for one solver run. The key covers:
// - algorithm and its options
// - container capacity and pallet limit
// - every item, in order
func Key(alg solver.Algorithm, opts solver.Options, items []models.Item, c models.Container) (string, error) {
	h := sha256.New()

	if err := writeString(h, string(alg)); err != nil {
		return "", err
	}

	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("marshaling options: %w", err)
	}
	if _, err := h.Write(optsJSON); err != nil {
		return "", err
	}

	if _, err := fmt.Fprintf(h, "%g\x00", c.Capacity); err != nil {
		return "", err
	}
	limit := -1
	if c.MaxItems != nil {
		limit = *c.MaxItems
	}
	if err := writeInt(h, limit); err != nil {
		return "", err
	}

	if err := writeInt(h, len(items)); err != nil {
		return "", err
	}
	for _, it := range items {
		if _, err := fmt.Fprintf(h, "%d,%g,%g\x00", it.ID, it.Weight, it.Profit); err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Cacheable reports whether a solution may be stored. Searches cut short by
// a time budget are not repeatable and are never cached.
func Cacheable(sol *models.Solution) bool {
	return sol != nil && !sol.Terminated
}

// Get retrieves a cached solution if it exists
func (c *Cache) Get(_ context.Context, key string) (*models.Solution, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.cachePath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		// Cache miss
		return nil, false
	}

	var sol models.Solution
	if err := json.Unmarshal(data, &sol); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &sol, true
}

// Put stores a solution in the cache
func (c *Cache) Put(_ context.Context, key string, sol *models.Solution) error {
	if c.dir == "" || !Cacheable(sol) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Ensure cache directory exists
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(sol, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling solution: %w", err)
	}

	path := c.cachePath(key)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached results
func (c *Cache) Clear(_ context.Context) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if directory exists
	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Safety check: verify this is a loadout cache directory before removing
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	// If directory is not empty, verify it contains only cache files
	if len(entries) > 0 {
		hasValidCache := false
		for _, entry := range entries {
			if entry.IsDir() {
				return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
			}
			if filepath.Ext(entry.Name()) == ".json" {
				hasValidCache = true
			} else {
				return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
			}
		}
		if !hasValidCache {
			return fmt.Errorf("no valid cache files found in directory - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func writeString(w io.Writer, s string) error {
	// Write string with null byte delimiter to prevent hash collisions
	_, err := w.Write([]byte(s + "\x00"))
	return err
}

func writeInt(w io.Writer, i int) error {
	_, err := fmt.Fprintf(w, "%d\x00", i)
	return err
}
