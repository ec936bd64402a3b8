// Package cache stores scoring service responses on disk so that an
// identical essay and model selection is not scored twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/BuseDenizH/EssayEval-NLP/internal/normalize"
	"github.com/BuseDenizH/EssayEval-NLP/internal/scoring"
)

// Cache provides caching for scoring responses
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory.
// An empty dir disables the cache.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key generates a unique cache key for a scoring request.
// The key is based on:
// - the essay text
// - the requested model ids, in request order
func Key(req *scoring.PredictRequest) (string, error) {
	h := sha256.New()

	if err := writeString(h, req.Essay); err != nil {
		return "", err
	}
	if err := writeInt(h, len(req.Models)); err != nil {
		return "", err
	}
	for _, id := range req.Models {
		if err := writeString(h, string(id)); err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached response if it exists. Entries that no longer pass
// envelope validation are treated as misses.
func (c *Cache) Get(key string) (*scoring.PredictResponse, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		// Cache miss
		return nil, false
	}

	resp, err := scoring.DecodeResponse(data)
	if err != nil {
		return nil, false
	}
	return resp, true
}

// Put stores a response in the cache
func (c *Cache) Put(key string, resp *scoring.PredictResponse) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}

	if err := os.WriteFile(c.cachePath(key), data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached responses
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Refuse to delete anything that does not look like a cache directory.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

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

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Client answers from the cache and falls back to next on a miss. Only
// responses in which every model produced an assessment are stored, so a
// model that was down is asked again next time.
type Client struct {
	next   scoring.Client
	cache  *Cache
	logger *slog.Logger
}

// NewClient wraps next with c.
func NewClient(next scoring.Client, c *Cache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{next: next, cache: c, logger: logger}
}

func (c *Client) Predict(ctx context.Context, req *scoring.PredictRequest) (*scoring.PredictResponse, error) {
	key, err := Key(req)
	if err != nil {
		return nil, fmt.Errorf("computing cache key: %w", err)
	}
	if resp, ok := c.cache.Get(key); ok {
		c.logger.Debug("scoring response served from cache", "key", key[:12])
		return resp, nil
	}

	resp, err := c.next.Predict(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(normalize.Normalize(resp.Results).Failures()) > 0 {
		return resp, nil
	}
	if err := c.cache.Put(key, resp); err != nil {
		c.logger.Warn("failed to cache scoring response", "error", err)
	}
	return resp, nil
}

// Helper functions

func writeString(w io.Writer, s string) error {
	// Null byte delimiter prevents hash collisions.
	_, err := w.Write([]byte(s + "\x00"))
	return err
}

func writeInt(w io.Writer, i int) error {
	_, err := fmt.Fprintf(w, "%d\x00", i)
	return err
}
