// Package diskcache stores fetched image bytes on disk between sessions.
// Objects are content-addressed files under the cache directory; a JSON
// index tracks sizes and access times for least-recently-used eviction
// against a byte budget.
package diskcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	pkgerrors "github.com/NCSOPHAL/landscapist/pkg/errors"
)

const indexVersion = "1.0"

// Entry describes one cached object.
type Entry struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	Format     string    `json:"format,omitempty"`
	StoredAt   time.Time `json:"stored_at"`
	LastAccess time.Time `json:"last_access"`
}

// Stats summarises cache occupancy.
type Stats struct {
	Entries  int
	Bytes    int64
	MaxBytes int64
	Dir      string
}

type indexFile struct {
	Version string           `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// Cache is a size-bounded disk cache. The zero value is not usable; use
// New. All methods are safe for concurrent use.
type Cache struct {
	dir      string
	maxBytes int64

	mu      sync.Mutex
	entries map[string]Entry
	size    int64
}

// New opens (or creates) a cache rooted at dir. maxBytes bounds the total
// object size; zero or negative means unbounded. Index entries whose
// object file has disappeared are dropped on load.
func New(dir string, maxBytes int64) (*Cache, error) {
	c := &Cache{
		dir:      dir,
		maxBytes: maxBytes,
		entries:  make(map[string]Entry),
	}

	if err := os.MkdirAll(filepath.Join(dir, "objects"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := c.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return c, nil
}

// load reads the index and reconciles it against the object files.
func (c *Cache) load() error {
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		return err
	}

	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse cache index: %w", err)
	}

	c.entries = make(map[string]Entry, len(file.Entries))
	c.size = 0
	for key, entry := range file.Entries {
		info, err := os.Stat(c.objectPath(key))
		if err != nil {
			continue
		}
		entry.Key = key
		entry.Size = info.Size()
		c.entries[key] = entry
		c.size += entry.Size
	}

	return nil
}

// Get returns the cached bytes for key and refreshes its access time.
// A missing key yields an error satisfying errors.Is(err, ErrCacheMiss).
func (c *Cache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, pkgerrors.NewCacheError("get", key, pkgerrors.ErrCacheMiss)
	}

	data, err := os.ReadFile(c.objectPath(key))
	if err != nil {
		// The object vanished underneath the index; treat as a miss.
		delete(c.entries, key)
		c.size -= entry.Size
		return nil, pkgerrors.NewCacheError("get", key, pkgerrors.ErrCacheMiss)
	}

	entry.LastAccess = time.Now()
	c.entries[key] = entry
	return data, nil
}

// Has reports whether key is present without touching its access time.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Set stores data under key, evicting least-recently-used objects until
// the cache fits its budget again. The freshly written object is never
// evicted by its own insertion.
func (c *Cache) Set(key string, data []byte, format string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.objectPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return pkgerrors.NewCacheError("set", key, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return pkgerrors.NewCacheError("set", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return pkgerrors.NewCacheError("set", key, err)
	}

	if old, ok := c.entries[key]; ok {
		c.size -= old.Size
	}
	now := time.Now()
	c.entries[key] = Entry{
		Key:        key,
		Size:       int64(len(data)),
		Format:     format,
		StoredAt:   now,
		LastAccess: now,
	}
	c.size += int64(len(data))

	c.evict(key)
	return c.save()
}

// Delete removes key and its object file.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if err := os.Remove(c.objectPath(key)); err != nil && !os.IsNotExist(err) {
		return pkgerrors.NewCacheError("delete", key, err)
	}
	delete(c.entries, key)
	c.size -= entry.Size
	return c.save()
}

// Clear removes every object and resets the index.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(c.dir, "objects")); err != nil {
		return pkgerrors.NewCacheError("clear", "", err)
	}
	if err := os.MkdirAll(filepath.Join(c.dir, "objects"), 0755); err != nil {
		return pkgerrors.NewCacheError("clear", "", err)
	}
	c.entries = make(map[string]Entry)
	c.size = 0
	return c.save()
}

// Stats returns current occupancy.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:  len(c.entries),
		Bytes:    c.size,
		MaxBytes: c.maxBytes,
		Dir:      c.dir,
	}
}

// Entries lists cached objects, most recently used first.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastAccess.After(out[j].LastAccess)
	})
	return out
}

// evict removes least-recently-used entries until the budget holds,
// sparing keep. Caller holds the lock.
func (c *Cache) evict(keep string) {
	if c.maxBytes <= 0 {
		return
	}
	for c.size > c.maxBytes {
		var (
			oldestKey string
			oldest    time.Time
		)
		for key, entry := range c.entries {
			if key == keep {
				continue
			}
			if oldestKey == "" || entry.LastAccess.Before(oldest) {
				oldestKey = key
				oldest = entry.LastAccess
			}
		}
		if oldestKey == "" {
			return
		}
		_ = os.Remove(c.objectPath(oldestKey))
		c.size -= c.entries[oldestKey].Size
		delete(c.entries, oldestKey)
	}
}

// save writes the index atomically. Caller holds the lock.
func (c *Cache) save() error {
	file := indexFile{
		Version: indexVersion,
		Entries: c.entries,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache index: %w", err)
	}

	tmpPath := c.indexPath() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary index: %w", err)
	}
	if err := os.Rename(tmpPath, c.indexPath()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary index: %w", err)
	}
	return nil
}

func (c *Cache) indexPath() string {
	return filepath.Join(c.dir, "index.json")
}

func (c *Cache) objectPath(key string) string {
	shard := "00"
	if len(key) >= 2 {
		shard = key[:2]
	}
	return filepath.Join(c.dir, "objects", shard, key)
}
