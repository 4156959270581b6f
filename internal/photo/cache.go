package photo

import (
	"fmt"
	"os"
	"sync"
)

// Cache provides thread-safe caching of photo file contents.
//
// Entries are keyed by the exact path string passed to Load and stay in memory
// until Evict or Clear removes them.
type Cache struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{files: make(map[string][]byte)}
}

// Load returns the contents of path, reading the file on the first call only.
// The returned slice is shared with the cache and must not be modified.
func (c *Cache) Load(path string) ([]byte, error) {
	c.mu.RLock()
	if data, ok := c.files[path]; ok {
		c.mu.RUnlock()
		return data, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}

	c.mu.Lock()
	c.files[path] = data
	c.mu.Unlock()

	return data, nil
}

// Evict removes path from the cache. Unknown paths are ignored.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.files, path)
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.files = make(map[string][]byte)
	c.mu.Unlock()
}

// Len returns the number of cached photos.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}
