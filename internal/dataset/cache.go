package dataset

import "sync"

// Cache memoizes one successful Load per path for the lifetime of the process.
//
// The file is read on the first Get; later calls return the same *Dataset
// without touching the disk, so edits made to the file afterwards are not
// seen. A failed load is not remembered and the next Get tries again.
// The returned Dataset is shared and must be treated as read-only.
type Cache struct {
	path string
	load func(string) (*Dataset, error)

	mu sync.Mutex
	ds *Dataset
}

// NewCache returns an empty cache for path.
func NewCache(path string) *Cache {
	return &Cache{path: path, load: Load}
}

// Path returns the file the cache loads.
func (c *Cache) Path() string { return c.path }

// Get returns the memoized dataset, loading it on first use.
func (c *Cache) Get() (*Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ds != nil {
		return c.ds, nil
	}
	ds, err := c.load(c.path)
	if err != nil {
		return nil, err
	}
	c.ds = ds
	return ds, nil
}

var defaultCache = NewCache(DefaultPath)

// DefaultCache returns the process-wide cache bound to DefaultPath.
func DefaultCache() *Cache { return defaultCache }

// Default loads DefaultPath once per process.
func Default() (*Dataset, error) { return defaultCache.Get() }
