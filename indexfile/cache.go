package indexfile

import (
	"sync"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/lancedb/lance-index-core/metrics"
)

var cacheHitsCounter = metrics.DefaultRegistry.Counter("indexfile_batch_cache_hits_total")

// CachedBatchStore wraps a BatchStore with a read-through fastcache layer.
// Index files are immutable once published (a new version gets a new
// generation name upstream), so a cache entry never needs invalidation on
// Put -- Put still writes through and refreshes the cache entry directly.
type CachedBatchStore struct {
	backing BatchStore
	cache   *fastcache.Cache
	mu      sync.Mutex
}

// NewCachedBatchStore wraps backing with an in-memory cache sized at
// maxBytes. A maxBytes of 0 uses a small default, matching fastcache's own
// minimum working set.
func NewCachedBatchStore(backing BatchStore, maxBytes int) *CachedBatchStore {
	if maxBytes <= 0 {
		maxBytes = 32 * 1024 * 1024
	}
	return &CachedBatchStore{
		backing: backing,
		cache:   fastcache.New(maxBytes),
	}
}

func (c *CachedBatchStore) Get(name string) ([]byte, error) {
	key := []byte(name)
	c.mu.Lock()
	if has := c.cache.Has(key); has {
		data := c.cache.GetBig(nil, key)
		c.mu.Unlock()
		cacheHitsCounter.Inc()
		return data, nil
	}
	c.mu.Unlock()

	data, err := c.backing.Get(name)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cache.SetBig(key, data)
	c.mu.Unlock()
	return data, nil
}

func (c *CachedBatchStore) Put(name string, data []byte) error {
	if err := c.backing.Put(name, data); err != nil {
		return err
	}
	c.mu.Lock()
	c.cache.SetBig([]byte(name), data)
	c.mu.Unlock()
	return nil
}

func (c *CachedBatchStore) Has(name string) (bool, error) {
	if c.cache.Has([]byte(name)) {
		return true, nil
	}
	return c.backing.Has(name)
}

func (c *CachedBatchStore) Delete(name string) error {
	c.mu.Lock()
	c.cache.Del([]byte(name))
	c.mu.Unlock()
	return c.backing.Delete(name)
}

func (c *CachedBatchStore) Close() error {
	c.cache.Reset()
	return c.backing.Close()
}
