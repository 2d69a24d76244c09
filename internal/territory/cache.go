package territory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"geosampler/internal/keys"
	"geosampler/internal/metrics"
	"geosampler/internal/storage"
)

// ErrCacheWrite marks a bundle that was built but could not be persisted.
// The bundle returned alongside it is complete and usable in memory.
var ErrCacheWrite = errors.New("territory: failed to persist bundle")

// Cache builds each bundle at most once per process and persists it in a
// store under the key {name}_{version}. Read failures of any kind count as
// a miss and trigger a rebuild.
type Cache struct {
	store   storage.Store
	version string

	mu      sync.Mutex
	bundles map[string]*Bundle
}

func NewCache(store storage.Store, version string) *Cache {
	return &Cache{
		store:   store,
		version: version,
		bundles: make(map[string]*Bundle),
	}
}

// Key returns the store key used for name.
func (c *Cache) Key(name string) string {
	return keys.Cache(name, c.version)
}

// Get returns the bundle for name, loading it from the store or building it
// with build. When the fresh bundle cannot be written back, Get returns it
// together with an error wrapping ErrCacheWrite.
func (c *Cache) Get(ctx context.Context, name string, build BuildFunc) (*Bundle, error) {
	key := c.Key(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.bundles[key]; ok {
		return b, nil
	}

	if b, ok := c.load(ctx, key); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		c.bundles[key] = b
		return b, nil
	}

	log.Printf("Building geo bundle %s", key)
	b, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build bundle %s: %w", key, err)
	}
	c.bundles[key] = b

	if err := c.save(ctx, key, b); err != nil {
		metrics.CacheWriteFailures.Inc()
		log.Printf("Could not persist geo bundle %s: %v", key, err)
		return b, fmt.Errorf("%w %s: %w", ErrCacheWrite, key, err)
	}
	return b, nil
}

// Invalidate drops the in-process copy so the next Get goes to the store.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bundles, c.Key(name))
}

func (c *Cache) load(ctx context.Context, key string) (*Bundle, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Reading geo bundle %s failed, rebuilding: %v", key, err)
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	b, err := Decode(data)
	if err != nil {
		log.Printf("Discarding cached geo bundle %s: %v", key, err)
		metrics.CacheLookups.WithLabelValues("corrupt").Inc()
		return nil, false
	}
	log.Printf("Loaded geo bundle %s from cache", key)
	return b, true
}

func (c *Cache) save(ctx context.Context, key string, b *Bundle) error {
	data, err := Encode(b)
	if err != nil {
		return err
	}
	return c.store.Put(ctx, key, data)
}
