package mock

import (
	"context"
	"sync"

	"github.com/fwojciec/fieldscrape"
)

var _ fieldscrape.Cache = (*Cache)(nil)

// Cache is a mock implementation of fieldscrape.Cache.
type Cache struct {
	PutFn   func(ctx context.Context, ns fieldscrape.Namespace, key string, value []byte) error
	GetFn   func(ctx context.Context, ns fieldscrape.Namespace, key string) ([]byte, error)
	CloseFn func() error
}

func (c *Cache) Put(ctx context.Context, ns fieldscrape.Namespace, key string, value []byte) error {
	return c.PutFn(ctx, ns, key, value)
}

func (c *Cache) Get(ctx context.Context, ns fieldscrape.Namespace, key string) ([]byte, error) {
	return c.GetFn(ctx, ns, key)
}

func (c *Cache) Close() error {
	return c.CloseFn()
}

var _ fieldscrape.Cache = (*MemoryCache)(nil)

// MemoryCache is a working in-memory fieldscrape.Cache for tests that care
// about stored state rather than individual calls.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[fieldscrape.Namespace]map[string][]byte
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[fieldscrape.Namespace]map[string][]byte)}
}

func (c *MemoryCache) Put(_ context.Context, ns fieldscrape.Namespace, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[ns] == nil {
		c.entries[ns] = make(map[string][]byte)
	}
	c.entries[ns][key] = append([]byte{}, value...)
	return nil
}

func (c *MemoryCache) Get(_ context.Context, ns fieldscrape.Namespace, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[ns][key]
	if !ok {
		return nil, fieldscrape.Errorf(fieldscrape.ENOTFOUND, "no entry for key %q in %s", key, ns)
	}
	return append([]byte{}, v...), nil
}

func (c *MemoryCache) Close() error {
	return nil
}

// Keys returns the keys stored in ns.
func (c *MemoryCache) Keys(ns fieldscrape.Namespace) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries[ns]))
	for k := range c.entries[ns] {
		keys = append(keys, k)
	}
	return keys
}
