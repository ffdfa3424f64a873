package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryDocumentCache keeps grid manifests in process memory.
type MemoryDocumentCache struct {
	c *gocache.Cache
}

func NewMemoryDocumentCache(defaultTTL, cleanupInterval time.Duration) *MemoryDocumentCache {
	return &MemoryDocumentCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryDocumentCache) Get(_ context.Context, url string) ([]byte, bool, error) {
	v, ok := m.c.Get(url)
	if !ok {
		return nil, false, nil
	}

	data, ok := v.([]byte)
	if !ok {
		m.c.Delete(url)
		return nil, false, nil
	}

	return append([]byte(nil), data...), true, nil
}

func (m *MemoryDocumentCache) Set(_ context.Context, url string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(url, append([]byte(nil), data...), ttl)
	return nil
}

func (m *MemoryDocumentCache) Delete(_ context.Context, urls ...string) error {
	for _, u := range urls {
		m.c.Delete(u)
	}
	return nil
}

func (m *MemoryDocumentCache) Len() int {
	return m.c.ItemCount()
}
