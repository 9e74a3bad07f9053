package cache

import (
	"bytes"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSize bounds an in-process cache configured without a size.
const DefaultSize = 500

func init() {
	Register("memory", newMemoryCache)
}

// memoryCache keeps response bodies in an expiring LRU inside the process.
// Stored bodies are private copies, so a caller reusing its buffer after Set
// cannot corrupt a cached response.
type memoryCache struct {
	entries *lru.LRU[string, []byte]
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize
	}
	var onEvict func(string, []byte)
	if cfg.OnEvict != nil {
		onEvict = func(key string, value []byte) {
			cfg.OnEvict(key, value)
		}
	}
	return &memoryCache{
		entries: lru.NewLRU[string, []byte](size, onEvict, cfg.TTL),
	}, nil
}

func (m *memoryCache) Get(key string) ([]byte, bool) {
	return m.entries.Get(key)
}

func (m *memoryCache) Set(key string, value []byte) {
	m.entries.Add(key, bytes.Clone(value))
}

func (m *memoryCache) Len() int {
	return m.entries.Len()
}

// Close drops every entry. Eviction callbacks fire for each of them.
func (m *memoryCache) Close() error {
	m.entries.Purge()
	return nil
}
