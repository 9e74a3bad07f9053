package cache

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrUnknownProvider is returned by New for a provider name nothing registered.
var ErrUnknownProvider = errors.New("unknown cache provider")

// RedisOptions locates the shared Redis/Valkey backend.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	// KeyPrefix namespaces the keys of one deployment, "showfinder:" when empty.
	KeyPrefix string
}

// ProviderConfig is what a provider needs to build a response cache.
type ProviderConfig struct {
	// Size bounds the number of cached responses.
	Size int
	// TTL is how long a response stays fresh. Zero keeps it until evicted.
	TTL     time.Duration
	OnEvict EvictCallback
	// Logger receives backend failures. Nil discards them.
	Logger Logger
	// Group labels the cache_* metrics. An empty group leaves the cache uninstrumented.
	Group string
	Redis RedisOptions
}

// Provider builds a Cache from its config.
type Provider func(cfg ProviderConfig) (Cache, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register makes a provider available to New under name. Registering a nil
// provider or a name twice panics.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers[name] = p
}

// New builds a cache with the named provider, instrumenting it when cfg.Group is set.
func New(name string, cfg ProviderConfig) (Cache, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownProvider, name, RegisteredProviders())
	}
	if cfg.Group == "" {
		return p(cfg)
	}
	return instrument(p, cfg)
}

// instrument builds the cache with an OnEvict that also counts evictions, then wraps
// it so lookups and writes are counted under cfg.Group.
func instrument(p Provider, cfg ProviderConfig) (Cache, error) {
	evictions := EvictionsTotal.WithLabelValues(cfg.Group)
	next := cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		evictions.Inc()
		if next != nil {
			next(key, value)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(inner, cfg.Group), nil
}

// RegisteredProviders returns the registered provider names, sorted.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
