package cache

import "github.com/prometheus/client_golang/prometheus"

// instrumentedCache counts hits, misses and stored bytes of one group of cached
// TVMaze responses.
type instrumentedCache struct {
	inner       Cache
	group       string
	hits        prometheus.Counter
	misses      prometheus.Counter
	storedBytes prometheus.Counter
}

// newInstrumentedCache wraps inner and registers a cache_entries collector reading
// inner.Len() when scraped, so responses Redis expired on its own are not counted.
func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	registerEntriesCollector(group, inner.Len)
	return &instrumentedCache{
		inner:       inner,
		group:       group,
		hits:        HitsTotal.WithLabelValues(group),
		misses:      MissesTotal.WithLabelValues(group),
		storedBytes: StoredBytesTotal.WithLabelValues(group),
	}
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	body, ok := c.inner.Get(key)
	if !ok {
		c.misses.Inc()
		return nil, false
	}
	c.hits.Inc()
	return body, true
}

func (c *instrumentedCache) Set(key string, value []byte) {
	c.inner.Set(key, value)
	c.storedBytes.Add(float64(len(value)))
}

func (c *instrumentedCache) Len() int {
	return c.inner.Len()
}

func (c *instrumentedCache) Close() error {
	unregisterEntriesCollector(c.group)
	return c.inner.Close()
}
