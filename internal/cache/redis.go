package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "showfinder:"
	redisOpTimeout   = 2 * time.Second
	redisDialTimeout = 5 * time.Second
)

func init() {
	Register("redis", newRedisCache)
}

// redisCache shares cached TVMaze responses between ShowFinder replicas.
//
// Two keys hold the whole cache:
//
//   - {prefix}responses: a hash from request URL to response body. Each field
//     carries its own TTL (HPEXPIRE, Redis 7.4+ or Valkey 8+).
//   - {prefix}recency: a sorted set from request URL to its last use in
//     microseconds, from which the least recently used URLs are evicted.
//
// A lookup that hits and a write that evicts each run as one Lua script.
type redisCache struct {
	client       *redis.Client
	ttl          time.Duration
	maxSize      int
	onEvict      EvictCallback
	logger       Logger
	responsesKey string
	recencyKey   string
}

// lookupResponse returns the body cached for a URL and records the use.
//
// KEYS: responses, recency. ARGV: now (µs), url.
var lookupResponse = redis.NewScript(`
local body = redis.call('HGET', KEYS[1], ARGV[2])
if body then
    redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
end
return body
`)

// storeResponse writes a body, records the use and evicts the least recently used
// URLs above capacity. A URL whose field Redis already expired is still dropped
// from the recency set. Returns the evicted URLs.
//
// KEYS: responses, recency. ARGV: body, now (µs), url, capacity, ttl (ms, 0 = none).
var storeResponse = redis.NewScript(`
local url      = ARGV[3]
local capacity = tonumber(ARGV[4])
local ttlMs    = tonumber(ARGV[5])

redis.call('HSET', KEYS[1], url, ARGV[1])
if ttlMs > 0 then
    redis.call('HPEXPIRE', KEYS[1], ttlMs, 'FIELDS', 1, url)
end
redis.call('ZADD', KEYS[2], ARGV[2], url)

local evicted = {}
local over = redis.call('ZCARD', KEYS[2]) - capacity
if over > 0 then
    local oldest = redis.call('ZPOPMIN', KEYS[2], over)
    for i = 1, #oldest, 2 do
        redis.call('HDEL', KEYS[1], oldest[i])
        table.insert(evicted, oldest[i])
    end
end
return evicted
`)

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Redis.Address,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: redisDialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Address, err)
	}

	prefix := cfg.Redis.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	maxSize := cfg.Size
	if maxSize <= 0 {
		maxSize = DefaultSize
	}
	return &redisCache{
		client:       client,
		ttl:          cfg.TTL,
		maxSize:      maxSize,
		onEvict:      cfg.OnEvict,
		logger:       cfg.Logger,
		responsesKey: prefix + "responses",
		recencyKey:   prefix + "recency",
	}, nil
}

func (r *redisCache) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, err)
	}
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	now := time.Now().UnixMicro()
	body, err := lookupResponse.Run(ctx, r.client, []string{r.responsesKey, r.recencyKey}, now, key).Text()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false
	case err != nil:
		r.logError("redis cache lookup failed", err)
		return nil, false
	}
	return []byte(body), true
}

func (r *redisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	evicted, err := storeResponse.Run(ctx, r.client, []string{r.responsesKey, r.recencyKey},
		value, time.Now().UnixMicro(), key, r.maxSize, strconv.FormatInt(r.ttl.Milliseconds(), 10),
	).StringSlice()
	if err != nil {
		r.logError("redis cache store failed", err)
		return
	}

	if r.onEvict == nil {
		return
	}
	for _, url := range evicted {
		r.onEvict(url, nil)
	}
}

func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := r.client.HLen(ctx, r.responsesKey).Result()
	if err != nil {
		r.logError("redis cache size failed", err)
		return 0
	}
	return int(n)
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
