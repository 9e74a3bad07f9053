package cache

import "github.com/rs/zerolog"

// EvictCallback is called with the request URL of a response dropped from the cache.
// Backends that cannot return the evicted body cheaply pass a nil value.
type EvictCallback func(key string, value []byte)

// Cache stores raw TVMaze response bodies keyed by request URL.
type Cache interface {
	// Get returns the body cached for key and marks it as recently used.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous body.
	Set(key string, value []byte)

	// Len returns the number of responses currently cached.
	Len() int

	// Close releases the backend. The cache must not be used afterwards.
	Close() error
}

// Logger receives errors from backends whose operations cannot return them (Get/Set).
type Logger interface {
	Error(msg string, err error)
}

type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps l so cache backends can report failures through it.
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologLogger{logger: l}
}

func (z *zerologLogger) Error(msg string, err error) {
	z.logger.Error().Err(err).Str("component", "cache").Msg(msg)
}
