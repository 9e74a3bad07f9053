package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/Belphemur/ShowFinder/internal/cache"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/models"
	"github.com/Belphemur/ShowFinder/internal/parser"
)

// Client defines the interface for querying the TVMaze directory API
type Client interface {
	// SearchShows returns the shows matching term, in TVMaze's relevance order.
	SearchShows(ctx context.Context, term string) ([]models.Show, error)

	// GetEpisodes returns every episode of the show, in TVMaze's order.
	// showID must be a non-negative integer, possibly as a numeric string.
	GetEpisodes(ctx context.Context, showID string) ([]models.Episode, error)

	// Close releases any resources held by the client (e.g., cache connections).
	Close() error
}

// client implements the Client interface
type client struct {
	httpClient    *http.Client
	baseURL       string
	userAgent     string
	showParser    parser.Parser[models.Show]
	episodeParser parser.Parser[models.Episode]
	responses     cache.Cache
	retryPolicy   retrypolicy.RetryPolicy[[]byte]
}

// NewClient creates a new client instance with proxy and cache configuration if provided
func NewClient(cfg *config.Config) Client {
	logger := config.GetLogger()
	timeout := config.ParseDuration("client_timeout", cfg.ClientTimeout, 30*time.Second)

	// Clone DefaultTransport to preserve all its settings (timeouts, connection pooling, HTTP/2, etc.)
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: newCompressionTransport(baseTransport),
	}

	baseURL := cfg.TVMazeURL
	if baseURL == "" {
		baseURL = config.DefaultTVMazeURL
	}
	missingImage := cfg.MissingImageURL
	if missingImage == "" {
		missingImage = config.DefaultMissingImageURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.GetUserAgent()
	}

	return &client{
		httpClient:    httpClient,
		baseURL:       baseURL,
		userAgent:     userAgent,
		showParser:    parser.NewShowSearchParser(missingImage),
		episodeParser: parser.NewEpisodeParser(),
		responses:     newResponseCache(cfg),
		retryPolicy:   newRetryPolicy(cfg.Client.MaxRetries),
	}
}

// newResponseCache builds the configured response cache. A backend that cannot be
// reached is logged and replaced by the "none" provider so the client keeps working.
func newResponseCache(cfg *config.Config) cache.Cache {
	logger := config.GetLogger()
	provider, pc := responseCacheConfig(cfg)
	pc.Logger = cache.NewZerologLogger(logger)

	c, err := cache.New(provider, pc)
	if err != nil {
		logger.Warn().Err(err).Str("provider", provider).Msg("Failed to create response cache, continuing without cache")
		c, _ = cache.New("none", cache.ProviderConfig{})
		return c
	}

	logger.Info().Str("provider", provider).Int("size", pc.Size).Dur("ttl", pc.TTL).Msg("Response cache configured")
	return c
}

// responseCacheConfig maps the cache section of cfg to a provider name and its config.
// Only real caches are instrumented, under the "tvmaze" group.
func responseCacheConfig(cfg *config.Config) (string, cache.ProviderConfig) {
	provider := cfg.Cache.Provider
	if provider == "" {
		provider = "none"
	}

	pc := cache.ProviderConfig{
		Size: cfg.Cache.Size,
		TTL:  config.ParseDuration("cache.ttl", cfg.Cache.TTL, 5*time.Minute),
		Redis: cache.RedisOptions{
			Address:   cfg.Cache.Redis.Address,
			Password:  cfg.Cache.Redis.Password,
			DB:        cfg.Cache.Redis.DB,
			KeyPrefix: cfg.Cache.Redis.KeyPrefix,
		},
	}
	if provider != "none" {
		pc.Group = "tvmaze"
	}
	return provider, pc
}

// Close releases any resources held by the client, such as cache connections.
func (c *client) Close() error {
	return c.responses.Close()
}
