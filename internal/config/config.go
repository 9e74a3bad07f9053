package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all TVMaze requests.
const DefaultUserAgent = "ShowFinder/1.0 (+https://github.com/Belphemur/ShowFinder)"

// DefaultTVMazeURL is the root of the public TVMaze API.
const DefaultTVMazeURL = "https://api.tvmaze.com"

// DefaultRedisKeyPrefix namespaces the response cache in a shared Redis.
const DefaultRedisKeyPrefix = "showfinder:"

// DefaultMissingImageURL is used for shows that have no poster.
const DefaultMissingImageURL = "https://tinyurl.com/tv-missing"

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	TVMazeURL             string `mapstructure:"tvmaze_url"`
	MissingImageURL       string `mapstructure:"missing_image_url"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string `mapstructure:"user_agent"`
	SentryDSN             string `mapstructure:"sentry_dsn"`
	Client                struct {
		MaxRetries int `mapstructure:"max_retries"`
	} `mapstructure:"client"`
	Server struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	LogLevel string `mapstructure:"log_level"`
	Cache    struct {
		Provider string `mapstructure:"provider"` // "none", "memory" or "redis"
		Size     int    `mapstructure:"size"`     // Maximum number of entries in the LRU cache
		TTL      string `mapstructure:"ttl"`      // Go duration string like "1h", "24h", etc.
		Redis    struct {
			Address   string `mapstructure:"address"`
			Password  string `mapstructure:"password"`
			DB        int    `mapstructure:"db"`
			KeyPrefix string `mapstructure:"key_prefix"` // Namespaces the Redis keys of one deployment
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Port    int    `mapstructure:"port"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"metrics"`
	GRPC struct {
		Port int `mapstructure:"port"` // 0 disables the health server
	} `mapstructure:"grpc"`
	Sessions struct {
		Size int    `mapstructure:"size"`
		TTL  string `mapstructure:"ttl"`
	} `mapstructure:"sessions"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.MissingImageURL == "" {
		config.MissingImageURL = DefaultMissingImageURL
	}
	config.TVMazeURL = strings.TrimRight(config.TVMazeURL, "/")

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("tvmaze_url", DefaultTVMazeURL)
	v.SetDefault("missing_image_url", DefaultMissingImageURL)
	v.SetDefault("proxy_connection_string", "")
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("client.max_retries", 2)
	v.SetDefault("server.address", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("cache.provider", "none")
	v.SetDefault("cache.size", 500)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.redis.address", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.key_prefix", DefaultRedisKeyPrefix)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("grpc.port", 0)
	v.SetDefault("sessions.size", 1000)
	v.SetDefault("sessions.ttl", "30m")
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}

// ParseDuration parses a Go duration string, falling back to def (with a warning)
// when the value is empty or invalid.
func ParseDuration(field, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str(field, value).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return parsed
}
