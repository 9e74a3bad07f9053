package metrics

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Belphemur/ShowFinder/internal/config"
)

const (
	defaultPort = 9090
	defaultPath = "/metrics"
)

// NewHTTPServer creates the metrics server described by the metrics section of cfg.
// It listens on the server address and serves the default registry, in the
// OpenMetrics format when the scraper asks for it. Any other path redirects there.
func NewHTTPServer(cfg *config.Config) *http.Server {
	port := cfg.Metrics.Port
	if port == 0 {
		port = defaultPort
	}
	path := cfg.Metrics.Path
	if path == "" {
		path = defaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	handler := promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		}),
	)

	mux := http.NewServeMux()
	mux.Handle("GET "+path, handler)
	mux.Handle("/", http.RedirectHandler(path, http.StatusFound))

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
