package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/ShowFinder/internal/client"
	"github.com/Belphemur/ShowFinder/internal/config"
	grpcserver "github.com/Belphemur/ShowFinder/internal/grpc"
	"github.com/Belphemur/ShowFinder/internal/metrics"
	"github.com/Belphemur/ShowFinder/internal/render"
	"github.com/Belphemur/ShowFinder/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("proxy_connection_string", cfg.ProxyConnectionString).
		Str("tvmaze_url", cfg.TVMazeURL).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Str("cache_provider", cfg.Cache.Provider).
		Msg("Application started with configuration")

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: config.GetUserAgent(),
		}); err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize Sentry")
		}
		defer sentry.Flush(2 * time.Second)
		logger.Info().Msg("Sentry error reporting enabled")
	}

	// Create a client instance
	tvmaze := client.NewClient(cfg)
	defer func() {
		if err := tvmaze.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close TVMaze client")
		}
	}()

	renderer, err := render.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load templates")
	}

	srv := server.New(cfg, tvmaze, renderer)
	defer srv.Close()
	httpServer := srv.NewHTTPServer(cfg.Server.Address, cfg.Server.Port)

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	// Start the gRPC health server
	if cfg.GRPC.Port != 0 {
		grpcServer := grpcserver.NewGRPCServer()
		address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.GRPC.Port)
		listener, err := net.Listen("tcp", address)
		if err != nil {
			logger.Fatal().Err(err).Str("address", address).Msg("Failed to create gRPC listener")
		}
		go func() {
			logger.Info().Str("address", address).Msg("Starting gRPC health server")
			if err := grpcServer.Serve(listener); err != nil {
				logger.Error().Err(err).Msg("Failed to serve gRPC")
			}
		}()
		defer grpcServer.Shutdown()
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		}
	}()

	logger.Info().Str("address", httpServer.Addr).Msg("Starting HTTP server")

	// Start serving
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to serve HTTP")
	}

	logger.Info().Msg("Server stopped gracefully")
}
