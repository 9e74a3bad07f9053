package grpc

import (
	"sync"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name orchestrators use in health checks.
const ServiceName = "showfinder.v1.ShowFinder"

var (
	grpcServerMetrics         *grpcprom.ServerMetrics
	registerServerMetricsOnce sync.Once
)

// HealthServer is a gRPC server exposing the standard health service for the show
// finder, plus reflection so grpcurl and health checkers can discover it.
type HealthServer struct {
	*grpc.Server
	health *health.Server
}

// NewGRPCServer creates the health server with Prometheus interceptors. Every
// service starts as SERVING.
func NewGRPCServer() *HealthServer {
	// Set up Prometheus gRPC server metrics once per process
	registerServerMetricsOnce.Do(func() {
		grpcServerMetrics = grpcprom.NewServerMetrics(
			grpcprom.WithServerHandlingTimeHistogram(),
		)
		prometheus.MustRegister(grpcServerMetrics)
	})

	srvMetrics := grpcServerMetrics

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(srvMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(srvMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	srvMetrics.InitializeMetrics(grpcServer)

	return &HealthServer{Server: grpcServer, health: healthServer}
}

// Shutdown marks every service NOT_SERVING so health checks fail while in-flight calls
// drain, then stops the server.
func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
}
