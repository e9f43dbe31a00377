package grpc

import (
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type ServerOptions struct {
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewServer builds a gRPC server exposing the booking service and the
// standard health service. Both report SERVING until health.Shutdown.
func NewServer(booking BookingServiceServer, opts ServerOptions) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RequestIDInterceptor(),
			MetricsInterceptor(),
			DefaultRequestTimeoutInterceptor(opts.RequestTimeout),
		),
	)
	RegisterBookingServiceServer(srv, booking)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}
