// Package health exposes the standard gRPC health-checking service so
// orchestrators can probe the dashboard without going through HTTP.
package health

import (
	"context"
	"net"

	"github.com/dmitrijs2005/subdash/internal/logging"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check service name reported next to the
// overall ("") status.
const ServiceName = "subdash.Dashboard"

type Server struct {
	address string
	health  *grpchealth.Server
	logger  logging.Logger
}

// NewServer creates a health server that reports NOT_SERVING until
// SetServing(true) is called.
func NewServer(a string, l logging.Logger) *Server {
	h := grpchealth.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{
		address: a,
		health:  h,
		logger:  l.With("module", "grpc_health"),
	}
}

// SetServing flips both the overall and the dashboard status.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
