package transport

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// RegisterFunc attaches services to a server before it starts serving.
type RegisterFunc func(grpc.ServiceRegistrar)

type Server struct {
	grpc   *grpc.Server
	lis    net.Listener
	health *health.Server
}

// NewServer wraps lis with a gRPC server carrying the standard health
// service plus whatever register adds.
func NewServer(lis net.Listener, register RegisterFunc, opts ...grpc.ServerOption) *Server {
	s := &Server{
		grpc:   grpc.NewServer(opts...),
		lis:    lis,
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	if register != nil {
		register(s.grpc)
	}
	return s
}

// StartServer listens on addr (e.g. ":50052"); call Serve to accept.
func StartServer(addr string, register RegisterFunc) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewServer(lis, register), nil
}

func (s *Server) Serve() error {
	return s.grpc.Serve(s.lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *Server) Addr() net.Addr { return s.lis.Addr() }
