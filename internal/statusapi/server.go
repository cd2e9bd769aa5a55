package statusapi

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/signalsfoundry/vision-status/internal/logging"
	"github.com/signalsfoundry/vision-status/internal/observability"
)

// NewServer builds a gRPC server with the request-id, metrics and tracing
// interceptors installed and svc registered. collector may be nil.
func NewServer(svc StatusServer, log logging.Logger, collector *observability.RPCCollector, opts ...grpc.ServerOption) *grpc.Server {
	unary := []grpc.UnaryServerInterceptor{RequestIDUnaryServerInterceptor(log)}
	stream := []grpc.StreamServerInterceptor{RequestIDStreamServerInterceptor(log)}
	if collector != nil {
		unary = append(unary, collector.UnaryServerInterceptor())
		stream = append(stream, collector.StreamServerInterceptor())
	}
	unary = append(unary, TracingUnaryServerInterceptor())
	stream = append(stream, TracingStreamServerInterceptor())

	serverOpts := append([]grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	}, opts...)

	server := grpc.NewServer(serverOpts...)
	RegisterStatusServer(server, svc)
	return server
}
