package statusapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "vision.status.v1.VisionStatusService"

const (
	getStatusMethod   = "/" + ServiceName + "/GetStatus"
	watchStatusMethod = "/" + ServiceName + "/WatchStatus"
	sendWarningMethod = "/" + ServiceName + "/SendWarning"
)

// StatusServer is the server API for VisionStatusService. Messages are
// well-known protobuf types so no generated code is needed.
type StatusServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	WatchStatus(*emptypb.Empty, StatusWatchServer) error
	SendWarning(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// StatusWatchServer is the server side of a WatchStatus stream.
type StatusWatchServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type statusWatchServer struct {
	grpc.ServerStream
}

func (x *statusWatchServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

// ServiceDesc describes VisionStatusService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StatusServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStatus", Handler: getStatusHandler},
		{MethodName: "SendWarning", Handler: sendWarningHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchStatus", Handler: watchStatusHandler, ServerStreams: true},
	},
	Metadata: "vision/status/v1/status.proto",
}

// RegisterStatusServer registers srv on s.
func RegisterStatusServer(s grpc.ServiceRegistrar, srv StatusServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func getStatusHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getStatusMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StatusServer).GetStatus(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func sendWarningHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServer).SendWarning(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: sendWarningMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StatusServer).SendWarning(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func watchStatusHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(StatusServer).WatchStatus(m, &statusWatchServer{stream})
}

// Client calls VisionStatusService over cc.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// GetStatus returns the current status snapshot.
func (c *Client) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getStatusMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SendWarning asks the service to publish a vision warning.
func (c *Client) SendWarning(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, sendWarningMethod, in, &emptypb.Empty{}, opts...)
}

// WatchStatus opens a status stream. Call Recv until it returns an error.
func (c *Client) WatchStatus(ctx context.Context, opts ...grpc.CallOption) (*StatusWatchClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], watchStatusMethod, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &StatusWatchClient{stream: stream}, nil
}

// StatusWatchClient is the client side of a WatchStatus stream.
type StatusWatchClient struct {
	stream grpc.ClientStream
}

// Recv blocks for the next snapshot.
func (x *StatusWatchClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.stream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
