package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "breadth.v1.Control"

// -----------------------------------------------------------------------------
// ControlServer is the server API for the breadth.v1.Control service. All
// messages are protobuf well-known types.
// -----------------------------------------------------------------------------

type ControlServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	StartPolling(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	StopPolling(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetInterval(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	CollectNow(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetLivePoints(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
}

// -----------------------------------------------------------------------------

func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&Control_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------

// emptyHandler adapts a method taking Empty to a grpc method handler.
func emptyHandler(method string, call func(ControlServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(emptypb.Empty)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ControlServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ControlServer), ctx, req.(*emptypb.Empty))
			})
		},
	}
}

// -----------------------------------------------------------------------------

// int64Handler adapts a method taking Int64Value to a grpc method handler.
func int64Handler(method string, call func(ControlServer, context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(wrapperspb.Int64Value)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ControlServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ControlServer), ctx, req.(*wrapperspb.Int64Value))
			})
		},
	}
}

// -----------------------------------------------------------------------------

var Control_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		emptyHandler("GetStatus", ControlServer.GetStatus),
		emptyHandler("StartPolling", ControlServer.StartPolling),
		emptyHandler("StopPolling", ControlServer.StopPolling),
		int64Handler("SetInterval", ControlServer.SetInterval),
		emptyHandler("CollectNow", ControlServer.CollectNow),
		int64Handler("SetLivePoints", ControlServer.SetLivePoints),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "breadth/v1/control.proto",
}

// -----------------------------------------------------------------------------
// ControlClient
// -----------------------------------------------------------------------------

type ControlClient struct {
	cc grpc.ClientConnInterface
}

func NewControlClient(cc grpc.ClientConnInterface) *ControlClient {
	return &ControlClient{cc: cc}
}

func (c *ControlClient) invoke(ctx context.Context, method string, in interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ControlClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetStatus", &emptypb.Empty{}, opts...)
}

func (c *ControlClient) StartPolling(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "StartPolling", &emptypb.Empty{}, opts...)
}

func (c *ControlClient) StopPolling(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "StopPolling", &emptypb.Empty{}, opts...)
}

func (c *ControlClient) SetInterval(ctx context.Context, seconds int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SetInterval", wrapperspb.Int64(seconds), opts...)
}

func (c *ControlClient) CollectNow(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CollectNow", &emptypb.Empty{}, opts...)
}

func (c *ControlClient) SetLivePoints(ctx context.Context, points int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SetLivePoints", wrapperspb.Int64(points), opts...)
}
