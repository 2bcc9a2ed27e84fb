package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "econdashboard.control.v1.DashboardControl"

// -----------------------------------------------------------------------------
// ControlServer is the admin surface of a running dashboard. Every message is a
// protobuf well-known type, so no generated code is needed.
// -----------------------------------------------------------------------------

type ControlServer interface {
	InvalidateSeries(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	RefreshSeries(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ClearCache(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	ListIndicators(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	RemoveCustom(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

// ControlServiceDesc describes ControlServer for grpc.Server.RegisterService.
var ControlServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("InvalidateSeries", ControlServer.InvalidateSeries),
		unary("RefreshSeries", ControlServer.RefreshSeries),
		unary("ClearCache", ControlServer.ClearCache),
		unary("ListIndicators", ControlServer.ListIndicators),
		unary("RemoveCustom", ControlServer.RemoveCustom),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "econdashboard/control.proto",
}

// RegisterControlServer attaches srv to a gRPC server.
func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&ControlServiceDesc, srv)
}

// -----------------------------------------------------------------------------

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary builds the method handler the protoc plugin would otherwise generate.
func unary[Req any, Resp any](name string, call func(ControlServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ControlServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ControlServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
