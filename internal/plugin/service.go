// Package plugin evaluates computed columns in an external process over
// gRPC. A row travels as a google.protobuf.Struct and the result comes
// back as a google.protobuf.Value.
package plugin

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "rowkit.plugin.v1.RowFunction"

	evaluateMethod = "/" + ServiceName + "/Evaluate"
	metadataMethod = "/" + ServiceName + "/Metadata"
)

// Function is what a plugin implements.
type Function interface {
	// Metadata describes the plugin, e.g. {"name": "upper", "version": "0.1.0"}.
	Metadata(context.Context) (*structpb.Struct, error)
	// Evaluate computes one cell from one row.
	Evaluate(context.Context, *structpb.Struct) (*structpb.Value, error)
}

// Register exposes fn on s.
func Register(s grpc.ServiceRegistrar, fn Function) {
	s.RegisterService(&serviceDesc, fn)
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Function).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Function).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func metadataHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Function).Metadata(ctx)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: metadataMethod}
	handler := func(ctx context.Context, _ any) (any, error) {
		return srv.(Function).Metadata(ctx)
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Function)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "Metadata", Handler: metadataHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rowkit/plugin/v1/rowfunction.proto",
}
