package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the admin service.
const ServiceName = "kitlibrarian.admin.v1.ReminderAdmin"

const (
	methodRunCycle          = "/" + ServiceName + "/RunCycle"
	methodPreviewEmail      = "/" + ServiceName + "/PreviewEmail"
	methodListNotifications = "/" + ServiceName + "/ListBorrowerNotifications"
	methodRunRetention      = "/" + ServiceName + "/RunRetention"
)

// AdminServer is the server API of the admin service. Messages are
// protobuf well-known types so no generated code is needed.
type AdminServer interface {
	RunCycle(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	PreviewEmail(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListBorrowerNotifications(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	RunRetention(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterAdminServer(s grpc.ServiceRegistrar, srv AdminServer) {
	s.RegisterService(&adminServiceDesc, srv)
}

func runCycleHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).RunCycle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRunCycle}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServer).RunCycle(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func previewEmailHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).PreviewEmail(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPreviewEmail}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServer).PreviewEmail(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func listNotificationsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).ListBorrowerNotifications(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodListNotifications}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServer).ListBorrowerNotifications(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func runRetentionHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).RunRetention(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRunRetention}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdminServer).RunRetention(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var adminServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunCycle", Handler: runCycleHandler},
		{MethodName: "PreviewEmail", Handler: previewEmailHandler},
		{MethodName: "ListBorrowerNotifications", Handler: listNotificationsHandler},
		{MethodName: "RunRetention", Handler: runRetentionHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kitlibrarian/admin.proto",
}

// AdminClient calls the admin service.
type AdminClient struct {
	cc grpc.ClientConnInterface
}

func NewAdminClient(cc grpc.ClientConnInterface) *AdminClient {
	return &AdminClient{cc: cc}
}

func (c *AdminClient) RunCycle(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodRunCycle, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AdminClient) PreviewEmail(ctx context.Context, borrowerID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodPreviewEmail, wrapperspb.String(borrowerID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AdminClient) ListBorrowerNotifications(ctx context.Context, borrowerID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodListNotifications, wrapperspb.String(borrowerID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AdminClient) RunRetention(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodRunRetention, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
