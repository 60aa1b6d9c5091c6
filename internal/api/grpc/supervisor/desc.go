package supervisor

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "pulseinjector.v1.Supervisor"

	// GetStatusMethod is the full method name of GetStatus.
	GetStatusMethod = "/" + ServiceName + "/GetStatus"
	// StopMethod is the full method name of Stop.
	StopMethod = "/" + ServiceName + "/Stop"
)

// SupervisorServer is the server API of the supervisor service.
type SupervisorServer interface {
	// GetStatus returns the current progress snapshot.
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// Stop asks the run to end at the next phase boundary and returns the snapshot.
	Stop(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// SupervisorClient is the client API of the supervisor service.
type SupervisorClient interface {
	GetStatus(ctx context.Context, req *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Stop(ctx context.Context, req *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// serviceDesc describes the supervisor service for grpc.Server.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SupervisorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler:    getStatusHandler,
		},
		{
			MethodName: "Stop",
			Handler:    stopHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pulseinjector/v1/supervisor.proto",
}

// RegisterSupervisorServer registers srv on s.
func RegisterSupervisorServer(s grpc.ServiceRegistrar, srv SupervisorServer) {
	s.RegisterService(&serviceDesc, srv)
}

func getStatusHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(SupervisorServer).GetStatus(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetStatusMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SupervisorServer).GetStatus(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

func stopHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(SupervisorServer).Stop(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: StopMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SupervisorServer).Stop(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

// supervisorClient invokes the supervisor methods on a connection.
type supervisorClient struct {
	cc grpc.ClientConnInterface
}

// NewSupervisorClient wraps a connection in the supervisor client API.
func NewSupervisorClient(cc grpc.ClientConnInterface) SupervisorClient {
	return &supervisorClient{cc: cc}
}

// GetStatus calls the GetStatus method.
func (c *supervisorClient) GetStatus(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetStatusMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// Stop calls the Stop method.
func (c *supervisorClient) Stop(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, StopMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
