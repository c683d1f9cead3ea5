package simd

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// SimulationService is served without generated stubs: requests and
// responses are protobuf well-known types.
const SimulationServiceName = "contagion.v1.SimulationService"

const (
	createRunMethod = "/" + SimulationServiceName + "/CreateRun"
	getRunMethod    = "/" + SimulationServiceName + "/GetRun"
	stopRunMethod   = "/" + SimulationServiceName + "/StopRun"
)

// SimulationServiceServer is the server API for SimulationService
type SimulationServiceServer interface {
	// CreateRun takes {"run_id"?, "config_yaml"}, creates the run and starts it
	CreateRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	StopRun(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// UnimplementedSimulationServiceServer can be embedded for forward compatibility
type UnimplementedSimulationServiceServer struct{}

func (UnimplementedSimulationServiceServer) CreateRun(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateRun not implemented")
}

func (UnimplementedSimulationServiceServer) GetRun(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRun not implemented")
}

func (UnimplementedSimulationServiceServer) StopRun(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method StopRun not implemented")
}

func RegisterSimulationServiceServer(s grpc.ServiceRegistrar, srv SimulationServiceServer) {
	s.RegisterService(&SimulationServiceDesc, srv)
}

func createRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulationServiceServer).CreateRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: createRunMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulationServiceServer).CreateRun(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulationServiceServer).GetRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getRunMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulationServiceServer).GetRun(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func stopRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulationServiceServer).StopRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: stopRunMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulationServiceServer).StopRun(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// SimulationServiceDesc describes SimulationService for grpc.Server
var SimulationServiceDesc = grpc.ServiceDesc{
	ServiceName: SimulationServiceName,
	HandlerType: (*SimulationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateRun", Handler: createRunHandler},
		{MethodName: "GetRun", Handler: getRunHandler},
		{MethodName: "StopRun", Handler: stopRunHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "contagion/v1/simulation.proto",
}

// SimulationServiceClient calls SimulationService over a client connection
type SimulationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSimulationServiceClient(cc grpc.ClientConnInterface) *SimulationServiceClient {
	return &SimulationServiceClient{cc: cc}
}

func (c *SimulationServiceClient) CreateRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, createRunMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SimulationServiceClient) GetRun(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getRunMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SimulationServiceClient) StopRun(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, stopRunMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
