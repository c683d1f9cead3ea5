package simd

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/GoSim-25-26J-441/contagion-core/pkg/logger"
)

// SimulationGRPCServer implements SimulationServiceServer using a RunStore backend.
type SimulationGRPCServer struct {
	UnimplementedSimulationServiceServer
	store    *RunStore
	Executor *RunExecutor
}

// NewSimulationGRPCServer creates a new SimulationGRPCServer with the provided RunStore and RunExecutor.
func NewSimulationGRPCServer(store *RunStore, executor *RunExecutor) *SimulationGRPCServer {
	return &SimulationGRPCServer{
		store:    store,
		Executor: executor,
	}
}

func (s *SimulationGRPCServer) CreateRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	fields := req.GetFields()
	runID := fields["run_id"].GetStringValue()
	configYAML := fields["config_yaml"].GetStringValue()

	rec, err := s.store.Create(runID, RunInput{ConfigYAML: configYAML})
	if err != nil {
		return nil, grpcError(err)
	}

	started, err := s.Executor.Start(rec.ID)
	if err != nil {
		return nil, grpcError(err)
	}

	logger.Info("run created", "run_id", rec.ID)
	return runToStruct(started)
}

func (s *SimulationGRPCServer) GetRun(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, ErrRunIDMissing.Error())
	}

	rec, ok := s.store.Get(req.GetValue())
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	return runToStruct(rec)
}

func (s *SimulationGRPCServer) StopRun(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	updated, err := s.Executor.Stop(req.GetValue())
	if err != nil {
		return nil, grpcError(err)
	}
	logger.Info("run cancelled", "run_id", req.GetValue())
	return runToStruct(updated)
}

func runToStruct(rec RunRecord) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(convertRunToJSON(rec))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// grpcError maps run errors onto gRPC status codes
func grpcError(err error) error {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrRunIDMissing), errors.Is(err, ErrInvalidRunID), errors.Is(err, ErrInvalidConfig):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrRunExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrRunTerminal):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
