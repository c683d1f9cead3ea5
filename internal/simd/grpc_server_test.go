package simd

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func newTestGRPCClient(t *testing.T) (*SimulationServiceClient, *RunStore, *RunExecutor) {
	t.Helper()
	store, exec, _ := newTestExecutor(t)

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	RegisterSimulationServiceServer(server, NewSimulationGRPCServer(store, exec))
	go func() {
		_ = server.Serve(lis)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewSimulationServiceClient(conn), store, exec
}

func createRequest(t *testing.T, runID, configYAML string) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(map[string]any{
		"run_id":      runID,
		"config_yaml": configYAML,
	})
	require.NoError(t, err)
	return req
}

func TestGRPCCreateGetLifecycle(t *testing.T) {
	client, _, exec := newTestGRPCClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := client.CreateRun(ctx, createRequest(t, "run-1", smallConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, "run-1", created.GetFields()["id"].GetStringValue())
	assert.Equal(t, "running", created.GetFields()["status"].GetStringValue())

	exec.Wait()

	got, err := client.GetRun(ctx, wrapperspb.String("run-1"))
	require.NoError(t, err)
	fields := got.GetFields()
	assert.Equal(t, "completed", fields["status"].GetStringValue())
	assert.EqualValues(t, 7, fields["seed"].GetNumberValue())
	assert.EqualValues(t, 15, fields["round"].GetNumberValue())

	summary := fields["summary"].GetStructValue().GetFields()
	final := summary["final"].GetStructValue().GetFields()
	total := final["susceptible"].GetNumberValue() + final["infected"].GetNumberValue() + final["recovered"].GetNumberValue()
	assert.EqualValues(t, 40, total)
}

func TestGRPCErrorCodes(t *testing.T) {
	client, store, _ := newTestGRPCClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := client.CreateRun(ctx, createRequest(t, "run-bad", "graph:\n  nodes: 0\n"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = store.Create("run-1", RunInput{ConfigYAML: smallConfigYAML})
	require.NoError(t, err)
	_, err = client.CreateRun(ctx, createRequest(t, "run-1", smallConfigYAML))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = client.GetRun(ctx, wrapperspb.String("missing"))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetRun(ctx, wrapperspb.String(""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.StopRun(ctx, wrapperspb.String(""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.StopRun(ctx, wrapperspb.String("missing"))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPCStopRun(t *testing.T) {
	client, store, _ := newTestGRPCClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := store.Create("run-1", RunInput{ConfigYAML: smallConfigYAML})
	require.NoError(t, err)

	stopped, err := client.StopRun(ctx, wrapperspb.String("run-1"))
	require.NoError(t, err)
	assert.Equal(t, "cancelled", stopped.GetFields()["status"].GetStringValue())

	_, err = client.StopRun(ctx, wrapperspb.String("run-1"))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestUnimplementedSimulationServiceServer(t *testing.T) {
	var srv UnimplementedSimulationServiceServer
	_, err := srv.GetRun(context.Background(), wrapperspb.String("x"))
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
