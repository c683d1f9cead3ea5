//go:build integration
// +build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/GoSim-25-26J-441/contagion-core/internal/metrics"
	"github.com/GoSim-25-26J-441/contagion-core/internal/simd"
)

func referenceConfig(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../config/config.yaml")
	if err != nil {
		t.Fatalf("read reference config: %v", err)
	}
	return string(data)
}

func waitForTerminal(t *testing.T, store *simd.RunStore, runID string) simd.RunRecord {
	t.Helper()
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		rec, ok := store.Get(runID)
		if !ok {
			t.Fatalf("run %s disappeared", runID)
		}
		if rec.Status.IsTerminal() {
			return rec
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("run %s did not finish in time", runID)
	return simd.RunRecord{}
}

// TestIntegration_ReferenceExperimentOverHTTP runs the reference experiment
// through a real HTTP listener and checks the epidemic took off
func TestIntegration_ReferenceExperimentOverHTTP(t *testing.T) {
	reg := metrics.NewRegistry()
	store := simd.NewRunStore()
	srv := httptest.NewServer(simd.NewHTTPServer(store, simd.NewRunExecutor(store, reg), reg).Handler())
	defer srv.Close()

	payload, _ := json.Marshal(map[string]any{
		"run_id":      "reference",
		"config_yaml": referenceConfig(t),
	})
	resp, err := http.Post(srv.URL+"/v1/runs", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST /v1/runs: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	rec := waitForTerminal(t, store, "reference")
	if rec.Error != "" {
		t.Fatalf("run failed: %s", rec.Error)
	}

	resp, err = http.Get(srv.URL + "/v1/runs/reference/curve")
	if err != nil {
		t.Fatalf("GET curve: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Curve   []map[string]float64 `json:"curve"`
		Summary struct {
			AttackRate float64 `json:"attack_rate"`
		} `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Curve) != 101 {
		t.Fatalf("expected 101 curve points, got %d", len(body.Curve))
	}
	if body.Summary.AttackRate < 0.9 {
		t.Fatalf("expected the reference epidemic to reach most of the population, attack rate %.2f", body.Summary.AttackRate)
	}

	resp2, err := http.Get(srv.URL + "/v1/runs/reference/centrality?top=3")
	if err != nil {
		t.Fatalf("GET centrality: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for centrality, got %d", resp2.StatusCode)
	}
}

// TestIntegration_GRPCOverTCP drives the gRPC service over a loopback listener
func TestIntegration_GRPCOverTCP(t *testing.T) {
	store := simd.NewRunStore()
	exec := simd.NewRunExecutor(store, metrics.NewRegistry())

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := grpc.NewServer()
	simd.RegisterSimulationServiceServer(server, simd.NewSimulationGRPCServer(store, exec))
	go func() { _ = server.Serve(lis) }()
	defer server.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	client := simd.NewSimulationServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req, _ := structpb.NewStruct(map[string]any{
		"config_yaml": "seed: 9\ngraph:\n  nodes: 200\n  average_degree: 5\nsir:\n  time_steps: 30\n",
	})
	created, err := client.CreateRun(ctx, req)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	runID := created.GetFields()["id"].GetStringValue()
	if runID == "" {
		t.Fatalf("expected generated run id")
	}

	waitForTerminal(t, store, runID)

	got, err := client.GetRun(ctx, wrapperspb.String(runID))
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if status := got.GetFields()["status"].GetStringValue(); status != "completed" {
		t.Fatalf("expected completed, got %s", status)
	}
}
