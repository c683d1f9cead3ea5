package config

import (
	"strings"
	"testing"
)

func TestParseConfigYAMLString(t *testing.T) {
	yamlText := `
seed: 7
graph:
  nodes: 50
  average_degree: 4
sir:
  time_steps: 20
  beta: 0.5
  gamma: 0.2
centrality:
  enabled: false
`

	cfg, err := ParseConfigYAMLString(yamlText)
	if err != nil {
		t.Fatalf("ParseConfigYAMLString failed: %v", err)
	}
	if cfg.Seed != 7 {
		t.Errorf("expected seed 7, got %d", cfg.Seed)
	}
	if cfg.Graph.Nodes != 50 || cfg.Graph.AverageDegree != 4 {
		t.Errorf("unexpected graph config: %+v", cfg.Graph)
	}
	if cfg.SIR.TimeSteps != 20 || cfg.SIR.Beta != 0.5 || cfg.SIR.Gamma != 0.2 {
		t.Errorf("unexpected sir config: %+v", cfg.SIR)
	}
	if cfg.Centrality.Enabled {
		t.Error("expected centrality to be disabled")
	}

	// Omitted fields keep their defaults
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level, got %q", cfg.LogLevel)
	}
	if cfg.Graph.InitialInfectedFraction != 0.1 {
		t.Errorf("expected default infected fraction, got %f", cfg.Graph.InitialInfectedFraction)
	}
	if cfg.Graph.Strength.Min != 0.1 || cfg.Graph.Strength.Max != 1.0 {
		t.Errorf("expected default strength range, got %+v", cfg.Graph.Strength)
	}
	if cfg.Centrality.Cost != CostScaled {
		t.Errorf("expected default cost, got %q", cfg.Centrality.Cost)
	}
}

func TestParseConfigYAMLStringInvalid(t *testing.T) {
	tests := []struct {
		name     string
		yamlText string
		errPart  string
	}{
		{"beta above one", "sir: {beta: 1.5}", "sir.beta"},
		{"negative gamma", "sir: {gamma: -0.1}", "sir.gamma"},
		{"negative time steps", "sir: {time_steps: -1}", "sir.time_steps"},
		{"zero nodes", "graph: {nodes: 0, average_degree: 0}", "graph.nodes"},
		{"degree too high", "graph: {nodes: 5, average_degree: 5}", "average_degree"},
		{"bad log level", "log_level: verbose", "log_level"},
		{"strength min zero", "graph: {strength: {min: 0, max: 0.5}}", "graph.strength.min"},
		{"strength inverted", "graph: {strength: {min: 0.6, max: 0.5}}", "graph.strength.max"},
		{"frequency inverted", "graph: {frequency: {min: 5, max: 2}}", "graph.frequency.max"},
		{"unknown cost", "centrality: {cost: hops}", "centrality.cost"},
		{"too many nodes", "graph: {nodes: 100001}", "graph.nodes must be <= 100000"},
		{"too many time steps", "sir: {time_steps: 100001}", "sir.time_steps must be <= 100000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfigYAMLString(tt.yamlText)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("expected error to mention %q, got: %v", tt.errPart, err)
			}
		})
	}
}

func TestParseConfigYAMLStringMalformed(t *testing.T) {
	_, err := ParseConfigYAMLString("graph: [nodes")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse config yaml") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseConfigYAMLEmpty(t *testing.T) {
	cfg, err := ParseConfigYAML(nil)
	if err != nil {
		t.Fatalf("empty document should yield defaults: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Seed = 99
	cfg.SIR.Beta = 0.05

	data, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML failed: %v", err)
	}
	parsed, err := ParseConfigYAML(data)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if *parsed != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, cfg)
	}
}

func TestParseConfigYAMLAcceptsUpperBounds(t *testing.T) {
	cfg, err := ParseConfigYAMLString("graph: {nodes: 100000}\nsir: {time_steps: 100000}\n")
	if err != nil {
		t.Fatalf("expected the bounds themselves to be valid: %v", err)
	}
	if cfg.Graph.Nodes != MaxNodes || cfg.SIR.TimeSteps != MaxTimeSteps {
		t.Errorf("unexpected bounds: nodes %d, time steps %d", cfg.Graph.Nodes, cfg.SIR.TimeSteps)
	}
}
