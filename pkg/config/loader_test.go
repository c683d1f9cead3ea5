package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("../../config/config.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected log_level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.Seed != 42 {
		t.Errorf("Expected seed 42, got %d", cfg.Seed)
	}
	if cfg.Graph.Nodes != 1000 {
		t.Errorf("Expected 1000 nodes, got %d", cfg.Graph.Nodes)
	}
	if cfg.Graph.AverageDegree != 15 {
		t.Errorf("Expected average degree 15, got %d", cfg.Graph.AverageDegree)
	}
	if cfg.Graph.Frequency.Min != 1 || cfg.Graph.Frequency.Max != 9 {
		t.Errorf("Unexpected frequency range: %+v", cfg.Graph.Frequency)
	}
	if cfg.SIR.TimeSteps != 100 || cfg.SIR.Beta != 0.3 || cfg.SIR.Gamma != 0.1 {
		t.Errorf("Unexpected SIR parameters: %+v", cfg.SIR)
	}
	if !cfg.Centrality.Enabled || cfg.Centrality.Cost != CostScaled {
		t.Errorf("Unexpected centrality config: %+v", cfg.Centrality)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(path, []byte("sir:\n  beta: [0.3\n"), 0o600); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero time steps", func(c *Config) { c.SIR.TimeSteps = 0 }, false},
		{"boundary probabilities", func(c *Config) { c.SIR.Beta = 0; c.SIR.Gamma = 1 }, false},
		{"single isolated node", func(c *Config) { c.Graph.Nodes = 1; c.Graph.AverageDegree = 0 }, false},
		{"empty log level", func(c *Config) { c.LogLevel = "" }, true},
		{"infected fraction above one", func(c *Config) { c.Graph.InitialInfectedFraction = 1.2 }, true},
		{"zero frequency", func(c *Config) { c.Graph.Frequency.Min = 0 }, true},
		{"strength max above one", func(c *Config) { c.Graph.Strength.Max = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
