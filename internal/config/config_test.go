package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gitlab.com/fog-offload.net/internal/domain"
)

func TestNewDispatcherCfgDefaults(t *testing.T) {
	cfg, err := NewDispatcherCfg()
	if err != nil {
		t.Fatalf("NewDispatcherCfg: %v", err)
	}
	if cfg.StalenessThreshold != 30*time.Second {
		t.Errorf("staleness = %v, want 30s", cfg.StalenessThreshold)
	}
	if cfg.Weights != domain.WeightsCPUHeavy {
		t.Errorf("weights = %+v, want cpu preset", cfg.Weights)
	}
	if cfg.FailoverEnabled {
		t.Error("failover should be off by default")
	}
}

func TestNewDispatcherCfgOverrides(t *testing.T) {
	t.Setenv("SCORING_PRESET", "even")
	t.Setenv("STALENESS_THRESHOLD_SEC", "12.5")
	t.Setenv("FAILOVER_ENABLED", "true")

	cfg, err := NewDispatcherCfg()
	if err != nil {
		t.Fatalf("NewDispatcherCfg: %v", err)
	}
	if cfg.Weights != domain.WeightsEven {
		t.Errorf("weights = %+v, want even preset", cfg.Weights)
	}
	if cfg.StalenessThreshold != 12500*time.Millisecond {
		t.Errorf("staleness = %v", cfg.StalenessThreshold)
	}
	if !cfg.FailoverEnabled {
		t.Error("failover should be on")
	}

	t.Setenv("SCORING_WEIGHTS", "0.5, 0.25, 0.25")
	cfg, err = NewDispatcherCfg()
	if err != nil {
		t.Fatalf("NewDispatcherCfg: %v", err)
	}
	want := domain.ScoringWeights{CPU: 0.5, Memory: 0.25, Queue: 0.25}
	if cfg.Weights != want {
		t.Errorf("weights = %+v, want %+v", cfg.Weights, want)
	}
}

func TestNewDispatcherCfgRejectsUnknownPreset(t *testing.T) {
	t.Setenv("SCORING_PRESET", "fastest")
	if _, err := NewDispatcherCfg(); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func TestNewWorkerCfg(t *testing.T) {
	t.Setenv("FOG_NODE_NUMBER", "2")
	t.Setenv("COST_PRESET", "direct")
	t.Setenv("FINGERPRINT_INCLUDE_DEADLINE", "true")

	cfg, err := NewWorkerCfg()
	if err != nil {
		t.Fatalf("NewWorkerCfg: %v", err)
	}
	if cfg.Cost != domain.CostDirect {
		t.Errorf("cost = %+v, want direct preset", cfg.Cost)
	}
	if !cfg.Fingerprint.IncludeDeadline {
		t.Error("deadline should be part of the fingerprint")
	}
	if cfg.MetricsLogFile != "fog_node_2_log.csv" {
		t.Errorf("metrics log = %q", cfg.MetricsLogFile)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("ttl = %v", cfg.CacheTTL)
	}
}

func TestNewWorkerCfgRejectsZeroBandwidth(t *testing.T) {
	t.Setenv("COST_BANDWIDTH", "0")
	if _, err := NewWorkerCfg(); err == nil {
		t.Fatal("expected error for zero bandwidth")
	}
}

func TestParseNodeDirectory(t *testing.T) {
	data := []byte(`
nodes:
  - id: "1"
    url: http://fog1:5000/
    port: 5000
  - id: "2"
    port: 5001
`)
	dir, err := ParseNodeDirectory(data)
	if err != nil {
		t.Fatalf("ParseNodeDirectory: %v", err)
	}
	n1, ok := dir.Lookup("1")
	if !ok || n1.URL != "http://fog1:5000" {
		t.Errorf("node 1 = %+v", n1)
	}
	n2, ok := dir.Lookup("2")
	if !ok || n2.URL != "http://localhost:5001" {
		t.Errorf("node 2 = %+v", n2)
	}
}

func TestParseNodeDirectoryErrors(t *testing.T) {
	cases := map[string]string{
		"empty":     `nodes: []`,
		"no id":     "nodes:\n  - url: http://a\n",
		"duplicate": "nodes:\n  - id: a\n    port: 1\n  - id: a\n    port: 2\n",
		"no addr":   "nodes:\n  - id: a\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseNodeDirectory([]byte(body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadNodeDirectoryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.yaml")
	if err := os.WriteFile(path, []byte("nodes:\n  - id: x\n    port: 7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	dir, err := LoadNodeDirectory(path)
	if err != nil {
		t.Fatalf("LoadNodeDirectory: %v", err)
	}
	if len(dir) != 1 {
		t.Fatalf("len = %d", len(dir))
	}
	if _, err := LoadNodeDirectory(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestInitReader(t *testing.T) {
	if err := InitReader([]string{"fog"}); err != nil {
		t.Fatalf("no env name: %v", err)
	}

	base := filepath.Join(t.TempDir(), "test")
	if err := os.WriteFile(base+".env", []byte("FOG_READER_PROBE=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("FOG_READER_PROBE") })

	if err := InitReader([]string{"fog", base}); err != nil {
		t.Fatalf("InitReader: %v", err)
	}
	if got := os.Getenv("FOG_READER_PROBE"); got != "loaded" {
		t.Errorf("FOG_READER_PROBE = %q", got)
	}
	if err := InitReader([]string{"fog", base + "-missing"}); err == nil {
		t.Fatal("expected error for missing env file")
	}
}
