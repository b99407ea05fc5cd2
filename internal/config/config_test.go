package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Topology.Source != "demo" {
		t.Fatalf("expected demo source, got %s", cfg.Topology.Source)
	}
	if cfg.Simulation.Interval != time.Minute {
		t.Fatalf("expected 1m interval, got %v", cfg.Simulation.Interval)
	}
	if cfg.Simulation.RetentionHours != 48 {
		t.Fatalf("expected 48h retention, got %d", cfg.Simulation.RetentionHours)
	}
	if !cfg.Remediation.DryRun {
		t.Fatalf("remediation should default to dry-run")
	}
	if cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("unexpected metrics address %s", cfg.Server.MetricsAddress)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(`topology:
  source: file
  path: /etc/scaleguard/topology.yaml
simulation:
  growthFactor: 1.5
logging:
  level: debug
  json: true
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Topology.Source != "file" || cfg.Topology.Path != "/etc/scaleguard/topology.yaml" {
		t.Fatalf("unexpected topology config: %+v", cfg.Topology)
	}
	if cfg.Simulation.GrowthFactor != 1.5 {
		t.Fatalf("expected growth 1.5, got %f", cfg.Simulation.GrowthFactor)
	}
	if !cfg.Logging.JSON || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/no/such/config.yaml"); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCALEGUARD_TOPOLOGY_SOURCE", "http")
	t.Setenv("SCALEGUARD_TOPOLOGY_BASE_URL", "http://inventory:8080")
	t.Setenv("SCALEGUARD_GROWTH_FACTOR", "2.5")
	t.Setenv("SCALEGUARD_CYCLE_INTERVAL", "30s")
	t.Setenv("SCALEGUARD_REMEDIATION_DRY_RUN", "false")
	t.Setenv("SCALEGUARD_LOG_FORMAT", "json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Topology.Source != "http" || cfg.Topology.BaseURL != "http://inventory:8080" {
		t.Fatalf("env topology override not applied: %+v", cfg.Topology)
	}
	if cfg.Simulation.GrowthFactor != 2.5 {
		t.Fatalf("expected growth 2.5, got %f", cfg.Simulation.GrowthFactor)
	}
	if cfg.Simulation.Interval != 30*time.Second {
		t.Fatalf("expected 30s interval, got %v", cfg.Simulation.Interval)
	}
	if cfg.Remediation.DryRun {
		t.Fatalf("dry-run override not applied")
	}
	if !cfg.Logging.JSON {
		t.Fatalf("log format override not applied")
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	t.Setenv("SCALEGUARD_TOPOLOGY_SOURCE", "file")
	if _, err := Load(""); err == nil {
		t.Fatalf("file source without path should fail validation")
	}

	t.Setenv("SCALEGUARD_TOPOLOGY_SOURCE", "carrier-pigeon")
	if _, err := Load(""); err == nil {
		t.Fatalf("unknown source should fail validation")
	}

	t.Setenv("SCALEGUARD_TOPOLOGY_SOURCE", "demo")
	t.Setenv("SCALEGUARD_GROWTH_FACTOR", "-1")
	if _, err := Load(""); err == nil {
		t.Fatalf("negative growth factor should fail validation")
	}
}
