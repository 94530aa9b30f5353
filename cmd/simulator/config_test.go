package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.gcfg")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const fullConfig = `
[simulation]
name = bench
timestep = 0.0001
timemax = 2.5
domainmin = 0.0
domainmin = 0.0
domainmin = 0.0
domainmax = 1.0
domainmax = 1.0
domainmax = 3.0
gravity = 0.0
gravity = 0.0
gravity = -9.8
workers = 4

[output]
savecount = 100
directory = out

[metrics]
enabled = true
addr = :9999

[pacing]
realtime = true
scale = 2.0
`

func TestLoadRunConfig(t *testing.T) {
	cfg, err := loadRunConfig(writeConfig(t, fullConfig))
	if err != nil {
		t.Fatalf("loadRunConfig: %v", err)
	}

	if cfg.Simulation.Name != "bench" {
		t.Fatalf("name %q", cfg.Simulation.Name)
	}
	if cfg.Simulation.TimeStep != 0.0001 || cfg.Simulation.TimeMax != 2.5 {
		t.Fatalf("time parameters %g/%g", cfg.Simulation.TimeStep, cfg.Simulation.TimeMax)
	}
	if cfg.Simulation.Workers != 4 {
		t.Fatalf("workers %d", cfg.Simulation.Workers)
	}
	if cfg.Output.SaveCount != 100 || cfg.Output.Directory != "out" {
		t.Fatalf("output section %+v", cfg.Output)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != ":9999" {
		t.Fatalf("metrics section %+v", cfg.Metrics)
	}
	if !cfg.Pacing.RealTime || cfg.Pacing.Scale != 2.0 {
		t.Fatalf("pacing section %+v", cfg.Pacing)
	}

	core, err := cfg.coreConfig()
	if err != nil {
		t.Fatalf("coreConfig: %v", err)
	}
	if core.Domain.Max.Z != 3.0 {
		t.Fatalf("domain max %+v", core.Domain.Max)
	}
	if core.Gravity.Z != -9.8 {
		t.Fatalf("gravity %+v", core.Gravity)
	}
	if core.SaveCount != 100 {
		t.Fatalf("save count %d", core.SaveCount)
	}
}

func TestLoadRunConfigDefaults(t *testing.T) {
	cfg, err := loadRunConfig(writeConfig(t, `
[simulation]
timestep = 0.001
timemax = 1.0
domainmin = 0.0
domainmin = 0.0
domainmin = 0.0
domainmax = 1.0
domainmax = 1.0
domainmax = 1.0
gravity = 0.0
gravity = 0.0
gravity = 0.0
`))
	if err != nil {
		t.Fatalf("loadRunConfig: %v", err)
	}
	if cfg.Simulation.Name != "run" {
		t.Fatalf("default name %q", cfg.Simulation.Name)
	}
	if cfg.Output.Directory != "." {
		t.Fatalf("default directory %q", cfg.Output.Directory)
	}
	if cfg.Metrics.Addr != ":9100" {
		t.Fatalf("default metrics addr %q", cfg.Metrics.Addr)
	}
	if cfg.Pacing.Scale != 1 {
		t.Fatalf("default scale %g", cfg.Pacing.Scale)
	}
}

func TestLoadRunConfigMissingFile(t *testing.T) {
	if _, err := loadRunConfig(filepath.Join(t.TempDir(), "absent.gcfg")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestCoreConfigRejectsBadVectors(t *testing.T) {
	cfg, err := loadRunConfig(writeConfig(t, `
[simulation]
timestep = 0.001
timemax = 1.0
domainmin = 0.0
domainmax = 1.0
gravity = 0.0
`))
	if err != nil {
		t.Fatalf("loadRunConfig: %v", err)
	}
	if _, err := cfg.coreConfig(); err == nil {
		t.Fatal("two-component domain accepted")
	}
}
