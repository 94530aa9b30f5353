package main

import (
	"fmt"

	"gopkg.in/gcfg.v1"

	"github.com/signalsfoundry/granular-simulator/core"
)

// runConfig is the ini-style run configuration. Vector-valued keys repeat:
//
//	[simulation]
//	gravity = 0
//	gravity = 0
//	gravity = -9.8
type runConfig struct {
	Simulation struct {
		Name      string
		TimeStep  float64
		TimeMax   float64
		DomainMin []float64
		DomainMax []float64
		Gravity   []float64
		Workers   int
	}
	Output struct {
		SaveCount int
		Directory string
	}
	Metrics struct {
		Enabled bool
		Addr    string
	}
	Pacing struct {
		RealTime bool
		Scale    float64
	}
}

// loadRunConfig parses the config file and applies defaults.
func loadRunConfig(path string) (runConfig, error) {
	var cfg runConfig
	if err := gcfg.ReadFileInto(&cfg, path); err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if cfg.Simulation.Name == "" {
		cfg.Simulation.Name = "run"
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "."
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9100"
	}
	if cfg.Pacing.Scale == 0 {
		cfg.Pacing.Scale = 1
	}
	return cfg, nil
}

func vecFromSlice(v []float64, what string) (core.Vec3, error) {
	if len(v) != 3 {
		return core.Vec3{}, fmt.Errorf("%s needs exactly 3 components, got %d", what, len(v))
	}
	return core.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

// coreConfig converts the file representation into the engine config.
func (cfg runConfig) coreConfig() (core.Config, error) {
	min, err := vecFromSlice(cfg.Simulation.DomainMin, "domain-min")
	if err != nil {
		return core.Config{}, err
	}
	max, err := vecFromSlice(cfg.Simulation.DomainMax, "domain-max")
	if err != nil {
		return core.Config{}, err
	}
	gravity, err := vecFromSlice(cfg.Simulation.Gravity, "gravity")
	if err != nil {
		return core.Config{}, err
	}
	return core.Config{
		Name:      cfg.Simulation.Name,
		Domain:    core.AABB{Min: min, Max: max},
		Gravity:   gravity,
		TimeStep:  cfg.Simulation.TimeStep,
		TimeMax:   cfg.Simulation.TimeMax,
		SaveCount: cfg.Output.SaveCount,
		Workers:   cfg.Simulation.Workers,
	}, nil
}
