package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signalsfoundry/granular-simulator/core"
	"github.com/signalsfoundry/granular-simulator/internal/logging"
	"github.com/signalsfoundry/granular-simulator/internal/observability"
	"github.com/signalsfoundry/granular-simulator/stats"
	"github.com/signalsfoundry/granular-simulator/timectrl"
)

func main() {
	configPath := flag.String("config", "configs/simulator.gcfg", "run configuration file")
	scenarioPath := flag.String("scenario", "", "JSON scenario file; empty runs the built-in shaken-cylinder demo")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, *configPath, *scenarioPath); err != nil {
		log.Error(ctx, "simulator failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, log logging.Logger, configPath, scenarioPath string) error {
	cfg, err := loadRunConfig(configPath)
	if err != nil {
		return err
	}
	coreCfg, err := cfg.coreConfig()
	if err != nil {
		return err
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	sim := core.NewSimulation(coreCfg, log)

	if cfg.Metrics.Enabled {
		collector, err := observability.NewSimCollector(nil)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		sim.SetMetrics(collector)

		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn(ctx, "metrics server stopped", logging.String("error", err.Error()))
			}
		}()
		defer server.Close()
		log.Info(ctx, "metrics listening", logging.String("addr", cfg.Metrics.Addr))
	}

	if cfg.Output.SaveCount > 0 {
		writer, err := newCSVSnapshotWriter(cfg.Output.Directory)
		if err != nil {
			return err
		}
		sim.SetSnapshotWriter(writer)
	}

	if cfg.Pacing.RealTime {
		pacer := timectrl.NewPacer(timectrl.RealTime, cfg.Pacing.Scale)
		pacer.AddListener(func(simElapsed float64) {
			log.Info(ctx, "progress",
				logging.Float64("sim_time", simElapsed),
				logging.Duration("wall_time", pacer.WallElapsed()),
			)
		})
		sim.SetPacer(pacer)
	}

	// Scenario: JSON file or the built-in demo. Each supplies a setup
	// function and a per-step policy hook.
	var setup core.SetupFunc
	var policy core.StepFunc
	if scenarioPath != "" {
		setup = func(sim *core.Simulation) error {
			f, err := os.Open(scenarioPath)
			if err != nil {
				return fmt.Errorf("open scenario: %w", err)
			}
			defer f.Close()
			summary, err := core.LoadScenario(sim, f)
			if err != nil {
				return err
			}
			log.Info(ctx, "scenario loaded",
				logging.String("path", scenarioPath),
				logging.Int("species", len(summary.Species)),
				logging.Int("particles", len(summary.Particles)),
				logging.Int("walls", len(summary.Walls)),
				logging.Int("boundaries", len(summary.Boundaries)),
			)
			return nil
		}
	} else {
		demo := newShakerScenario(defaultShakerParams())
		setup = demo.Setup
		policy = demo.Step
	}

	recorder := stats.NewRecorder()
	sim.SetStepHook(func(s *core.Simulation, t, dt float64) error {
		recorder.RecordStep(stats.StepSummary{
			Step:          s.Step(),
			Time:          t,
			Particles:     s.Particles().Len(),
			Contacts:      s.ContactCount(),
			KineticEnergy: s.KineticEnergy(),
		})
		if policy != nil {
			return policy(s, t, dt)
		}
		return nil
	})

	if err := sim.Configure(setup); err != nil {
		return err
	}

	started := time.Now()
	if err := sim.Run(ctx); err != nil {
		return err
	}

	last, _ := recorder.Last()
	log.Info(ctx, "run finished",
		logging.String("name", cfg.Simulation.Name),
		logging.Float64("sim_time", last.Time),
		logging.Int("particles", last.Particles),
		logging.Float64("kinetic_energy", last.KineticEnergy),
		logging.Uint64("snapshots", sim.SaveIndex()),
		logging.Duration("wall_time", time.Since(started)),
	)
	return nil
}
