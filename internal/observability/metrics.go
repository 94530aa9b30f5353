package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles the Prometheus metrics of the simulation loop and
// satisfies the core.MetricsRecorder interface, so the driver can report
// steps without importing this package.
type SimCollector struct {
	gatherer prometheus.Gatherer

	Steps        prometheus.Counter
	StepDuration prometheus.Histogram
	Inserted     prometheus.Counter
	Removed      prometheus.Counter
	Snapshots    prometheus.Counter

	Contacts   prometheus.Gauge
	Particles  prometheus.Gauge
	Walls      prometheus.Gauge
	Boundaries prometheus.Gauge
}

// NewSimCollector registers the simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
// Re-registration of identical collectors is tolerated, so multiple runs in
// one process share the same series.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_steps_total",
		Help: "Total number of completed simulation steps.",
	}), "sim_steps_total")
	if err != nil {
		return nil, err
	}
	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_step_duration_seconds",
		Help:    "Wall-clock duration of one simulation step.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}), "sim_step_duration_seconds")
	if err != nil {
		return nil, err
	}
	inserted, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_particles_inserted_total",
		Help: "Particles created by insertion boundaries.",
	}), "sim_particles_inserted_total")
	if err != nil {
		return nil, err
	}
	removed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_particles_removed_total",
		Help: "Particles destroyed by deletion boundaries.",
	}), "sim_particles_removed_total")
	if err != nil {
		return nil, err
	}
	snapshots, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_snapshots_total",
		Help: "Snapshots handed to the snapshot writer.",
	}), "sim_snapshots_total")
	if err != nil {
		return nil, err
	}

	contacts, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_active_contacts",
		Help: "Contacts with persistent spring state after the last step.",
	}), "sim_active_contacts")
	if err != nil {
		return nil, err
	}
	particles, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_particles",
		Help: "Current number of particles.",
	}), "sim_particles")
	if err != nil {
		return nil, err
	}
	walls, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_walls",
		Help: "Current number of walls.",
	}), "sim_walls")
	if err != nil {
		return nil, err
	}
	boundaries, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_boundaries",
		Help: "Current number of lifecycle boundaries.",
	}), "sim_boundaries")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:     gatherer,
		Steps:        steps,
		StepDuration: duration,
		Inserted:     inserted,
		Removed:      removed,
		Snapshots:    snapshots,
		Contacts:     contacts,
		Particles:    particles,
		Walls:        walls,
		Boundaries:   boundaries,
	}, nil
}

// RecordStep implements core.MetricsRecorder.
func (c *SimCollector) RecordStep(d time.Duration, contacts int) {
	if c == nil {
		return
	}
	c.Steps.Inc()
	c.StepDuration.Observe(d.Seconds())
	c.Contacts.Set(float64(contacts))
}

// RecordInserted implements core.MetricsRecorder.
func (c *SimCollector) RecordInserted(n int) {
	if c == nil {
		return
	}
	c.Inserted.Add(float64(n))
}

// RecordRemoved implements core.MetricsRecorder.
func (c *SimCollector) RecordRemoved(n int) {
	if c == nil {
		return
	}
	c.Removed.Add(float64(n))
}

// RecordSnapshot implements core.MetricsRecorder.
func (c *SimCollector) RecordSnapshot() {
	if c == nil {
		return
	}
	c.Snapshots.Inc()
}

// SetEntityCounts implements core.MetricsRecorder.
func (c *SimCollector) SetEntityCounts(particles, walls, boundaries int) {
	if c == nil {
		return
	}
	c.Particles.Set(float64(particles))
	c.Walls.Set(float64(walls))
	c.Boundaries.Set(float64(boundaries))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
