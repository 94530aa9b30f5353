package core

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/signalsfoundry/granular-simulator/internal/logging"
)

// State tracks the driver's lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateConfigured
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfigured:
		return "configured"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config holds the global parameters of one run.
type Config struct {
	Name     string
	Domain   AABB
	Gravity  Vec3
	TimeStep float64
	TimeMax  float64

	// SaveCount triggers a snapshot every SaveCount steps; zero disables
	// snapshots.
	SaveCount int

	// Workers bounds the parallelism of the force phase. Values below one
	// fall back to GOMAXPROCS.
	Workers int
}

// Validate implements the configuration contract: the driver never guesses
// a timestep or domain.
func (c Config) Validate() error {
	if !c.Domain.Valid() {
		return fmt.Errorf("%w: domain %+v has non-positive extent", ErrConfiguration, c.Domain)
	}
	if c.TimeStep <= 0 {
		return fmt.Errorf("%w: timestep %g", ErrConfiguration, c.TimeStep)
	}
	if c.TimeMax <= 0 {
		return fmt.Errorf("%w: max time %g", ErrConfiguration, c.TimeMax)
	}
	if c.SaveCount < 0 {
		return fmt.Errorf("%w: save count %d", ErrConfiguration, c.SaveCount)
	}
	return nil
}

// SetupFunc populates the initial species, particles, walls and boundaries.
// It runs exactly once, during Configure.
type SetupFunc func(sim *Simulation) error

// StepFunc is the per-step scenario hook. It runs after integration and the
// deferred removals of a step, sees the already-advanced simulation time,
// and may adjust wall velocities and boundary flow rates through handles it
// captured at creation. It must not move particles directly.
type StepFunc func(sim *Simulation, t, dt float64) error

// SnapshotWriter receives periodic state snapshots. The core does not care
// about the output format; index increases by one per snapshot.
type SnapshotWriter interface {
	WriteSnapshot(index uint64, snap Snapshot) error
}

// MetricsRecorder lets an observability layer watch the step pipeline
// without the core importing it.
type MetricsRecorder interface {
	RecordStep(duration time.Duration, contacts int)
	RecordInserted(n int)
	RecordRemoved(n int)
	RecordSnapshot()
	SetEntityCounts(particles, walls, boundaries int)
}

// Pacer throttles the loop between steps; the timectrl package provides the
// real-time implementation.
type Pacer interface {
	Pace(simDt float64)
}

// Simulation owns the registries, the contact table and the step loop of
// one DEM run. Construct with NewSimulation, populate via Configure, then
// Run. All registry mutation happens at the loop's serial points.
type Simulation struct {
	cfg Config
	log logging.Logger

	particles  *Handler[Particle]
	walls      *Handler[Wall]
	boundaries *Handler[Boundary]
	species    *Handler[Species]

	lawCache map[[2]uint32]ContactLaw
	contacts *contactTable
	broad    *broadPhase

	stepHook StepFunc
	writer   SnapshotWriter
	metrics  MetricsRecorder
	pacer    Pacer

	state     State
	time      float64
	step      uint64
	saveIndex uint64

	// Dense per-step views, reused across steps.
	viewHandles   []Handle
	viewParticles []*Particle
	viewPositions []Vec3
	candidates    []candidate

	mu sync.RWMutex // guards state/time/step against snapshot readers
}

// NewSimulation constructs an unconfigured simulation. A nil logger is
// replaced by the no-op logger.
func NewSimulation(cfg Config, log logging.Logger) *Simulation {
	if log == nil {
		log = logging.Noop()
	}
	return &Simulation{
		cfg:        cfg,
		log:        log,
		particles:  NewHandler[Particle](),
		walls:      NewHandler[Wall](),
		boundaries: NewHandler[Boundary](),
		species:    NewHandler[Species](),
		contacts:   newContactTable(),
		broad:      newBroadPhase(),
	}
}

// SetStepHook installs the per-step scenario hook.
func (sim *Simulation) SetStepHook(fn StepFunc) { sim.stepHook = fn }

// SetSnapshotWriter installs the snapshot sink used by the SaveCount cadence.
func (sim *Simulation) SetSnapshotWriter(w SnapshotWriter) { sim.writer = w }

// SetMetrics installs the metrics recorder.
func (sim *Simulation) SetMetrics(m MetricsRecorder) { sim.metrics = m }

// SetPacer installs a loop pacer.
func (sim *Simulation) SetPacer(p Pacer) { sim.pacer = p }

// State returns the driver state.
func (sim *Simulation) State() State {
	sim.mu.RLock()
	defer sim.mu.RUnlock()
	return sim.state
}

// Time returns the current simulation time in seconds.
func (sim *Simulation) Time() float64 {
	sim.mu.RLock()
	defer sim.mu.RUnlock()
	return sim.time
}

// Step returns the number of completed steps.
func (sim *Simulation) Step() uint64 {
	sim.mu.RLock()
	defer sim.mu.RUnlock()
	return sim.step
}

// TimeStep returns the fixed timestep.
func (sim *Simulation) TimeStep() float64 { return sim.cfg.TimeStep }

// Domain returns the domain bounding box.
func (sim *Simulation) Domain() AABB { return sim.cfg.Domain }

// Gravity returns the external acceleration field.
func (sim *Simulation) Gravity() Vec3 { return sim.cfg.Gravity }

// Particles exposes the particle registry. Outside the engine it should be
// used read-only; lifecycle changes belong to boundaries and setup code.
func (sim *Simulation) Particles() *Handler[Particle] { return sim.particles }

// Walls exposes the wall registry.
func (sim *Simulation) Walls() *Handler[Wall] { return sim.walls }

// Boundaries exposes the boundary registry.
func (sim *Simulation) Boundaries() *Handler[Boundary] { return sim.boundaries }

// ContactCount returns the number of currently active contacts.
func (sim *Simulation) ContactCount() int { return sim.contacts.len() }

// AddSpecies registers a species. Species are immutable and can only be
// added before the run starts (normally from the setup hook).
func (sim *Simulation) AddSpecies(sp Species) (Handle, error) {
	if st := sim.State(); st != StateUninitialized {
		return Handle{}, fmt.Errorf("%w: species added in state %s", ErrConfiguration, st)
	}
	if err := sp.Validate(); err != nil {
		return Handle{}, err
	}
	return sim.species.Add(sp), nil
}

// Species returns a registered species by handle.
func (sim *Simulation) Species(h Handle) (Species, error) {
	sp, err := sim.species.Get(h)
	if err != nil {
		return Species{}, err
	}
	return *sp, nil
}

// AddParticle creates a particle of the given species and registers it.
func (sim *Simulation) AddParticle(species Handle, radius float64, position, velocity Vec3) (Handle, error) {
	sp, err := sim.species.Get(species)
	if err != nil {
		return Handle{}, fmt.Errorf("particle species: %w", err)
	}
	p, err := NewParticle(species, *sp, radius, position, velocity)
	if err != nil {
		return Handle{}, err
	}
	return sim.particles.Add(p), nil
}

// AddWall validates and registers a wall.
func (sim *Simulation) AddWall(species Handle, shape WallShape) (Handle, error) {
	if _, err := sim.species.Get(species); err != nil {
		return Handle{}, fmt.Errorf("wall species: %w", err)
	}
	w, err := NewWall(species, shape)
	if err != nil {
		return Handle{}, err
	}
	return sim.walls.Add(w), nil
}

// SetWallVelocity is the sanctioned accessor for prescribed wall motion,
// intended for step hooks.
func (sim *Simulation) SetWallVelocity(h Handle, v Vec3) error {
	w, err := sim.walls.Get(h)
	if err != nil {
		return err
	}
	w.Velocity = v
	return nil
}

// AddBoundary registers an insertion or deletion boundary.
func (sim *Simulation) AddBoundary(b Boundary) (Handle, error) {
	if b == nil {
		return Handle{}, fmt.Errorf("%w: nil boundary", ErrConfiguration)
	}
	return sim.boundaries.Add(b), nil
}

// InsertionBoundaryAt resolves a boundary handle to its insertion boundary,
// for hooks that adjust flow rates.
func (sim *Simulation) InsertionBoundaryAt(h Handle) (*InsertionBoundary, error) {
	b, err := sim.boundaries.Get(h)
	if err != nil {
		return nil, err
	}
	ib, ok := (*b).(*InsertionBoundary)
	if !ok {
		return nil, fmt.Errorf("%w: boundary is %T, not an insertion boundary", ErrConfiguration, *b)
	}
	return ib, nil
}

// Configure validates the run parameters, executes the setup hook exactly
// once and freezes the species set. It moves the driver from Uninitialized
// to Configured.
func (sim *Simulation) Configure(setup SetupFunc) error {
	if st := sim.State(); st != StateUninitialized {
		return fmt.Errorf("%w: configure called in state %s", ErrConfiguration, st)
	}
	if err := sim.cfg.Validate(); err != nil {
		return err
	}
	if setup != nil {
		if err := setup(sim); err != nil {
			return fmt.Errorf("setup hook: %w", err)
		}
	}
	if sim.species.Len() == 0 {
		return fmt.Errorf("%w: no species registered", ErrConfiguration)
	}

	sim.buildLawCache()

	sim.mu.Lock()
	sim.state = StateConfigured
	sim.mu.Unlock()

	sim.log.Info(context.Background(), "simulation configured",
		logging.String("name", sim.cfg.Name),
		logging.Int("species", sim.species.Len()),
		logging.Int("particles", sim.particles.Len()),
		logging.Int("walls", sim.walls.Len()),
		logging.Int("boundaries", sim.boundaries.Len()),
	)
	return nil
}

// buildLawCache precomputes the pairwise contact law for every species
// combination. Species are immutable and cannot be added past Configure, so
// the cache never goes stale.
func (sim *Simulation) buildLawCache() {
	sim.lawCache = make(map[[2]uint32]ContactLaw)
	handles := sim.species.Handles()
	for _, ha := range handles {
		for _, hb := range handles {
			a, _ := sim.species.Get(ha)
			b, _ := sim.species.Get(hb)
			sim.lawCache[lawKey(ha, hb)] = ResolveContactLaw(*a, *b)
		}
	}
}

func lawKey(a, b Handle) [2]uint32 {
	if b.index < a.index {
		a, b = b, a
	}
	return [2]uint32{a.index, b.index}
}

func (sim *Simulation) lawFor(a, b Handle) ContactLaw {
	return sim.lawCache[lawKey(a, b)]
}

// Run executes the step loop until the configured maximum time is reached
// (Completed) or a fatal error occurs (Failed). Cancellation is honoured
// between steps only: a started step always completes.
func (sim *Simulation) Run(ctx context.Context) error {
	if st := sim.State(); st != StateConfigured {
		return fmt.Errorf("%w: run called in state %s", ErrNotRunnable, st)
	}

	sim.mu.Lock()
	sim.state = StateRunning
	sim.mu.Unlock()

	workers := sim.cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	sim.log.Info(ctx, "run started",
		logging.String("name", sim.cfg.Name),
		logging.Float64("time_step", sim.cfg.TimeStep),
		logging.Float64("time_max", sim.cfg.TimeMax),
		logging.Int("workers", workers),
	)

	for sim.Time() < sim.cfg.TimeMax {
		if err := ctx.Err(); err != nil {
			return sim.fail(fmt.Errorf("run cancelled at t=%g step=%d: %w", sim.Time(), sim.Step(), err))
		}
		if err := sim.doStep(ctx, workers); err != nil {
			return sim.fail(err)
		}
		if sim.pacer != nil {
			sim.pacer.Pace(sim.cfg.TimeStep)
		}
	}

	sim.mu.Lock()
	sim.state = StateCompleted
	sim.mu.Unlock()

	sim.log.Info(ctx, "run completed",
		logging.String("name", sim.cfg.Name),
		logging.Float64("time", sim.Time()),
		logging.Int("particles", sim.particles.Len()),
	)
	return nil
}

func (sim *Simulation) fail(err error) error {
	sim.mu.Lock()
	sim.state = StateFailed
	sim.mu.Unlock()
	sim.log.Error(context.Background(), "run failed",
		logging.String("name", sim.cfg.Name),
		logging.String("error", err.Error()),
	)
	return err
}

// doStep executes the fixed pipeline of one timestep. Registries are only
// mutated here at serial points: the insertion pass at the top and the
// removal flush after the deletion scan.
func (sim *Simulation) doStep(ctx context.Context, workers int) error {
	started := time.Now()
	dt := sim.cfg.TimeStep

	// Boundary pass: insertions.
	inserted := 0
	var insErr error
	sim.boundaries.ForEach(func(h Handle, b *Boundary) {
		before := sim.particles.Len()
		if err := (*b).InsertParticles(sim); err != nil {
			insErr = err
		}
		inserted += sim.particles.Len() - before
	})
	if insErr != nil {
		// Exhausted insertion space is a diagnostic, not a failure.
		sim.log.Warn(ctx, "insertion incomplete",
			logging.Float64("time", sim.Time()),
			logging.String("reason", insErr.Error()),
		)
	}

	// Dense views. Pointers stay valid until the removal flush below.
	sim.rebuildView()

	for _, p := range sim.viewParticles {
		resetAccumulators(p, sim.cfg.Gravity)
	}

	// Contact detection and forces.
	maxRadius := 0.0
	for _, p := range sim.viewParticles {
		if p.Radius > maxRadius {
			maxRadius = p.Radius
		}
	}
	sim.broad.rebuild(sim.viewPositions, maxRadius)
	sim.candidates = sim.broad.pairs(sim.candidates[:0])

	step := sim.Step() + 1
	if workers > 1 && len(sim.viewParticles) > 1 {
		sim.forcePhaseParallel(step, dt, workers)
	} else {
		sim.forcePhaseSerial(step, dt)
	}

	// Integration, prescribed wall motion, sanity check.
	for i, p := range sim.viewParticles {
		integrate(p, dt)
		if !p.finite() {
			return fmt.Errorf("%w: step %d particle slot %d", ErrIntegration, step, sim.viewHandles[i].index)
		}
	}
	sim.walls.ForEach(func(_ Handle, w *Wall) {
		w.advance(dt)
	})

	sim.mu.Lock()
	sim.time += dt
	sim.step = step
	sim.mu.Unlock()

	// Deletion scan, then the safe-point flush.
	for _, b := range sim.boundaryList() {
		b.ScanForDeletion(sim)
	}
	removed := sim.particles.Flush()
	sim.contacts.prune(step)

	// Scenario hook, with time already advanced.
	if sim.stepHook != nil {
		if err := sim.stepHook(sim, sim.Time(), dt); err != nil {
			return fmt.Errorf("step hook at t=%g step=%d: %w", sim.Time(), step, err)
		}
	}

	// Output cadence.
	if sim.cfg.SaveCount > 0 && step%uint64(sim.cfg.SaveCount) == 0 && sim.writer != nil {
		if err := sim.writer.WriteSnapshot(sim.saveIndex, sim.Snapshot()); err != nil {
			return fmt.Errorf("snapshot %d at step %d: %w", sim.saveIndex, step, err)
		}
		sim.saveIndex++
		if sim.metrics != nil {
			sim.metrics.RecordSnapshot()
		}
	}

	if sim.metrics != nil {
		sim.metrics.RecordStep(time.Since(started), sim.contacts.len())
		if inserted > 0 {
			sim.metrics.RecordInserted(inserted)
		}
		if removed > 0 {
			sim.metrics.RecordRemoved(removed)
		}
		sim.metrics.SetEntityCounts(sim.particles.Len(), sim.walls.Len(), sim.boundaries.Len())
	}
	return nil
}

// rebuildView refreshes the dense particle view used by the force phase.
func (sim *Simulation) rebuildView() {
	sim.viewHandles = sim.viewHandles[:0]
	sim.viewParticles = sim.viewParticles[:0]
	sim.viewPositions = sim.viewPositions[:0]
	sim.particles.ForEach(func(h Handle, p *Particle) {
		sim.viewHandles = append(sim.viewHandles, h)
		sim.viewParticles = append(sim.viewParticles, p)
		sim.viewPositions = append(sim.viewPositions, p.Position)
	})
}

func (sim *Simulation) boundaryList() []Boundary {
	out := make([]Boundary, 0, sim.boundaries.Len())
	sim.boundaries.ForEach(func(_ Handle, b *Boundary) {
		out = append(out, *b)
	})
	return out
}

// forcePhaseSerial accumulates contact forces directly into the particles.
func (sim *Simulation) forcePhaseSerial(step uint64, dt float64) {
	for _, c := range sim.candidates {
		a, b := sim.viewParticles[c.i], sim.viewParticles[c.j]
		key := particlePairKey(sim.viewHandles[c.i], sim.viewHandles[c.j])
		law := sim.lawFor(a.Species, b.Species)
		res, ok := particlePairContact(a, b, law, sim.contacts, key, step, dt)
		if !ok {
			continue
		}
		a.Force = a.Force.Add(res.force)
		a.Torque = a.Torque.Add(res.torqueA)
		b.Force = b.Force.Sub(res.force)
		b.Torque = b.Torque.Add(res.torqueB)
	}

	wallHandles := sim.walls.Handles()
	for i, p := range sim.viewParticles {
		for _, wh := range wallHandles {
			w, err := sim.walls.Get(wh)
			if err != nil {
				continue
			}
			key := particleWallKey(sim.viewHandles[i], wh)
			law := sim.lawFor(p.Species, w.Species)
			res, ok := particleWallContact(p, w, law, sim.contacts, key, step, dt)
			if !ok {
				continue
			}
			p.Force = p.Force.Add(res.force)
			p.Torque = p.Torque.Add(res.torqueA)
		}
	}
}

// forcePhaseParallel partitions candidate pairs and particle–wall tests
// across workers, each writing into private scratch accumulators that are
// reduced serially afterwards. No two goroutines ever write the same
// particle's accumulator.
func (sim *Simulation) forcePhaseParallel(step uint64, dt float64, workers int) {
	n := len(sim.viewParticles)
	type scratch struct {
		force  []Vec3
		torque []Vec3
	}
	scratches := make([]scratch, workers)
	for w := range scratches {
		scratches[w] = scratch{force: make([]Vec3, n), torque: make([]Vec3, n)}
	}

	wallHandles := sim.walls.Handles()
	walls := make([]*Wall, 0, len(wallHandles))
	for _, wh := range wallHandles {
		if w, err := sim.walls.Get(wh); err == nil {
			walls = append(walls, w)
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			sc := &scratches[worker]

			for idx := worker; idx < len(sim.candidates); idx += workers {
				c := sim.candidates[idx]
				a, b := sim.viewParticles[c.i], sim.viewParticles[c.j]
				key := particlePairKey(sim.viewHandles[c.i], sim.viewHandles[c.j])
				law := sim.lawFor(a.Species, b.Species)
				res, ok := particlePairContact(a, b, law, sim.contacts, key, step, dt)
				if !ok {
					continue
				}
				sc.force[c.i] = sc.force[c.i].Add(res.force)
				sc.torque[c.i] = sc.torque[c.i].Add(res.torqueA)
				sc.force[c.j] = sc.force[c.j].Sub(res.force)
				sc.torque[c.j] = sc.torque[c.j].Add(res.torqueB)
			}

			for i := worker; i < n; i += workers {
				p := sim.viewParticles[i]
				for wi, wall := range walls {
					key := particleWallKey(sim.viewHandles[i], wallHandles[wi])
					law := sim.lawFor(p.Species, wall.Species)
					res, ok := particleWallContact(p, wall, law, sim.contacts, key, step, dt)
					if !ok {
						continue
					}
					sc.force[i] = sc.force[i].Add(res.force)
					sc.torque[i] = sc.torque[i].Add(res.torqueA)
				}
			}
		}(w)
	}
	wg.Wait()

	for w := range scratches {
		for i, p := range sim.viewParticles {
			p.Force = p.Force.Add(scratches[w].force[i])
			p.Torque = p.Torque.Add(scratches[w].torque[i])
		}
	}
}

// placementFree reports whether a sphere at pos with the given radius would
// be overlap-free against all particles and walls. Used by insertion
// boundaries before committing a placement.
func (sim *Simulation) placementFree(pos Vec3, radius float64) bool {
	free := true
	sim.particles.ForEach(func(_ Handle, p *Particle) {
		if !free {
			return
		}
		if pos.DistanceTo(p.Position) < radius+p.Radius {
			free = false
		}
	})
	if !free {
		return false
	}
	sim.walls.ForEach(func(_ Handle, w *Wall) {
		if !free {
			return
		}
		if d, _ := w.DistanceTo(pos); d < radius {
			free = false
		}
	})
	return free
}

// KineticEnergy returns the total kinetic energy of all particles. Useful
// for diagnostics and the energy-decay tests.
func (sim *Simulation) KineticEnergy() float64 {
	total := 0.0
	sim.particles.ForEach(func(_ Handle, p *Particle) {
		total += p.KineticEnergy()
	})
	return total
}
