package core

// Snapshot is a read-only copy of the simulation state, taken at a step
// boundary. Output layers serialize it however they like; the core only
// promises a consistent copy and a monotonically increasing save index.
type Snapshot struct {
	Name string
	Time float64
	Step uint64

	Particles []Particle
	Walls     []Wall
}

// Snapshot deep-copies the current entity state. Safe to call from snapshot
// writers and, between runs, from any goroutine; during a run it must only
// be called from the step pipeline or the step hook.
func (sim *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Name: sim.cfg.Name,
		Time: sim.Time(),
		Step: sim.Step(),
	}
	snap.Particles = make([]Particle, 0, sim.particles.Len())
	sim.particles.ForEach(func(_ Handle, p *Particle) {
		snap.Particles = append(snap.Particles, *p)
	})
	snap.Walls = make([]Wall, 0, sim.walls.Len())
	sim.walls.ForEach(func(_ Handle, w *Wall) {
		snap.Walls = append(snap.Walls, *w)
	})
	return snap
}

// SaveIndex returns how many snapshots have been written this run.
func (sim *Simulation) SaveIndex() uint64 {
	sim.mu.RLock()
	defer sim.mu.RUnlock()
	return sim.saveIndex
}
