package core

import (
	"math/rand"
)

// Boundary is a region-based lifecycle policy invoked by the time loop.
// Insertion runs at the start of a step, before contact detection; the
// deletion scan runs after integration, queueing removals for the step's
// safe point. Either hook may be a no-op.
type Boundary interface {
	// InsertParticles may add particles through sim.AddParticle.
	InsertParticles(sim *Simulation) error
	// ScanForDeletion may queue particle removals; it must not remove
	// directly.
	ScanForDeletion(sim *Simulation) int
}

// defaultInsertionAttempts bounds how many failed placements an insertion
// boundary tolerates per step before reporting the region full.
const defaultInsertionAttempts = 128

// InsertionBoundary fills an axis-aligned box with copies of a template
// particle under a volumetric flow-rate budget: by simulation time t it will
// have inserted at most FlowRate × t of particle volume. Placements that
// would overlap an existing particle or a wall are rejected and resampled.
type InsertionBoundary struct {
	Template    Particle
	Region      AABB
	MaxAttempts int

	flowRate       float64
	insertedVolume float64
	inserted       int
	rng            *rand.Rand
}

// NewInsertionBoundary builds an insertion boundary. The template particle
// supplies species, radius and initial velocity of every inserted particle.
// The seed fixes the placement sequence, keeping runs reproducible.
func NewInsertionBoundary(template Particle, region AABB, flowRate float64, seed int64) *InsertionBoundary {
	return &InsertionBoundary{
		Template:    template,
		Region:      region,
		MaxAttempts: defaultInsertionAttempts,
		flowRate:    flowRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// SetFlowRate changes the volumetric flow rate. Setting it to zero halts
// insertion but keeps the accumulated volume, so raising the rate later
// resumes from where the budget stood, and repeated zeroing is a no-op.
func (b *InsertionBoundary) SetFlowRate(rate float64) {
	if rate < 0 {
		rate = 0
	}
	b.flowRate = rate
}

// FlowRate returns the current volumetric flow rate.
func (b *InsertionBoundary) FlowRate() float64 { return b.flowRate }

// InsertedVolume returns the total particle volume inserted so far.
func (b *InsertionBoundary) InsertedVolume() float64 { return b.insertedVolume }

// InsertedCount returns how many particles this boundary has inserted.
func (b *InsertionBoundary) InsertedCount() int { return b.inserted }

// InsertParticles implements Boundary. It inserts template copies until the
// volume budget for the current simulation time is spent or placement keeps
// failing; the latter is reported as ErrInsertionSpaceExhausted so the
// driver can log it, and insertion simply retries next step.
func (b *InsertionBoundary) InsertParticles(sim *Simulation) error {
	if b.flowRate <= 0 {
		return nil
	}
	target := b.flowRate * (sim.Time() + sim.TimeStep())
	volume := b.Template.Volume()
	maxAttempts := b.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultInsertionAttempts
	}

	attempts := 0
	for b.insertedVolume < target {
		pos := b.Region.Lerp(b.rng.Float64(), b.rng.Float64(), b.rng.Float64())
		if !sim.placementFree(pos, b.Template.Radius) {
			attempts++
			if attempts >= maxAttempts {
				return ErrInsertionSpaceExhausted
			}
			continue
		}

		if _, err := sim.AddParticle(b.Template.Species, b.Template.Radius, pos, b.Template.Velocity); err != nil {
			return err
		}
		b.insertedVolume += volume
		b.inserted++
		attempts = 0
	}
	return nil
}

// ScanForDeletion implements Boundary as a no-op.
func (b *InsertionBoundary) ScanForDeletion(*Simulation) int { return 0 }

// DeletionBoundary removes every particle whose centre satisfies its region
// predicate: inside the box, or outside it when Invert is set (the usual
// way to cull escapees from the domain).
type DeletionBoundary struct {
	Region AABB
	Invert bool
}

// NewDeletionBoundary removes particles entering the box.
func NewDeletionBoundary(region AABB) *DeletionBoundary {
	return &DeletionBoundary{Region: region}
}

// NewOutsideDeletionBoundary removes particles leaving the box.
func NewOutsideDeletionBoundary(region AABB) *DeletionBoundary {
	return &DeletionBoundary{Region: region, Invert: true}
}

// matches reports whether a particle at p should be removed.
func (b *DeletionBoundary) matches(p Vec3) bool {
	inside := b.Region.Contains(p)
	if b.Invert {
		return !inside
	}
	return inside
}

// InsertParticles implements Boundary as a no-op.
func (b *DeletionBoundary) InsertParticles(*Simulation) error { return nil }

// ScanForDeletion implements Boundary. Matching particles are queued and
// removed together at the step's safe point.
func (b *DeletionBoundary) ScanForDeletion(sim *Simulation) int {
	queued := 0
	sim.particles.ForEach(func(h Handle, p *Particle) {
		if b.matches(p.Position) {
			sim.particles.QueueRemove(h)
			queued++
		}
	})
	return queued
}
