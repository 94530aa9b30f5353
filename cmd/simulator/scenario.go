package main

import (
	"math"

	"github.com/signalsfoundry/granular-simulator/core"
)

// shakerParams tunes the built-in shaken-cylinder segregation demo: a tall
// cylinder is filled with small grains around one large grain, then the
// floor is kicked up and down until the large grain migrates to the top.
type shakerParams struct {
	BigRadius   float64
	SmallRadius float64
	FillHalf    float64 // half-extent of the cubic insertion region
	FlowRate    float64
	StopFlow    float64 // time at which filling stops

	KickStart     float64
	KickAmplitude float64
	PulseInterval float64
	StopKick      float64
}

func defaultShakerParams() shakerParams {
	return shakerParams{
		BigRadius:     0.08,
		SmallRadius:   0.02,
		FillHalf:      0.2,
		FlowRate:      1.0,
		StopFlow:      1.0,
		KickStart:     1.5,
		KickAmplitude: 1.0,
		PulseInterval: 0.25,
		StopKick:      20.0,
	}
}

// glassBeads is the granular material of the demo.
func glassBeads() core.Species {
	return core.Species{
		Name:    "glass-beads",
		Density: 2000,

		Stiffness:   1e5,
		Dissipation: 0.63,

		SlidingStiffness:   1.2e4,
		SlidingDissipation: 6.3e-2,
		SlidingFriction:    0.5,

		RollingStiffness:   1.2e4,
		RollingDissipation: 6.3e-2,
		RollingFriction:    0.2,

		TorsionStiffness:   1.2e4,
		TorsionDissipation: 6.3e-2,
		TorsionFriction:    0.1,
	}
}

// shakerScenario wires the demo's entities and owns the handles its step
// hook steers. All mutable policy state lives here, not in package scope.
type shakerScenario struct {
	params shakerParams

	filler     core.Handle
	bottomWall core.Handle

	kickCount    int
	nextKickTime float64
	flowStopped  bool
}

func newShakerScenario(params shakerParams) *shakerScenario {
	return &shakerScenario{
		params:       params,
		nextKickTime: params.KickStart,
	}
}

// Setup populates the cylinder, the floor and lid, the big grain, and the
// insertion boundary that rains small grains into the container.
func (s *shakerScenario) Setup(sim *core.Simulation) error {
	species, err := sim.AddSpecies(glassBeads())
	if err != nil {
		return err
	}

	domain := sim.Domain()
	mid := domain.Center()

	// Container: cylinder about the vertical axis through the domain
	// centre, radius a quarter of the domain width.
	cylRadius := (domain.Max.X - domain.Min.X) / 4
	if _, err := sim.AddWall(species, core.Cylinder{
		Point:  core.Vec3{X: mid.X, Y: mid.Y},
		Axis:   core.Vec3{Z: 1},
		Radius: cylRadius,
	}); err != nil {
		return err
	}

	// Lid keeps kicked particles inside.
	if _, err := sim.AddWall(species, core.Plane{
		Normal: core.Vec3{Z: -1},
		Point:  core.Vec3{Z: domain.Max.Z},
	}); err != nil {
		return err
	}

	// Floor; its velocity is what the kick schedule drives.
	s.bottomWall, err = sim.AddWall(species, core.Plane{
		Normal: core.Vec3{Z: 1},
		Point:  core.Vec3{Z: domain.Min.Z},
	})
	if err != nil {
		return err
	}

	// The intruder grain starts near the bottom.
	if _, err := sim.AddParticle(species, s.params.BigRadius,
		core.Vec3{X: mid.X, Y: mid.Y, Z: 2 * s.params.BigRadius},
		core.Vec3{}); err != nil {
		return err
	}

	// Filler rain.
	sp, err := sim.Species(species)
	if err != nil {
		return err
	}
	template, err := core.NewParticle(species, sp, s.params.SmallRadius, core.Vec3{}, core.Vec3{})
	if err != nil {
		return err
	}
	region := core.AABB{
		Min: mid.Sub(core.Vec3{X: s.params.FillHalf, Y: s.params.FillHalf, Z: s.params.FillHalf}),
		Max: mid.Add(core.Vec3{X: s.params.FillHalf, Y: s.params.FillHalf, Z: s.params.FillHalf}),
	}
	s.filler, err = sim.AddBoundary(core.NewInsertionBoundary(template, region, s.params.FlowRate, 1))
	return err
}

// Step is the per-step policy: stop the fill at StopFlow, then kick the
// floor with alternating sign every PulseInterval until StopKick.
func (s *shakerScenario) Step(sim *core.Simulation, t, dt float64) error {
	if !s.flowStopped && t >= s.params.StopFlow {
		ib, err := sim.InsertionBoundaryAt(s.filler)
		if err != nil {
			return err
		}
		ib.SetFlowRate(0)
		s.flowStopped = true
	}

	switch {
	case t > s.params.StopKick:
		return sim.SetWallVelocity(s.bottomWall, core.Vec3{})
	case t >= s.nextKickTime:
		v := s.params.KickAmplitude * math.Pow(-1, float64(s.kickCount))
		s.nextKickTime += s.params.PulseInterval
		s.kickCount++
		return sim.SetWallVelocity(s.bottomWall, core.Vec3{Z: v})
	}
	return nil
}
