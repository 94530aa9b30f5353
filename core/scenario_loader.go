package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/granular-simulator/model"
)

// Scenario summarises what a JSON scenario contributed, and maps definition
// IDs to the handles created for them so hooks can capture the entities
// they need to steer.
type Scenario struct {
	Species    map[string]Handle
	Particles  map[string]Handle
	Walls      map[string]Handle
	Boundaries map[string]Handle
}

type scenarioJSON struct {
	Species    []model.SpeciesDefinition  `json:"species"`
	Particles  []model.ParticleDefinition `json:"particles"`
	Walls      []model.WallDefinition     `json:"walls"`
	Boundaries []model.BoundaryDefinition `json:"boundaries"`
}

// LoadScenario reads a JSON scenario from r and populates the simulation.
// It is meant to run inside the setup hook. Structural problems (unknown
// species references, duplicate IDs, bad geometry) fail the load, which in
// turn fails Configure.
func LoadScenario(sim *Simulation, r io.Reader) (*Scenario, error) {
	if sim == nil {
		return nil, fmt.Errorf("LoadScenario: sim is nil")
	}

	var payload scenarioJSON
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	sc := &Scenario{
		Species:    make(map[string]Handle),
		Particles:  make(map[string]Handle),
		Walls:      make(map[string]Handle),
		Boundaries: make(map[string]Handle),
	}

	for _, def := range payload.Species {
		if def.ID == "" {
			return nil, fmt.Errorf("LoadScenario: species with empty id")
		}
		if _, dup := sc.Species[def.ID]; dup {
			return nil, fmt.Errorf("LoadScenario: duplicate species %q", def.ID)
		}
		h, err := sim.AddSpecies(speciesFromDefinition(def))
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: species %q: %w", def.ID, err)
		}
		sc.Species[def.ID] = h
	}

	for _, def := range payload.Walls {
		if def.ID == "" {
			return nil, fmt.Errorf("LoadScenario: wall with empty id")
		}
		sp, ok := sc.Species[def.Species]
		if !ok {
			return nil, fmt.Errorf("LoadScenario: wall %q references unknown species %q", def.ID, def.Species)
		}
		shape, err := shapeFromDefinition(def)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: wall %q: %w", def.ID, err)
		}
		h, err := sim.AddWall(sp, shape)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: wall %q: %w", def.ID, err)
		}
		if def.Velocity != (model.Vector{}) {
			if err := sim.SetWallVelocity(h, vec(def.Velocity)); err != nil {
				return nil, fmt.Errorf("LoadScenario: wall %q: %w", def.ID, err)
			}
		}
		sc.Walls[def.ID] = h
	}

	for _, def := range payload.Particles {
		if def.ID == "" {
			return nil, fmt.Errorf("LoadScenario: particle with empty id")
		}
		sp, ok := sc.Species[def.Species]
		if !ok {
			return nil, fmt.Errorf("LoadScenario: particle %q references unknown species %q", def.ID, def.Species)
		}
		h, err := sim.AddParticle(sp, def.Radius, vec(def.Position), vec(def.Velocity))
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: particle %q: %w", def.ID, err)
		}
		sc.Particles[def.ID] = h
	}

	for _, def := range payload.Boundaries {
		if def.ID == "" {
			return nil, fmt.Errorf("LoadScenario: boundary with empty id")
		}
		b, err := boundaryFromDefinition(sim, sc, def)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: boundary %q: %w", def.ID, err)
		}
		h, err := sim.AddBoundary(b)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: boundary %q: %w", def.ID, err)
		}
		sc.Boundaries[def.ID] = h
	}

	return sc, nil
}

func vec(v model.Vector) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func speciesFromDefinition(def model.SpeciesDefinition) Species {
	return Species{
		Name:    def.ID,
		Density: def.Density,

		Stiffness:   def.Stiffness,
		Dissipation: def.Dissipation,

		SlidingStiffness:   def.SlidingStiffness,
		SlidingDissipation: def.SlidingDissipation,
		SlidingFriction:    def.SlidingFriction,

		RollingStiffness:   def.RollingStiffness,
		RollingDissipation: def.RollingDissipation,
		RollingFriction:    def.RollingFriction,

		TorsionStiffness:   def.TorsionStiffness,
		TorsionDissipation: def.TorsionDissipation,
		TorsionFriction:    def.TorsionFriction,
	}
}

func shapeFromDefinition(def model.WallDefinition) (WallShape, error) {
	switch def.Kind {
	case model.WallPlane:
		return Plane{Normal: vec(def.Normal), Point: vec(def.Point)}, nil
	case model.WallCylinder:
		return Cylinder{Point: vec(def.Point), Axis: vec(def.Axis), Radius: def.Radius}, nil
	case model.WallIntersection:
		faces := make([]Plane, 0, len(def.Faces))
		for _, f := range def.Faces {
			faces = append(faces, Plane{Normal: vec(f.Normal), Point: vec(f.Point)})
		}
		return Intersection{Faces: faces}, nil
	default:
		return nil, fmt.Errorf("%w: unknown wall kind %q", ErrConfiguration, def.Kind)
	}
}

func boundaryFromDefinition(sim *Simulation, sc *Scenario, def model.BoundaryDefinition) (Boundary, error) {
	region := AABB{Min: vec(def.Min), Max: vec(def.Max)}
	if !region.Valid() {
		return nil, fmt.Errorf("%w: region %+v has non-positive extent", ErrConfiguration, region)
	}

	switch def.Kind {
	case model.BoundaryInsertion:
		sp, ok := sc.Species[def.Template.Species]
		if !ok {
			return nil, fmt.Errorf("template references unknown species %q", def.Template.Species)
		}
		spec, err := sim.Species(sp)
		if err != nil {
			return nil, err
		}
		template, err := NewParticle(sp, spec, def.Template.Radius, Vec3{}, vec(def.Template.Velocity))
		if err != nil {
			return nil, err
		}
		return NewInsertionBoundary(template, region, def.FlowRate, def.Seed), nil
	case model.BoundaryDeletion:
		return NewDeletionBoundary(region), nil
	case model.BoundaryDeletionOutside:
		return NewOutsideDeletionBoundary(region), nil
	default:
		return nil, fmt.Errorf("%w: unknown boundary kind %q", ErrConfiguration, def.Kind)
	}
}
