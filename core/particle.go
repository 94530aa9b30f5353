package core

import "fmt"

// Particle is one spherical grain. Mass and moment of inertia derive from
// the species density and the radius at construction; force and torque
// accumulators are engine-owned and reset to the external field at the start
// of every step.
type Particle struct {
	Species Handle

	Radius  float64
	Mass    float64
	Inertia float64 // solid sphere: 2/5 m r²

	Position        Vec3
	Orientation     Quaternion
	Velocity        Vec3
	AngularVelocity Vec3

	Force  Vec3
	Torque Vec3
}

// NewParticle builds a particle of the given species. It fails with
// ErrGeometry on a non-positive radius.
func NewParticle(species Handle, sp Species, radius float64, position, velocity Vec3) (Particle, error) {
	if radius <= 0 {
		return Particle{}, fmt.Errorf("%w: particle radius %g", ErrGeometry, radius)
	}
	mass := sp.Density * SphereVolume(radius)
	return Particle{
		Species:     species,
		Radius:      radius,
		Mass:        mass,
		Inertia:     0.4 * mass * radius * radius,
		Position:    position,
		Orientation: IdentityQuaternion(),
		Velocity:    velocity,
	}, nil
}

// Volume returns the particle's volume.
func (p *Particle) Volume() float64 {
	return SphereVolume(p.Radius)
}

// KineticEnergy returns translational plus rotational kinetic energy.
func (p *Particle) KineticEnergy() float64 {
	return 0.5*p.Mass*p.Velocity.Norm2() + 0.5*p.Inertia*p.AngularVelocity.Norm2()
}

// velocityAt returns the surface velocity at a world-space contact point.
func (p *Particle) velocityAt(point Vec3) Vec3 {
	return p.Velocity.Add(p.AngularVelocity.Cross(point.Sub(p.Position)))
}

// finite reports whether the dynamic state is numerically sane.
func (p *Particle) finite() bool {
	return p.Position.IsFinite() && p.Velocity.IsFinite() &&
		p.AngularVelocity.IsFinite() && p.Orientation.IsFinite()
}
