package core

// resetAccumulators starts the particle's force budget for a step from the
// external field: gravity scaled by mass, zero torque.
func resetAccumulators(p *Particle, gravity Vec3) {
	p.Force = gravity.Scale(p.Mass)
	p.Torque = Vec3{}
}

// integrate advances one particle by a symplectic (semi-implicit) Euler
// step: velocity first from the accumulated force, then position from the
// updated velocity. For a damped contact this keeps mechanical energy
// non-increasing within integrator error, which the energy tests rely on.
func integrate(p *Particle, dt float64) {
	p.Velocity = p.Velocity.Add(p.Force.Scale(dt / p.Mass))
	p.Position = p.Position.Add(p.Velocity.Scale(dt))

	p.AngularVelocity = p.AngularVelocity.Add(p.Torque.Scale(dt / p.Inertia))
	p.Orientation = p.Orientation.Integrate(p.AngularVelocity, dt)
}
