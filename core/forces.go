package core

// contactResult carries the resolved force and torques of one active
// contact. The force acts on participant A; B receives the opposite.
type contactResult struct {
	force   Vec3
	torqueA Vec3
	torqueB Vec3
}

// resolveContact evaluates the linear viscoelastic friction law for one
// active contact (overlap > 0).
//
//	n        unit normal pointing from B towards A
//	overlap  geometric overlap depth
//	vrel     surface velocity of A relative to B at the contact point
//	relOmega ωA − ωB
//	leverA   contact point minus A's centre (and likewise leverB)
//	reff     effective contact radius (harmonic for pairs, rA for walls)
//
// The sliding, rolling and torsion springs in st are advanced by dt and
// truncated to their Coulomb cones; truncation rewrites the spring so that a
// saturated contact stays exactly on the cone instead of winding up.
func resolveContact(n Vec3, overlap float64, vrel, relOmega, leverA, leverB Vec3, reff float64, law ContactLaw, st *contactState, dt float64) contactResult {
	vn := n.Scale(vrel.Dot(n))
	vt := vrel.Sub(vn)

	normalSpring := law.Stiffness * overlap
	force := n.Scale(normalSpring).Sub(vn.Scale(law.Dissipation))

	var res contactResult

	if law.SlidingStiffness > 0 {
		st.sliding = st.sliding.Add(vt.Scale(dt))
		st.sliding = st.sliding.Sub(n.Scale(st.sliding.Dot(n)))

		ft := st.sliding.Scale(-law.SlidingStiffness).Sub(vt.Scale(law.SlidingDissipation))
		cap := law.SlidingFriction * normalSpring
		if mag := ft.Norm(); mag > cap && mag > 0 {
			ft = ft.Scale(cap / mag)
			st.sliding = ft.Add(vt.Scale(law.SlidingDissipation)).Scale(-1 / law.SlidingStiffness)
		}
		force = force.Add(ft)
		res.torqueA = res.torqueA.Add(leverA.Cross(ft))
		res.torqueB = res.torqueB.Add(leverB.Cross(ft.Scale(-1)))
	}

	if law.RollingStiffness > 0 && reff > 0 {
		vroll := relOmega.Cross(n).Scale(-reff)
		st.rolling = st.rolling.Add(vroll.Scale(dt))
		st.rolling = st.rolling.Sub(n.Scale(st.rolling.Dot(n)))

		froll := st.rolling.Scale(-law.RollingStiffness).Sub(vroll.Scale(law.RollingDissipation))
		cap := law.RollingFriction * normalSpring
		if mag := froll.Norm(); mag > cap && mag > 0 {
			froll = froll.Scale(cap / mag)
			st.rolling = froll.Add(vroll.Scale(law.RollingDissipation)).Scale(-1 / law.RollingStiffness)
		}
		// Rolling resistance is a pure torque pair; it transmits no net force.
		tq := n.Cross(froll).Scale(reff)
		res.torqueA = res.torqueA.Add(tq)
		res.torqueB = res.torqueB.Sub(tq)
	}

	if law.TorsionStiffness > 0 && reff > 0 {
		spin := relOmega.Dot(n)
		st.torsion += spin * dt

		mag := -(law.TorsionStiffness*st.torsion + law.TorsionDissipation*spin) * reff
		cap := law.TorsionFriction * normalSpring * reff
		if mag > cap {
			mag = cap
			st.torsion = -(mag/reff + law.TorsionDissipation*spin) / law.TorsionStiffness
		} else if mag < -cap {
			mag = -cap
			st.torsion = -(mag/reff + law.TorsionDissipation*spin) / law.TorsionStiffness
		}
		tq := n.Scale(mag)
		res.torqueA = res.torqueA.Add(tq)
		res.torqueB = res.torqueB.Sub(tq)
	}

	res.force = force
	return res
}

// particlePairContact runs the narrow phase for two spheres and, when they
// overlap, resolves the contact. ok is false for separated pairs, in which
// case no spring state is created or touched.
func particlePairContact(a, b *Particle, law ContactLaw, table *contactTable, key ContactKey, step uint64, dt float64) (contactResult, bool) {
	sep := a.Position.Sub(b.Position)
	dist := sep.Norm()
	overlap := a.Radius + b.Radius - dist
	if overlap <= 0 || dist == 0 {
		return contactResult{}, false
	}

	n := sep.Scale(1 / dist)
	contact := b.Position.Add(n.Scale(b.Radius - overlap/2))
	vrel := a.velocityAt(contact).Sub(b.velocityAt(contact))
	relOmega := a.AngularVelocity.Sub(b.AngularVelocity)
	reff := a.Radius * b.Radius / (a.Radius + b.Radius)

	st := table.getOrCreate(key, step)
	return resolveContact(n, overlap,
		vrel, relOmega,
		contact.Sub(a.Position), contact.Sub(b.Position),
		reff, law, st, dt), true
}

// particleWallContact runs the narrow phase for a sphere against a wall.
// The wall is treated as having infinite mass: the returned torqueB is
// meaningless and the opposite force is discarded by the caller.
func particleWallContact(p *Particle, w *Wall, law ContactLaw, table *contactTable, key ContactKey, step uint64, dt float64) (contactResult, bool) {
	dist, n := w.DistanceTo(p.Position)
	overlap := p.Radius - dist
	if overlap <= 0 {
		return contactResult{}, false
	}

	contact := p.Position.Sub(n.Scale(dist))
	vrel := p.velocityAt(contact).Sub(w.Velocity)

	st := table.getOrCreate(key, step)
	return resolveContact(n, overlap,
		vrel, p.AngularVelocity,
		contact.Sub(p.Position), Vec3{},
		p.Radius, law, st, dt), true
}
