package core

import (
	"math"
	"testing"
)

func normalOnlyLaw(stiffness, dissipation float64) ContactLaw {
	return ContactLaw{Stiffness: stiffness, Dissipation: dissipation}
}

func sphereAt(pos Vec3, radius float64) *Particle {
	return &Particle{
		Radius:      radius,
		Mass:        1,
		Inertia:     0.4 * radius * radius,
		Position:    pos,
		Orientation: IdentityQuaternion(),
	}
}

func TestSeparatedPairProducesNoForce(t *testing.T) {
	a := sphereAt(Vec3{}, 0.1)
	b := sphereAt(Vec3{X: 0.25}, 0.1)
	table := newContactTable()

	_, ok := particlePairContact(a, b, normalOnlyLaw(1e4, 0), table, ContactKey{}, 1, 1e-4)
	if ok {
		t.Fatal("separated spheres reported as contact")
	}
	if table.len() != 0 {
		t.Fatalf("separated pair created %d contact states", table.len())
	}
}

func TestHeadOnOverlapForce(t *testing.T) {
	// Overlap 0.01 along x; no relative motion.
	a := sphereAt(Vec3{}, 0.1)
	b := sphereAt(Vec3{X: 0.19}, 0.1)
	table := newContactTable()

	res, ok := particlePairContact(a, b, normalOnlyLaw(1e4, 0), table, ContactKey{}, 1, 1e-4)
	if !ok {
		t.Fatal("overlapping spheres reported as separated")
	}
	// Spring force k*delta = 100, pushing A away from B (towards -x).
	want := Vec3{X: -100}
	if res.force.Sub(want).Norm() > 1e-9 {
		t.Fatalf("force = %+v, want %+v", res.force, want)
	}
	if table.len() != 1 {
		t.Fatalf("expected one contact state, got %d", table.len())
	}
}

func TestNormalDashpotOpposesApproach(t *testing.T) {
	a := sphereAt(Vec3{}, 0.1)
	b := sphereAt(Vec3{X: 0.19}, 0.1)
	a.Velocity = Vec3{X: 1}
	b.Velocity = Vec3{X: -1}
	table := newContactTable()

	res, ok := particlePairContact(a, b, normalOnlyLaw(1e4, 10), table, ContactKey{}, 1, 1e-4)
	if !ok {
		t.Fatal("overlapping spheres reported as separated")
	}
	// Approach speed 2 adds 20 N of dashpot force on top of the spring's
	// 100 N, still pushing A towards -x.
	want := Vec3{X: -120}
	if res.force.Sub(want).Norm() > 1e-9 {
		t.Fatalf("force = %+v, want %+v", res.force, want)
	}
}

func TestSlidingForceSaturatesAtCoulombCone(t *testing.T) {
	law := ContactLaw{
		Stiffness:        1e4,
		SlidingStiffness: 1e4,
		SlidingFriction:  0.5,
	}
	n := Vec3{Z: 1}
	overlap := 0.001
	vrel := Vec3{X: 0.1} // steady tangential sliding
	st := &contactState{}
	dt := 1e-3

	cap := law.SlidingFriction * law.Stiffness * overlap
	var res contactResult
	for i := 0; i < 200; i++ {
		res = resolveContact(n, overlap, vrel, Vec3{}, Vec3{Z: -0.05}, Vec3{Z: 0.05}, 0.025, law, st, dt)
		tangential := res.force.Sub(n.Scale(res.force.Dot(n)))
		if mag := tangential.Norm(); mag > cap*(1+1e-9) {
			t.Fatalf("step %d: tangential force %g exceeds Coulomb cap %g", i, mag, cap)
		}
	}

	// After winding well past the cap, the force sits exactly on the cone
	// and opposes the sliding direction.
	tangential := res.force.Sub(n.Scale(res.force.Dot(n)))
	if math.Abs(tangential.Norm()-cap) > cap*1e-9 {
		t.Fatalf("saturated tangential force %g, want %g", tangential.Norm(), cap)
	}
	if tangential.X >= 0 {
		t.Fatalf("tangential force %+v does not oppose sliding", tangential)
	}
}

func TestSlidingSpringRewriteStaysOnCone(t *testing.T) {
	law := ContactLaw{
		Stiffness:        1e4,
		SlidingStiffness: 1e4,
		SlidingFriction:  0.5,
	}
	n := Vec3{Z: 1}
	st := &contactState{}

	// Wind the spring far past the cone, then stop sliding. The truncated
	// spring must keep the contact exactly on the cone, not snap back.
	for i := 0; i < 100; i++ {
		resolveContact(n, 0.001, Vec3{X: 0.1}, Vec3{}, Vec3{}, Vec3{}, 0.025, law, st, 1e-3)
	}
	res := resolveContact(n, 0.001, Vec3{}, Vec3{}, Vec3{}, Vec3{}, 0.025, law, st, 1e-3)

	cap := law.SlidingFriction * law.Stiffness * 0.001
	tangential := res.force.Sub(n.Scale(res.force.Dot(n)))
	if math.Abs(tangential.Norm()-cap) > cap*1e-9 {
		t.Fatalf("post-saturation tangential force %g, want %g", tangential.Norm(), cap)
	}
}

func TestTorsionTorqueCapped(t *testing.T) {
	law := ContactLaw{
		Stiffness:        1e4,
		TorsionStiffness: 1e4,
		TorsionFriction:  0.1,
	}
	n := Vec3{Z: 1}
	overlap := 0.001
	reff := 0.05
	st := &contactState{}

	cap := law.TorsionFriction * law.Stiffness * overlap * reff
	for i := 0; i < 200; i++ {
		res := resolveContact(n, overlap, Vec3{}, Vec3{Z: 1}, Vec3{}, Vec3{}, reff, law, st, 1e-3)
		if mag := math.Abs(res.torqueA.Dot(n)); mag > cap*(1+1e-9) {
			t.Fatalf("step %d: torsion torque %g exceeds cap %g", i, mag, cap)
		}
	}
}

func TestWallContactForce(t *testing.T) {
	floor, err := NewWall(Handle{}, Plane{Normal: Vec3{Z: 1}})
	if err != nil {
		t.Fatal(err)
	}
	p := sphereAt(Vec3{Z: 0.095}, 0.1)
	table := newContactTable()

	res, ok := particleWallContact(p, &floor, normalOnlyLaw(1e4, 0), table, ContactKey{Wall: true}, 1, 1e-4)
	if !ok {
		t.Fatal("penetrating sphere reported as separated")
	}
	want := Vec3{Z: 50} // k * 0.005
	if res.force.Sub(want).Norm() > 1e-9 {
		t.Fatalf("wall force = %+v, want %+v", res.force, want)
	}

	// Clear of the wall: no contact, no state.
	away := sphereAt(Vec3{Z: 0.2}, 0.1)
	if _, ok := particleWallContact(away, &floor, normalOnlyLaw(1e4, 0), table, ContactKey{A: Handle{index: 1}, Wall: true}, 1, 1e-4); ok {
		t.Fatal("clear sphere reported as contact")
	}
}

func TestContactStateDroppedWhenOverlapCloses(t *testing.T) {
	a := sphereAt(Vec3{}, 0.1)
	b := sphereAt(Vec3{X: 0.19}, 0.1)
	table := newContactTable()
	key := ContactKey{A: Handle{index: 1}, B: Handle{index: 2}}

	if _, ok := particlePairContact(a, b, normalOnlyLaw(1e4, 0), table, key, 1, 1e-4); !ok {
		t.Fatal("expected contact")
	}
	table.prune(1)
	if table.len() != 1 {
		t.Fatalf("active contact pruned: %d states", table.len())
	}

	// Next step they have separated; the state must be dropped.
	b.Position = Vec3{X: 0.3}
	if _, ok := particlePairContact(a, b, normalOnlyLaw(1e4, 0), table, key, 2, 1e-4); ok {
		t.Fatal("separated pair reported as contact")
	}
	table.prune(2)
	if table.len() != 0 {
		t.Fatalf("stale contact survived prune: %d states", table.len())
	}
}
