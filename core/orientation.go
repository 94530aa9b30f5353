package core

import "math"

// Quaternion stores a particle's orientation. Spheres are rotationally
// symmetric, so orientation only matters for diagnostics and for rolling
// history, but the integrator keeps it consistent anyway.
type Quaternion struct {
	W, X, Y, Z float64
}

// IdentityQuaternion is the no-rotation orientation.
func IdentityQuaternion() Quaternion {
	return Quaternion{W: 1}
}

// Normalized rescales the quaternion to unit length. A zero quaternion is
// reset to the identity.
func (q Quaternion) Normalized() Quaternion {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n == 0 {
		return IdentityQuaternion()
	}
	return Quaternion{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// Integrate advances the orientation by an angular velocity over dt using
// the first-order quaternion derivative q' = 0.5 * ω ⊗ q, then renormalises.
func (q Quaternion) Integrate(omega Vec3, dt float64) Quaternion {
	half := 0.5 * dt
	dq := Quaternion{
		W: -half * (omega.X*q.X + omega.Y*q.Y + omega.Z*q.Z),
		X: half * (omega.X*q.W + omega.Y*q.Z - omega.Z*q.Y),
		Y: half * (omega.Y*q.W + omega.Z*q.X - omega.X*q.Z),
		Z: half * (omega.Z*q.W + omega.X*q.Y - omega.Y*q.X),
	}
	return Quaternion{
		W: q.W + dq.W,
		X: q.X + dq.X,
		Y: q.Y + dq.Y,
		Z: q.Z + dq.Z,
	}.Normalized()
}

// IsFinite reports whether all components are finite numbers.
func (q Quaternion) IsFinite() bool {
	for _, c := range [4]float64{q.W, q.X, q.Y, q.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
