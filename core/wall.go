package core

import "fmt"

// WallShape is the analytic geometry of a rigid wall. Distance returns the
// signed distance from a point to the surface — positive on the allowed side
// of the wall — together with the unit normal pointing into the allowed
// region. A sphere of radius r overlaps the wall when distance < r.
type WallShape interface {
	Distance(p Vec3) (float64, Vec3)
	Validate() error
}

// Plane is an infinite wall. Normal points from the surface into the region
// particles are allowed to occupy.
type Plane struct {
	Normal Vec3
	Point  Vec3
}

// Distance implements WallShape.
func (w Plane) Distance(p Vec3) (float64, Vec3) {
	n := w.Normal.Normalized()
	return n.Dot(p.Sub(w.Point)), n
}

// Validate implements WallShape.
func (w Plane) Validate() error {
	if w.Normal.Norm() == 0 {
		return fmt.Errorf("%w: plane with zero normal", ErrGeometry)
	}
	return nil
}

// Cylinder keeps particles inside an infinite cylinder of the given radius
// around the axis through Point along Axis. This is the container wall of
// the shaken-cylinder scenario.
type Cylinder struct {
	Point  Vec3
	Axis   Vec3
	Radius float64
}

// Distance implements WallShape.
func (w Cylinder) Distance(p Vec3) (float64, Vec3) {
	axis := w.Axis.Normalized()
	rel := p.Sub(w.Point)
	radial := rel.Sub(axis.Scale(rel.Dot(axis)))
	d := radial.Norm()
	if d == 0 {
		// On the axis: maximally far from the surface; normal direction is
		// arbitrary but must be unit length and perpendicular to the axis.
		perp := axis.Cross(Vec3{X: 1}).Normalized()
		if perp.Norm() == 0 {
			perp = axis.Cross(Vec3{Y: 1}).Normalized()
		}
		return w.Radius, perp.Scale(-1)
	}
	// Inward normal points from the surface towards the axis.
	return w.Radius - d, radial.Scale(-1 / d)
}

// Validate implements WallShape.
func (w Cylinder) Validate() error {
	if w.Radius <= 0 {
		return fmt.Errorf("%w: cylinder radius %g", ErrGeometry, w.Radius)
	}
	if w.Axis.Norm() == 0 {
		return fmt.Errorf("%w: cylinder with zero axis", ErrGeometry)
	}
	return nil
}

// Intersection is the conjunction of several half-space faces. A point is on
// the allowed side when every face allows it; a violating sphere is resolved
// against the binding face only, the one whose surface is closest.
type Intersection struct {
	Faces []Plane
}

// Distance implements WallShape.
func (w Intersection) Distance(p Vec3) (float64, Vec3) {
	best := false
	var bestDist float64
	var bestNormal Vec3
	for _, f := range w.Faces {
		d, n := f.Distance(p)
		if !best || d < bestDist {
			best = true
			bestDist = d
			bestNormal = n
		}
	}
	if !best {
		return 0, Vec3{}
	}
	return bestDist, bestNormal
}

// Validate implements WallShape.
func (w Intersection) Validate() error {
	if len(w.Faces) == 0 {
		return fmt.Errorf("%w: intersection wall with no faces", ErrGeometry)
	}
	for i, f := range w.Faces {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("face %d: %w", i, err)
		}
	}
	return nil
}

// Wall is one rigid boundary of the simulation. The shape is immutable after
// construction; prescribed motion translates it via Velocity, accumulated
// into Offset each step. Scenario hooks may change Velocity between steps.
type Wall struct {
	Species  Handle
	Shape    WallShape
	Velocity Vec3
	Offset   Vec3
}

// NewWall validates the shape and builds a static wall.
func NewWall(species Handle, shape WallShape) (Wall, error) {
	if shape == nil {
		return Wall{}, fmt.Errorf("%w: nil wall shape", ErrGeometry)
	}
	if err := shape.Validate(); err != nil {
		return Wall{}, err
	}
	return Wall{Species: species, Shape: shape}, nil
}

// DistanceTo evaluates the shape in the wall's current (translated) frame.
func (w *Wall) DistanceTo(p Vec3) (float64, Vec3) {
	return w.Shape.Distance(p.Sub(w.Offset))
}

// advance applies prescribed rigid-body motion for one step.
func (w *Wall) advance(dt float64) {
	w.Offset = w.Offset.Add(w.Velocity.Scale(dt))
}
