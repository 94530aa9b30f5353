package model

// WallKind selects the analytic geometry of a wall.
type WallKind string

const (
	// WallPlane is an infinite plane; particles are kept on the side the
	// normal points to.
	WallPlane WallKind = "plane"
	// WallCylinder is an infinite cylinder around an axis; particles are
	// kept inside.
	WallCylinder WallKind = "cylinder"
	// WallIntersection combines several half-spaces; a particle collides
	// only with the binding (closest violated) face.
	WallIntersection WallKind = "intersection"
)

// HalfSpaceDefinition is one face of an intersection wall.
type HalfSpaceDefinition struct {
	Normal Vector `json:"normal"`
	Point  Vector `json:"point"`
}

// WallDefinition describes one rigid wall. Velocity is optional prescribed
// rigid-body motion; the scenario hook may change it during the run.
type WallDefinition struct {
	ID      string   `json:"id"`
	Species string   `json:"species"`
	Kind    WallKind `json:"kind"`

	// Plane parameters.
	Normal Vector `json:"normal,omitempty"`
	Point  Vector `json:"point,omitempty"`

	// Cylinder parameters. Axis passes through Point along Axis.
	Axis   Vector  `json:"axis,omitempty"`
	Radius float64 `json:"radius,omitempty"`

	// Intersection parameters.
	Faces []HalfSpaceDefinition `json:"faces,omitempty"`

	Velocity Vector `json:"velocity,omitempty"`
}
