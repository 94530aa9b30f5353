package core

import (
	"math"
	"testing"
)

func TestPlaneDistance(t *testing.T) {
	// Floor at z=0, particles allowed above.
	floor := Plane{Normal: Vec3{Z: 1}, Point: Vec3{}}

	d, n := floor.Distance(Vec3{X: 3, Y: -1, Z: 0.5})
	if math.Abs(d-0.5) > 1e-15 {
		t.Fatalf("distance above plane = %g, want 0.5", d)
	}
	if n != (Vec3{Z: 1}) {
		t.Fatalf("normal = %+v, want +z", n)
	}

	d, _ = floor.Distance(Vec3{Z: -0.2})
	if math.Abs(d+0.2) > 1e-15 {
		t.Fatalf("distance below plane = %g, want -0.2", d)
	}
}

func TestPlaneNormalizesNormal(t *testing.T) {
	p := Plane{Normal: Vec3{Z: 10}, Point: Vec3{Z: 1}}
	d, n := p.Distance(Vec3{Z: 3})
	if math.Abs(d-2) > 1e-15 {
		t.Fatalf("distance = %g, want 2", d)
	}
	if math.Abs(n.Norm()-1) > 1e-15 {
		t.Fatalf("normal not unit length: %+v", n)
	}
}

func TestCylinderDistance(t *testing.T) {
	// Vertical container of radius 0.25 around the z-axis.
	cyl := Cylinder{Axis: Vec3{Z: 1}, Radius: 0.25}

	d, n := cyl.Distance(Vec3{X: 0.2, Z: 5})
	if math.Abs(d-0.05) > 1e-15 {
		t.Fatalf("interior distance = %g, want 0.05", d)
	}
	// Inward normal points back towards the axis.
	if math.Abs(n.X+1) > 1e-15 || math.Abs(n.Y) > 1e-15 || math.Abs(n.Z) > 1e-15 {
		t.Fatalf("normal = %+v, want -x", n)
	}

	// Outside the container the distance goes negative.
	d, _ = cyl.Distance(Vec3{X: 0.3})
	if math.Abs(d+0.05) > 1e-15 {
		t.Fatalf("exterior distance = %g, want -0.05", d)
	}

	// On the axis the distance is the full radius and the normal is some
	// unit vector perpendicular to the axis.
	d, n = cyl.Distance(Vec3{Z: 1})
	if d != cyl.Radius {
		t.Fatalf("on-axis distance = %g, want %g", d, cyl.Radius)
	}
	if math.Abs(n.Norm()-1) > 1e-12 || math.Abs(n.Dot(Vec3{Z: 1})) > 1e-12 {
		t.Fatalf("on-axis normal %+v not unit perpendicular", n)
	}
}

func TestIntersectionBindingFace(t *testing.T) {
	// A square channel: allowed between x=0 and x=1.
	wedge := Intersection{Faces: []Plane{
		{Normal: Vec3{X: 1}, Point: Vec3{}},
		{Normal: Vec3{X: -1}, Point: Vec3{X: 1}},
	}}

	// Closer to the x=1 face: that face binds.
	d, n := wedge.Distance(Vec3{X: 0.9})
	if math.Abs(d-0.1) > 1e-15 {
		t.Fatalf("distance = %g, want 0.1", d)
	}
	if n != (Vec3{X: -1}) {
		t.Fatalf("binding normal = %+v, want -x", n)
	}

	// Violating a face makes its (negative) distance the binding one.
	d, n = wedge.Distance(Vec3{X: 1.3})
	if math.Abs(d+0.3) > 1e-15 {
		t.Fatalf("distance = %g, want -0.3", d)
	}
	if n != (Vec3{X: -1}) {
		t.Fatalf("binding normal = %+v, want -x", n)
	}
}

func TestWallShapeValidation(t *testing.T) {
	cases := []struct {
		name  string
		shape WallShape
	}{
		{"zero-normal plane", Plane{}},
		{"zero-radius cylinder", Cylinder{Axis: Vec3{Z: 1}}},
		{"zero-axis cylinder", Cylinder{Radius: 1}},
		{"empty intersection", Intersection{}},
		{"bad face", Intersection{Faces: []Plane{{}}}},
	}
	for _, tc := range cases {
		if _, err := NewWall(Handle{}, tc.shape); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
	if _, err := NewWall(Handle{}, nil); err == nil {
		t.Error("nil shape: expected error")
	}
}

func TestWallOffsetMotion(t *testing.T) {
	w, err := NewWall(Handle{}, Plane{Normal: Vec3{Z: 1}})
	if err != nil {
		t.Fatal(err)
	}
	w.Velocity = Vec3{Z: 2}
	w.advance(0.25)

	// The plane moved up by 0.5: a point at z=1 is now 0.5 above it.
	d, _ := w.DistanceTo(Vec3{Z: 1})
	if math.Abs(d-0.5) > 1e-15 {
		t.Fatalf("distance after motion = %g, want 0.5", d)
	}
}
