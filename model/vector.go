package model

// Vector is a plain 3-component vector used by scenario definitions.
// The core package has its own Vec3 with behaviour; this one is data only.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
