package model

// ParticleDefinition places one spherical particle in the initial state.
type ParticleDefinition struct {
	ID       string  `json:"id"`
	Species  string  `json:"species"`
	Radius   float64 `json:"radius"`
	Position Vector  `json:"position"`
	Velocity Vector  `json:"velocity"`
}
