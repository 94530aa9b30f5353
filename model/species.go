package model

// SpeciesDefinition carries the material parameters of one particle species.
// Zero-valued sliding/rolling/torsion blocks disable the corresponding
// friction channel. Mirrors a linear viscoelastic friction material.
type SpeciesDefinition struct {
	ID      string  `json:"id"`
	Density float64 `json:"density"`

	Stiffness   float64 `json:"stiffness"`
	Dissipation float64 `json:"dissipation"`

	SlidingStiffness   float64 `json:"sliding_stiffness"`
	SlidingDissipation float64 `json:"sliding_dissipation"`
	SlidingFriction    float64 `json:"sliding_friction"`

	RollingStiffness   float64 `json:"rolling_stiffness"`
	RollingDissipation float64 `json:"rolling_dissipation"`
	RollingFriction    float64 `json:"rolling_friction"`

	TorsionStiffness   float64 `json:"torsion_stiffness"`
	TorsionDissipation float64 `json:"torsion_dissipation"`
	TorsionFriction    float64 `json:"torsion_friction"`
}
