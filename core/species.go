package core

import "fmt"

// Species holds the material parameters of one particle type: a linear
// viscoelastic normal law plus optional Coulomb-limited sliding, rolling and
// torsion channels. Species are immutable once registered.
type Species struct {
	Name    string
	Density float64

	Stiffness   float64
	Dissipation float64

	SlidingStiffness   float64
	SlidingDissipation float64
	SlidingFriction    float64

	RollingStiffness   float64
	RollingDissipation float64
	RollingFriction    float64

	TorsionStiffness   float64
	TorsionDissipation float64
	TorsionFriction    float64
}

// Validate rejects species that cannot produce a well-defined contact law.
func (s Species) Validate() error {
	if s.Density <= 0 {
		return fmt.Errorf("%w: species %q density %g", ErrConfiguration, s.Name, s.Density)
	}
	if s.Stiffness <= 0 {
		return fmt.Errorf("%w: species %q stiffness %g", ErrConfiguration, s.Name, s.Stiffness)
	}
	if s.Dissipation < 0 || s.SlidingDissipation < 0 || s.RollingDissipation < 0 || s.TorsionDissipation < 0 {
		return fmt.Errorf("%w: species %q has negative dissipation", ErrConfiguration, s.Name)
	}
	if s.SlidingFriction < 0 || s.RollingFriction < 0 || s.TorsionFriction < 0 {
		return fmt.Errorf("%w: species %q has negative friction", ErrConfiguration, s.Name)
	}
	return nil
}

// ContactLaw is the resolved pairwise parameter set used by the force
// computation for one contact.
type ContactLaw struct {
	Stiffness   float64
	Dissipation float64

	SlidingStiffness   float64
	SlidingDissipation float64
	SlidingFriction    float64

	RollingStiffness   float64
	RollingDissipation float64
	RollingFriction    float64

	TorsionStiffness   float64
	TorsionDissipation float64
	TorsionFriction    float64
}

// ResolveContactLaw combines two species into the effective pairwise law.
// Stiffnesses combine by harmonic mean (springs in series), dissipations by
// arithmetic mean, friction coefficients by minimum (the weaker surface
// slips first). Resolving a species against itself yields its own
// parameters.
func ResolveContactLaw(a, b Species) ContactLaw {
	return ContactLaw{
		Stiffness:   harmonicMean(a.Stiffness, b.Stiffness),
		Dissipation: 0.5 * (a.Dissipation + b.Dissipation),

		SlidingStiffness:   harmonicMean(a.SlidingStiffness, b.SlidingStiffness),
		SlidingDissipation: 0.5 * (a.SlidingDissipation + b.SlidingDissipation),
		SlidingFriction:    min(a.SlidingFriction, b.SlidingFriction),

		RollingStiffness:   harmonicMean(a.RollingStiffness, b.RollingStiffness),
		RollingDissipation: 0.5 * (a.RollingDissipation + b.RollingDissipation),
		RollingFriction:    min(a.RollingFriction, b.RollingFriction),

		TorsionStiffness:   harmonicMean(a.TorsionStiffness, b.TorsionStiffness),
		TorsionDissipation: 0.5 * (a.TorsionDissipation + b.TorsionDissipation),
		TorsionFriction:    min(a.TorsionFriction, b.TorsionFriction),
	}
}

// harmonicMean of two spring constants; 2ab/(a+b). Equal inputs return the
// input itself, and a zero (disabled channel) on either side disables the
// pair.
func harmonicMean(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return 2 * a * b / (a + b)
}
