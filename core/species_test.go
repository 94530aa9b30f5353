package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpecies(name string) Species {
	return Species{
		Name:        name,
		Density:     2000,
		Stiffness:   1e5,
		Dissipation: 0.63,

		SlidingStiffness:   1.2e4,
		SlidingDissipation: 6.3e-2,
		SlidingFriction:    0.5,
	}
}

func TestSpeciesValidate(t *testing.T) {
	require.NoError(t, validSpecies("ok").Validate())

	bad := validSpecies("no-density")
	bad.Density = 0
	assert.ErrorIs(t, bad.Validate(), ErrConfiguration)

	bad = validSpecies("no-stiffness")
	bad.Stiffness = -1
	assert.ErrorIs(t, bad.Validate(), ErrConfiguration)

	bad = validSpecies("negative-dissipation")
	bad.RollingDissipation = -0.1
	assert.ErrorIs(t, bad.Validate(), ErrConfiguration)

	bad = validSpecies("negative-friction")
	bad.SlidingFriction = -0.5
	assert.ErrorIs(t, bad.Validate(), ErrConfiguration)
}

func TestResolveContactLawIdentity(t *testing.T) {
	// A species against itself must yield exactly its own parameters.
	sp := validSpecies("self")
	sp.RollingStiffness = 9e3
	sp.RollingFriction = 0.2
	sp.TorsionStiffness = 5e3
	sp.TorsionFriction = 0.1

	law := ResolveContactLaw(sp, sp)
	assert.Equal(t, sp.Stiffness, law.Stiffness)
	assert.Equal(t, sp.Dissipation, law.Dissipation)
	assert.Equal(t, sp.SlidingStiffness, law.SlidingStiffness)
	assert.Equal(t, sp.SlidingFriction, law.SlidingFriction)
	assert.Equal(t, sp.RollingStiffness, law.RollingStiffness)
	assert.Equal(t, sp.RollingFriction, law.RollingFriction)
	assert.Equal(t, sp.TorsionStiffness, law.TorsionStiffness)
	assert.Equal(t, sp.TorsionFriction, law.TorsionFriction)
}

func TestResolveContactLawMixing(t *testing.T) {
	a := validSpecies("a")
	a.Stiffness = 1e5
	a.Dissipation = 0.4
	a.SlidingFriction = 0.5

	b := validSpecies("b")
	b.Stiffness = 3e5
	b.Dissipation = 0.8
	b.SlidingFriction = 0.3

	law := ResolveContactLaw(a, b)
	// Harmonic mean: 2ab/(a+b).
	assert.InDelta(t, 2*1e5*3e5/(1e5+3e5), law.Stiffness, 1e-6)
	assert.InDelta(t, 0.6, law.Dissipation, 1e-15)
	assert.InDelta(t, 0.3, law.SlidingFriction, 1e-15)

	// Symmetric in its arguments.
	assert.Equal(t, law, ResolveContactLaw(b, a))
}

func TestResolveContactLawDisabledChannel(t *testing.T) {
	a := validSpecies("frictional")
	b := validSpecies("frictionless")
	b.SlidingStiffness = 0

	law := ResolveContactLaw(a, b)
	assert.Zero(t, law.SlidingStiffness)
}

func TestAddSpeciesRejectsAfterConfigure(t *testing.T) {
	sim := NewSimulation(testConfig(0.001, 0.001), nil)
	require.NoError(t, sim.Configure(func(s *Simulation) error {
		_, err := s.AddSpecies(validSpecies("early"))
		return err
	}))

	_, err := sim.AddSpecies(validSpecies("late"))
	assert.True(t, errors.Is(err, ErrConfiguration))
}
