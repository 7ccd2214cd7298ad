package diocotron

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gopolar/types"
)

// hollowBeam is the closed form for a hollow layer a < r < b inside a wall at
// c, with no inner conductor
func hollowBeam(a, b, c float64, l int) (growth float64) {
	var (
		lf  = float64(l)
		pa  = math.Pow(a/c, 2*lf)
		pb  = math.Pow(b/c, 2*lf)
		pab = math.Pow(a/b, 2*lf)
		a1  = -(1 - pa)
		a2  = -lf*(1-a*a/(b*b)) + 1 - pb
		bb  = -pab * (1 - pb) * (1 - pb)
		tr  = a1 + a2
		det = a1*a2 - bb
	)
	if d := det - tr*tr/4; d > 0 {
		growth = 0.5 * math.Sqrt(d)
	}
	return
}

func TestGrowthRate(t *testing.T) {
	for _, l := range []int{2, 3, 5, 9} {
		ds := NewDensitySolution(0, 0.45, 0.5, 1, 0, l, 1.e-4)
		assert.InDelta(t, hollowBeam(0.45, 0.5, 1, l), ds.GrowthRate(), 1.e-12, "l=%d", l)
	}
	{ // Reference configuration
		ds := NewDensitySolution(0, 0.45, 0.5, 1, 0, 9, 1.e-4)
		assert.InDelta(t, 0.17963, ds.GrowthRate(), 1.e-5)
		assert.InDelta(t, -0.42750, ds.Frequency(), 1.e-5)
	}
	{ // The dipole mode is neutral without a wall
		ds := NewDensitySolution(0, 0.45, 0.5, 1000, 0, 1, 1.e-4)
		assert.Equal(t, 0., ds.GrowthRate())
	}
	{ // A wall on the outer edge decouples the two surface waves
		ds := NewDensitySolution(0, 0.45, 0.5, 0.5, 0, 4, 1.e-4)
		assert.Equal(t, 0., ds.GrowthRate())
	}
	{ // An inner conductor is accepted
		ds := NewDensitySolution(0.1, 0.45, 0.5, 1, 0.02, 7, 1.e-4)
		assert.False(t, math.IsNaN(ds.GrowthRate()))
		assert.False(t, math.IsNaN(ds.Frequency()))
	}
}

func TestDensity(t *testing.T) {
	ds := NewDensitySolution(0, 0.45, 0.5, 1, 0, 9, 0.1)
	{ // Flat top inside the layer, vanishing outside
		assert.InDelta(t, 1., ds.Equilibrium(types.RThetaCoord(0.475, 1)), 1.e-12)
		assert.InDelta(t, 0., ds.Equilibrium(types.RThetaCoord(0.3, 1)), 1.e-12)
		assert.InDelta(t, 0., ds.Equilibrium(types.RThetaCoord(0.7, 1)), 1.e-12)
	}
	{ // The perturbation has the requested mode
		c := types.RThetaCoord(0.475, 0)
		assert.InDelta(t, 1.1, ds.Initial(c), 1.e-12)
		c.V[1] = math.Pi / 9
		assert.InDelta(t, 0.9, ds.Initial(c), 1.e-12)
	}
	assert.Panics(t, func() { NewDensitySolution(0, 0.5, 0.45, 1, 0, 9, 0) })
	assert.Panics(t, func() { NewDensitySolution(0, 0.45, 0.5, 1, 0, 0, 0) })
	assert.Panics(t, func() { ds.Equilibrium(types.XYCoord(0.4, 0)) })
}

func TestProfileFrequency(t *testing.T) {
	ds := NewDensitySolution(0, 0.45, 0.5, 1, 0, 9, 1.e-4)
	omega := ds.ProfileFrequency(8000)
	assert.InDelta(t, 0.180084, imag(omega), 1.e-5)
	assert.InDelta(t, -0.423226, real(omega), 1.e-5)
	{ // The smoothed edges barely move the sharp edge rate
		assert.InDelta(t, ds.GrowthRate(), imag(ds.ProfileFrequency(4096)), 1.e-3)
	}
	assert.Panics(t, func() { ds.ProfileFrequency(2) })
}
