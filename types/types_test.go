package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Dimension metadata
		assert.True(t, Theta.Periodic())
		assert.False(t, R.Periodic())
		assert.True(t, XYSys.Cartesian())
		assert.True(t, PseudoXYSys.Cartesian())
		assert.False(t, RThetaSys.Cartesian())
		assert.Equal(t, "theta", Theta.String())
		assert.Equal(t, "Dim(42)", Dim(42).String())
		assert.Equal(t, "xpc", Xpc.String())
		assert.Equal(t, 1, RThetaSys.Pos(Theta))
		assert.Equal(t, -1, RThetaSys.Pos(X))
	}
	{ // Bases and duals
		assert.Equal(t, RThetaCov, RThetaContra.Dual())
		assert.Equal(t, RThetaContra, RThetaCov.Dual())
		assert.True(t, XYBasis.Equivalent(XYBasis.Dual()))
		assert.False(t, RThetaContra.Equivalent(RThetaCov))
		assert.False(t, XYBasis.Equivalent(PseudoBasis))
	}
	{ // Coordinates keep their tags
		c := RThetaCoord(0.5, 1.)
		assert.Equal(t, 0.5, c.Get(R))
		assert.Equal(t, 1., c.Get(Theta))
		assert.Panics(t, func() { c.Get(X) })
		assert.Panics(t, func() { c.MustBeIn(XYSys) })
		assert.NotPanics(t, func() { c.MustBeIn(RThetaSys) })
	}
	{ // Angle wrapping
		assert.InDelta(t, 0., WrapAngle(2*math.Pi), 1e-15)
		assert.InDelta(t, math.Pi/2, WrapAngle(-3*math.Pi/2), 1e-15)
		assert.InDelta(t, 0.25, WrapAngle(0.25+4*math.Pi), 1e-14)
		w := WrapAngle(-1e-300)
		assert.True(t, w >= 0 && w < 2*math.Pi)
		c := RThetaCoord(1, -math.Pi).Wrapped()
		assert.InDelta(t, math.Pi, c.Get(Theta), 1e-15)
		assert.Equal(t, 1., c.Get(R))
	}
}
