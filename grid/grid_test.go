package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gopolar/types"
)

func TestGrid(t *testing.T) {
	g := NewUniform(0, 1, 20, 40)
	require.Equal(t, 21, g.Nr)
	require.Equal(t, 40, g.Nt)
	assert.Equal(t, 21*40, g.Len())
	assert.True(t, g.HasOPoint())
	assert.False(t, NewUniform(0.1, 1, 20, 40).HasOPoint())
	{ // The O-point tolerance is per grid
		near := New([]float64{1e-10, 0.5, 1}, 8)
		assert.False(t, near.HasOPoint())
		near.OPointTol = 1e-8
		assert.True(t, near.HasOPoint())
	}
	assert.PanicsWithError(t, "radial grid needs rMax > rMin and at least 3 cells, have [0,1] with -2 cells",
		func() { NewUniform(0, 1, -2, 40) })
	assert.Equal(t, 1., g.RMax())

	{ // Index round trip
		for i := 0; i < g.Len(); i++ {
			ir, it := g.Split(i)
			assert.Equal(t, i, g.Index(ir, it))
		}
		c := g.Coord(g.Index(3, 5))
		assert.InDelta(t, 0.15, c.Get(types.R), 1e-15)
		assert.InDelta(t, 5*2*math.Pi/40, c.Get(types.Theta), 1e-15)
	}
	{ // Cell location with clamping
		ir, rc := g.Locate(0.333)
		assert.Equal(t, 6, ir)
		assert.Equal(t, 0.333, rc)
		ir, rc = g.Locate(1.5)
		assert.Equal(t, 19, ir)
		assert.Equal(t, 1., rc)
		ir, rc = g.Locate(-0.1)
		assert.Equal(t, 0, ir)
		assert.Equal(t, 0., rc)

		it, u := g.LocateTheta(-g.DTheta / 2)
		assert.Equal(t, 39, it)
		assert.InDelta(t, 0.5, u, 1e-12)
		it, u = g.LocateTheta(2 * math.Pi)
		assert.Equal(t, 0, it)
		assert.InDelta(t, 0., u, 1e-12)
	}
	{ // Quadrature of the unit disk area
		w := g.Weights(func(c types.Coord) float64 { return c.Get(types.R) })
		var area float64
		for _, wi := range w {
			area += wi
		}
		assert.InDelta(t, math.Pi, area, 1e-2)
	}
	{ // Mesh identity
		assert.True(t, g.Same(NewUniform(0, 1, 20, 40)))
		assert.False(t, g.Same(NewUniform(0, 1, 20, 32)))
		assert.Panics(t, func() { g.MustMatch(NewUniform(0, 2, 20, 40)) })
		assert.Panics(t, func() { New([]float64{0, 0.5, 0.4}, 8) })
	}
}
