package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gopolar/grid"
	"github.com/notargets/gopolar/tensor"
	"github.com/notargets/gopolar/types"
)

func TestScalar(t *testing.T) {
	g := grid.NewUniform(0, 1, 4, 8)
	s := NewScalar(g).Fill(func(c types.Coord) float64 { return c.Get(types.R) })
	assert.Equal(t, 0.5, s.At(2, 3))
	assert.Equal(t, 0., s.OPointSpread())

	c := s.Clone()
	c.Scale(2)
	assert.Equal(t, 1., c.At(2, 3))
	assert.Equal(t, 0.5, s.At(2, 3))
	assert.InDelta(t, 1., c.Distance(s), 1e-15)
	assert.InDelta(t, 2., c.Norm(), 1e-15)
	c.AddScaled(-2, s)
	assert.Equal(t, 0., c.Norm())
	c.CopyFrom(s)
	assert.Equal(t, s.V, c.V)

	s.V[3] = 7
	assert.Equal(t, 7., s.OPointSpread())
	assert.Panics(t, func() { c.CopyFrom(NewScalar(grid.NewUniform(0, 1, 4, 16))) })
}

func TestVector(t *testing.T) {
	var (
		g = grid.NewUniform(0, 1, 4, 8)
		v = NewVector(g, types.XYBasis)
	)
	v.SetAt(5, tensor.Vector(types.XYBasis, 3, 4))
	assert.Equal(t, [2]float64{3, 4}, v.At(5).Components())
	assert.Equal(t, 4., v.Get(types.Y)[5])
	assert.Equal(t, 5., v.Norm())
	assert.Panics(t, func() { v.SetAt(0, tensor.Vector(types.RThetaContra, 1, 1)) })
	assert.Panics(t, func() { v.Get(types.R) })

	w := v.Clone()
	w.Scale(-1)
	assert.Equal(t, 10., v.Distance(w))
	w.AddScaled(1, v)
	assert.Equal(t, 0., w.Norm())
	assert.Panics(t, func() { w.AddScaled(1, NewVector(g, types.PseudoBasis)) })
}

func TestCoords(t *testing.T) {
	var (
		g = grid.NewUniform(0, 1, 4, 8)
		c = GridCoords(g)
	)
	require.Equal(t, g.Len(), c.Len())
	p := c.At(g.Index(2, 1))
	assert.Equal(t, types.RThetaSys, p.Sys)
	assert.InDelta(t, 0.5, p.Get(types.R), 0)
	assert.InDelta(t, math.Pi/4, p.Get(types.Theta), 1e-15)

	{ // Periodic distance is taken the short way round
		o := c.Clone()
		o.C[1][g.Index(1, 0)] = 2*math.Pi - 0.01
		assert.InDelta(t, 0.01, o.Distance(c), 1e-12)
	}
	{ // O-point spread and reset
		o := c.Clone()
		assert.InDelta(t, math.Pi*7/4, o.OPointSpread(), 1e-14)
		for it := 0; it < g.Nt; it++ {
			o.C[1][it] = 0
		}
		assert.Equal(t, 0., o.OPointSpread())
		o.SetAt(0, types.RThetaCoord(0.3, 1))
		assert.Equal(t, 1., o.OPointSpread())
		o.Reset()
		assert.Equal(t, 0., o.Distance(c))
		assert.Panics(t, func() { o.SetAt(0, types.XYCoord(0, 0)) })
	}
}
