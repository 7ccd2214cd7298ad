package advectionfield

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/grid"
	"github.com/notargets/gopolar/mapping"
	"github.com/notargets/gopolar/spline"
	"github.com/notargets/gopolar/transport"
	"github.com/notargets/gopolar/types"
)

func TestComputeXY(t *testing.T) {
	g := grid.NewUniform(0, 1, 32, 64)
	for _, tc := range []struct {
		name string
		m    mapping.Mapping
		tol  float64
	}{
		{"circular", mapping.Circular{}, 1.e-4},
		{"czarny", mapping.NewCzarny(0.3, 1.4), 5.e-3},
	} {
		var (
			f = NewFinder(tc.m, spline.NewBuilder(g))
			a = field.NewVector(g, types.XYBasis)
			// φ = x - 2y has A = (2, 1)
			phi = field.NewScalar(g).Fill(func(c types.Coord) float64 {
				p := tc.m.Map(c)
				return p.V[0] - 2*p.V[1]
			})
		)
		f.ComputeXY(phi, a)
		for i := 0; i < g.Len(); i++ {
			assert.InDelta(t, 2., a.C[0][i], tc.tol, tc.name)
			assert.InDelta(t, 1., a.C[1][i], tc.tol, tc.name)
		}
		assert.Panics(t, func() { f.ComputeXY(phi, field.NewVector(g, types.RThetaContra)) })
	}
}

func TestComputeRTheta(t *testing.T) {
	var (
		g   = grid.NewUniform(0, 1, 16, 32)
		cz  = mapping.NewCzarny(0.2, 1.2)
		f   = NewFinder(cz, spline.NewBuilder(g))
		phi = field.NewScalar(g).Fill(func(c types.Coord) float64 {
			p := cz.Map(c)
			return math.Sin(p.V[0]) * math.Cos(2*p.V[1])
		})
		xy = field.NewVector(g, types.XYBasis)
		rt = field.NewVector(g, types.RThetaContra)
	)
	f.ComputeXY(phi, xy)
	centre := f.ComputeRTheta(phi, rt)
	// Both bases describe the same field
	lo, _ := g.Ring(1)
	back := field.NewVector(g, types.XYBasis)
	transport.CopyRange(back, rt, cz, lo, g.Len())
	for i := lo; i < g.Len(); i++ {
		assert.InDelta(t, xy.C[0][i], back.C[0][i], 1.e-10)
		assert.InDelta(t, xy.C[1][i], back.C[1][i], 1.e-10)
	}
	// The O-point ring of rt is left alone and the centre matches the
	// linearised Cartesian field
	for i := 0; i < lo; i++ {
		assert.Equal(t, 0., rt.C[0][i])
		assert.InDelta(t, xy.C[0][i], centre.At(0), 1.e-12)
		assert.InDelta(t, xy.C[1][i], centre.At(1), 1.e-12)
	}
	{ // No O-point, no centre value
		ga := grid.NewUniform(0.3, 1, 8, 16)
		fa := NewFinder(cz, spline.NewBuilder(ga))
		c := fa.ComputeRTheta(field.NewScalar(ga).Fill(func(c types.Coord) float64 { return c.V[0] }),
			field.NewVector(ga, types.RThetaContra))
		assert.Equal(t, [2]float64{0, 0}, c.Components())
	}
}
