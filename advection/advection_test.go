package advection

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/grid"
	"github.com/notargets/gopolar/mapping"
	"github.com/notargets/gopolar/spline"
	"github.com/notargets/gopolar/tensor"
	"github.com/notargets/gopolar/timestepper"
	"github.com/notargets/gopolar/transport"
	"github.com/notargets/gopolar/types"
)

func newBSL(t *testing.T, g *grid.Grid, physical mapping.Mapping, stepper string, logger *slog.Logger) *BSL {
	comb := mapping.NewCombined(physical, mapping.NewPseudoCartesian(), 1.e-12)
	ts, err := timestepper.New[*field.Coords](stepper, Proto(g, comb))
	require.NoError(t, err)
	b := spline.NewBuilder(g)
	return NewBSL(NewFootFinder(ts, comb, b, logger), spline.NewInterpolator(b), physical, logger)
}

// rotation is ω(y_c - y, x - x_c) in the Cartesian basis
func rotation(g *grid.Grid, m mapping.Mapping, omega, xc, yc float64) (a *field.Vector) {
	a = field.NewVector(g, types.XYBasis)
	for i := 0; i < g.Len(); i++ {
		p := m.Map(g.Coord(i))
		a.C[0][i] = omega * (yc - p.V[1])
		a.C[1][i] = omega * (p.V[0] - xc)
	}
	return
}

func gaussian(c types.Coord) float64 {
	x, y := c.V[0]*math.Cos(c.V[1]), c.V[0]*math.Sin(c.V[1])
	return math.Exp(-((x-0.3)*(x-0.3) + y*y) / 0.05)
}

func TestRigidRotationFeet(t *testing.T) {
	var (
		g      = grid.NewUniform(0, 1, 20, 40)
		m      = mapping.Circular{}
		dt     = 0.1
		omega  = 1.
		sn, cs = math.Sincos(omega * dt)
	)
	for _, stepper := range []string{"rk3", "rk4"} {
		b := newBSL(t, g, m, stepper, nil)
		feet := field.GridCoords(g)
		b.Finder.Find(feet, rotation(g, m, omega, 0, 0), dt)
		var maxErr float64
		for i := 0; i < g.Len(); i++ {
			var (
				p   = m.Map(g.Coord(i))
				got = m.Map(feet.At(i))
				x   = p.V[0]*cs + p.V[1]*sn
				y   = -p.V[0]*sn + p.V[1]*cs
			)
			maxErr = math.Max(maxErr, math.Hypot(got.V[0]-x, got.V[1]-y))
		}
		assert.Less(t, maxErr, 1.e-5, stepper)
		assert.Equal(t, 0., feet.OPointSpread(), stepper)
		lo, hi := g.Ring(0)
		for i := lo; i < hi; i++ {
			assert.Equal(t, types.RThetaCoord(0, 0), feet.At(i))
		}
	}
}

func TestOPointSingleValued(t *testing.T) {
	var (
		g  = grid.NewUniform(0, 1, 16, 32)
		cz = mapping.NewCzarny(0.3, 1.4)
		c  = cz.Map(types.RThetaCoord(0, 0))
	)
	for _, stepper := range []string{"euler", "rk2", "rk3", "cn"} {
		b := newBSL(t, g, cz, stepper, nil)
		f := field.NewScalar(g).Fill(gaussian)
		feet := b.AdvectCartesian(f, rotation(g, cz, 0.7, c.V[0]+0.05, c.V[1]-0.02), 0.1)
		assert.Equal(t, 0., feet.OPointSpread(), stepper)
		assert.Equal(t, 0., f.OPointSpread(), stepper)
	}
}

func TestBasisEquivalence(t *testing.T) {
	var (
		g  = grid.NewUniform(0, 1, 20, 40)
		m  = mapping.Circular{}
		xy = rotation(g, m, 1, 0, 0)
		rt = field.NewVector(g, types.RThetaContra)
	)
	lo, _ := g.Ring(1)
	transport.CopyRange(rt, xy, m, lo, g.Len())

	b := newBSL(t, g, m, "rk3", nil)
	fa := field.NewScalar(g).Fill(gaussian)
	fc := fa.Clone()
	fb := fa.Clone()
	b.AdvectCartesian(fa, xy, 0.1)
	b.Advect(fc, rt, 0.1)
	b.AdvectWithOPoint(fb, rt, tensor.Vector(types.XYBasis, 0, 0), 0.1)
	assert.Less(t, fa.Distance(fc), 1.e-13)
	assert.Less(t, fa.Distance(fb), 1.e-13)
}

func TestZeroAdvection(t *testing.T) {
	for _, g := range []*grid.Grid{grid.NewUniform(0, 1, 12, 24), grid.NewUniform(0.2, 1, 12, 25)} {
		var (
			m    = mapping.NewCzarny(0.2, 1.2)
			b    = newBSL(t, g, m, "rk4", nil)
			f    = field.NewScalar(g).Fill(gaussian)
			orig = f.Clone()
		)
		b.AdvectCartesian(f, field.NewVector(g, types.XYBasis), 0.5)
		assert.Less(t, f.Distance(orig), 1.e-13)
		b.Advect(f, field.NewVector(g, types.RThetaContra), 0.5)
		assert.Less(t, f.Distance(orig), 1.e-13)
	}
}

func TestAdvectContracts(t *testing.T) {
	var (
		g = grid.NewUniform(0.1, 1, 8, 16)
		m = mapping.Circular{}
		b = newBSL(t, g, m, "rk3", nil)
		f = field.NewScalar(g)
	)
	{ // No O-point value on a grid without one
		assert.Panics(t, func() {
			b.AdvectWithOPoint(f, field.NewVector(g, types.RThetaContra), tensor.Vector(types.XYBasis, 0, 0), 0.1)
		})
	}
	{ // The field and the function share their radial range
		other := grid.NewUniform(0, 1, 8, 16)
		assert.Panics(t, func() { b.Advect(f, field.NewVector(other, types.RThetaContra), 0.1) })
	}
	{ // A looser tolerance sees the first ring as the O-point
		b.OPointTol = 0.2
		assert.NotPanics(t, func() {
			b.AdvectWithOPoint(f, field.NewVector(g, types.RThetaContra), tensor.Vector(types.XYBasis, 0, 0), 0.1)
		})
	}
}

func TestUnifyMismatch(t *testing.T) {
	var (
		g   = grid.NewUniform(0, 1, 8, 16)
		buf bytes.Buffer
		log = slog.New(slog.NewTextHandler(&buf, nil))
		b   = newBSL(t, g, mapping.Circular{}, "euler", log)
	)
	broken := func() *field.Coords {
		feet := field.GridCoords(g)
		feet.C[0][3] = 1.e-3
		return feet
	}
	defer func(a bool) { AssertOPoint = a }(AssertOPoint)

	AssertOPoint = true
	assert.Panics(t, func() { b.Finder.unify(broken()) })
	assert.Contains(t, buf.String(), "feet discontinuous at the O-point")

	AssertOPoint = false
	feet := broken()
	assert.NotPanics(t, func() { b.Finder.unify(feet) })
	assert.Equal(t, 0., feet.OPointSpread())
}
