// Package spline represents a scalar sampled on a polar grid as a piecewise
// bicubic Hermite surface. Nodal derivatives come from not-a-knot cubic
// splines fitted along r and along the periodic θ direction.
package spline

import (
	"fmt"

	"gonum.org/v1/gonum/interp"

	"github.com/notargets/gopolar/grid"
	"github.com/notargets/gopolar/types"
	"github.com/notargets/gopolar/utils"
)

// thetaPad is the number of periodic images added on each side of a ring fit
const thetaPad = 4

// Spline holds the nodal value and derivatives needed by the Hermite patch
type Spline struct {
	G   *grid.Grid
	F   []float64 // f
	Fr  []float64 // ∂f/∂r
	Ft  []float64 // ∂f/∂θ
	Frt []float64 // ∂²f/∂r∂θ
}

// Builder fits splines on one grid. It keeps no state between builds.
type Builder struct {
	G *grid.Grid
	// mirror fits along the full diameter through the O-point when the grid
	// has one and θ+π is a grid angle
	mirror bool
}

func NewBuilder(g *grid.Grid) *Builder {
	if g.Nr < 4 {
		panic(fmt.Errorf("spline fit needs at least 4 radial nodes, have %d", g.Nr))
	}
	return &Builder{G: g, mirror: g.HasOPoint() && g.Nt%2 == 0}
}

// Build fits values, laid out as grid.Index(ir, it), and returns a new spline
func (b *Builder) Build(values []float64) (s *Spline) {
	g := b.G
	if len(values) != g.Len() {
		panic(fmt.Errorf("spline build with %d values on a grid of %d nodes", len(values), g.Len()))
	}
	s = &Spline{
		G:   g,
		F:   make([]float64, g.Len()),
		Fr:  make([]float64, g.Len()),
		Ft:  make([]float64, g.Len()),
		Frt: make([]float64, g.Len()),
	}
	copy(s.F, values)
	utils.ParallelFor(g.Nt, func(it int) { b.radialDerivative(s.F, s.Fr, it) })
	utils.ParallelFor(g.Nr, func(ir int) {
		b.angularDerivative(s.F, s.Ft, ir)
		b.angularDerivative(s.Fr, s.Frt, ir)
	})
	if g.HasOPoint() {
		lo, hi := g.Ring(0)
		for i := lo; i < hi; i++ {
			s.Ft[i] = 0
		}
	}
	return
}

func (b *Builder) radialDerivative(f, df []float64, it int) {
	var (
		g      = b.G
		xs, ys []float64
		sp     interp.NotAKnotCubic
	)
	if b.mirror {
		opp := (it + g.Nt/2) % g.Nt
		for ir := g.Nr - 1; ir > 0; ir-- {
			xs = append(xs, -g.R[ir])
			ys = append(ys, f[g.Index(ir, opp)])
		}
	}
	for ir := 0; ir < g.Nr; ir++ {
		xs = append(xs, g.R[ir])
		ys = append(ys, f[g.Index(ir, it)])
	}
	if err := sp.Fit(xs, ys); err != nil {
		panic(fmt.Errorf("radial spline fit at angle index %d: %w", it, err))
	}
	for ir := 0; ir < g.Nr; ir++ {
		df[g.Index(ir, it)] = sp.PredictDerivative(g.R[ir])
	}
}

func (b *Builder) angularDerivative(f, df []float64, ir int) {
	var (
		g  = b.G
		n  = g.Nt + 2*thetaPad
		xs = make([]float64, n)
		ys = make([]float64, n)
		sp interp.NotAKnotCubic
	)
	for k := 0; k < n; k++ {
		j := k - thetaPad
		xs[k] = float64(j) * g.DTheta
		ys[k] = f[g.Index(ir, ((j%g.Nt)+g.Nt)%g.Nt)]
	}
	if err := sp.Fit(xs, ys); err != nil {
		panic(fmt.Errorf("angular spline fit on ring %d: %w", ir, err))
	}
	for it := 0; it < g.Nt; it++ {
		df[g.Index(ir, it)] = sp.PredictDerivative(g.Theta[it])
	}
}

// Cubic Hermite basis functions on [0,1] and their first derivatives
func hermite(t float64) (h [2][2]float64, dh [2][2]float64) {
	t2, t3 := t*t, t*t*t
	// h[value/slope][left/right]
	h[0][0] = 2*t3 - 3*t2 + 1
	h[0][1] = -2*t3 + 3*t2
	h[1][0] = t3 - 2*t2 + t
	h[1][1] = t3 - t2
	dh[0][0] = 6*t2 - 6*t
	dh[0][1] = -6*t2 + 6*t
	dh[1][0] = 3*t2 - 4*t + 1
	dh[1][1] = 3*t2 - 2*t
	return
}

// patch evaluates the Hermite surface, or its first derivative along r (dr)
// or θ (dt), at c. r is clamped to the grid and θ wrapped.
func (s *Spline) patch(c types.Coord, dr, dt bool) (v float64) {
	c.MustBeIn(types.RThetaSys)
	var (
		g       = s.G
		ir, rc  = g.Locate(c.V[0])
		it, vt  = g.LocateTheta(c.V[1])
		hr      = g.R[ir+1] - g.R[ir]
		ht      = g.DTheta
		hu, dhu = hermite((rc - g.R[ir]) / hr)
		hv, dhv = hermite(vt)
		cols    = [2]int{it, (it + 1) % g.Nt}
		bu, bv  = hu, hv
		scale   = 1.
	)
	if dr {
		bu = dhu
		scale /= hr
	}
	if dt {
		bv = dhv
		scale /= ht
	}
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			i := g.Index(ir+a, cols[b])
			v += bu[0][a]*bv[0][b]*s.F[i] +
				bu[1][a]*hr*bv[0][b]*s.Fr[i] +
				bu[0][a]*bv[1][b]*ht*s.Ft[i] +
				bu[1][a]*hr*bv[1][b]*ht*s.Frt[i]
		}
	}
	return v * scale
}

func (s *Spline) Eval(c types.Coord) float64 { return s.patch(c, false, false) }

func (s *Spline) DerivR(c types.Coord) float64 { return s.patch(c, true, false) }

func (s *Spline) DerivTheta(c types.Coord) float64 { return s.patch(c, false, true) }
