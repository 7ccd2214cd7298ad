package grid

import (
	"fmt"
	"math"

	"github.com/notargets/gopolar/types"
)

// DefaultOPointTol is the radius below which the first radial node is taken
// as the O-point, unless the grid's OPointTol is changed
const DefaultOPointTol = 1.e-15

// Grid is the discretization of the logical (r,θ) domain: a radial node set
// crossed with a uniform periodic angular node set. It is built once and
// handed by reference to every operator that needs the mesh.
type Grid struct {
	R         []float64 // Increasing radial nodes
	Theta     []float64 // θ_j = j·DTheta, j < Nt
	Nr, Nt    int
	DTheta    float64
	OPointTol float64
}

// NewUniform builds nrCells+1 equally spaced radial nodes on [rMin, rMax]
// and nTheta angular nodes
func NewUniform(rMin, rMax float64, nrCells, nTheta int) (g *Grid) {
	if nrCells < 3 || rMax <= rMin {
		panic(fmt.Errorf("radial grid needs rMax > rMin and at least 3 cells, have [%g,%g] with %d cells",
			rMin, rMax, nrCells))
	}
	var (
		r  = make([]float64, nrCells+1)
		dr = (rMax - rMin) / float64(nrCells)
	)
	for i := range r {
		r[i] = rMin + float64(i)*dr
	}
	r[nrCells] = rMax
	return New(r, nTheta)
}

func New(r []float64, nTheta int) (g *Grid) {
	if nTheta < 4 {
		panic(fmt.Errorf("angular grid needs at least 4 points, have %d", nTheta))
	}
	for i := 1; i < len(r); i++ {
		if r[i] <= r[i-1] {
			panic(fmt.Errorf("radial nodes must increase, r[%d]=%g after r[%d]=%g", i, r[i], i-1, r[i-1]))
		}
	}
	g = &Grid{
		R:         r,
		Theta:     make([]float64, nTheta),
		Nr:        len(r),
		Nt:        nTheta,
		DTheta:    2 * math.Pi / float64(nTheta),
		OPointTol: DefaultOPointTol,
	}
	for j := range g.Theta {
		g.Theta[j] = float64(j) * g.DTheta
	}
	return
}

func (g *Grid) Len() int { return g.Nr * g.Nt }

// Index flattens (ir, it) with θ varying fastest
func (g *Grid) Index(ir, it int) int { return ir*g.Nt + it }

func (g *Grid) Split(i int) (ir, it int) {
	ir = i / g.Nt
	it = i - ir*g.Nt
	return
}

func (g *Grid) Coord(i int) types.Coord {
	ir, it := g.Split(i)
	return types.RThetaCoord(g.R[ir], g.Theta[it])
}

func (g *Grid) RMin() float64 { return g.R[0] }
func (g *Grid) RMax() float64 { return g.R[g.Nr-1] }

// HasOPoint reports whether the first radial ring is the origin of the logical domain
func (g *Grid) HasOPoint() bool { return math.Abs(g.R[0]) <= g.OPointTol }

// Ring returns the flat index range [lo, hi) of radial ring ir
func (g *Grid) Ring(ir int) (lo, hi int) { return ir * g.Nt, (ir + 1) * g.Nt }

// Same reports whether o describes the same mesh as g
func (g *Grid) Same(o *Grid) bool {
	if g == o {
		return true
	}
	if g.Nr != o.Nr || g.Nt != o.Nt {
		return false
	}
	for i := range g.R {
		if g.R[i] != o.R[i] {
			return false
		}
	}
	return true
}

// MustMatch panics when o is a different mesh
func (g *Grid) MustMatch(o *Grid) {
	if !g.Same(o) {
		panic(fmt.Errorf("grid mismatch: %dx%d vs %dx%d", g.Nr, g.Nt, o.Nr, o.Nt))
	}
}

// Locate returns the radial cell holding r, clamping r to [RMin, RMax]
func (g *Grid) Locate(r float64) (ir int, rc float64) {
	rc = math.Max(g.R[0], math.Min(r, g.R[g.Nr-1]))
	lo, hi := 0, g.Nr-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if g.R[mid] <= rc {
			lo = mid
		} else {
			hi = mid
		}
	}
	ir = lo
	return
}

// LocateTheta returns the angular cell holding th and the local offset in [0,1)
func (g *Grid) LocateTheta(th float64) (it int, u float64) {
	var (
		s = types.WrapAngle(th) / g.DTheta
	)
	it = int(math.Floor(s))
	if it >= g.Nt {
		it = g.Nt - 1
	}
	u = s - float64(it)
	return
}

// Weights returns quadrature weights w_i·|J| for Σ f_i w_i ≈ ∫ f dx dy,
// trapezoidal in r and rectangle rule in θ
func (g *Grid) Weights(jacobian func(c types.Coord) float64) (w []float64) {
	w = make([]float64, g.Len())
	for ir := 0; ir < g.Nr; ir++ {
		var dr float64
		if ir > 0 {
			dr += 0.5 * (g.R[ir] - g.R[ir-1])
		}
		if ir < g.Nr-1 {
			dr += 0.5 * (g.R[ir+1] - g.R[ir])
		}
		for it := 0; it < g.Nt; it++ {
			i := g.Index(ir, it)
			w[i] = math.Abs(jacobian(g.Coord(i))) * dr * g.DTheta
		}
	}
	return
}
