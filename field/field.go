// Package field holds dense data laid out over a polar grid: scalar fields,
// two component vector fields tagged with their basis, and coordinate fields
// such as the characteristic feet.
package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gopolar/grid"
	"github.com/notargets/gopolar/tensor"
	"github.com/notargets/gopolar/types"
)

type Scalar struct {
	G *grid.Grid
	V []float64
}

func NewScalar(g *grid.Grid) *Scalar {
	return &Scalar{G: g, V: make([]float64, g.Len())}
}

// Fill samples f at every grid node
func (s *Scalar) Fill(f func(c types.Coord) float64) *Scalar {
	for i := range s.V {
		s.V[i] = f(s.G.Coord(i))
	}
	return s
}

func (s *Scalar) At(ir, it int) float64 { return s.V[s.G.Index(ir, it)] }

func (s *Scalar) Clone() *Scalar {
	c := &Scalar{G: s.G, V: make([]float64, len(s.V))}
	copy(c.V, s.V)
	return c
}

func (s *Scalar) CopyFrom(o *Scalar) {
	s.G.MustMatch(o.G)
	copy(s.V, o.V)
}

// Distance is the max-norm of the difference
func (s *Scalar) Distance(o *Scalar) float64 { return floats.Distance(s.V, o.V, math.Inf(1)) }

func (s *Scalar) Norm() float64 { return floats.Norm(s.V, math.Inf(1)) }

func (s *Scalar) Scale(a float64) { floats.Scale(a, s.V) }

func (s *Scalar) AddScaled(a float64, o *Scalar) { floats.AddScaled(s.V, a, o.V) }

// Vector is a two component field whose components are expressed in Basis
type Vector struct {
	G     *grid.Grid
	Basis types.Basis
	C     [2][]float64
}

func NewVector(g *grid.Grid, b types.Basis) *Vector {
	return &Vector{G: g, Basis: b, C: [2][]float64{make([]float64, g.Len()), make([]float64, g.Len())}}
}

func (v *Vector) At(i int) tensor.Tensor { return tensor.Vector(v.Basis, v.C[0][i], v.C[1][i]) }

func (v *Vector) SetAt(i int, t tensor.Tensor) {
	if t.Rank() != 1 || !t.Set(0).Equivalent(v.Basis) {
		panic(fmt.Errorf("cannot store %s in a vector field over %s", t, v.Basis))
	}
	v.C[0][i], v.C[1][i] = t.At(0), t.At(1)
}

// Get returns the component array along d
func (v *Vector) Get(d types.Dim) []float64 {
	p := v.Basis.Sys.Pos(d)
	if p < 0 {
		panic(fmt.Errorf("dimension %s not in vector basis %s", d, v.Basis))
	}
	return v.C[p]
}

func (v *Vector) Clone() *Vector {
	c := NewVector(v.G, v.Basis)
	copy(c.C[0], v.C[0])
	copy(c.C[1], v.C[1])
	return c
}

func (v *Vector) CopyFrom(o *Vector) {
	v.G.MustMatch(o.G)
	v.Basis = o.Basis
	copy(v.C[0], o.C[0])
	copy(v.C[1], o.C[1])
}

func (v *Vector) mustShare(o *Vector) {
	v.G.MustMatch(o.G)
	if !v.Basis.Equivalent(o.Basis) {
		panic(fmt.Errorf("vector fields in %s and %s cannot be combined", v.Basis, o.Basis))
	}
}

// Distance is the largest Euclidean component distance over the grid
func (v *Vector) Distance(o *Vector) (d float64) {
	v.mustShare(o)
	for i := range v.C[0] {
		d = math.Max(d, math.Hypot(v.C[0][i]-o.C[0][i], v.C[1][i]-o.C[1][i]))
	}
	return
}

func (v *Vector) Norm() (n float64) {
	for i := range v.C[0] {
		n = math.Max(n, math.Hypot(v.C[0][i], v.C[1][i]))
	}
	return
}

func (v *Vector) Scale(a float64) {
	floats.Scale(a, v.C[0])
	floats.Scale(a, v.C[1])
}

func (v *Vector) AddScaled(a float64, o *Vector) {
	v.mustShare(o)
	floats.AddScaled(v.C[0], a, o.C[0])
	floats.AddScaled(v.C[1], a, o.C[1])
}

// Coords is a field of points in one coordinate system, one per grid node
type Coords struct {
	G   *grid.Grid
	Sys types.System
	C   [2][]float64
}

func NewCoords(g *grid.Grid, sys types.System) *Coords {
	return &Coords{G: g, Sys: sys, C: [2][]float64{make([]float64, g.Len()), make([]float64, g.Len())}}
}

// GridCoords returns the logical coordinates of every grid node
func GridCoords(g *grid.Grid) (c *Coords) {
	c = NewCoords(g, types.RThetaSys)
	c.Reset()
	return
}

// Reset puts every logical point back on its grid node
func (c *Coords) Reset() {
	c.Sys.MustMatch(types.RThetaSys)
	for i := range c.C[0] {
		ir, it := c.G.Split(i)
		c.C[0][i], c.C[1][i] = c.G.R[ir], c.G.Theta[it]
	}
}

func (c *Coords) Len() int { return len(c.C[0]) }

func (c *Coords) At(i int) types.Coord { return types.NewCoord(c.Sys, c.C[0][i], c.C[1][i]) }

func (c *Coords) SetAt(i int, p types.Coord) {
	p.MustBeIn(c.Sys)
	c.C[0][i], c.C[1][i] = p.V[0], p.V[1]
}

func (c *Coords) Clone() *Coords {
	o := NewCoords(c.G, c.Sys)
	copy(o.C[0], c.C[0])
	copy(o.C[1], c.C[1])
	return o
}

func (c *Coords) CopyFrom(o *Coords) {
	c.G.MustMatch(o.G)
	c.Sys.MustMatch(o.Sys)
	copy(c.C[0], o.C[0])
	copy(c.C[1], o.C[1])
}

// Distance is the largest component-wise separation, measured the short way
// round along periodic dimensions
func (c *Coords) Distance(o *Coords) (d float64) {
	c.Sys.MustMatch(o.Sys)
	for k, dim := range c.Sys {
		for i := range c.C[k] {
			dd := math.Abs(c.C[k][i] - o.C[k][i])
			if dim.Periodic() {
				dd = math.Mod(dd, 2*math.Pi)
				dd = math.Min(dd, 2*math.Pi-dd)
			}
			d = math.Max(d, dd)
		}
	}
	return
}

func (c *Coords) Norm() float64 {
	return math.Max(floats.Norm(c.C[0], math.Inf(1)), floats.Norm(c.C[1], math.Inf(1)))
}

// OPointSpread is the largest deviation of the r=0 ring from its first node,
// zero when the grid has no O-point
func (c *Coords) OPointSpread() (d float64) {
	if !c.G.HasOPoint() {
		return
	}
	for it := 1; it < c.G.Nt; it++ {
		for k := 0; k < 2; k++ {
			d = math.Max(d, math.Abs(c.C[k][it]-c.C[k][0]))
		}
	}
	return
}

// OPointSpread is the largest deviation of the r=0 ring from its first node
func (s *Scalar) OPointSpread() (d float64) {
	if !s.G.HasOPoint() {
		return
	}
	for it := 1; it < s.G.Nt; it++ {
		d = math.Max(d, math.Abs(s.V[it]-s.V[0]))
	}
	return
}
