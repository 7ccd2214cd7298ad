// Package advectionfield derives the guiding centre advection field
// A = (E_y, -E_x), E = -∇φ, from an electrostatic potential on a polar grid.
package advectionfield

import (
	"fmt"

	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/mapping"
	"github.com/notargets/gopolar/spline"
	"github.com/notargets/gopolar/tensor"
	"github.com/notargets/gopolar/transport"
	"github.com/notargets/gopolar/types"
	"github.com/notargets/gopolar/utils"
)

// Epsilon is the radius under which the Cartesian field is linearised toward
// its O-point value
const Epsilon = 1.e-12

type Finder struct {
	Physical mapping.Mapping
	Builder  *spline.Builder
	Epsilon  float64
}

func NewFinder(physical mapping.Mapping, builder *spline.Builder) *Finder {
	if physical.Domain() != types.RThetaSys || !physical.Codomain().Cartesian() {
		panic(fmt.Errorf("advection field needs a logical to Cartesian mapping, have %s -> %s",
			physical.Domain(), physical.Codomain()))
	}
	return &Finder{Physical: physical, Builder: builder, Epsilon: Epsilon}
}

// gradient returns (∂xφ, ∂yφ) at a regular point
func (f *Finder) gradient(s *spline.Spline, c types.Coord) [2]float64 {
	grad := tensor.Vector(types.RThetaCov, s.DerivR(c), s.DerivTheta(c))
	return transport.ToVectorSpace(grad, types.XYBasis, c, f.Physical).Components()
}

// oPointGradient solves for (∂xφ, ∂yφ) at r=0 from the radial derivatives
// along the rays θ1 and θ2
func (f *Finder) oPointGradient(s *spline.Spline) (g [2]float64) {
	var (
		c1, c2 = types.RThetaCoord(0, mapping.Theta1), types.RThetaCoord(0, mapping.Theta2)
		drx1   = f.Physical.JacobianComponent(types.X, types.R, c1)
		dry1   = f.Physical.JacobianComponent(types.Y, types.R, c1)
		drx2   = f.Physical.JacobianComponent(types.X, types.R, c2)
		dry2   = f.Physical.JacobianComponent(types.Y, types.R, c2)
		d1, d2 = s.DerivR(c1), s.DerivR(c2)
		det    = drx1*dry2 - drx2*dry1
	)
	g[0] = (dry2*d1 - dry1*d2) / det
	g[1] = (-drx2*d1 + drx1*d2) / det
	return
}

// ComputeXY writes the advection field of phi in the Cartesian basis into a
func (f *Finder) ComputeXY(phi *field.Scalar, a *field.Vector) {
	phi.G.MustMatch(a.G)
	if !a.Basis.Equivalent(types.XYBasis) {
		panic(fmt.Errorf("cartesian advection field written into a %s field", a.Basis))
	}
	var (
		g  = phi.G
		s  = f.Builder.Build(phi.V)
		g0 = f.oPointGradient(s)
	)
	utils.ParallelFor(g.Len(), func(i int) {
		var (
			c    = g.Coord(i)
			r    = c.V[0]
			grad [2]float64
		)
		if r > f.Epsilon {
			grad = f.gradient(s, c)
		} else {
			ge := f.gradient(s, types.RThetaCoord(f.Epsilon, c.V[1]))
			w := r / f.Epsilon
			for k := range grad {
				grad[k] = g0[k]*(1-w) + ge[k]*w
			}
		}
		a.C[0][i], a.C[1][i] = -grad[1], grad[0]
	})
}

// ComputeRTheta writes the advection field of phi in the logical
// contravariant basis into a, away from the O-point, and returns its Cartesian
// value at the O-point. The O-point ring of a is left untouched; on a grid
// without an O-point the returned vector is zero.
func (f *Finder) ComputeRTheta(phi *field.Scalar, a *field.Vector) (centre tensor.Tensor) {
	phi.G.MustMatch(a.G)
	if !a.Basis.Equivalent(types.RThetaContra) {
		panic(fmt.Errorf("logical advection field written into a %s field", a.Basis))
	}
	var (
		g     = phi.G
		s     = f.Builder.Build(phi.V)
		start = 0
	)
	centre = tensor.Vector(types.XYBasis, 0, 0)
	if g.HasOPoint() {
		_, start = g.Ring(0)
		g0 := f.oPointGradient(s)
		centre = tensor.Vector(types.XYBasis, -g0[1], g0[0])
	}
	utils.ParallelFor(g.Len()-start, func(k int) {
		var (
			i = start + k
			c = g.Coord(i)
			d = f.Physical.Jacobian(c)
		)
		a.C[0][i] = -s.DerivTheta(c) / d
		a.C[1][i] = s.DerivR(c) / d
	})
	return
}
