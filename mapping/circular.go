package mapping

import (
	"fmt"
	"math"

	"github.com/notargets/gopolar/tensor"
	"github.com/notargets/gopolar/types"
)

// Circular maps (r,θ) to x = X0 + r·cosθ, y = Y0 + r·sinθ. Out selects the
// Cartesian codomain, the physical (x,y) plane when left empty; the
// pseudo-Cartesian mapping is a Circular with Out = types.PseudoXYSys.
type Circular struct {
	X0, Y0 float64
	Out    types.System
}

func NewPseudoCartesian() Circular { return Circular{Out: types.PseudoXYSys} }

func (m Circular) Domain() types.System { return types.RThetaSys }

func (m Circular) Codomain() types.System {
	if m.Out == (types.System{}) {
		return types.XYSys
	}
	return m.Out
}

func (m Circular) Map(c types.Coord) types.Coord {
	mustDomain(m, c)
	r, th := c.V[0], c.V[1]
	return types.NewCoord(m.Codomain(), m.X0+r*math.Cos(th), m.Y0+r*math.Sin(th))
}

func (m Circular) JacobianMatrix(c types.Coord) tensor.Tensor {
	mustDomain(m, c)
	var (
		r, th  = c.V[0], c.V[1]
		sn, cs = math.Sincos(th)
	)
	return jacobianTensor(m, [2][2]float64{
		{cs, -r * sn},
		{sn, r * cs},
	})
}

func (m Circular) Jacobian(c types.Coord) float64 {
	mustDomain(m, c)
	return c.V[0]
}

func (m Circular) JacobianComponent(out, in types.Dim, c types.Coord) float64 {
	mustDomain(m, c)
	var (
		r, th  = c.V[0], c.V[1]
		sn, cs = math.Sincos(th)
		o      = m.Codomain().Pos(out)
	)
	switch {
	case o == 0 && in == types.R:
		return cs
	case o == 0 && in == types.Theta:
		return -r * sn
	case o == 1 && in == types.R:
		return sn
	case o == 1 && in == types.Theta:
		return r * cs
	}
	panic(fmt.Errorf("no jacobian component d%s/d%s for a circular mapping", out, in))
}

// InverseJacobianMatrix is ∂(r,θ)/∂(x,y), singular at r=0
func (m Circular) InverseJacobianMatrix(c types.Coord) tensor.Tensor {
	mustDomain(m, c)
	var (
		r, th  = c.V[0], c.V[1]
		sn, cs = math.Sincos(th)
	)
	return tensor.Matrix(types.RThetaContra, types.Basis{Sys: m.Codomain(), Var: types.Covariant},
		[2][2]float64{
			{cs, sn},
			{-sn / r, cs / r},
		})
}

func (m Circular) Inverse() Mapping { return CartesianToCircular{X0: m.X0, Y0: m.Y0, In: m.Out} }

// CartesianToCircular is the inverse of Circular
type CartesianToCircular struct {
	X0, Y0 float64
	In     types.System
}

func (m CartesianToCircular) Domain() types.System {
	if m.In == (types.System{}) {
		return types.XYSys
	}
	return m.In
}

func (m CartesianToCircular) Codomain() types.System { return types.RThetaSys }

func (m CartesianToCircular) Map(c types.Coord) types.Coord {
	mustDomain(m, c)
	x, y := c.V[0]-m.X0, c.V[1]-m.Y0
	return types.RThetaCoord(math.Hypot(x, y), types.WrapAngle(math.Atan2(y, x)))
}

func (m CartesianToCircular) JacobianMatrix(c types.Coord) tensor.Tensor {
	mustDomain(m, c)
	var (
		x, y = c.V[0]-m.X0, c.V[1]-m.Y0
		r2   = x*x + y*y
		r    = math.Sqrt(r2)
	)
	return jacobianTensor(m, [2][2]float64{
		{x / r, y / r},
		{-y / r2, x / r2},
	})
}

func (m CartesianToCircular) Jacobian(c types.Coord) float64 {
	mustDomain(m, c)
	return 1 / math.Hypot(c.V[0]-m.X0, c.V[1]-m.Y0)
}

func (m CartesianToCircular) JacobianComponent(out, in types.Dim, c types.Coord) float64 {
	return m.JacobianMatrix(c).Get(out, in)
}

func (m CartesianToCircular) Inverse() Mapping { return Circular{X0: m.X0, Y0: m.Y0, Out: m.In} }
