package mapping

import (
	"fmt"
	"math"

	"github.com/notargets/gopolar/tensor"
	"github.com/notargets/gopolar/types"
)

// Czarny is the D-shaped equilibrium mapping
//
//	x = X0 + (1 - sqrt(1 + ε(ε + 2r·cosθ)))/ε
//	y = Y0 + e·ξ·r·sinθ / (2 - sqrt(1 + ε(ε + 2r·cosθ)))
//
// with ξ = 1/sqrt(1 - ε²/4) and E the elongation e.
type Czarny struct {
	Epsilon, E float64
	X0, Y0     float64
}

func NewCzarny(epsilon, e float64) Czarny {
	if epsilon <= 0 || epsilon >= 2 {
		panic(fmt.Errorf("czarny inverse aspect ratio must lie in (0,2), have %g", epsilon))
	}
	return Czarny{Epsilon: epsilon, E: e}
}

func (m Czarny) Xi() float64 { return 1 / math.Sqrt(1-m.Epsilon*m.Epsilon*0.25) }

func (m Czarny) Domain() types.System   { return types.RThetaSys }
func (m Czarny) Codomain() types.System { return types.XYSys }

func (m Czarny) terms(c types.Coord) (r, sn, cs, t1, t2 float64) {
	mustDomain(m, c)
	r = c.V[0]
	sn, cs = math.Sincos(c.V[1])
	t1 = math.Sqrt(1 + m.Epsilon*(m.Epsilon+2*r*cs))
	t2 = 2 - t1
	return
}

func (m Czarny) Map(c types.Coord) types.Coord {
	r, sn, _, t1, t2 := m.terms(c)
	return types.XYCoord(m.X0+(1-t1)/m.Epsilon, m.Y0+m.E*m.Xi()*r*sn/t2)
}

func (m Czarny) JacobianMatrix(c types.Coord) tensor.Tensor {
	var (
		r, sn, cs, t1, t2 = m.terms(c)
		ex                = m.E * m.Xi()
		eps               = m.Epsilon
	)
	return jacobianTensor(m, [2][2]float64{
		{-cs / t1, r * sn / t1},
		{
			ex*eps*r*sn*cs/(t2*t2*t1) + ex*sn/t2,
			r * (-ex*eps*r*sn*sn/(t2*t2*t1) + ex*cs/t2),
		},
	})
}

func (m Czarny) Jacobian(c types.Coord) float64 {
	r, _, _, t1, t2 := m.terms(c)
	return -r * m.E * m.Xi() / (t1 * t2)
}

func (m Czarny) JacobianComponent(out, in types.Dim, c types.Coord) float64 {
	var (
		r, sn, cs, t1, t2 = m.terms(c)
		ex                = m.E * m.Xi()
		eps               = m.Epsilon
	)
	switch {
	case out == types.X && in == types.R:
		return -cs / t1
	case out == types.X && in == types.Theta:
		return r * sn / t1
	case out == types.Y && in == types.R:
		return ex*eps*r*sn*cs/(t2*t2*t1) + ex*sn/t2
	case out == types.Y && in == types.Theta:
		return r * (-ex*eps*r*sn*sn/(t2*t2*t1) + ex*cs/t2)
	}
	panic(fmt.Errorf("no jacobian component d%s/d%s for a czarny mapping", out, in))
}

func (m Czarny) Inverse() Mapping { return CartesianToCzarny{Czarny: m} }

// CartesianToCzarny is the analytical inverse of Czarny
type CartesianToCzarny struct {
	Czarny Czarny
}

func (m CartesianToCzarny) Domain() types.System   { return types.XYSys }
func (m CartesianToCzarny) Codomain() types.System { return types.RThetaSys }

// polar returns a = r·cosθ and b = r·sinθ with their x,y derivatives
func (m CartesianToCzarny) polar(c types.Coord) (a, b, dax, dbx, dby float64) {
	mustDomain(m, c)
	var (
		z   = m.Czarny
		x   = c.V[0] - z.X0
		y   = c.V[1] - z.Y0
		ex  = 1 + z.Epsilon*x
		exi = z.E * z.Xi()
	)
	a = 0.5 * (z.Epsilon*x*x - 2*x - z.Epsilon)
	b = y * ex / exi
	dax = z.Epsilon*x - 1
	dbx = y * z.Epsilon / exi
	dby = ex / exi
	return
}

func (m CartesianToCzarny) Map(c types.Coord) types.Coord {
	a, b, _, _, _ := m.polar(c)
	return types.RThetaCoord(math.Hypot(a, b), types.WrapAngle(math.Atan2(b, a)))
}

func (m CartesianToCzarny) JacobianMatrix(c types.Coord) tensor.Tensor {
	var (
		a, b, dax, dbx, dby = m.polar(c)
		r2                  = a*a + b*b
		r                   = math.Sqrt(r2)
	)
	return jacobianTensor(m, [2][2]float64{
		{(a*dax + b*dbx) / r, b * dby / r},
		{(a*dbx - b*dax) / r2, a * dby / r2},
	})
}

func (m CartesianToCzarny) Jacobian(c types.Coord) float64 {
	a, b, dax, _, dby := m.polar(c)
	return dax * dby / math.Hypot(a, b)
}

func (m CartesianToCzarny) JacobianComponent(out, in types.Dim, c types.Coord) float64 {
	return m.JacobianMatrix(c).Get(out, in)
}

func (m CartesianToCzarny) Inverse() Mapping { return m.Czarny }
