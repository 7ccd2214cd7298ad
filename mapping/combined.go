package mapping

import (
	"fmt"

	"github.com/notargets/gopolar/tensor"
	"github.com/notargets/gopolar/types"
)

// Combined is the mapping pseudo-Cartesian -> physical obtained by composing
// the inverse of the pseudo-Cartesian mapping with the physical mapping. Both
// share the logical domain, and the Jacobians are evaluated at a logical
// coordinate; pseudo-Cartesian arguments are first mapped to (r,θ).
//
// The inverse Jacobian is singular at the O-point for most physical mappings.
// For r < Epsilon it is linearised between the O-point value, resolved from two
// rays, and its value at r = Epsilon.
type Combined struct {
	Physical Mapping
	Pseudo   Invertible
	Epsilon  float64

	toLogical Mapping
	oPoint    tensor.Tensor
}

func NewCombined(physical Mapping, pseudo Invertible, epsilon float64) (m *Combined) {
	if physical.Domain() != types.RThetaSys || pseudo.Domain() != types.RThetaSys {
		panic(fmt.Errorf("combined mapping needs logical domains, have %s and %s",
			physical.Domain(), pseudo.Domain()))
	}
	m = &Combined{
		Physical:  physical,
		Pseudo:    pseudo,
		Epsilon:   epsilon,
		toLogical: pseudo.Inverse(),
		oPoint:    OPointInverseJacobian(physical, pseudo),
	}
	return
}

func (m *Combined) Domain() types.System   { return m.Pseudo.Codomain() }
func (m *Combined) Codomain() types.System { return m.Physical.Codomain() }

func (m *Combined) Map(c types.Coord) types.Coord {
	mustDomain(m, c)
	return m.Physical.Map(m.toLogical.Map(c))
}

func (m *Combined) logical(c types.Coord) types.Coord {
	switch c.Sys {
	case types.RThetaSys:
		return c
	case m.Domain():
		return m.toLogical.Map(c)
	}
	panic(fmt.Errorf("combined mapping evaluated at a coordinate in %s", c.Sys))
}

// OPoint returns ∂(pseudo)/∂(physical) at r=0
func (m *Combined) OPoint() tensor.Tensor { return m.oPoint }

func (m *Combined) regular(c types.Coord) tensor.Tensor {
	return tensor.Mul(
		tensor.Index("ij", m.Pseudo.JacobianMatrix(c)),
		tensor.Index("jk", InverseJacobianMatrix(m.Physical, c)))
}

// InverseJacobianMatrix is ∂(pseudo)/∂(physical) at c, given in the logical
// or the pseudo-Cartesian system
func (m *Combined) InverseJacobianMatrix(c types.Coord) tensor.Tensor {
	c = m.logical(c)
	r, th := c.V[0], c.V[1]
	if r < m.Epsilon {
		edge := m.regular(types.RThetaCoord(m.Epsilon, th))
		return m.oPoint.Lerp(edge, r/m.Epsilon)
	}
	return m.regular(c)
}

func (m *Combined) JacobianMatrix(c types.Coord) tensor.Tensor {
	return m.InverseJacobianMatrix(c).Inverse()
}

func (m *Combined) Jacobian(c types.Coord) float64 { return m.JacobianMatrix(c).Det() }

func (m *Combined) JacobianComponent(out, in types.Dim, c types.Coord) float64 {
	return m.JacobianMatrix(c).Get(out, in)
}
