package tensor

import (
	"fmt"

	"github.com/notargets/gopolar/types"
)

// JacobianProvider is the part of a coordinate mapping the metric needs
type JacobianProvider interface {
	Domain() types.System
	Codomain() types.System
	JacobianMatrix(c types.Coord) Tensor
}

// MetricTensor evaluates G_ij = J^a_i J^a_j for a mapping into a Cartesian space
type MetricTensor struct {
	m JacobianProvider
}

func NewMetricTensor(m JacobianProvider) MetricTensor {
	if !m.Codomain().Cartesian() {
		panic(fmt.Errorf("metric tensor needs a Cartesian codomain, have %s", m.Codomain()))
	}
	return MetricTensor{m: m}
}

// At returns the covariant metric G_ij
func (g MetricTensor) At(c types.Coord) Tensor {
	J := g.m.JacobianMatrix(c)
	return Mul(Index("ki", J), Index("kj", J))
}

// Inverse returns the contravariant metric G^ij
func (g MetricTensor) Inverse(c types.Coord) Tensor {
	return g.At(c).Inverse()
}
