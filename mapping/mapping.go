// Package mapping implements the coordinate transformations between the
// logical (r,θ) domain, the physical Cartesian domain and the
// pseudo-Cartesian domain in which characteristics are traced.
//
// Every Jacobian matrix is a rank-2 tensor whose rows are indexed by the
// contravariant codomain basis and whose columns are indexed by the covariant
// domain basis, so J.Get(X, R) is ∂x/∂r.
package mapping

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gopolar/tensor"
	"github.com/notargets/gopolar/types"
)

type Mapping interface {
	Domain() types.System
	Codomain() types.System
	Map(c types.Coord) types.Coord
	JacobianMatrix(c types.Coord) tensor.Tensor
	// Jacobian is the determinant of JacobianMatrix
	Jacobian(c types.Coord) float64
	JacobianComponent(out, in types.Dim, c types.Coord) float64
}

// Invertible mappings carry an analytical inverse
type Invertible interface {
	Mapping
	Inverse() Mapping
}

// InverseJacobian is implemented by mappings with a closed form (or
// regularised) inverse Jacobian
type InverseJacobian interface {
	InverseJacobianMatrix(c types.Coord) tensor.Tensor
}

// Invert returns the analytical inverse of m; ok is false for mappings that
// can only be inverted numerically
func Invert(m Mapping) (inv Mapping, ok bool) {
	var im Invertible
	if im, ok = m.(Invertible); ok {
		inv = im.Inverse()
	}
	return
}

// InverseJacobianMatrix returns ∂(domain)/∂(codomain) at c, using the mapping's
// own expression where it has one
func InverseJacobianMatrix(m Mapping, c types.Coord) tensor.Tensor {
	if ij, ok := m.(InverseJacobian); ok {
		return ij.InverseJacobianMatrix(c)
	}
	return m.JacobianMatrix(c).Inverse()
}

func jacobianTensor(m Mapping, a [2][2]float64) tensor.Tensor {
	return tensor.Matrix(
		types.Basis{Sys: m.Codomain(), Var: types.Contravariant},
		types.Basis{Sys: m.Domain(), Var: types.Covariant},
		a)
}

func mustDomain(m Mapping, c types.Coord) {
	if c.Sys != m.Domain() {
		panic(fmt.Errorf("mapping from %s evaluated at a coordinate in %s", m.Domain(), c.Sys))
	}
}

// Ray angles used to resolve the O-point, where θ is undefined
const (
	Theta1 = math.Pi / 4
	Theta2 = -math.Pi/4 + 2*math.Pi
)

// OPointInverseJacobian resolves ∂(pseudo)/∂(physical) at r=0 from the radial
// derivatives of both mappings along the rays Theta1 and Theta2. Both mappings
// must have the logical domain.
func OPointInverseJacobian(physical, pseudo Mapping) tensor.Tensor {
	var (
		P, Q = mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil)
		Qinv mat.Dense
		M    mat.Dense
	)
	for k, th := range []float64{Theta1, Theta2} {
		c := types.RThetaCoord(0, th)
		Jq, Jp := physical.JacobianMatrix(c), pseudo.JacobianMatrix(c)
		Q.Set(0, k, Jq.At(0, 0))
		Q.Set(1, k, Jq.At(1, 0))
		P.Set(0, k, Jp.At(0, 0))
		P.Set(1, k, Jp.At(1, 0))
	}
	if err := Qinv.Inverse(Q); err != nil {
		panic(fmt.Errorf("radial derivatives at the O-point are degenerate: %w", err))
	}
	M.Mul(P, &Qinv)
	return tensor.Matrix(
		types.Basis{Sys: pseudo.Codomain(), Var: types.Contravariant},
		types.Basis{Sys: physical.Codomain(), Var: types.Covariant},
		[2][2]float64{{M.At(0, 0), M.At(0, 1)}, {M.At(1, 0), M.At(1, 1)}})
}
