package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gopolar/types"
)

type polar struct{}

func (polar) Domain() types.System   { return types.RThetaSys }
func (polar) Codomain() types.System { return types.XYSys }
func (polar) JacobianMatrix(c types.Coord) Tensor {
	r, th := c.Get(types.R), c.Get(types.Theta)
	return Matrix(types.XYBasis, types.RThetaCov, [2][2]float64{
		{math.Cos(th), -r * math.Sin(th)},
		{math.Sin(th), r * math.Cos(th)},
	})
}

func TestTensorAccess(t *testing.T) {
	J := polar{}.JacobianMatrix(types.RThetaCoord(2, math.Pi/2))
	assert.Equal(t, 2, J.Rank())
	assert.InDelta(t, 0., J.Get(types.X, types.R), 1e-15)
	assert.InDelta(t, -2., J.Get(types.X, types.Theta), 1e-15)
	assert.InDelta(t, 1., J.At(1, 0), 1e-15)
	assert.InDelta(t, 2., J.Det(), 1e-15)
	assert.InDelta(t, mat.Det(J.Dense()), J.Det(), 1e-15)
	assert.Panics(t, func() { J.Get(types.R, types.R) })
	assert.Panics(t, func() { J.At(0) })
	assert.Panics(t, func() { J.Value() })

	inv := J.Inverse()
	assert.Equal(t, types.RThetaContra, inv.Set(0))
	assert.Equal(t, types.Basis{Sys: types.XYSys, Var: types.Covariant}, inv.Set(1))
	id := Mul(Index("ij", J), Index("jk", inv))
	assert.InDelta(t, 1., id.At(0, 0), 1e-15)
	assert.InDelta(t, 0., id.At(0, 1), 1e-15)
	assert.InDelta(t, 1., id.At(1, 1), 1e-15)

	v := Vector(types.XYBasis, 1, 2)
	w := v.Add(Vector(types.XYBasis, 3, 4)).Scale(0.5)
	assert.Equal(t, [2]float64{2, 3}, w.Components())
	assert.Panics(t, func() { v.Add(Vector(types.RThetaContra, 1, 1)) })
	assert.Equal(t, [2]float64{2, 3}, v.Lerp(Vector(types.XYBasis, 3, 4), 0.5).Components())
}

func TestContraction(t *testing.T) {
	var (
		J = polar{}.JacobianMatrix(types.RThetaCoord(0.7, 1.1))
		v = Vector(types.RThetaContra, 0.3, -0.4)
	)
	{ // Matrix-vector product agrees with gonum
		w := Mul(Index("ij", J), Index("j", v))
		var ref mat.VecDense
		ref.MulVec(J.Dense(), mat.NewVecDense(2, []float64{0.3, -0.4}))
		assert.InDelta(t, ref.AtVec(0), w.Get(types.X), 1e-15)
		assert.InDelta(t, ref.AtVec(1), w.Get(types.Y), 1e-15)
		assert.Equal(t, types.XYBasis, w.Set(0))
	}
	{ // Full contraction to a scalar
		a := Vector(types.RThetaCov, 2, 3)
		s := Mul(Index("i", a), Index("i", v))
		assert.InDelta(t, 2*0.3-3*0.4, s.Value(), 1e-15)
	}
	{ // Free index order follows first appearance
		JT := Mul(Index("ji", J))
		assert.InDelta(t, J.At(0, 1), JT.At(0, 1), 0)
		outer := Mul(Index("i", v), Index("j", Vector(types.XYBasis, 1, 2)))
		assert.Equal(t, 2, outer.Rank())
		assert.InDelta(t, -0.8, outer.At(1, 1), 1e-15)
	}
	{ // Invalid patterns
		_, err := Contract(Index("i", v), Index("i", v))
		require.Error(t, err) // two contravariant slots
		_, err = Contract(Index("ij", J), Index("i", v))
		require.Error(t, err) // XY slot against RTheta slot
		_, err = Contract(Index("i", v), Index("i", v), Index("i", Vector(types.RThetaCov, 1, 1)))
		require.Error(t, err) // three occurrences
		_, err = Contract(Index("ij", J), Index("kl", J), Index("m", v))
		require.Error(t, err) // rank 5 result
		assert.Panics(t, func() { Index("ii", J) })
		assert.Panics(t, func() { Index("i", J) })
		assert.Panics(t, func() { Mul(Index("i", v), Index("i", v)) })
	}
	{ // Cartesian slots pair regardless of variance
		x := Vector(types.XYBasis, 1, 2)
		s := Mul(Index("i", x), Index("i", x))
		assert.InDelta(t, 5., s.Value(), 1e-15)
	}
}

func TestMetricTensor(t *testing.T) {
	var (
		g = NewMetricTensor(polar{})
		c = types.RThetaCoord(1.5, 0.4)
	)
	G := g.At(c)
	assert.InDelta(t, 1., G.Get(types.R, types.R), 1e-14)
	assert.InDelta(t, 0., G.Get(types.R, types.Theta), 1e-14)
	assert.InDelta(t, 2.25, G.Get(types.Theta, types.Theta), 1e-14)
	Ginv := g.Inverse(c)
	assert.Equal(t, types.RThetaContra, Ginv.Set(0))
	assert.InDelta(t, 1/2.25, Ginv.Get(types.Theta, types.Theta), 1e-14)
	id := Mul(Index("ij", G), Index("jk", Ginv))
	assert.InDelta(t, 1., id.At(0, 0), 1e-14)
	assert.InDelta(t, 1., id.At(1, 1), 1e-14)
}
