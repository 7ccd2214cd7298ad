package timestepper

import "math"

const (
	CrankNicolsonMaxIter = 20
	CrankNicolsonEpsilon = 1.e-12
)

// CrankNicolson solves y_{n+1} = y_n + dt/2·(f(y_n) + f(y_{n+1})) by fixed
// point iteration from a forward Euler guess. The loop stops once the relative
// change |y^{k+1} - y^k| / |y^k| drops below Epsilon, or after MaxIter passes,
// in which case the last iterate is kept and Result.Converged is false.
type CrankNicolson[S State[S], D Derivative[D]] struct {
	proto   D
	MaxIter int
	Epsilon float64
}

func NewCrankNicolson[S State[S], D Derivative[D]](proto D) *CrankNicolson[S, D] {
	return &CrankNicolson[S, D]{proto: proto, MaxIter: CrankNicolsonMaxIter, Epsilon: CrankNicolsonEpsilon}
}

func (ts *CrankNicolson[S, D]) Name() string { return "cn" }

func (ts *CrankNicolson[S, D]) Update(y S, dt float64, deriv DerivFunc[S, D], update UpdateFunc[S, D]) (res Result) {
	update = resolveUpdate(update)
	var (
		k0 = ts.proto.Clone()
		kk = ts.proto.Clone()
		yk = y.Clone()
		yn = y.Clone()
	)
	deriv(k0, y)
	update(yk, k0, dt)
	for res.Iterations < ts.MaxIter {
		res.Iterations++
		deriv(kk, yk)
		kk.AddScaled(1, k0)
		kk.Scale(0.5)
		yn.CopyFrom(y)
		update(yn, kk, dt)
		res.Residual = yn.Distance(yk) / math.Max(yk.Norm(), math.SmallestNonzeroFloat64)
		yk.CopyFrom(yn)
		if res.Residual < ts.Epsilon {
			res.Converged = true
			break
		}
	}
	y.CopyFrom(yk)
	return
}
