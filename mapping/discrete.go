package mapping

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/notargets/gopolar/spline"
	"github.com/notargets/gopolar/tensor"
	"github.com/notargets/gopolar/types"
)

// Discrete is a logical -> physical mapping given by splines of x(r,θ) and
// y(r,θ). It borrows the splines; whoever built them owns them and must keep
// them unchanged while the mapping is in use.
type Discrete struct {
	X, Y *spline.Spline
}

// SampleSplines fits x and y of an analytical mapping on the builder's grid
func SampleSplines(b *spline.Builder, m Mapping) (x, y *spline.Spline) {
	var (
		g      = b.G
		xs, ys = make([]float64, g.Len()), make([]float64, g.Len())
	)
	for i := range xs {
		p := m.Map(g.Coord(i))
		xs[i], ys[i] = p.V[0], p.V[1]
	}
	x, y = b.Build(xs), b.Build(ys)
	return
}

func NewDiscrete(x, y *spline.Spline) *Discrete {
	x.G.MustMatch(y.G)
	return &Discrete{X: x, Y: y}
}

func (m *Discrete) Domain() types.System   { return types.RThetaSys }
func (m *Discrete) Codomain() types.System { return types.XYSys }

func (m *Discrete) Map(c types.Coord) types.Coord {
	mustDomain(m, c)
	return types.XYCoord(m.X.Eval(c), m.Y.Eval(c))
}

func (m *Discrete) JacobianMatrix(c types.Coord) tensor.Tensor {
	mustDomain(m, c)
	return jacobianTensor(m, [2][2]float64{
		{m.X.DerivR(c), m.X.DerivTheta(c)},
		{m.Y.DerivR(c), m.Y.DerivTheta(c)},
	})
}

func (m *Discrete) Jacobian(c types.Coord) float64 { return m.JacobianMatrix(c).Det() }

func (m *Discrete) JacobianComponent(out, in types.Dim, c types.Coord) float64 {
	mustDomain(m, c)
	var s *spline.Spline
	switch out {
	case types.X:
		s = m.X
	case types.Y:
		s = m.Y
	default:
		panic(fmt.Errorf("no jacobian component d%s/d%s for a discrete mapping", out, in))
	}
	switch in {
	case types.R:
		return s.DerivR(c)
	case types.Theta:
		return s.DerivTheta(c)
	}
	panic(fmt.Errorf("no jacobian component d%s/d%s for a discrete mapping", out, in))
}

// InverseAt finds the logical coordinate mapped to p. Damped Newton steps
// are taken in pseudo-Cartesian variables, from guess or from the nearest
// grid node, whichever is closer to p. A stalled iteration is handed to BFGS.
// It fails when the residual distance stays above tol.
func (m *Discrete) InverseAt(p, guess types.Coord, tol float64) (c types.Coord, err error) {
	p.MustBeIn(types.XYSys)
	guess.MustBeIn(types.RThetaSys)
	u := m.startingPoint(p, guess)
	dist := m.newton(p, &u, tol)
	if dist > tol {
		var mErr error
		if dist, mErr = m.minimise(p, &u, tol); dist > tol {
			c = fromPseudo(u)
			err = fmt.Errorf("discrete mapping inversion at %s stalled %g away (%v)", p, dist, mErr)
			return
		}
	}
	c = fromPseudo(u)
	return
}

// NewtonIterations caps the damped Newton iteration of InverseAt
const NewtonIterations = 100

func fromPseudo(u [2]float64) types.Coord {
	return types.RThetaCoord(math.Hypot(u[0], u[1]), math.Atan2(u[1], u[0])).Wrapped()
}

func (m *Discrete) residual(p types.Coord, u [2]float64) (f [2]float64) {
	q := m.Map(fromPseudo(u))
	f[0], f[1] = q.V[0]-p.V[0], q.V[1]-p.V[1]
	return
}

// pseudoJacobian is d(x,y)/d(r cosθ, r sinθ)
func (m *Discrete) pseudoJacobian(u [2]float64) (J [2][2]float64) {
	var (
		c      = fromPseudo(u)
		r      = math.Max(c.V[0], 1e-12)
		sn, cs = math.Sincos(c.V[1])
		A      = m.JacobianMatrix(c).Array()
	)
	for k := 0; k < 2; k++ {
		J[k][0] = A[k][0]*cs - A[k][1]*sn/r
		J[k][1] = A[k][0]*sn + A[k][1]*cs/r
	}
	return
}

func (m *Discrete) startingPoint(p, guess types.Coord) (u [2]float64) {
	var (
		g    = m.X.G
		best = math.Inf(1)
	)
	try := func(c types.Coord) {
		sn, cs := math.Sincos(c.V[1])
		v := [2]float64{c.V[0] * cs, c.V[0] * sn}
		f := m.residual(p, v)
		if d := math.Hypot(f[0], f[1]); d < best {
			best, u = d, v
		}
	}
	try(guess)
	for i := 0; i < g.Len(); i++ {
		try(g.Coord(i))
	}
	return
}

// newton refines u in place and returns the final residual distance
func (m *Discrete) newton(p types.Coord, u *[2]float64, tol float64) (dist float64) {
	f := m.residual(p, *u)
	dist = math.Hypot(f[0], f[1])
	for iter := 0; iter < NewtonIterations && dist > tol; iter++ {
		var (
			J   = m.pseudoJacobian(*u)
			det = J[0][0]*J[1][1] - J[0][1]*J[1][0]
		)
		if det == 0 {
			return
		}
		step := [2]float64{
			-(J[1][1]*f[0] - J[0][1]*f[1]) / det,
			-(-J[1][0]*f[0] + J[0][0]*f[1]) / det,
		}
		var (
			lambda   = 1.
			accepted bool
		)
		for k := 0; k < 30; k++ {
			trial := [2]float64{u[0] + lambda*step[0], u[1] + lambda*step[1]}
			ft := m.residual(p, trial)
			if dt := math.Hypot(ft[0], ft[1]); dt < dist {
				*u, f, dist, accepted = trial, ft, dt, true
				break
			}
			lambda *= 0.5
		}
		if !accepted {
			return
		}
	}
	return
}

// minimise runs BFGS on the squared physical distance from u
func (m *Discrete) minimise(p types.Coord, u *[2]float64, tol float64) (dist float64, err error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			f := m.residual(p, [2]float64{x[0], x[1]})
			return 0.5 * (f[0]*f[0] + f[1]*f[1])
		},
		Grad: func(grad, x []float64) {
			v := [2]float64{x[0], x[1]}
			var (
				f = m.residual(p, v)
				J = m.pseudoJacobian(v)
			)
			grad[0] = f[0]*J[0][0] + f[1]*J[1][0]
			grad[1] = f[0]*J[0][1] + f[1]*J[1][1]
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: 1e-3 * tol,
		MajorIterations:   200,
	}
	res, err := optimize.Minimize(problem, []float64{u[0], u[1]}, settings, &optimize.BFGS{})
	if res != nil {
		if d := math.Sqrt(2 * res.F); d < math.Sqrt(2*problem.Func(u[:])) {
			u[0], u[1] = res.X[0], res.X[1]
		}
	}
	return math.Sqrt(2 * problem.Func(u[:])), err
}
