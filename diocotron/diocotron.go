// Package diocotron sets up the diocotron instability of an annular electron
// layer between two conductors and gives its linear growth rate.
package diocotron

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/notargets/gopolar/types"
)

// Sharpness is the exponent p of the smoothed annulus exp(-((r-r̄)/d)^p)
const Sharpness = 50.

// DensitySolution is a unit density annulus R1 < r < R2 between conductors
// at W1 <= R1 and W2 >= R2, perturbed by Epsilon·cos(Mode·θ). Charge is the
// charge per radian carried by the inner conductor, r·E_r(W1) = Charge.
type DensitySolution struct {
	W1, R1, R2, W2 float64
	Charge         float64
	Mode           int
	Epsilon        float64

	rBar, d   float64
	frequency float64
	growth    float64
}

func NewDensitySolution(w1, r1, r2, w2, charge float64, mode int, eps float64) (ds *DensitySolution) {
	if !(0 <= w1 && w1 <= r1 && r1 < r2 && r2 <= w2) {
		panic(fmt.Errorf("diocotron radii must satisfy 0 <= W1 <= R1 < R2 <= W2, have %g %g %g %g",
			w1, r1, r2, w2))
	}
	if mode <= 0 {
		panic(fmt.Errorf("diocotron mode must be positive, have %d", mode))
	}
	ds = &DensitySolution{
		W1: w1, R1: r1, R2: r2, W2: w2,
		Charge:  charge,
		Mode:    mode,
		Epsilon: eps,
		rBar:    0.5 * (r1 + r2),
		d:       0.5 * (r2 - r1),
	}
	ds.frequency, ds.growth = ds.dispersionRelation()
	return
}

// Equilibrium is the unperturbed density at a logical coordinate
func (ds *DensitySolution) Equilibrium(c types.Coord) float64 {
	c.MustBeIn(types.RThetaSys)
	return math.Exp(-math.Pow((c.V[0]-ds.rBar)/ds.d, Sharpness))
}

// Initial is the perturbed density at a logical coordinate
func (ds *DensitySolution) Initial(c types.Coord) float64 {
	return ds.Equilibrium(c) * (1 + ds.Epsilon*math.Cos(float64(ds.Mode)*c.V[1]))
}

// Frequency is the real part of the mode frequency
func (ds *DensitySolution) Frequency() float64 { return ds.frequency }

// GrowthRate is the imaginary part of the mode frequency, zero for a stable
// configuration
func (ds *DensitySolution) GrowthRate() float64 { return ds.growth }

// radial returns u(r) and u'(r) for the mode solutions vanishing at the inner
// and the outer conductor
func (ds *DensitySolution) radial(r float64) (u1, du1, u2, du2 float64) {
	l := float64(ds.Mode)
	if ds.W1 == 0 {
		u1, du1 = math.Pow(r, l), l*math.Pow(r, l-1)
	} else {
		a, b := math.Pow(r/ds.W1, l), math.Pow(ds.W1/r, l)
		u1, du1 = a-b, l*(a+b)/r
	}
	a, b := math.Pow(ds.W2/r, l), math.Pow(r/ds.W2, l)
	u2, du2 = a-b, -l*(a+b)/r
	return
}

// green is φ(r) for a ring of unit surface density at s
func (ds *DensitySolution) green(r, s float64) float64 {
	lo, hi := math.Min(r, s), math.Max(r, s)
	u1s, du1s, u2s, du2s := ds.radial(s)
	wronskian := u1s*du2s - du1s*u2s
	u1, _, _, _ := ds.radial(lo)
	_, _, u2, _ := ds.radial(hi)
	return -u1 * u2 / wronskian
}

// dispersionRelation solves the 2x2 eigenproblem for the surface charge of
// the two edges of the annulus, linearised around the E×B rotation
func (ds *DensitySolution) dispersionRelation() (freq, growth float64) {
	var (
		l      = float64(ds.Mode)
		r1, r2 = ds.R1, ds.R2
		// rotation frequency φ'/r at each edge
		om1 = -ds.Charge / (r1 * r1)
		om2 = -(ds.Charge + 0.5*(r2*r2-r1*r1)) / (r2 * r2)
		g11 = ds.green(r1, r1)
		g12 = ds.green(r1, r2)
		g21 = ds.green(r2, r1)
		g22 = ds.green(r2, r2)
		a1  = l*om1 - l*g11/r1
		a2  = l*om2 + l*g22/r2
		b1  = -l * g12 / r1
		b2  = l * g21 / r2
		dsc = 0.25*(a1-a2)*(a1-a2) + b1*b2
	)
	freq = 0.5 * (a1 + a2)
	if dsc < 0 {
		growth = math.Sqrt(-dsc)
	}
	return
}

// ProfileIterations is the number of inverse iterations of ProfileFrequency
const ProfileIterations = 20

// ProfileFrequency is the complex mode frequency ω, growing as exp(Im(ω)t),
// of the smoothed annulus. The linearised equation
//
//	ω Lφ = l Ω(r) Lφ - (l/r) ρ₀'(r) φ,  L = -Δ_l,  Ω = φ₀'/r
//
// is discretised by second order differences on n radial cells between the
// conductors and solved by inverse iteration shifted to the sharp edge
// frequency.
func (ds *DensitySolution) ProfileFrequency(n int) (omega complex128) {
	if n < 4 {
		panic(fmt.Errorf("profile frequency needs at least 4 cells, have %d", n))
	}
	var (
		l             = float64(ds.Mode)
		h             = (ds.W2 - ds.W1) / float64(n)
		m             = n - 1
		shift         = complex(ds.frequency, ds.growth)
		r             = make([]float64, n+1)
		charge        = make([]float64, n+1)
		lo, di, up    = make([]complex128, m), make([]complex128, m), make([]complex128, m)
		bLo, bDi, bUp = make([]float64, m), make([]float64, m), make([]float64, m)
		x, y          = make([]complex128, m), make([]complex128, m)
	)
	rho := func(s float64) float64 { return ds.Equilibrium(types.RThetaCoord(s, 0)) }
	for i := range r {
		r[i] = ds.W1 + float64(i)*h
	}
	// Enclosed charge per radian by Simpson's rule on each cell
	charge[0] = ds.Charge
	for i := 1; i <= n; i++ {
		a, b := r[i-1], r[i]
		mid := 0.5 * (a + b)
		charge[i] = charge[i-1] + h/6*(a*rho(a)+4*mid*rho(mid)+b*rho(b))
	}
	for k := 0; k < m; k++ {
		var (
			ri   = r[k+1]
			drho = -Sharpness / ds.d * math.Pow((ri-ds.rBar)/ds.d, Sharpness-1) * rho(ri)
			rot  = -charge[k+1] / (ri * ri)
			a    = complex(l*rot, 0) - shift
		)
		bLo[k] = -(1/(h*h) - 1/(2*ri*h))
		bUp[k] = -(1/(h*h) + 1/(2*ri*h))
		bDi[k] = 2/(h*h) + l*l/(ri*ri)
		lo[k] = a * complex(bLo[k], 0)
		up[k] = a * complex(bUp[k], 0)
		di[k] = a*complex(bDi[k], 0) - complex(l*drho/ri, 0)
	}
	for k := range x {
		x[k] = complex(math.Exp(-math.Pow((r[k+1]-ds.rBar)/0.1, 2)), 0)
	}
	var mu complex128
	for iter := 0; iter < ProfileIterations; iter++ {
		for k := range y {
			y[k] = complex(bDi[k], 0) * x[k]
			if k > 0 {
				y[k] += complex(bLo[k], 0) * x[k-1]
			}
			if k < m-1 {
				y[k] += complex(bUp[k], 0) * x[k+1]
			}
		}
		solveTridiagonal(lo, di, up, y)
		var (
			num       complex128
			den, norm float64
		)
		for k := range x {
			num += cmplx.Conj(x[k]) * y[k]
			den += real(x[k])*real(x[k]) + imag(x[k])*imag(x[k])
			norm += real(y[k])*real(y[k]) + imag(y[k])*imag(y[k])
		}
		mu = num / complex(den, 0)
		norm = math.Sqrt(norm)
		for k := range x {
			x[k] = y[k] / complex(norm, 0)
		}
	}
	omega = shift + 1/mu
	return
}

// solveTridiagonal overwrites b with the solution of the tridiagonal system
// with sub-diagonal lo, diagonal di and super-diagonal up
func solveTridiagonal(lo, di, up, b []complex128) {
	var (
		n = len(b)
		c = make([]complex128, n)
	)
	c[0] = up[0] / di[0]
	b[0] /= di[0]
	for k := 1; k < n; k++ {
		m := di[k] - lo[k]*c[k-1]
		if k < n-1 {
			c[k] = up[k] / m
		}
		b[k] = (b[k] - lo[k]*b[k-1]) / m
	}
	for k := n - 2; k >= 0; k-- {
		b[k] -= c[k] * b[k+1]
	}
}
