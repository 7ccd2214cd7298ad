// Package poisson solves -Δφ = ρ on a disc or an annulus with a spectral
// method in θ and second order finite volumes in r.
package poisson

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/grid"
	"github.com/notargets/gopolar/utils"
)

// ResidualTol is the largest accepted relative residual of a radial solve
const ResidualTol = 1.e-9

// PolarFFT solves the Poisson equation in circular geometry. φ = 0 on the
// outer boundary and on the inner one for an annulus. On a disc the O-point
// is regular: the axisymmetric mode uses the 2-D Laplacian stencil there and
// the other modes vanish.
type PolarFFT struct {
	G      *grid.Grid
	Logger *slog.Logger
	fft    *fourier.FFT
	scale  float64
}

func NewPolarFFT(g *grid.Grid, logger *slog.Logger) (p *PolarFFT) {
	if logger == nil {
		logger = slog.Default()
	}
	p = &PolarFFT{
		G:      g,
		Logger: logger,
		fft:    fourier.NewFFT(g.Nt),
	}
	// Round trip a constant to find the normalisation of the inverse
	ones := make([]float64, g.Nt)
	floats.AddConst(1, ones)
	back := p.fft.Sequence(nil, p.fft.Coefficients(nil, ones))
	p.scale = 1 / back[0]
	return
}

// Modes is the number of angular Fourier modes carried by the solver
func (p *PolarFFT) Modes() int { return p.G.Nt/2 + 1 }

// Solve writes the potential of the charge density rho into phi
func (p *PolarFFT) Solve(phi, rho *field.Scalar) (err error) {
	var (
		g    = p.G
		coef = make([][]complex128, g.Nr)
		errs = make([]error, p.Modes())
		res  = make([]float64, p.Modes())
	)
	g.MustMatch(phi.G)
	g.MustMatch(rho.G)
	for ir := 0; ir < g.Nr; ir++ {
		lo, hi := g.Ring(ir)
		coef[ir] = p.fft.Coefficients(nil, rho.V[lo:hi])
	}
	utils.ParallelFor(p.Modes(), func(m int) {
		res[m], errs[m] = p.solveMode(m, coef)
	})
	for m, e := range errs {
		if e != nil {
			err = fmt.Errorf("poisson mode %d: %w", m, e)
			return
		}
	}
	p.Logger.Debug("poisson solve", "modes", p.Modes(), "max_residual", floats.Max(res))
	for ir := 0; ir < g.Nr; ir++ {
		lo, hi := g.Ring(ir)
		p.fft.Sequence(phi.V[lo:hi], coef[ir])
		floats.Scale(p.scale, phi.V[lo:hi])
	}
	return
}

// Operator assembles the radial operator of angular mode m
func (p *PolarFFT) Operator(m int) (A utils.CSR) {
	var (
		g   = p.G
		n   = g.Nr
		m2  = float64(m * m)
		dok = utils.NewDOK(n, n)
	)
	if g.HasOPoint() {
		if m == 0 {
			h2 := g.R[1] * g.R[1]
			dok.Set(0, 0, 4/h2)
			dok.Set(0, 1, -4/h2)
		} else {
			dok.Set(0, 0, 1)
		}
	} else {
		dok.Set(0, 0, 1)
	}
	for i := 1; i < n-1; i++ {
		var (
			r      = g.R[i]
			hm, hp = r - g.R[i-1], g.R[i+1] - r
			hc     = 0.5 * (hm + hp)
			a      = 0.5 * (r + g.R[i-1]) / (r * hm * hc)
			c      = 0.5 * (r + g.R[i+1]) / (r * hp * hc)
		)
		dok.Set(i, i-1, -a)
		dok.Set(i, i, a+c+m2/(r*r))
		dok.Set(i, i+1, -c)
	}
	dok.Set(n-1, n-1, 1)
	dok.SetReadOnly(fmt.Sprintf("radial operator m=%d", m))
	return dok.ToCSR()
}

func (p *PolarFFT) rhs(m int, coef [][]complex128) (re, im []float64) {
	var (
		g = p.G
		n = g.Nr
	)
	re, im = make([]float64, n), make([]float64, n)
	for i := 1; i < n-1; i++ {
		re[i], im[i] = real(coef[i][m]), imag(coef[i][m])
	}
	if g.HasOPoint() && m == 0 {
		re[0], im[0] = real(coef[0][0]), imag(coef[0][0])
	}
	return
}

func (p *PolarFFT) solveMode(m int, coef [][]complex128) (residual float64, err error) {
	var (
		A              = p.Operator(m)
		sub, diag, sup = A.Band()
		re, im         = p.rhs(m, coef)
		x              [][]float64
	)
	if x, err = Tridiagonal(sub, diag, sup, re, im); err != nil {
		return
	}
	xr, xi := x[0], x[1]
	residual = math.Max(relResidual(A, xr, re), relResidual(A, xi, im))
	if residual > ResidualTol {
		err = fmt.Errorf("relative residual %g above %g", residual, ResidualTol)
		return
	}
	for i := range xr {
		coef[i][m] = complex(xr[i], xi[i])
	}
	return
}

func relResidual(A utils.CSR, x, b []float64) float64 {
	ax := A.MulVec(x)
	floats.Sub(ax, b)
	return floats.Norm(ax, math.Inf(1)) / math.Max(floats.Norm(b, math.Inf(1)), 1)
}
