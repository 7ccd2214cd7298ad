package timesolver

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/spline"
	"github.com/notargets/gopolar/timestepper"
	"github.com/notargets/gopolar/types"
	"github.com/notargets/gopolar/utils"
)

const (
	// Tau is the physical distance between successive feet under which the
	// fixed-point loop has converged
	Tau = 1.e-6
	// MaxIter caps the fixed-point loop
	MaxIter = 50
)

// ImplicitPredCorr is the second order implicit predictor-corrector. Both
// stages solve for feet consistent with the mean of the field at the node and
// at the foot by fixed-point iteration: over dt/4 for the predictor, which
// then advects by dt/2, and over dt/2 for the corrector, which advects the
// original density by dt.
type ImplicitPredCorr struct {
	Ops     *Operators
	Tau     float64
	MaxIter int
	// Last holds the predictor and corrector loop results of the last step
	Last [2]timestepper.Result
}

func NewImplicitPredCorr(ops *Operators) *ImplicitPredCorr {
	return &ImplicitPredCorr{Ops: ops, Tau: Tau, MaxIter: MaxIter}
}

func (pc *ImplicitPredCorr) Name() string { return "implicit" }

func (pc *ImplicitPredCorr) Run(ctx context.Context, rho *field.Scalar, dt float64, steps int) error {
	return pc.Ops.run(ctx, pc.Name(), rho, dt, steps, pc.step)
}

func (pc *ImplicitPredCorr) step(ctx context.Context, rho, phi *field.Scalar, a *field.Vector, dt float64) (err error) {
	var (
		ops     = pc.Ops
		g       = rho.G
		builder = ops.BSL.Finder.Builder
		feet    = field.GridCoords(g)
		rhoP    = rho.Clone()
		phiP    = field.NewScalar(g)
		aP      = field.NewVector(g, types.XYBasis)
	)
	sA := splines(builder, a)
	pc.Last[0] = pc.feet(ctx, "predictor", a, sA, feet, dt/4)
	ops.advect(ctx, rhoP, mean(a, evalAt(sA, feet)), dt/2)

	if err = ops.potential(phiP, rhoP, aP); err != nil {
		return
	}
	sA = splines(builder, aP)
	feet.Reset()
	pc.Last[1] = pc.feet(ctx, "corrector", aP, sA, feet, dt/2)
	ops.advect(ctx, rho, mean(aP, evalAt(sA, feet)), dt)
	return
}

// feet iterates feet ← Find(grid, a + sA(feet), dt) until successive feet are
// within Tau of each other in the physical domain. A loop that reaches the
// iteration cap keeps its last feet.
func (pc *ImplicitPredCorr) feet(ctx context.Context, stage string, a *field.Vector, sA [2]*spline.Spline,
	feet *field.Coords, dt float64) (res timestepper.Result) {
	_, span := tracer.Start(ctx, "implicit."+stage)
	defer span.End()
	var (
		ops  = pc.Ops
		prev = feet.Clone()
		d2   = make([]float64, feet.Len())
	)
	for res.Iterations < pc.MaxIter {
		tot := evalAt(sA, feet)
		tot.AddScaled(1, a)
		prev.CopyFrom(feet)
		feet.Reset()
		ops.BSL.Finder.Find(feet, tot, dt)
		res.Iterations++
		utils.ParallelFor(feet.Len(), func(i int) {
			var (
				p = ops.BSL.Physical.Map(feet.At(i))
				q = ops.BSL.Physical.Map(prev.At(i))
			)
			d2[i] = (p.V[0]-q.V[0])*(p.V[0]-q.V[0]) + (p.V[1]-q.V[1])*(p.V[1]-q.V[1])
		})
		max2 := floats.Max(d2)
		res.Residual = math.Sqrt(max2)
		if max2 <= pc.Tau*pc.Tau {
			res.Converged = true
			break
		}
	}
	fixedPointIterations.WithLabelValues(stage).Observe(float64(res.Iterations))
	if !res.Converged {
		unconverged.WithLabelValues(stage).Inc()
		ops.logger().Debug("implicit feet not converged", "stage", stage,
			"iterations", res.Iterations, "residual", res.Residual)
	}
	return
}
