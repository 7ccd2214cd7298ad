package timesolver

import (
	"context"

	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/timestepper"
	"github.com/notargets/gopolar/types"
)

// PredCorrRK2 treats the advection of the density as the update of an RK2
// stepper whose derivative is the advection field of the density
type PredCorrRK2 struct {
	Ops *Operators
}

func (pc *PredCorrRK2) Name() string { return "rk2" }

func (pc *PredCorrRK2) Run(ctx context.Context, rho *field.Scalar, dt float64, steps int) error {
	return pc.Ops.run(ctx, pc.Name(), rho, dt, steps, pc.step)
}

func (pc *PredCorrRK2) step(ctx context.Context, rho, phi *field.Scalar, a *field.Vector, dt float64) (err error) {
	var (
		ops     = pc.Ops
		stepper = timestepper.NewRK2[*field.Scalar](field.NewVector(rho.G, types.XYBasis))
		phiK    = field.NewScalar(rho.G)
	)
	deriv := func(dy *field.Vector, y *field.Scalar) {
		if y == rho {
			dy.CopyFrom(a)
			return
		}
		if e := ops.potential(phiK, y, dy); e != nil && err == nil {
			err = e
		}
	}
	update := func(y *field.Scalar, dy *field.Vector, dt float64) { ops.advect(ctx, y, dy, dt) }
	stepper.Update(rho, dt, deriv, update)
	return
}

// ExplicitPredCorr is the second order explicit predictor-corrector. The
// predictor advects by dt with the current field. The corrector advects the
// original density by dt with the mean of the current field at the predicted
// feet and the field of the predicted density.
type ExplicitPredCorr struct {
	Ops *Operators
}

func (pc *ExplicitPredCorr) Name() string { return "explicit" }

func (pc *ExplicitPredCorr) Run(ctx context.Context, rho *field.Scalar, dt float64, steps int) error {
	return pc.Ops.run(ctx, pc.Name(), rho, dt, steps, pc.step)
}

func (pc *ExplicitPredCorr) step(ctx context.Context, rho, phi *field.Scalar, a *field.Vector, dt float64) (err error) {
	var (
		ops  = pc.Ops
		g    = rho.G
		rhoP = rho.Clone()
		phiP = field.NewScalar(g)
		aP   = field.NewVector(g, types.XYBasis)
	)
	feet := ops.advect(ctx, rhoP, a, dt)
	if err = ops.potential(phiP, rhoP, aP); err != nil {
		return
	}
	aFeet := evalAt(splines(ops.BSL.Finder.Builder, a), feet)
	ops.advect(ctx, rho, mean(aFeet, aP), dt)
	return
}
