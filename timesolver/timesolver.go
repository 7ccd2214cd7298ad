// Package timesolver steps the guiding-centre Vlasov-Poisson system: the
// density is advected by the E×B field of the potential it generates.
package timesolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/notargets/gopolar/advection"
	"github.com/notargets/gopolar/diagnostics"
	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/spline"
	"github.com/notargets/gopolar/types"
	"github.com/notargets/gopolar/utils"
)

var tracer = otel.Tracer("github.com/notargets/gopolar/timesolver")

// PoissonSolver writes into phi the potential generated by rho
type PoissonSolver interface {
	Solve(phi, rho *field.Scalar) error
}

// FieldFinder writes into a the Cartesian advection field of phi
type FieldFinder interface {
	ComputeXY(phi *field.Scalar, a *field.Vector)
}

// Solver advances a density by steps of dt
type Solver interface {
	Run(ctx context.Context, rho *field.Scalar, dt float64, steps int) error
	Name() string
}

// Operators are the collaborators shared by the predictor-correctors
type Operators struct {
	Poisson PoissonSolver
	Fields  FieldFinder
	BSL     *advection.BSL
	Sink    diagnostics.Sink
	RunID   uuid.UUID
	Logger  *slog.Logger
}

func (ops *Operators) logger() *slog.Logger {
	if ops.Logger == nil {
		return slog.Default()
	}
	return ops.Logger
}

// New returns the predictor-corrector called name
func New(name string, ops *Operators) (s Solver, err error) {
	switch name {
	case "rk2":
		s = &PredCorrRK2{Ops: ops}
	case "explicit":
		s = &ExplicitPredCorr{Ops: ops}
	case "implicit":
		s = NewImplicitPredCorr(ops)
	default:
		err = fmt.Errorf("unknown predictor-corrector %q", name)
	}
	return
}

// potential solves for phi and derives the advection field a from it
func (ops *Operators) potential(phi, rho *field.Scalar, a *field.Vector) (err error) {
	if err = ops.Poisson.Solve(phi, rho); err != nil {
		return fmt.Errorf("poisson solve: %w", err)
	}
	ops.Fields.ComputeXY(phi, a)
	return
}

func (ops *Operators) emit(ctx context.Context, name string, iter int, t float64, rho, phi *field.Scalar) error {
	if ops.Sink == nil {
		return nil
	}
	ev := diagnostics.Event{
		RunID: ops.RunID,
		Name:  name,
		Iter:  iter,
		Time:  t,
		Fields: map[string]*field.Scalar{
			"density":              rho,
			"electrical_potential": phi,
		},
	}
	if err := ops.Sink.Emit(ctx, ev); err != nil {
		return fmt.Errorf("emit %s %d: %w", name, iter, err)
	}
	return nil
}

func (ops *Operators) advect(ctx context.Context, f *field.Scalar, a *field.Vector, dt float64) *field.Coords {
	_, span := tracer.Start(ctx, "advect")
	defer span.End()
	return ops.BSL.AdvectCartesian(f, a, dt)
}

// stepFunc advances rho by dt given its potential phi and advection field a
type stepFunc func(ctx context.Context, rho, phi *field.Scalar, a *field.Vector, dt float64) error

// run is the loop shared by the predictor-correctors. Each step starts from
// the potential of the current density, which is emitted as "iteration"; the
// potential of the final density is emitted as "last_iteration".
func (ops *Operators) run(ctx context.Context, name string, rho *field.Scalar, dt float64, steps int, step stepFunc) (err error) {
	var (
		g   = rho.G
		phi = field.NewScalar(g)
		a   = field.NewVector(g, types.XYBasis)
		log = ops.logger()
	)
	log.Debug("time loop", "solver", name, "run", ops.RunID.String(), "dt", dt, "steps", steps)
	for iter := 0; iter < steps; iter++ {
		if err = ctx.Err(); err != nil {
			return
		}
		start := time.Now()
		sctx, span := tracer.Start(ctx, name+".step", trace.WithAttributes(attribute.Int("iter", iter)))
		if err = ops.potential(phi, rho, a); err == nil {
			if err = ops.emit(sctx, "iteration", iter, float64(iter)*dt, rho, phi); err == nil {
				err = step(sctx, rho, phi, a, dt)
			}
		}
		if err == nil && utils.IsNan(rho.V) {
			err = fmt.Errorf("density is NaN")
		}
		span.End()
		stepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if err != nil {
			return fmt.Errorf("%s step %d: %w", name, iter, err)
		}
	}
	if err = ops.Poisson.Solve(phi, rho); err != nil {
		return fmt.Errorf("%s final poisson solve: %w", name, err)
	}
	return ops.emit(ctx, "last_iteration", steps, float64(steps)*dt, rho, phi)
}

// splines fits one spline per Cartesian component of a
func splines(b *spline.Builder, a *field.Vector) [2]*spline.Spline {
	return [2]*spline.Spline{b.Build(a.C[0]), b.Build(a.C[1])}
}

// evalAt evaluates the component splines s at feet
func evalAt(s [2]*spline.Spline, feet *field.Coords) (a *field.Vector) {
	a = field.NewVector(feet.G, types.XYBasis)
	utils.ParallelFor(feet.Len(), func(i int) {
		c := feet.At(i)
		a.C[0][i], a.C[1][i] = s[0].Eval(c), s[1].Eval(c)
	})
	return
}

// mean is (a + b)/2
func mean(a, b *field.Vector) (m *field.Vector) {
	m = a.Clone()
	m.AddScaled(1, b)
	m.Scale(0.5)
	return
}
