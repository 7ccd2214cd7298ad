// Package advection moves a scalar field along the characteristics of an
// advection field with the backward semi-Lagrangian method on a polar grid.
package advection

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/grid"
	"github.com/notargets/gopolar/mapping"
	"github.com/notargets/gopolar/spline"
	"github.com/notargets/gopolar/timestepper"
	"github.com/notargets/gopolar/transport"
	"github.com/notargets/gopolar/types"
	"github.com/notargets/gopolar/utils"
)

// AssertOPoint makes an O-point mismatch after foot finding fatal. Release
// builds only log it.
var AssertOPoint = true

// snapTol is the pseudo-Cartesian distance below which a foot is put exactly
// on the O-point
const snapTol = 1.e-15

// FootFinder traces characteristics backward in the pseudo-Cartesian plane,
// where the O-point is a regular point.
type FootFinder struct {
	Stepper  timestepper.TimeStepper[*field.Coords, *field.Vector]
	Combined *mapping.Combined
	Builder  *spline.Builder
	Logger   *slog.Logger

	toLogical mapping.Mapping
	center    types.Coord
	basis     types.Basis
}

// NewFootFinder returns a foot finder on the builder's grid. The stepper's
// derivative prototype must be a vector in the pseudo-Cartesian basis of
// combined.
func NewFootFinder(stepper timestepper.TimeStepper[*field.Coords, *field.Vector],
	combined *mapping.Combined, builder *spline.Builder, logger *slog.Logger) (ff *FootFinder) {
	if logger == nil {
		logger = slog.Default()
	}
	ff = &FootFinder{
		Stepper:   stepper,
		Combined:  combined,
		Builder:   builder,
		Logger:    logger,
		toLogical: combined.Pseudo.Inverse(),
		center:    combined.Pseudo.Map(types.RThetaCoord(0, 0)),
		basis:     types.Basis{Sys: combined.Domain(), Var: types.Contravariant},
	}
	return
}

// Proto returns a zero advection field in the pseudo-Cartesian basis, usable as
// the stepper's derivative prototype
func Proto(g *grid.Grid, combined *mapping.Combined) *field.Vector {
	return field.NewVector(g, types.Basis{Sys: combined.Domain(), Var: types.Contravariant})
}

// Find moves feet, logical coordinates initialised by the caller, backward by
// dt along adv, a field in the physical Cartesian basis
func (ff *FootFinder) Find(feet *field.Coords, adv *field.Vector, dt float64) {
	var (
		g      = ff.Builder.G
		pseudo = field.NewVector(g, ff.basis)
	)
	g.MustMatch(feet.G)
	feet.Sys.MustMatch(types.RThetaSys)
	transport.CopyToVectorSpace(pseudo, adv, ff.Combined)
	var (
		sx = ff.Builder.Build(pseudo.C[0])
		sy = ff.Builder.Build(pseudo.C[1])
	)
	deriv := func(dy *field.Vector, y *field.Coords) {
		utils.ParallelFor(y.Len(), func(i int) {
			c := y.At(i)
			dy.C[0][i], dy.C[1][i] = sx.Eval(c), sy.Eval(c)
		})
	}
	ff.Stepper.Update(feet, dt, deriv, ff.moveBack)
	ff.unify(feet)
}

func (ff *FootFinder) moveBack(y *field.Coords, dy *field.Vector, dt float64) {
	utils.ParallelFor(y.Len(), func(i int) {
		p := ff.Combined.Pseudo.Map(y.At(i))
		p.V[0] -= dt * dy.C[0][i]
		p.V[1] -= dt * dy.C[1][i]
		if math.Max(math.Abs(p.V[0]-ff.center.V[0]), math.Abs(p.V[1]-ff.center.V[1])) < snapTol {
			y.SetAt(i, types.RThetaCoord(0, 0))
			return
		}
		y.SetAt(i, ff.toLogical.Map(p).Wrapped())
	})
	ff.unify(y)
}

// unify gives every foot on the O-point ring the value of the first one.
// Those feet start from the same physical point and must stay together.
func (ff *FootFinder) unify(feet *field.Coords) {
	g := feet.G
	if !g.HasOPoint() {
		return
	}
	var (
		lo, hi = g.Ring(0)
		ref    = ff.Combined.Pseudo.Map(feet.At(lo))
	)
	for i := lo + 1; i < hi; i++ {
		p := ff.Combined.Pseudo.Map(feet.At(i))
		d := math.Max(math.Abs(p.V[0]-ref.V[0]), math.Abs(p.V[1]-ref.V[1]))
		if d > snapTol {
			ff.Logger.Warn("feet discontinuous at the O-point", "theta_index", i-lo, "mismatch", d)
			if AssertOPoint {
				panic(fmt.Errorf("O-point foot %d differs from foot 0 by %g", i-lo, d))
			}
		}
		feet.C[0][i], feet.C[1][i] = feet.C[0][lo], feet.C[1][lo]
	}
}
