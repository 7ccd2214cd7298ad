package spline

import (
	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/utils"
)

// Interpolator replaces a scalar field by its spline evaluated at a set of
// logical points, one per grid node
type Interpolator struct {
	Builder *Builder
}

func NewInterpolator(b *Builder) *Interpolator { return &Interpolator{Builder: b} }

func (ip *Interpolator) Interpolate(f *field.Scalar, feet *field.Coords) {
	f.G.MustMatch(ip.Builder.G)
	f.G.MustMatch(feet.G)
	s := ip.Builder.Build(f.V)
	utils.ParallelFor(len(f.V), func(i int) { f.V[i] = s.Eval(feet.At(i)) })
}
