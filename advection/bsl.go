package advection

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/grid"
	"github.com/notargets/gopolar/mapping"
	"github.com/notargets/gopolar/tensor"
	"github.com/notargets/gopolar/transport"
	"github.com/notargets/gopolar/types"
	"github.com/notargets/gopolar/utils"
)

var advections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gopolar",
	Subsystem: "bsl",
	Name:      "advections_total",
	Help:      "Backward semi-Lagrangian advections by entry point.",
}, []string{"entry"})

// Interpolator replaces f by its interpolant evaluated at feet
type Interpolator interface {
	Interpolate(f *field.Scalar, feet *field.Coords)
}

// BSL advects a distribution function by tracing each node back to its foot
// and interpolating the old values there.
type BSL struct {
	Finder   *FootFinder
	Interp   Interpolator
	Physical mapping.Mapping
	// OPointTol is the physical distance under which the first ring is taken
	// to be the O-point
	OPointTol float64
	Logger    *slog.Logger
}

func NewBSL(finder *FootFinder, interp Interpolator, physical mapping.Mapping, logger *slog.Logger) *BSL {
	if logger == nil {
		logger = slog.Default()
	}
	return &BSL{
		Finder:    finder,
		Interp:    interp,
		Physical:  physical,
		OPointTol: grid.DefaultOPointTol,
		Logger:    logger,
	}
}

// AdvectCartesian advects f by dt with adv given in the physical Cartesian
// basis. It returns the feet that were used.
func (b *BSL) AdvectCartesian(f *field.Scalar, adv *field.Vector, dt float64) (feet *field.Coords) {
	advections.WithLabelValues("cartesian").Inc()
	f.G.MustMatch(adv.G)
	feet = field.GridCoords(f.G)
	b.Finder.Find(feet, adv, dt)
	b.Interp.Interpolate(f, feet)
	return
}

// AdvectWithOPoint advects f with adv given in the logical contravariant basis
// away from the O-point and oPoint, its Cartesian value at the O-point
func (b *BSL) AdvectWithOPoint(f *field.Scalar, adv *field.Vector, oPoint tensor.Tensor, dt float64) *field.Coords {
	advections.WithLabelValues("opoint").Inc()
	if !b.hasOPoint(f.G) {
		panic(fmt.Errorf("advection with an O-point value on a grid starting at r = %g", f.G.RMin()))
	}
	return b.AdvectCartesian(f, b.toCartesian(adv, oPoint), dt)
}

// Advect advects f with adv given in the logical contravariant basis. On a
// grid with an O-point its Cartesian value there is the mean over the first
// ring around it.
func (b *BSL) Advect(f *field.Scalar, adv *field.Vector, dt float64) *field.Coords {
	advections.WithLabelValues("logical").Inc()
	f.G.MustMatch(adv.G)
	if !b.hasOPoint(f.G) {
		xy := field.NewVector(adv.G, types.XYBasis)
		transport.CopyToVectorSpace(xy, adv, b.Physical)
		return b.AdvectCartesian(f, xy, dt)
	}
	var (
		g      = adv.G
		lo, hi = g.Ring(1)
		n      = float64(hi - lo)
		ring   = field.NewVector(g, types.XYBasis)
	)
	transport.CopyRange(ring, adv, b.Physical, lo, hi)
	oPoint := tensor.Vector(types.XYBasis,
		utils.ParallelSum(hi-lo, func(k int) float64 { return ring.C[0][lo+k] })/n,
		utils.ParallelSum(hi-lo, func(k int) float64 { return ring.C[1][lo+k] })/n)
	b.Logger.Debug("O-point advection from ring average", "ax", oPoint.At(0), "ay", oPoint.At(1))
	return b.AdvectCartesian(f, b.toCartesian(adv, oPoint), dt)
}

func (b *BSL) toCartesian(adv *field.Vector, oPoint tensor.Tensor) (xy *field.Vector) {
	var (
		g      = adv.G
		lo, hi = g.Ring(0)
	)
	xy = field.NewVector(g, types.XYBasis)
	transport.CopyRange(xy, adv, b.Physical, hi, g.Len())
	for i := lo; i < hi; i++ {
		xy.SetAt(i, oPoint)
	}
	return
}

func (b *BSL) hasOPoint(g *grid.Grid) bool {
	var (
		first  = b.Physical.Map(types.RThetaCoord(g.RMin(), g.Theta[0]))
		center = b.Physical.Map(types.RThetaCoord(0, 0))
	)
	return math.Hypot(first.V[0]-center.V[0], first.V[1]-center.V[1]) < b.OPointTol
}
