package diagnostics

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/grid"
	"github.com/notargets/gopolar/mapping"
)

// Weights returns the quadrature weights of g over the physical domain of m
func Weights(g *grid.Grid, m mapping.Mapping) []float64 { return g.Weights(m.Jacobian) }

// L2Norm is (∫ f² dx dy)^½
func L2Norm(f *field.Scalar, w []float64) float64 {
	sq := make([]float64, len(f.V))
	floats.MulTo(sq, f.V, f.V)
	return math.Sqrt(floats.Dot(sq, w))
}

// Mass is ∫ f dx dy
func Mass(f *field.Scalar, w []float64) float64 { return floats.Dot(f.V, w) }

// PerturbationL2 is the L2 norm of f - eq
func PerturbationL2(f, eq *field.Scalar, w []float64) float64 {
	d := f.Clone()
	d.AddScaled(-1, eq)
	return L2Norm(d, w)
}

// GrowthRate fits log(norm) = a + γ·t by least squares over from <= t <= to
// and returns γ
func GrowthRate(times, norms []float64, from, to float64) (gamma float64, err error) {
	if len(times) != len(norms) {
		err = fmt.Errorf("growth rate from %d times and %d norms", len(times), len(norms))
		return
	}
	var x, y []float64
	for i, t := range times {
		if t < from || t > to {
			continue
		}
		if norms[i] <= 0 {
			err = fmt.Errorf("non positive norm %g at t = %g", norms[i], t)
			return
		}
		x = append(x, t)
		y = append(y, math.Log(norms[i]))
	}
	if len(x) < 2 {
		err = fmt.Errorf("growth rate needs two samples in [%g, %g], have %d", from, to, len(x))
		return
	}
	_, gamma = stat.LinearRegression(x, y, nil, false)
	return
}

// HistorySink records the perturbation norm of one field for every event
type HistorySink struct {
	Field   string
	Eq      *field.Scalar
	Weights []float64
	Times   []float64
	Norms   []float64
	Events  []string
}

func (hs *HistorySink) Emit(_ context.Context, ev Event) error {
	f, ok := ev.Fields[hs.Field]
	if !ok {
		return fmt.Errorf("event %q has no field %q", ev.Name, hs.Field)
	}
	hs.Times = append(hs.Times, ev.Time)
	hs.Norms = append(hs.Norms, PerturbationL2(f, hs.Eq, hs.Weights))
	hs.Events = append(hs.Events, ev.Name)
	return nil
}

func (hs *HistorySink) Close() error { return nil }

// GrowthRate of the recorded history over [from, to]
func (hs *HistorySink) GrowthRate(from, to float64) (float64, error) {
	return GrowthRate(hs.Times, hs.Norms, from, to)
}
