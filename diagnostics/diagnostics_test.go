package diagnostics

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/grid"
	"github.com/notargets/gopolar/mapping"
	"github.com/notargets/gopolar/types"
)

func ones(c types.Coord) float64 { return 1 }

func TestNorms(t *testing.T) {
	var (
		g = grid.NewUniform(0, 1, 16, 32)
		w = Weights(g, mapping.Circular{})
		f = field.NewScalar(g).Fill(ones)
	)
	assert.InDelta(t, math.Pi, Mass(f, w), 1.e-12)
	assert.InDelta(t, math.Sqrt(math.Pi), L2Norm(f, w), 1.e-12)
	f2 := f.Clone()
	f2.Scale(3)
	assert.InDelta(t, 2*math.Sqrt(math.Pi), PerturbationL2(f2, f, w), 1.e-12)
	assert.InDelta(t, 0., PerturbationL2(f, f, w), 1.e-15)
	{ // The Czarny domain is smaller than the unit disc
		cz := mapping.NewCzarny(0.3, 1.4)
		m := Mass(f, Weights(g, cz))
		assert.Greater(t, m, 0.)
		assert.NotEqual(t, math.Pi, m)
	}
}

func TestGrowthRate(t *testing.T) {
	var times, norms []float64
	for i := 0; i <= 50; i++ {
		tt := 0.2 * float64(i)
		times = append(times, tt)
		norms = append(norms, 1.e-4*math.Exp(0.3*tt))
	}
	gamma, err := GrowthRate(times, norms, 2, 8)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, gamma, 1.e-10)

	_, err = GrowthRate(times, norms[1:], 0, 10)
	assert.Error(t, err)
	_, err = GrowthRate(times, norms, 20, 30)
	assert.Error(t, err)
	norms[10] = 0
	_, err = GrowthRate(times, norms, 0, 10)
	assert.Error(t, err)
}

func event(g *grid.Grid, iter int, scale float64) Event {
	rho := field.NewScalar(g).Fill(func(c types.Coord) float64 { return scale * c.V[0] })
	phi := field.NewScalar(g).Fill(ones)
	return Event{
		RunID:  uuid.MustParse("4f9e3a3e-5b6a-4d53-9a0f-1d2c3b4a5e6f"),
		Name:   "iteration",
		Iter:   iter,
		Time:   0.1 * float64(iter),
		Fields: map[string]*field.Scalar{"density": rho, "electrical_potential": phi},
	}
}

func TestHistoryAndMultiSink(t *testing.T) {
	var (
		g   = grid.NewUniform(0, 1, 8, 16)
		w   = Weights(g, mapping.Circular{})
		buf bytes.Buffer
		hs  = &HistorySink{Field: "density", Eq: field.NewScalar(g), Weights: w}
		ms  = MultiSink{hs, NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)).With("run", "r1"), w)}
		ctx = context.Background()
	)
	for i := 0; i < 5; i++ {
		require.NoError(t, ms.Emit(ctx, event(g, i, math.Exp(0.5*0.1*float64(i)))))
	}
	assert.Len(t, hs.Norms, 5)
	gamma, err := hs.GrowthRate(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, gamma, 1.e-10)
	assert.Contains(t, buf.String(), "msg=iteration")
	assert.Contains(t, buf.String(), "density.l2=")
	assert.Contains(t, buf.String(), "electrical_potential.mass=")
	// The run id comes from the logger once per record
	assert.Equal(t, 5, strings.Count(buf.String(), "run=r1"))
	assert.Equal(t, 5, strings.Count(buf.String(), "run="))

	{ // Errors of each sink are reported
		bad := &HistorySink{Field: "missing"}
		err := MultiSink{hs, bad}.Emit(ctx, event(g, 6, 1))
		assert.ErrorContains(t, err, "has no field")
		assert.Len(t, hs.Norms, 6)
	}
	assert.NoError(t, ms.Close())

	{ // Sampling keeps every other iteration and the last one
		sampled := &HistorySink{Field: "density", Eq: field.NewScalar(g), Weights: w}
		s := Sampled{Sink: sampled, Every: 2}
		for i := 0; i < 5; i++ {
			require.NoError(t, s.Emit(ctx, event(g, i, 1)))
		}
		last := event(g, 5, 1)
		last.Name = "last_iteration"
		require.NoError(t, s.Emit(ctx, last))
		assert.Equal(t, []string{"iteration", "iteration", "iteration", "last_iteration"}, sampled.Events)
		assert.NoError(t, s.Close())
	}
}

func TestBadgerSink(t *testing.T) {
	bs, err := NewBadgerSink("", nil)
	require.NoError(t, err)
	defer bs.Close()

	var (
		g   = grid.NewUniform(0, 1, 4, 8)
		ctx = context.Background()
	)
	for _, i := range []int{0, 2, 1, 10} {
		require.NoError(t, bs.Emit(ctx, event(g, i, float64(i))))
	}
	ev := event(g, 2, 2)
	s, err := bs.Load(ev.RunID, "iteration", 2, "density")
	require.NoError(t, err)
	assert.Equal(t, g.Nr, s.Nr)
	assert.Equal(t, g.Nt, s.Nt)
	assert.InDelta(t, 0.2, s.Time, 1.e-15)
	assert.Equal(t, ev.Fields["density"].V, s.V)

	iters, err := bs.Iterations(ev.RunID, "iteration", "density")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 10}, iters)

	_, err = bs.Load(uuid.New(), "iteration", 2, "density")
	assert.Error(t, err)
}

type recorder struct {
	points []*write.Point
	err    error
}

func (r *recorder) WritePoint(_ context.Context, p ...*write.Point) error {
	r.points = append(r.points, p...)
	return r.err
}

func TestInfluxSink(t *testing.T) {
	var (
		g   = grid.NewUniform(0, 1, 4, 8)
		rec = &recorder{}
		is  = &InfluxSink{Writer: rec, Weights: Weights(g, mapping.Circular{}), Measurement: "gopolar"}
		ctx = context.Background()
	)
	require.NoError(t, is.Emit(ctx, event(g, 3, 1)))
	require.Len(t, rec.points, 1)
	assert.Equal(t, "gopolar", rec.points[0].Name())
	keys := map[string]bool{}
	for _, f := range rec.points[0].FieldList() {
		keys[f.Key] = true
	}
	assert.True(t, keys["density_l2"])
	assert.True(t, keys["electrical_potential_mass"])

	rec.err = errors.New("connection refused")
	assert.ErrorContains(t, is.Emit(ctx, event(g, 4, 1)), "connection refused")
	assert.NoError(t, is.Close())
}
