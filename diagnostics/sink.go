// Package diagnostics receives the snapshots a simulation emits and reduces
// them to norms and growth rates.
package diagnostics

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/notargets/gopolar/field"
)

// Event is one named snapshot of a run
type Event struct {
	RunID  uuid.UUID
	Name   string
	Iter   int
	Time   float64
	Fields map[string]*field.Scalar
}

// FieldNames returns the field names of the event in a stable order
func (ev Event) FieldNames() (names []string) {
	for k := range ev.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return
}

type Sink interface {
	Emit(ctx context.Context, ev Event) error
	Close() error
}

// MultiSink fans an event out to every sink and joins their errors
type MultiSink []Sink

func (ms MultiSink) Emit(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range ms {
		errs = append(errs, s.Emit(ctx, ev))
	}
	return errors.Join(errs...)
}

func (ms MultiSink) Close() error {
	var errs []error
	for _, s := range ms {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// LogSink writes one record per event with the L2 norm and the mass of every
// field. The run id is left to the logger's own attributes.
type LogSink struct {
	Logger  *slog.Logger
	Weights []float64
}

func NewLogSink(logger *slog.Logger, weights []float64) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{Logger: logger, Weights: weights}
}

func (ls *LogSink) Emit(ctx context.Context, ev Event) error {
	attrs := []any{"iter", ev.Iter, "time", ev.Time}
	for _, name := range ev.FieldNames() {
		f := ev.Fields[name]
		attrs = append(attrs, slog.Group(name, "l2", L2Norm(f, ls.Weights), "mass", Mass(f, ls.Weights)))
	}
	ls.Logger.InfoContext(ctx, ev.Name, attrs...)
	return nil
}

func (ls *LogSink) Close() error { return nil }

// Sampled forwards every Every-th "iteration" event and all other events
type Sampled struct {
	Sink  Sink
	Every int
}

func (s Sampled) Emit(ctx context.Context, ev Event) error {
	if ev.Name == "iteration" && s.Every > 1 && ev.Iter%s.Every != 0 {
		return nil
	}
	return s.Sink.Emit(ctx, ev)
}

func (s Sampled) Close() error { return s.Sink.Close() }
