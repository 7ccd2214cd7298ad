package diagnostics

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// PointWriter is the part of the blocking influx write API the sink uses
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// InfluxSink writes one point per event with the L2 norm and the mass of every
// field
type InfluxSink struct {
	Writer      PointWriter
	Weights     []float64
	Measurement string

	client influxdb2.Client
}

func NewInfluxSink(url, token, org, bucket string, weights []float64) *InfluxSink {
	client := influxdb2.NewClient(url, token)
	return &InfluxSink{
		Writer:      client.WriteAPIBlocking(org, bucket),
		Weights:     weights,
		Measurement: "gopolar",
		client:      client,
	}
}

func (is *InfluxSink) Emit(ctx context.Context, ev Event) error {
	fields := map[string]interface{}{
		"iter": ev.Iter,
		"time": ev.Time,
	}
	for _, name := range ev.FieldNames() {
		f := ev.Fields[name]
		fields[name+"_l2"] = L2Norm(f, is.Weights)
		fields[name+"_mass"] = Mass(f, is.Weights)
	}
	p := influxdb2.NewPoint(
		is.Measurement,
		map[string]string{
			"run":   ev.RunID.String(),
			"event": ev.Name,
		},
		fields,
		time.Now(),
	)
	if err := is.Writer.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("write %s/%d to influx: %w", ev.Name, ev.Iter, err)
	}
	return nil
}

func (is *InfluxSink) Close() error {
	if is.client != nil {
		is.client.Close()
	}
	return nil
}
