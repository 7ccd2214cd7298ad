/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/notargets/gopolar/InputParameters"
	"github.com/notargets/gopolar/advection"
	"github.com/notargets/gopolar/diagnostics"
	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/grid"
	"github.com/notargets/gopolar/mapping"
	"github.com/notargets/gopolar/spline"
	"github.com/notargets/gopolar/timestepper"
	"github.com/notargets/gopolar/utils"
)

// Simulation holds the discretisation and the advection operator built from
// an input deck
type Simulation struct {
	Params   *InputParameters.SimulationParameters
	RunID    uuid.UUID
	Grid     *grid.Grid
	Builder  *spline.Builder
	Physical mapping.Mapping
	BSL      *advection.BSL
	Weights  []float64
	Logger   *slog.Logger
}

func NewSimulation(ip *InputParameters.SimulationParameters, logger *slog.Logger) (sim *Simulation, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	nr, nt := ip.Mesh()
	sim = &Simulation{
		Params: ip,
		RunID:  uuid.New(),
		Grid:   grid.NewUniform(ip.RMin, ip.RMax, nr, nt),
	}
	sim.Logger = logger.With("run", sim.RunID.String())
	sim.Builder = spline.NewBuilder(sim.Grid)
	if sim.Physical, err = physicalMapping(ip, sim.Builder); err != nil {
		return
	}
	comb := mapping.NewCombined(sim.Physical, mapping.NewPseudoCartesian(), 1.e-12)
	var ts timestepper.TimeStepper[*field.Coords, *field.Vector]
	if ts, err = timestepper.New[*field.Coords](ip.TimeStepper, advection.Proto(sim.Grid, comb)); err != nil {
		return
	}
	sim.BSL = advection.NewBSL(
		advection.NewFootFinder(ts, comb, sim.Builder, sim.Logger),
		spline.NewInterpolator(sim.Builder), sim.Physical, sim.Logger)
	sim.Weights = diagnostics.Weights(sim.Grid, sim.Physical)
	sim.Logger.Debug("simulation built", "nr", sim.Grid.Nr, "ntheta", sim.Grid.Nt, "memory", utils.GetMemUsage())
	return
}

func physicalMapping(ip *InputParameters.SimulationParameters, b *spline.Builder) (m mapping.Mapping, err error) {
	switch ip.Mapping {
	case "circular":
		m = mapping.Circular{}
	case "czarny":
		m = mapping.NewCzarny(ip.Epsilon, ip.Elongation)
	case "discrete":
		m = mapping.NewDiscrete(mapping.SampleSplines(b, mapping.NewCzarny(ip.Epsilon, ip.Elongation)))
	default:
		err = fmt.Errorf("unknown mapping %q", ip.Mapping)
	}
	return
}

// Sinks returns the diagnostics sinks named by the deck, plus extra
func (sim *Simulation) Sinks(extra ...diagnostics.Sink) (s diagnostics.Sink, err error) {
	var (
		ip    = sim.Params
		sinks = diagnostics.MultiSink{diagnostics.NewLogSink(sim.Logger, sim.Weights)}
	)
	if ip.Badger != "" {
		dir := ip.Badger
		if dir == "memory" {
			dir = ""
		}
		var bs *diagnostics.BadgerSink
		if bs, err = diagnostics.NewBadgerSink(dir, sim.Logger); err != nil {
			return
		}
		sinks = append(sinks, bs)
	}
	if ip.Influx != nil {
		is := diagnostics.NewInfluxSink(ip.Influx.URL, ip.Influx.Token, ip.Influx.Org, ip.Influx.Bucket, sim.Weights)
		sinks = append(sinks, is)
	}
	sinks = append(sinks, extra...)
	s = diagnostics.Sampled{Sink: sinks, Every: ip.OutputEvery}
	return
}

// readInput overlays the deck named by the inputConditionsFile flag on the
// defaults
func readInput(cmd *cobra.Command, ip *InputParameters.SimulationParameters) (err error) {
	var file string
	if file, err = cmd.Flags().GetString("inputConditionsFile"); err != nil || file == "" {
		return
	}
	var data []byte
	if data, err = os.ReadFile(file); err != nil {
		return
	}
	if err = ip.Parse(data); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	return
}
