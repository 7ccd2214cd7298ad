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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/notargets/gopolar/InputParameters"
	"github.com/notargets/gopolar/advectionfield"
	"github.com/notargets/gopolar/diagnostics"
	"github.com/notargets/gopolar/diocotron"
	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/poisson"
	"github.com/notargets/gopolar/timesolver"
)

// DiocotronCmd represents the diocotron command
var DiocotronCmd = &cobra.Command{
	Use:   "diocotron",
	Short: "Diocotron instability of an annular density",
	Long: `
Advects a perturbed annular density in its own E×B field with a
predictor-corrector and compares the growth of the perturbation with the
linear theory.

gopolar diocotron -I diocotron.yaml --fitFrom 10 --fitTo 35`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ip := DiocotronDefaults()
		if err := readInput(cmd, ip); err != nil {
			return err
		}
		from, _ := cmd.Flags().GetFloat64("fitFrom")
		to, _ := cmd.Flags().GetFloat64("fitTo")
		ip.Print()
		defer startProfile().Stop()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		measured, expected, err := RunDiocotron(ctx, ip, from, to)
		if err != nil {
			return err
		}
		fmt.Printf("%8.5f\t\t= Growth Rate (theory)\n", expected)
		fmt.Printf("%8.5f\t\t= Growth Rate (measured over [%g, %g])\n", measured, from, to)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(DiocotronCmd)
	DiocotronCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Dt, FinalTime\n\t- RMinus, RPlus, Mode")
	DiocotronCmd.Flags().Float64("fitFrom", 10, "start of the growth rate fit window")
	DiocotronCmd.Flags().Float64("fitTo", 35, "end of the growth rate fit window")
}

// DiocotronDefaults is the standard diocotron configuration
func DiocotronDefaults() (ip *InputParameters.SimulationParameters) {
	ip = InputParameters.NewSimulationParameters()
	ip.Title = "Diocotron"
	ip.NrCells, ip.NTheta, ip.Refinement = 32, 64, 4
	ip.FinalTime = 40
	return
}

// RunDiocotron runs the deck and returns the measured and the theoretical
// growth rates
func RunDiocotron(ctx context.Context, ip *InputParameters.SimulationParameters, from, to float64) (measured, expected float64, err error) {
	if ip.Mapping != "circular" {
		err = fmt.Errorf("the diocotron case needs the circular mapping, have %q", ip.Mapping)
		return
	}
	var sim *Simulation
	if sim, err = NewSimulation(ip, nil); err != nil {
		return
	}
	var (
		g       = sim.Grid
		ds      = diocotron.NewDensitySolution(ip.RMin, ip.RMinus, ip.RPlus, ip.RMax, ip.Charge, ip.Mode, ip.Amplitude)
		rho     = field.NewScalar(g).Fill(ds.Initial)
		history = &diagnostics.HistorySink{
			Field:   "density",
			Eq:      field.NewScalar(g).Fill(ds.Equilibrium),
			Weights: sim.Weights,
		}
		sink diagnostics.Sink
	)
	expected = ds.GrowthRate()
	if sink, err = sim.Sinks(); err != nil {
		return
	}
	defer func() {
		if cErr := sink.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()
	ops := &timesolver.Operators{
		Poisson: poisson.NewPolarFFT(g, sim.Logger),
		Fields:  advectionfield.NewFinder(sim.Physical, sim.Builder),
		BSL:     sim.BSL,
		Sink:    diagnostics.MultiSink{sink, history},
		RunID:   sim.RunID,
		Logger:  sim.Logger,
	}
	var solver timesolver.Solver
	if solver, err = timesolver.New(ip.PredCorr, ops); err != nil {
		return
	}
	sim.Logger.Info("diocotron", "solver", solver.Name(), "growth_rate", expected, "frequency", ds.Frequency(),
		"profile_growth_rate", imag(ds.ProfileFrequency(4096)))
	if err = solver.Run(ctx, rho, ip.Dt, ip.Steps()); err != nil {
		return
	}
	measured, err = history.GrowthRate(from, to)
	return
}
