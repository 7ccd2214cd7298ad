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
	"io"
	"math"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/notargets/gopolar/InputParameters"
	"github.com/notargets/gopolar/diagnostics"
	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/types"
)

// AdvectCmd represents the advect command
var AdvectCmd = &cobra.Command{
	Use:   "advect",
	Short: "Rigid rotation of a Gaussian, checked against the exact solution",
	Long: `
Advects a Gaussian by the rigid rotation A = ω(yc - y, x - xc) and reports
the largest error of the feet and of the density. Feet in the outer tenth of
the radial range are left out of the feet error, since the flow carries them
across the boundary where the field is extrapolated. With --output the errors
are appended as a CSV row "nr,ntheta,dt,feet error,density error" for
tools/convOrder.

gopolar advect --omega 1 --xc 0.1 --output rotation.csv`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ip := InputParameters.NewSimulationParameters()
		if err = readInput(cmd, ip); err != nil {
			return
		}
		var rot Rotation
		rot.Omega, _ = cmd.Flags().GetFloat64("omega")
		rot.XC, _ = cmd.Flags().GetFloat64("xc")
		rot.YC, _ = cmd.Flags().GetFloat64("yc")
		output, _ := cmd.Flags().GetString("output")
		ip.Print()
		defer startProfile().Stop()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		var feetErr, rhoErr float64
		if feetErr, rhoErr, err = RunRotation(ctx, ip, rot); err != nil {
			return
		}
		fmt.Printf("%12.5e\t\t= Max Feet Error\n", feetErr)
		fmt.Printf("%12.5e\t\t= Max Density Error\n", rhoErr)
		if output == "" {
			return
		}
		var f *os.File
		if f, err = os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err != nil {
			return
		}
		defer f.Close()
		nr, nt := ip.Mesh()
		return WriteRow(f, nr, nt, ip.Dt, feetErr, rhoErr)
	},
}

func init() {
	rootCmd.AddCommand(AdvectCmd)
	AdvectCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Mapping, Epsilon, Elongation\n\t- NrCells, NTheta, Dt")
	AdvectCmd.Flags().Float64("omega", 2*math.Pi, "angular velocity")
	AdvectCmd.Flags().Float64("xc", 0, "x of the rotation centre")
	AdvectCmd.Flags().Float64("yc", 0, "y of the rotation centre")
	AdvectCmd.Flags().StringP("output", "o", "", "CSV file to append the errors to")
}

// Rotation is the field ω(yc - y, x - xc)
type Rotation struct {
	Omega, XC, YC float64
}

// Back returns where p was dt earlier
func (rot Rotation) Back(p types.Coord, dt float64) types.Coord {
	sn, cs := math.Sincos(rot.Omega * dt)
	x, y := p.V[0]-rot.XC, p.V[1]-rot.YC
	return types.XYCoord(rot.XC+x*cs+y*sn, rot.YC-x*sn+y*cs)
}

func gaussian(p types.Coord) float64 {
	return math.Exp(-((p.V[0]-0.3)*(p.V[0]-0.3) + p.V[1]*p.V[1]) / 0.05)
}

// InteriorMargin is the fraction of the radial range, at each boundary, whose
// feet are left out of the feet error
const InteriorMargin = 0.1

// RunRotation advects a Gaussian over the deck's steps and returns the largest
// physical distance between computed and exact feet in the interior and the
// largest density error at the final time
func RunRotation(ctx context.Context, ip *InputParameters.SimulationParameters, rot Rotation) (feetErr, rhoErr float64, err error) {
	var sim *Simulation
	if sim, err = NewSimulation(ip, nil); err != nil {
		return
	}
	var (
		g     = sim.Grid
		m     = sim.Physical
		adv   = field.NewVector(g, types.XYBasis)
		rho   = field.NewScalar(g)
		exact = field.NewScalar(g)
		steps = ip.Steps()
		sink  diagnostics.Sink
		span  = g.RMax() - g.RMin()
		lo    = g.RMin() + InteriorMargin*span
		hi    = g.RMax() - InteriorMargin*span
	)
	if g.HasOPoint() {
		lo = 0
	}
	for i := 0; i < g.Len(); i++ {
		p := m.Map(g.Coord(i))
		adv.C[0][i] = rot.Omega * (rot.YC - p.V[1])
		adv.C[1][i] = rot.Omega * (p.V[0] - rot.XC)
		rho.V[i] = gaussian(p)
		exact.V[i] = gaussian(rot.Back(p, float64(steps)*ip.Dt))
	}
	if sink, err = sim.Sinks(); err != nil {
		return
	}
	defer func() {
		if cErr := sink.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()
	emit := func(name string, iter int) error {
		return sink.Emit(ctx, diagnostics.Event{
			RunID:  sim.RunID,
			Name:   name,
			Iter:   iter,
			Time:   float64(iter) * ip.Dt,
			Fields: map[string]*field.Scalar{"density": rho},
		})
	}
	for iter := 0; iter < steps; iter++ {
		if err = ctx.Err(); err != nil {
			return
		}
		if err = emit("iteration", iter); err != nil {
			return
		}
		feet := sim.BSL.AdvectCartesian(rho, adv, ip.Dt)
		for i := 0; i < g.Len(); i++ {
			c := feet.At(i)
			if c.V[0] < lo || c.V[0] > hi {
				continue
			}
			var (
				want = rot.Back(m.Map(g.Coord(i)), ip.Dt)
				got  = m.Map(c)
			)
			feetErr = math.Max(feetErr, math.Hypot(got.V[0]-want.V[0], got.V[1]-want.V[1]))
		}
	}
	if err = emit("last_iteration", steps); err != nil {
		return
	}
	rhoErr = rho.Distance(exact)
	return
}

// WriteRow appends one convergence study row
func WriteRow(w io.Writer, nr, nt int, dt, feetErr, rhoErr float64) (err error) {
	_, err = fmt.Fprintf(w, "%d,%d,%g,%.10e,%.10e\n", nr, nt, dt, feetErr, rhoErr)
	return
}
