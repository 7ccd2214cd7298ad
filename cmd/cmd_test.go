package cmd

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gopolar/InputParameters"
)

func TestRunRotation(t *testing.T) {
	for _, m := range []string{"circular", "czarny", "discrete"} {
		ip := InputParameters.NewSimulationParameters()
		ip.Mapping = m
		ip.FinalTime = 0.3
		feetErr, rhoErr, err := RunRotation(context.Background(), ip, Rotation{Omega: 0.5})
		require.NoError(t, err, m)
		// Interior feet only, the outer ring's feet leave the domain
		assert.Less(t, feetErr, 1.e-3, m)
		assert.Less(t, rhoErr, 5.e-2, m)
		if m == "circular" {
			assert.Less(t, feetErr, 1.e-5)
		}
	}
	{ // Cancelled runs stop before the first step
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := RunRotation(ctx, InputParameters.NewSimulationParameters(), Rotation{Omega: 1})
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestRunDiocotron(t *testing.T) {
	ip := DiocotronDefaults()
	ip.Refinement = 1
	ip.NrCells, ip.NTheta = 16, 32
	ip.FinalTime = 0.3
	ip.Badger = "memory"
	measured, expected, err := RunDiocotron(context.Background(), ip, 0, 0.3)
	require.NoError(t, err)
	assert.InDelta(t, 0.17963, expected, 1.e-4)
	assert.False(t, math.IsNaN(measured))

	ip.Mapping = "czarny"
	_, _, err = RunDiocotron(context.Background(), ip, 0, 0.3)
	assert.ErrorContains(t, err, "circular")
}

func TestHelpers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRow(&buf, 20, 40, 0.1, 1.5e-6, 2.e-3))
	assert.Equal(t, "20,40,0.1,1.5000000000e-06,2.0000000000e-03\n", buf.String())

	assert.NoError(t, setupLogging("debug"))
	assert.Error(t, setupLogging("loud"))
	assert.NoError(t, setupLogging("info"))

	d := DiocotronDefaults()
	nr, nt := d.Mesh()
	assert.Equal(t, 128, nr)
	assert.Equal(t, 256, nt)
	assert.Equal(t, 400, d.Steps())
}
