package stats_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"pycnolab/pressure-rig/internal/interval"
	"pycnolab/pressure-rig/internal/stats"
)

func fullInterval(start, end float64) interval.Interval {
	var iv interval.Interval
	iv.SetBoth(start, end)
	return iv
}

func TestComputeCoversFullRange(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	pressures := []float64{1.0, 2.0, 3.0, 4.0}

	result, ok := stats.Compute(times, pressures, fullInterval(0, 3))
	require.True(t, ok)
	require.Equal(t, 4, result.Count)
	require.InDelta(t, 2.5, result.Mean, 1e-12)
}

func TestComputeDisjointIntervalIsEmpty(t *testing.T) {
	times := []float64{0, 1, 2}
	pressures := []float64{1.0, 1.0, 1.0}

	_, ok := stats.Compute(times, pressures, fullInterval(10, 20))
	require.False(t, ok)
}

func TestComputeIncompleteIntervalIsEmpty(t *testing.T) {
	times := []float64{0, 1}
	pressures := []float64{1.0, 1.0}

	var onlyStart interval.Interval
	onlyStart.SetStart(0)
	_, ok := stats.Compute(times, pressures, onlyStart)
	require.False(t, ok)

	_, ok = stats.Compute(times, pressures, interval.Interval{})
	require.False(t, ok)
}

func TestComputeSingleSampleStdIsZero(t *testing.T) {
	times := []float64{0, 1, 2}
	pressures := []float64{1.0, 5.0, 9.0}

	result, ok := stats.Compute(times, pressures, fullInterval(1, 1))
	require.True(t, ok)
	require.Equal(t, 1, result.Count)
	require.Equal(t, 5.0, result.Mean)
	require.Zero(t, result.Std)
}

func TestComputeBoundsAreInclusive(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	pressures := []float64{1, 2, 3, 4}

	result, ok := stats.Compute(times, pressures, fullInterval(1, 2))
	require.True(t, ok)
	require.Equal(t, 2, result.Count)
}

func TestComputePressureDropScenario(t *testing.T) {
	times := []float64{0.0, 1.0, 2.0, 3.0}
	pressures := []float64{1.013, 1.012, 0.41, 0.40}

	initial, ok := stats.Compute(times, pressures, fullInterval(0.0, 1.0))
	require.True(t, ok)
	require.Equal(t, 2, initial.Count)
	require.InDelta(t, 1.0125, initial.Mean, 1e-9)

	final, ok := stats.Compute(times, pressures, fullInterval(2.0, 3.0))
	require.True(t, ok)
	require.Equal(t, 2, final.Count)
	require.InDelta(t, 0.405, final.Mean, 1e-9)
}

func TestComputePopulationStd(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	pressures := []float64{2, 4, 4, 6}

	result, ok := stats.Compute(times, pressures, fullInterval(0, 3))
	require.True(t, ok)
	// Population std: sqrt(((2-4)^2 + 0 + 0 + (6-4)^2) / 4) = sqrt(2).
	require.InDelta(t, math.Sqrt2, result.Std, 1e-12)
}
