// Package stats computes summary statistics over a selected time window of
// the recording.
package stats

import (
	"math"

	"pycnolab/pressure-rig/internal/interval"
)

// Result summarizes the samples inside one interval. Std is the population
// standard deviation, so a single-sample window reports exactly 0.
type Result struct {
	Count int
	Mean  float64
	Std   float64
}

// Compute filters the snapshot to samples whose timestamp lies in
// [iv.Start, iv.End] inclusive. ok is false when the interval is missing a
// bound or no sample falls inside it; callers render that as "N/A" rather
// than an error.
func Compute(times, pressures []float64, iv interval.Interval) (Result, bool) {
	if !iv.Complete() {
		return Result{}, false
	}

	var count int
	var sum float64
	for i, t := range times {
		if t >= iv.Start && t <= iv.End {
			sum += pressures[i]
			count++
		}
	}
	if count == 0 {
		return Result{}, false
	}
	mean := sum / float64(count)

	var sq float64
	for i, t := range times {
		if t >= iv.Start && t <= iv.End {
			d := pressures[i] - mean
			sq += d * d
		}
	}

	return Result{
		Count: count,
		Mean:  mean,
		Std:   math.Sqrt(sq / float64(count)),
	}, true
}
