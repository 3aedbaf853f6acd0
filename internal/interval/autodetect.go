package interval

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrInsufficientData means too few samples to scan for stable regions.
	ErrInsufficientData = errors.New("interval: not enough samples for auto-detect")
	// ErrNoStableRegions means the scan found no usable pair of windows.
	ErrNoStableRegions = errors.New("interval: no two stable regions found")
)

const minAutoDetectSamples = 10

// AutoDetect scans the recording for two non-overlapping low-variance
// windows: the first stable stretch from the start (the atmosphere
// baseline) and the last stable stretch from the end (the settled pressure
// after the valve opened). Stability is a rolling standard deviation at or
// below the 20th percentile of all rolling deviations. On failure the
// caller's intervals are untouched because nothing is mutated here.
func AutoDetect(times, pressures []float64, sampleRate float64) (initial, final Interval, err error) {
	n := len(pressures)
	if n < minAutoDetectSamples || len(times) != n {
		return initial, final, ErrInsufficientData
	}

	window := int(0.5 * sampleRate)
	if window < 3 {
		window = 3
	}

	stds := rollingStd(pressures, window)
	threshold := percentile(stds, 20)

	startIdx := -1
	for i := 0; i+window <= len(stds); i++ {
		if allBelow(stds[i:i+window], threshold) {
			startIdx = i
			break
		}
	}
	endIdx := -1
	for i := len(stds) - 1; i >= window-1; i-- {
		if allBelow(stds[i-window+1:i+1], threshold) {
			endIdx = i
			break
		}
	}

	if startIdx < 0 || endIdx < 0 || startIdx >= endIdx {
		return initial, final, ErrNoStableRegions
	}

	initial.SetBoth(times[startIdx], times[min(n-1, startIdx+window-1)])
	final.SetBoth(times[max(0, endIdx-window+1)], times[endIdx])
	return initial, final, nil
}

// rollingStd computes, for each index, the population standard deviation
// of the trailing window ending there.
func rollingStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		out[i] = populationStd(values[lo : i+1])
	}
	return out
}

func populationStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// percentile uses linear interpolation between closest ranks.
func percentile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func allBelow(values []float64, threshold float64) bool {
	for _, v := range values {
		if v > threshold {
			return false
		}
	}
	return true
}
