package acquire

import (
	"errors"
	"math/rand"
	"time"
)

// ErrMalformedLine marks a device line that did not parse as a pressure
// reading. Callers discard the sample and keep reading; boards tend to
// interleave boot banners and debug prints with the data stream.
var ErrMalformedLine = errors.New("acquire: line is not a pressure value")

// ErrNoData means the source had nothing to deliver within its read
// timeout. Expected whenever the device is idle, so not worth logging.
var ErrNoData = errors.New("acquire: no data before read timeout")

// Source produces pressure readings, one per call. Next blocks until a
// reading is available or the source's read timeout elapses.
type Source interface {
	// Start tells the device to begin streaming. A no-op for sources
	// with no control plane.
	Start() error
	// Next returns the next pressure reading in bar.
	Next() (float64, error)
	// Stop tells the device to stop streaming. The source stays usable
	// for a later Start.
	Stop() error
	Close() error
}

// SimSource synthesizes a pressure trace shaped like a real run: a stable
// atmospheric baseline, then a drop once the valve to the sample chamber
// would open, with gaussian sensor noise on top.
type SimSource struct {
	rate    float64
	started time.Time

	now   func() time.Time
	sleep func(time.Duration)
	rng   *rand.Rand
}

const (
	simBaselineBar  = 1.013
	simDroppedBar   = 0.40
	simValveOpenSec = 6.0
	simNoiseSigma   = 0.002
)

// NewSimSource paces readings at sampleRate Hz. Passing seed 0 seeds from
// the clock.
func NewSimSource(sampleRate float64, seed int64) *SimSource {
	if sampleRate < 1 {
		sampleRate = 1
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimSource{
		rate:  sampleRate,
		now:   time.Now,
		sleep: time.Sleep,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (s *SimSource) Start() error {
	s.started = s.now()
	return nil
}

func (s *SimSource) Next() (float64, error) {
	s.sleep(time.Duration(float64(time.Second) / s.rate))
	elapsed := s.now().Sub(s.started).Seconds()
	base := simBaselineBar
	if elapsed >= simValveOpenSec {
		base = simDroppedBar
	}
	return base + s.rng.NormFloat64()*simNoiseSigma, nil
}

func (s *SimSource) Stop() error  { return nil }
func (s *SimSource) Close() error { return nil }
