package acquire

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pycnolab/pressure-rig/internal/store"
)

type scriptedReading struct {
	value float64
	err   error
}

// scriptedSource replays a fixed sequence of readings, then reports
// timeouts forever.
type scriptedSource struct {
	mu       sync.Mutex
	readings []scriptedReading
	idx      int
	started  bool
	stopped  bool
}

func (s *scriptedSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

func (s *scriptedSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *scriptedSource) Close() error { return nil }

func (s *scriptedSource) Next() (float64, error) {
	s.mu.Lock()
	if s.idx >= len(s.readings) {
		s.mu.Unlock()
		time.Sleep(time.Millisecond)
		return 0, ErrNoData
	}
	r := s.readings[s.idx]
	s.idx++
	s.mu.Unlock()
	return r.value, r.err
}

func (s *scriptedSource) flags() (started, stopped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started, s.stopped
}

func TestLoopAppendsAndNotifies(t *testing.T) {
	source := &scriptedSource{readings: []scriptedReading{
		{value: 1.013},
		{value: 1.012},
		{err: ErrMalformedLine}, // device log noise, dropped silently
		{value: 0.410},
		{value: 0.400},
	}}
	st := store.NewStore()
	var notifies atomic.Int64

	// Rate 4 signals a redraw every 2 accepted samples.
	loop := NewLoop(source, st, 4, func() { notifies.Add(1) }, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx)
	}()

	require.Eventually(t, func() bool { return st.Len() == 4 }, time.Second, time.Millisecond)
	cancel()
	<-done

	times, pressures := st.Snapshot()
	require.Equal(t, []float64{1.013, 1.012, 0.410, 0.400}, pressures)
	for i := 1; i < len(times); i++ {
		require.GreaterOrEqual(t, times[i], times[i-1], "timestamps must be monotonic")
	}

	started, stopped := source.flags()
	require.True(t, started, "loop must send the start command on entry")
	require.True(t, stopped, "loop must send the stop command on exit")

	// Two periodic signals (after samples 2 and 4) plus the final one.
	require.Equal(t, int64(3), notifies.Load())
}

func TestLoopSurvivesReadErrors(t *testing.T) {
	source := &scriptedSource{readings: []scriptedReading{
		{value: 1.0},
		{err: context.DeadlineExceeded}, // any transient I/O failure
		{value: 2.0},
	}}
	st := store.NewStore()
	loop := NewLoop(source, st, 10, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx)
	}()

	require.Eventually(t, func() bool { return st.Len() == 2 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

func TestLoopStopsPromptlyWhenCancelled(t *testing.T) {
	source := &scriptedSource{}
	loop := NewLoop(source, store.NewStore(), 10, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not observe cancellation")
	}
}
