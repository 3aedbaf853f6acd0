package acquire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock drives a SimSource without real sleeping.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time        { return c.current }
func (c *fakeClock) sleep(d time.Duration) { c.current = c.current.Add(d) }

func newFakeSim(rate float64, seed int64) (*SimSource, *fakeClock) {
	clock := &fakeClock{current: time.Unix(1000, 0)}
	s := NewSimSource(rate, seed)
	s.now = clock.now
	s.sleep = clock.sleep
	return s, clock
}

func TestSimSourceBaselineThenDrop(t *testing.T) {
	s, clock := newFakeSim(10, 42)
	require.NoError(t, s.Start())

	for i := 0; i < 20; i++ {
		v, err := s.Next()
		require.NoError(t, err)
		require.InDelta(t, simBaselineBar, v, 0.02, "reading %d should sit on the baseline", i)
	}

	clock.current = clock.current.Add(10 * time.Second)
	for i := 0; i < 20; i++ {
		v, err := s.Next()
		require.NoError(t, err)
		require.InDelta(t, simDroppedBar, v, 0.02, "reading %d should sit on the dropped level", i)
	}
}

func TestSimSourcePacing(t *testing.T) {
	s, clock := newFakeSim(10, 1)
	require.NoError(t, s.Start())

	before := clock.current
	_, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, 100*time.Millisecond, clock.current.Sub(before))
}

func TestSimSourceDeterministicWithSeed(t *testing.T) {
	a, _ := newFakeSim(10, 7)
	b, _ := newFakeSim(10, 7)
	require.NoError(t, a.Start())
	require.NoError(t, b.Start())

	for i := 0; i < 50; i++ {
		va, err := a.Next()
		require.NoError(t, err)
		vb, err := b.Next()
		require.NoError(t, err)
		require.Equal(t, va, vb)
	}
}
