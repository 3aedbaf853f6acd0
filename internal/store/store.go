package store

import (
	"sync"
)

// Store holds the acquired samples as two parallel slices: elapsed seconds
// since the run started and the pressure read at that instant. The
// acquisition loop is the only writer; the UI, statistics and export code
// all read through Snapshot so they never see one slice longer than the
// other.
type Store struct {
	mu        sync.RWMutex
	times     []float64
	pressures []float64
}

func NewStore() *Store {
	return &Store{}
}

// Append records one sample. Safe to call concurrently with any reader.
func (s *Store) Append(timeS, pressure float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.times = append(s.times, timeS)
	s.pressures = append(s.pressures, pressure)
}

// Snapshot copies both sequences under a single lock acquisition. The
// returned slices are owned by the caller.
func (s *Store) Snapshot() (times, pressures []float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	times = make([]float64, len(s.times))
	pressures = make([]float64, len(s.pressures))
	copy(times, s.times)
	copy(pressures, s.pressures)
	return times, pressures
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.times)
}

// Clear resets both sequences. The caller must have stopped the
// acquisition loop first.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.times = s.times[:0]
	s.pressures = s.pressures[:0]
}
