package interval

import "fmt"

// Which names one of the two operator-selected intervals: the initial
// (atmosphere) window and the final (after valve open) window.
type Which int

const (
	Initial Which = iota
	Final
)

func (w Which) String() string {
	switch w {
	case Initial:
		return "initial"
	case Final:
		return "final"
	}
	return fmt.Sprintf("Which(%d)", int(w))
}

// Endpoint is a click-mode target: the single interval bound the next plot
// click will set.
type Endpoint int

const (
	EndpointNone Endpoint = iota
	InitialStart
	InitialEnd
	FinalStart
	FinalEnd
)

// Interval is a closed time window over the recording. Either bound may be
// unset; statistics are only computed once both are present.
type Interval struct {
	Start, End       float64
	HasStart, HasEnd bool
}

func (iv Interval) Complete() bool {
	return iv.HasStart && iv.HasEnd
}

// SetBoth assigns both bounds at once, order-corrected, as a drag gesture
// does.
func (iv *Interval) SetBoth(a, b float64) {
	if a > b {
		a, b = b, a
	}
	iv.Start, iv.End = a, b
	iv.HasStart, iv.HasEnd = true, true
}

func (iv *Interval) SetStart(t float64) {
	iv.Start = t
	iv.HasStart = true
	iv.normalize()
}

func (iv *Interval) SetEnd(t float64) {
	iv.End = t
	iv.HasEnd = true
	iv.normalize()
}

// normalize swaps the bounds when both are set and inverted, keeping
// Start <= End as an invariant visible to every reader.
func (iv *Interval) normalize() {
	if iv.Complete() && iv.Start > iv.End {
		iv.Start, iv.End = iv.End, iv.Start
	}
}

// Selector holds the two intervals and the armed click-mode endpoint. It
// is mutated only from the interaction thread; the acquisition loop never
// touches it.
type Selector struct {
	initial Interval
	final   Interval
	armed   Endpoint
}

func NewSelector() *Selector {
	return &Selector{}
}

func (s *Selector) Get(w Which) Interval {
	if w == Initial {
		return s.initial
	}
	return s.final
}

// Set replaces an interval wholesale, as auto-detect does.
func (s *Selector) Set(w Which, iv Interval) {
	if w == Initial {
		s.initial = iv
	} else {
		s.final = iv
	}
}

// Drag applies a drag-selection: both bounds of one interval at once.
func (s *Selector) Drag(w Which, a, b float64) Interval {
	var iv *Interval
	if w == Initial {
		iv = &s.initial
	} else {
		iv = &s.final
	}
	iv.SetBoth(a, b)
	return *iv
}

// Arm puts the selector in click-mode: the next Click sets endpoint e.
func (s *Selector) Arm(e Endpoint) {
	s.armed = e
}

func (s *Selector) Armed() Endpoint {
	return s.armed
}

// Click applies the armed endpoint at time t and disarms. Returns which
// interval changed, or ok=false when no endpoint was armed.
func (s *Selector) Click(t float64) (Which, Interval, bool) {
	armed := s.armed
	s.armed = EndpointNone

	var w Which
	switch armed {
	case InitialStart:
		w = Initial
		s.initial.SetStart(t)
	case InitialEnd:
		w = Initial
		s.initial.SetEnd(t)
	case FinalStart:
		w = Final
		s.final.SetStart(t)
	case FinalEnd:
		w = Final
		s.final.SetEnd(t)
	default:
		return 0, Interval{}, false
	}
	return w, s.Get(w), true
}

// Reset clears both intervals and any armed endpoint.
func (s *Selector) Reset() {
	s.initial = Interval{}
	s.final = Interval{}
	s.armed = EndpointNone
}
