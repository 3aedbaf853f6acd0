// Package app is the core the presentation layer talks to. It owns the
// acquisition state machine, the sample store, the interval selector and
// the last computed kernel volume, and exposes everything the UI needs
// through plain method calls plus two advisory callbacks.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pycnolab/pressure-rig/internal/acquire"
	"pycnolab/pressure-rig/internal/export"
	"pycnolab/pressure-rig/internal/interval"
	"pycnolab/pressure-rig/internal/stats"
	"pycnolab/pressure-rig/internal/store"
	"pycnolab/pressure-rig/internal/volume"
)

// State is the acquisition state. Exactly one loop goroutine exists per
// Running period.
type State int

const (
	Idle State = iota
	Running
)

var (
	// ErrMissingIntervals rejects a volume computation before evaluation
	// when either interval has no statistics.
	ErrMissingIntervals = errors.New("app: select both intervals before computing")
	// ErrNoSamples rejects an export of an empty store.
	ErrNoSamples = errors.New("app: no samples to export")
)

type Config struct {
	// PortName is a device path, or acquire.AutoPort to probe every
	// enumerated port. Ignored when Simulate is set.
	PortName   string
	BaudRate   int
	SampleRate float64
	VChamber   float64
	// Formula is the default kernel-volume expression, used when the
	// operator submits an empty one.
	Formula string
	// AveragesPath, when non-empty, is the running log every successful
	// computation is appended to.
	AveragesPath string
	Simulate     bool
}

// Callbacks is the surface the presentation layer registers. Both are
// invoked without payload state worth trusting: a redraw handler should
// re-read Snapshot, an interval handler receives the new value but may
// equally re-query. OnSamplesUpdated is called from the acquisition
// goroutine.
type Callbacks struct {
	OnSamplesUpdated  func()
	OnIntervalChanged func(interval.Which, interval.Interval)
}

type App struct {
	cfg    Config
	logger *zap.Logger
	cb     Callbacks

	store    *store.Store
	selector *interval.Selector

	mu         sync.Mutex
	state      State
	cancelLoop context.CancelFunc
	loopDone   chan struct{}
	serial     *acquire.SerialSource
	runID      string
	lastVolume float64
	hasVolume  bool
}

func New(cfg Config, cb Callbacks, logger *zap.Logger) *App {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 10
	}
	if cfg.Formula == "" {
		cfg.Formula = volume.DefaultFormula
	}
	if cb.OnSamplesUpdated == nil {
		cb.OnSamplesUpdated = func() {}
	}
	if cb.OnIntervalChanged == nil {
		cb.OnIntervalChanged = func(interval.Which, interval.Interval) {}
	}
	return &App{
		cfg:      cfg,
		logger:   logger,
		cb:       cb,
		store:    store.NewStore(),
		selector: interval.NewSelector(),
	}
}

func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Store exposes the sample store for read-only collaborators such as the
// live feed.
func (a *App) Store() *store.Store {
	return a.store
}

// Start begins an acquisition run. Calling it while already Running is a
// no-op. A previous run's samples are discarded; the selected intervals
// are kept, matching how an operator re-runs the same rig setup. When the
// device cannot be opened the run falls back to simulation with a warning
// instead of failing.
func (a *App) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Running {
		return
	}

	a.store.Clear()
	a.runID = uuid.NewString()
	source := a.pickSource()

	loopCtx, cancel := context.WithCancel(ctx)
	a.cancelLoop = cancel
	a.loopDone = make(chan struct{})
	a.state = Running

	logger := a.logger.With(zap.String("runID", a.runID))
	loop := acquire.NewLoop(source, a.store, a.cfg.SampleRate, a.cb.OnSamplesUpdated, logger)
	logger.Info("[app] acquisition started", zap.Bool("simulated", a.serial == nil || a.cfg.Simulate))

	done := a.loopDone
	go func() {
		defer close(done)
		loop.Run(loopCtx)
	}()
}

// pickSource returns the serial source when one is configured and can be
// opened, reusing the connection across runs, and a simulated source
// otherwise. Called with a.mu held.
func (a *App) pickSource() acquire.Source {
	if a.cfg.Simulate {
		return acquire.NewSimSource(a.cfg.SampleRate, 0)
	}
	if a.serial != nil {
		return a.serial
	}
	serialSource, err := acquire.OpenSerial(a.cfg.PortName, a.cfg.BaudRate, a.logger)
	if err != nil {
		a.logger.Warn("[app] device unavailable, falling back to simulation", zap.Error(err))
		return acquire.NewSimSource(a.cfg.SampleRate, 0)
	}
	a.serial = serialSource
	return serialSource
}

// Stop ends the current run and blocks until the loop has sent the stop
// command and issued its final redraw. A no-op when Idle.
func (a *App) Stop() {
	a.mu.Lock()
	if a.state != Running {
		a.mu.Unlock()
		return
	}
	cancel, done := a.cancelLoop, a.loopDone
	a.mu.Unlock()

	cancel()
	<-done

	a.mu.Lock()
	a.state = Idle
	a.mu.Unlock()
	a.logger.Info("[app] acquisition stopped", zap.Int("samples", a.store.Len()))
}

// Close stops any run and releases the device connection.
func (a *App) Close() {
	a.Stop()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.serial != nil {
		if err := a.serial.Close(); err != nil {
			a.logger.Warn("[app] error closing serial port", zap.Error(err))
		}
		a.serial = nil
	}
}

// AppendSample records one externally produced sample, timestamped by the
// caller. Lets the presentation layer replay a recorded trace through the
// same selection and statistics path as a live run.
func (a *App) AppendSample(timeS, pressure float64) {
	a.store.Append(timeS, pressure)
}

// Snapshot returns a consistent copy of all acquired samples.
func (a *App) Snapshot() (times, pressures []float64) {
	return a.store.Snapshot()
}

// Clear discards all samples and both intervals. The store's own lock
// keeps this atomic with respect to a running acquisition loop.
func (a *App) Clear() {
	a.store.Clear()
	a.mu.Lock()
	a.selector.Reset()
	a.mu.Unlock()

	a.cb.OnIntervalChanged(interval.Initial, interval.Interval{})
	a.cb.OnIntervalChanged(interval.Final, interval.Interval{})
	a.cb.OnSamplesUpdated()
}

// ArmClickMode binds the next PlotClick to set one interval endpoint.
func (a *App) ArmClickMode(e interval.Endpoint) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selector.Arm(e)
}

// PlotClick applies the armed click-mode endpoint at plot time t. Returns
// false when no endpoint was armed.
func (a *App) PlotClick(t float64) bool {
	a.mu.Lock()
	which, iv, ok := a.selector.Click(t)
	a.mu.Unlock()
	if ok {
		a.cb.OnIntervalChanged(which, iv)
	}
	return ok
}

// DragSelect sets both bounds of one interval from a drag gesture.
func (a *App) DragSelect(w interval.Which, from, to float64) {
	a.mu.Lock()
	iv := a.selector.Drag(w, from, to)
	a.mu.Unlock()
	a.cb.OnIntervalChanged(w, iv)
}

// Interval returns the current value of one interval.
func (a *App) Interval(w interval.Which) interval.Interval {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selector.Get(w)
}

// AutoDetect scans the recording for the two stable regions and, on
// success, replaces both intervals. On failure the intervals are left
// untouched and the error is returned for the UI to display.
func (a *App) AutoDetect() error {
	times, pressures := a.store.Snapshot()
	initial, final, err := interval.AutoDetect(times, pressures, a.cfg.SampleRate)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.selector.Set(interval.Initial, initial)
	a.selector.Set(interval.Final, final)
	a.mu.Unlock()

	a.cb.OnIntervalChanged(interval.Initial, initial)
	a.cb.OnIntervalChanged(interval.Final, final)
	return nil
}

// ComputeStatistics summarizes the samples inside one interval. ok is
// false when the interval is incomplete or empty; the UI renders "N/A".
func (a *App) ComputeStatistics(w interval.Which) (stats.Result, bool) {
	times, pressures := a.store.Snapshot()
	return stats.Compute(times, pressures, a.Interval(w))
}

// EvaluateFormula computes the kernel volume from the two interval means.
// An empty formula uses the configured default. Both intervals must have
// statistics, otherwise ErrMissingIntervals is returned before any
// evaluation. On evaluation failure the previously displayed result is
// retained. Successful computations are appended to the averages log.
func (a *App) EvaluateFormula(formula string) (float64, error) {
	if formula == "" {
		formula = a.cfg.Formula
	}

	times, pressures := a.store.Snapshot()
	p1, ok1 := stats.Compute(times, pressures, a.Interval(interval.Initial))
	p2, ok2 := stats.Compute(times, pressures, a.Interval(interval.Final))
	if !ok1 || !ok2 {
		return 0, ErrMissingIntervals
	}

	result, err := volume.Evaluate(p1.Mean, p2.Mean, a.cfg.VChamber, formula)
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	a.lastVolume = result
	a.hasVolume = true
	runID := a.runID
	a.mu.Unlock()

	a.logger.Info("[app] kernel volume computed",
		zap.Float64("p1Mean", p1.Mean),
		zap.Float64("p2Mean", p2.Mean),
		zap.Float64("vChamber", a.cfg.VChamber),
		zap.Float64("kernelVolume", result),
	)

	if a.cfg.AveragesPath != "" {
		entry := export.AveragesEntry{
			RunID:    runID,
			When:     time.Now(),
			P1Mean:   p1.Mean,
			P1Std:    p1.Std,
			P2Mean:   p2.Mean,
			P2Std:    p2.Std,
			VChamber: a.cfg.VChamber,
			Formula:  formula,
			Volume:   result,
		}
		if err := export.AppendAveragesLog(a.cfg.AveragesPath, entry); err != nil {
			a.logger.Warn("[app] could not append averages log", zap.Error(err))
		}
	}
	return result, nil
}

// LastVolume returns the most recent successful computation, if any.
func (a *App) LastVolume() (float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastVolume, a.hasVolume
}

// ExportCSV saves the raw trace. The in-memory data is never affected by
// a failed write.
func (a *App) ExportCSV(path string) error {
	times, pressures := a.store.Snapshot()
	if len(times) == 0 {
		return ErrNoSamples
	}
	if err := export.SaveCSV(path, times, pressures); err != nil {
		return err
	}
	a.logger.Info("[app] exported samples", zap.String("path", path), zap.Int("rows", len(times)))
	return nil
}
