package acquire

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"pycnolab/pressure-rig/internal/store"
)

// Loop pulls readings from a Source, timestamps them against the run start
// and appends them to the store. It runs until its context is cancelled;
// read failures are never fatal.
type Loop struct {
	source Source
	store  *store.Store
	logger *zap.Logger

	// notifyEvery is how many accepted samples go by between redraw
	// signals. The signal carries no payload; listeners re-read the store.
	notifyEvery int
	notify      func()

	now func() time.Time
}

// NewLoop signals notify every max(1, sampleRate/2) accepted samples,
// matching a redraw roughly twice per second at the target rate.
func NewLoop(source Source, st *store.Store, sampleRate float64, notify func(), logger *zap.Logger) *Loop {
	every := int(sampleRate / 2)
	if every < 1 {
		every = 1
	}
	if notify == nil {
		notify = func() {}
	}
	return &Loop{
		source:      source,
		store:       st,
		logger:      logger,
		notifyEvery: every,
		notify:      notify,
		now:         time.Now,
	}
}

// Run acquires until ctx is done. On entry it signals the device to start;
// on exit it signals stop and issues one final redraw. Malformed lines are
// discarded without logging, other read errors are logged and skipped.
func (l *Loop) Run(ctx context.Context) {
	if err := l.source.Start(); err != nil {
		l.logger.Warn("[acquire] could not send start command", zap.Error(err))
	}
	startRef := l.now()
	accepted := 0

	defer func() {
		if err := l.source.Stop(); err != nil {
			l.logger.Warn("[acquire] could not send stop command", zap.Error(err))
		}
		l.notify()
		l.logger.Info("[acquire] loop stopped", zap.Int("samples", accepted))
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pressure, err := l.source.Next()
		if err != nil {
			if !errors.Is(err, ErrMalformedLine) && !errors.Is(err, ErrNoData) {
				l.logger.Warn("[acquire] read failed, skipping sample", zap.Error(err))
			}
			continue
		}

		elapsed := l.now().Sub(startRef).Seconds()
		l.store.Append(elapsed, pressure)
		accepted++
		if accepted%l.notifyEvery == 0 {
			l.notify()
		}
	}
}
