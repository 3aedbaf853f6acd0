package feed

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"pycnolab/pressure-rig/internal/store"
)

const measurementName = "pressure"

// Feed periodically pushes the latest reading to a telegraf-style UDP
// listener in influx line protocol, so an external dashboard can follow
// the run live without touching the core. Losing datagrams is fine; the
// store stays the source of truth.
type Feed struct {
	period time.Duration
	conn   *net.UDPConn
	store  *store.Store
	logger *zap.Logger
}

func NewFeed(period time.Duration, conn *net.UDPConn, st *store.Store, logger *zap.Logger) *Feed {
	return &Feed{
		period: period,
		conn:   conn,
		store:  st,
		logger: logger,
	}
}

// Run publishes until ctx is done.
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("[feed] exiting from feed loop")
			return
		case <-ticker.C:
			f.publishLatest()
		}
	}
}

func (f *Feed) publishLatest() {
	times, pressures := f.store.Snapshot()
	if len(times) == 0 {
		return
	}
	last := len(times) - 1
	line := FormatLine(times[last], pressures[last], time.Now())

	if err := f.sendToUDPConn(line); err != nil {
		f.logger.Warn("[feed] error writing data to UDP connection", zap.Error(err))
	}
}

// FormatLine renders one influx line protocol record.
func FormatLine(elapsed, pressure float64, now time.Time) string {
	return fmt.Sprintf("%s value=%.6f,elapsed=%.6f %d", measurementName, pressure, elapsed, now.UnixNano())
}

func (f *Feed) sendToUDPConn(formattedData string) error {
	payload := []byte(formattedData)
	totalWritten := 0
	for totalWritten < len(payload) {
		n, err := f.conn.Write(payload[totalWritten:])
		if err != nil {
			return err
		}
		totalWritten += n
	}
	return nil
}
