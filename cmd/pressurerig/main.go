// Command pressurerig runs a headless acquisition session: it captures
// pressure samples from the board (or the simulator), and on shutdown
// auto-detects the stable intervals, computes their statistics, evaluates
// the kernel-volume formula and exports the raw trace to CSV. A graphical
// front end drives the same internal/app surface instead of this wiring.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pycnolab/pressure-rig/internal/acquire"
	"pycnolab/pressure-rig/internal/app"
	"pycnolab/pressure-rig/internal/feed"
	"pycnolab/pressure-rig/internal/interval"
	"pycnolab/pressure-rig/internal/logger"
	"pycnolab/pressure-rig/internal/volume"
)

const feedPeriod = 100 * time.Millisecond

func main() {
	var (
		portName     = flag.String("port", acquire.AutoPort, "serial port path, or \"auto\" to probe")
		baudRate     = flag.Int("baud", 9600, "serial baud rate")
		sampleRate   = flag.Float64("rate", 10, "target sample rate in Hz (simulation pacing and redraw cadence)")
		simulate     = flag.Bool("sim", false, "synthesize data instead of reading the device")
		duration     = flag.Duration("duration", 0, "stop after this long (0 = run until interrupted)")
		csvPath      = flag.String("out", "pressure.csv", "CSV path for the raw trace")
		averagesPath = flag.String("averages", "averages.csv", "running log of volume computations")
		vChamber     = flag.Float64("vchamber", 100.0, "chamber volume")
		formula      = flag.String("formula", volume.DefaultFormula, "kernel-volume formula over P1, P2, V_chamber")
		feedAddr     = flag.String("feed", "", "UDP address for the live influx feed (empty = disabled)")
		logPath      = flag.String("log", "pressurerig.logs", "log file path")
	)
	flag.Parse()

	log, err := logger.NewLogger(*logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	core := app.New(app.Config{
		PortName:     *portName,
		BaudRate:     *baudRate,
		SampleRate:   *sampleRate,
		VChamber:     *vChamber,
		Formula:      *formula,
		AveragesPath: *averagesPath,
		Simulate:     *simulate,
	}, app.Callbacks{}, log)
	defer core.Close()

	if *feedAddr != "" {
		udpAddr, err := net.ResolveUDPAddr("udp", *feedAddr)
		if err != nil {
			log.Fatal("invalid feed address", zap.Error(err), zap.String("addr", *feedAddr))
		}
		udpConn, err := net.DialUDP("udp", nil, udpAddr)
		if err != nil {
			log.Fatal("could not dial feed address", zap.Error(err), zap.String("addr", *feedAddr))
		}
		defer udpConn.Close()
		go feed.NewFeed(feedPeriod, udpConn, core.Store(), log).Run(ctx)
	}

	core.Start(ctx)

	if *duration > 0 {
		select {
		case <-sigCh:
		case <-time.After(*duration):
		}
	} else {
		<-sigCh
	}
	core.Stop()

	if err := summarize(core, *formula); err != nil {
		log.Warn("could not summarize run", zap.Error(err))
	}

	if err := core.ExportCSV(*csvPath); err != nil {
		log.Error("could not export CSV", zap.Error(err), zap.String("path", *csvPath))
	}
}

// summarize mirrors what the plot UI shows after a run: the detected
// intervals, their statistics and the computed kernel volume.
func summarize(core *app.App, formula string) error {
	if err := core.AutoDetect(); err != nil {
		return err
	}

	for _, w := range []interval.Which{interval.Initial, interval.Final} {
		iv := core.Interval(w)
		result, ok := core.ComputeStatistics(w)
		if !ok {
			fmt.Printf("%s interval: N/A\n", w)
			continue
		}
		fmt.Printf("%s interval [%.2f, %.2f]s: n=%d mean=%.6g std=%.6g\n",
			w, iv.Start, iv.End, result.Count, result.Mean, result.Std)
	}

	kernelVolume, err := core.EvaluateFormula(formula)
	if err != nil {
		return err
	}
	fmt.Printf("kernel volume: %.6g\n", kernelVolume)
	return nil
}
