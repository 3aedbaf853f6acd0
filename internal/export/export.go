// Package export writes acquisition data to disk: the raw time/pressure
// trace as CSV and a running log of kernel-volume computations.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"
)

// WriteCSV writes the snapshot with header "time_s,pressure", both fields
// to 6 decimal places.
func WriteCSV(w io.Writer, times, pressures []float64) error {
	if len(times) != len(pressures) {
		return fmt.Errorf("export: mismatched snapshot lengths %d and %d", len(times), len(pressures))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time_s", "pressure"}); err != nil {
		return err
	}
	for i := range times {
		row := []string{
			fmt.Sprintf("%.6f", times[i]),
			fmt.Sprintf("%.6f", pressures[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the snapshot to path. On any failure the in-memory data
// is untouched; the caller just reports the error.
func SaveCSV(path string, times, pressures []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, times, pressures); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// AveragesEntry is one completed kernel-volume computation.
type AveragesEntry struct {
	RunID    string
	When     time.Time
	P1Mean   float64
	P1Std    float64
	P2Mean   float64
	P2Std    float64
	VChamber float64
	Formula  string
	Volume   float64
}

var averagesHeader = []string{
	"timestamp", "run_id", "p1_mean", "p1_std", "p2_mean", "p2_std",
	"v_chamber", "formula", "kernel_volume",
}

// AppendAveragesLog appends one entry to the averages log at path,
// creating the file with a header row when it does not exist yet.
func AppendAveragesLog(path string, entry AveragesEntry) error {
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if writeHeader {
		if err := cw.Write(averagesHeader); err != nil {
			f.Close()
			return err
		}
	}
	row := []string{
		entry.When.Format(time.RFC3339),
		entry.RunID,
		fmt.Sprintf("%.6f", entry.P1Mean),
		fmt.Sprintf("%.6f", entry.P1Std),
		fmt.Sprintf("%.6f", entry.P2Mean),
		fmt.Sprintf("%.6f", entry.P2Std),
		fmt.Sprintf("%.6f", entry.VChamber),
		entry.Formula,
		fmt.Sprintf("%.6f", entry.Volume),
	}
	if err := cw.Write(row); err != nil {
		f.Close()
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
