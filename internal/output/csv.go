/*
PURPOSE:
  Writes the batch summary to a CSV file, one row per model.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Summary of which models validated, their speed and why others failed.

  Implementation-discovered:
  - A new run overwrites the previous summary.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Result

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Use Mutex if concurrent writes are expected.

USAGE:
  w, err := output.NewCSVWriter("summary.csv")
  w.Write(result)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Result struct changes.
*/

package output

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/daryltucker/model-harness/internal/model"
)

// CSVHeader is the column order of the summary file.
var CSVHeader = []string{
	"run_id", "model", "path", "modality", "status", "timestamp",
	"size_mb", "mean_time_ms", "fps", "is_deterministic", "peak_memory_mb",
	"failed_checks", "report_path", "error",
}

// CSVWriter handles writing results to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single result to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.Result) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	deterministic := ""
	if r.IsDeterministic != nil {
		deterministic = strconv.FormatBool(*r.IsDeterministic)
	}

	record := []string{
		r.RunID,
		r.Model,
		r.Path,
		r.Modality.String(),
		r.Status,
		r.Timestamp.Format(time.RFC3339),
		r.SizeMB.String(),
		r.MeanTimeMS.String(),
		r.FPS.String(),
		deterministic,
		r.PeakMemoryMB.String(),
		strconv.Itoa(r.FailedChecks),
		r.ReportPath,
		r.Error,
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
