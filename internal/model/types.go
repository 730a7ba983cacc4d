/*
PURPOSE:
  Defines the per-model summary row written by the batch runner.
  One row per validated (or failed) model artifact.

REQUIREMENTS:
  User-specified:
  - Record which models validated, how fast they ran and why a model failed.

  Implementation-discovered:
  - Need JSON tags for the JSON Lines summary.
  - CSV columns are mapped explicitly in internal/output/csv.go.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Use time.Time for timestamps, Decimal for measurements.

USAGE:
  res := model.Result{...}

SELF-HEALING INSTRUCTIONS:
  - If new summary columns are needed, add field and update CSV/JSON writers.

RELATED FILES:
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update when adding new columns to the batch summary.
*/

package model

import (
	"time"
)

// Status values of a Result.
const (
	StatusValidated  = "validated"
	StatusLoadFailed = "load_failed"
)

// Result represents the outcome of validating one model in a batch.
type Result struct {
	RunID     string    `json:"run_id"`
	Model     string    `json:"model"`
	Path      string    `json:"path"`
	Modality  Modality  `json:"modality"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`

	SizeMB          Decimal `json:"size_mb"`
	MeanTimeMS      Decimal `json:"mean_time_ms"`
	FPS             Decimal `json:"fps"`
	IsDeterministic *bool   `json:"is_deterministic,omitempty"`
	PeakMemoryMB    Decimal `json:"peak_memory_mb"`
	FailedChecks    int     `json:"failed_checks"`

	ReportPath string `json:"report_path,omitempty"`
	Error      string `json:"error,omitempty"` // load or persist failure
}
