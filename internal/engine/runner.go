/*
PURPOSE:
  High-level runner that orchestrates batch validation.
  Loops through model artifacts and validates each one in turn.

REQUIREMENTS:
  User-specified:
  - Validate every model artifact found in a directory.
  - Write one report per model and keep going when a model fails.
  - Log a summary row per model to CSV/JSON.

  Implementation-discovered:
  - Every row and report carries the same run id so a batch can be joined later.
  - A model that validates but fails to persist still counts as validated.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/engine, internal/output

ERROR HANDLING:
  - Logs errors but continues (resilience).
  - Only failing to set up the output directory or summary files aborts the run.

IMPLEMENTATION RULES:
  - Models run strictly one after another.
  - Write the summary row as soon as a model finishes.

USAGE:
  results, err := engine.Run(cfg, targets)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/engine.go
  - internal/output/csv.go

MAINTENANCE:
  - Update iteration logic if parallelism is introduced.
*/

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/daryltucker/model-harness/internal/config"
	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/output"
)

// Target is one model artifact queued for validation.
type Target struct {
	Path     string
	Modality model.Modality
}

// Discover lists the files in dir whose extension is one of exts, sorted by name.
func Discover(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading models dir: %v", model.ErrIO, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if slices.ContainsFunc(exts, func(x string) bool { return strings.EqualFold(x, ext) }) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// ReportPath returns where the report for modelPath is written.
func ReportPath(cfg *config.Config, modelPath string) string {
	stem := strings.TrimSuffix(filepath.Base(modelPath), filepath.Ext(modelPath))
	return filepath.Join(cfg.OutputDir, stem+"_test_report"+cfg.ReportExt())
}

// Run validates every target with a new Engine.
func Run(cfg *config.Config, targets []Target) ([]model.Result, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return e.Run(targets)
}

// Run validates targets in order, persisting a report per model and a
// summary row to <summary_file>.csv and <summary_file>.jsonl.
func (e *Engine) Run(targets []Target) ([]model.Result, error) {
	cfg := e.Config

	// Ensure output directory exists
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	// Setup Outputs
	csvPath := filepath.Join(cfg.OutputDir, cfg.SummaryFile+".csv")
	csvWriter, err := output.NewCSVWriter(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init CSV writer at %s: %w", csvPath, err)
	}
	defer csvWriter.Close()

	jsonPath := filepath.Join(cfg.OutputDir, cfg.SummaryFile+".jsonl")
	jsonWriter, err := output.NewJSONWriter(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init JSON writer at %s: %w", jsonPath, err)
	}
	defer jsonWriter.Close()

	runID := uuid.NewString()
	output.Logger.Info("Starting validation run", "run_id", runID, "models", len(targets))

	results := make([]model.Result, 0, len(targets))
	for _, t := range targets {
		res := e.runOne(runID, t)

		if err := csvWriter.Write(res); err != nil {
			output.Logger.Error("Failed to write result to CSV", "error", err)
		}
		if err := jsonWriter.Write(res); err != nil {
			output.Logger.Error("Failed to write result to JSON", "error", err)
		}
		results = append(results, res)
	}

	logSummary(results)
	return results, nil
}

func (e *Engine) runOne(runID string, t Target) model.Result {
	res := model.Result{
		RunID:     runID,
		Model:     filepath.Base(t.Path),
		Path:      t.Path,
		Modality:  t.Modality,
		Timestamp: e.Options.now(),
	}
	output.Logger.Info("Testing Model", "model", res.Model, "modality", t.Modality)

	report, err := e.Validate(t.Path, t.Modality)
	if err != nil {
		output.Logger.Error("Model failed to load", "model", res.Model, "error", err)
		res.Status = model.StatusLoadFailed
		res.Error = err.Error()
		return res
	}
	report.RunID = runID

	res.Status = model.StatusValidated
	res.SizeMB = report.ModelInfo.ModelSizeMB
	res.FailedChecks = FailedChecks(report)
	if s := report.Tests.Speed.Value; s != nil {
		res.MeanTimeMS = s.MeanTimeMS
		res.FPS = s.FPS
	}
	if s := report.Tests.Stability.Value; s != nil {
		det := s.IsDeterministic
		res.IsDeterministic = &det
	}
	if m := report.Tests.Memory.Value; m != nil {
		res.PeakMemoryMB = m.PeakMemoryMB
	}

	path := ReportPath(e.Config, t.Path)
	if err := output.PersistReport(report, path); err != nil {
		output.Logger.Error("Failed to persist report", "model", res.Model, "path", path, "error", err)
		res.Error = err.Error()
	} else {
		res.ReportPath = path
		output.Logger.Info("Report saved", "model", res.Model, "path", path)
	}
	return res
}

func logSummary(results []model.Result) {
	validated := 0
	for _, r := range results {
		if r.Status == model.StatusValidated {
			validated++
		}
		output.Logger.Info("Summary",
			"model", r.Model,
			"status", r.Status,
			"mean_time_ms", r.MeanTimeMS.String(),
			"fps", r.FPS.String(),
			"failed_checks", r.FailedChecks,
		)
	}
	output.Logger.Info("Validation complete", "validated", validated, "total", len(results))
}
