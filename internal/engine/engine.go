/*
PURPOSE:
  Core engine for validating one model artifact.
  Opens the model, runs every check in order and aggregates the report.

REQUIREMENTS:
  User-specified:
  - Checks run speed, input_variations, memory, stability, then accuracy.
  - A failing check is recorded and the remaining checks still run.
  - Only a load failure stops validation of a model.

  Implementation-discovered:
  - The runtime is chosen per artifact (tflite or onnx), so the engine holds
    a selector instead of a single runtime.
  - Tests swap the selector for runtime.Fake.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli, internal/engine/runner.go
  - Uses: internal/runtime, internal/synth, internal/memprobe, internal/output

ERROR HANDLING:
  - Load failures are returned wrapped in model.ErrLoad.
  - Check failures become model.Failed entries in the report.
  - No retries.

IMPLEMENTATION RULES:
  - One session per model, used sequentially by every check.
  - Always close the session, even when checks fail.

USAGE:
  e, err := engine.New(cfg)
  report, err := e.Validate("assets/models/bird.onnx", model.Audio)

SELF-HEALING INSTRUCTIONS:
  - If a runtime misbehaves, run with --verbose and compare check logs.

RELATED FILES:
  - internal/engine/runner.go
  - internal/engine/options.go

MAINTENANCE:
  - Add new checks in validate() and model.Tests together.
*/

package engine

import (
	"errors"

	"github.com/daryltucker/model-harness/internal/config"
	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/output"
	"github.com/daryltucker/model-harness/internal/runtime"
)

// Engine validates model artifacts.
type Engine struct {
	Config  *config.Config
	Options Options
	// Select picks the runtime for an artifact path.
	Select func(path string) (runtime.Runtime, error)
}

// New creates an Engine from cfg.
func New(cfg *config.Config) (*Engine, error) {
	opts, err := FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	rtOpts := RuntimeOptions(cfg)
	return &Engine{
		Config:  cfg,
		Options: opts,
		Select: func(path string) (runtime.Runtime, error) {
			return runtime.Select(path, rtOpts)
		},
	}, nil
}

// Validate opens path and runs every check against it.
func (e *Engine) Validate(path string, modality model.Modality) (*model.ValidationReport, error) {
	rt, err := e.Select(path)
	if err != nil {
		return nil, err
	}
	m, err := Open(rt, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := m.Close(); err != nil {
			output.Logger.Warn("Failed to close model", "model", path, "error", err)
		}
	}()
	return ValidateModel(m, modality, e.Options), nil
}

// ValidateModel runs the checks against an opened model and aggregates
// the report. It never fails as a whole.
func ValidateModel(m *Model, modality model.Modality, opts Options) *model.ValidationReport {
	opts.fill()
	path := m.Spec.Path
	in := m.Spec.Input()

	output.Logger.Info("Running check", "model", path, "check", "speed")
	input, inputErr := opts.Generator.Representative(in, modality)
	var speed model.Check[model.LatencyStats]
	if inputErr != nil {
		speed = failed[model.LatencyStats](path, "speed", inputErr)
	} else if stats, err := Benchmark(m.Session, input, opts.Iterations, opts.WarmupIterations); err != nil {
		speed = failed[model.LatencyStats](path, "speed", err)
	} else {
		output.Logger.Info("Speed check complete", "model", path,
			"mean_time_ms", stats.MeanTimeMS.String(), "fps", stats.FPS.String())
		speed = model.Passed(stats)
	}

	output.Logger.Info("Running check", "model", path, "check", "input_variations")
	variations := model.Passed(ProbeVariations(m.Session, in, opts.Generator))

	output.Logger.Info("Running check", "model", path, "check", "memory")
	var memory model.Check[model.MemoryTrace]
	if inputErr != nil {
		memory = failed[model.MemoryTrace](path, "memory", inputErr)
	} else if trace, err := ProfileMemory(m.Session, input, opts.Probe, opts.MemoryIterations, opts.MemorySampleEvery); err != nil {
		memory = failed[model.MemoryTrace](path, "memory", err)
	} else {
		output.Logger.Info("Memory check complete", "model", path,
			"peak_memory_mb", trace.PeakMemoryMB.String(), "increase_mb", trace.MemoryIncreaseMB.String())
		memory = model.Passed(trace)
	}

	output.Logger.Info("Running check", "model", path, "check", "stability")
	var stability model.Check[model.StabilityReport]
	if rep, err := CheckStability(m.Session, in, opts.StabilityTests, opts.StabilitySeed); err != nil {
		stability = failed[model.StabilityReport](path, "stability", err)
	} else {
		output.Logger.Info("Stability check complete", "model", path,
			"is_deterministic", rep.IsDeterministic, "max_variance", rep.MaxVariance.String())
		stability = model.Passed(rep)
	}

	var accuracy *model.Check[model.AccuracyReport]
	output.Logger.Info("Running check", "model", path, "check", "accuracy")
	if rep, err := Accuracy(m.Session, m.Spec, modality, opts); err != nil {
		c := failed[model.AccuracyReport](path, "accuracy", err)
		accuracy = &c
	} else if rep != nil {
		output.Logger.Info("Accuracy check complete", "model", path,
			"processed", rep.Processed, "failed", rep.Failed)
		c := model.Passed(*rep)
		accuracy = &c
	} else {
		output.Logger.Debug("No sample files, skipping accuracy", "model", path, "dir", opts.SamplesDir[modality])
	}

	return Aggregate(m.Spec, opts.Now(), speed, variations, memory, stability, accuracy)
}

func failed[T any](path, check string, err error) model.Check[T] {
	if errors.Is(err, model.ErrMemoryUnavailable) {
		output.Logger.Warn("Check unavailable on this host", "model", path, "check", check, "error", err)
	} else {
		output.Logger.Error("Check failed", "model", path, "check", check, "error", err)
	}
	return model.Failed[T](err)
}

// FailedChecks counts the checks of r that recorded an error.
func FailedChecks(r *model.ValidationReport) int {
	n := 0
	for _, ok := range []bool{r.Tests.Speed.OK(), r.Tests.InputVariations.OK(), r.Tests.Memory.OK(), r.Tests.Stability.OK()} {
		if !ok {
			n++
		}
	}
	if r.Tests.Accuracy != nil && !r.Tests.Accuracy.OK() {
		n++
	}
	return n
}
