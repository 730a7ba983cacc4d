package engine

import (
	"fmt"
	"slices"

	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/runtime"
	"github.com/daryltucker/model-harness/internal/synth"
	"github.com/daryltucker/model-harness/internal/tensor"
)

// Determinism tolerances for CheckStability.
const (
	StabilityRTol = 1e-7
	StabilityATol = 1e-7
)

// CheckStability feeds one seeded input numTests times and measures how much
// output 0 drifts between runs.
func CheckStability(s runtime.Session, spec tensor.Spec, numTests int, seed uint64) (model.StabilityReport, error) {
	if numTests < 1 {
		return model.StabilityReport{}, fmt.Errorf("stability needs at least one run, got %d", numTests)
	}
	input, err := synth.NewSeeded(seed).Fixed(spec)
	if err != nil {
		return model.StabilityReport{}, err
	}

	runs := make([][]float64, 0, numTests)
	var shape []int
	for i := 0; i < numTests; i++ {
		if err := infer(s, input); err != nil {
			return model.StabilityReport{}, fmt.Errorf("run %d: %w", i, err)
		}
		out, err := s.Output(0)
		if err != nil {
			return model.StabilityReport{}, fmt.Errorf("run %d: %w", i, err)
		}
		if shape == nil {
			shape = out.Shape
		} else if !slices.Equal(shape, out.Shape) {
			return model.StabilityReport{}, fmt.Errorf("%w: run %d output shape %v differs from %v", model.ErrInference, i, out.Shape, shape)
		}
		runs = append(runs, out.Float64s())
	}

	deterministic := true
	for _, r := range runs[1:] {
		if !allClose(runs[0], r, StabilityRTol, StabilityATol) {
			deterministic = false
			break
		}
	}

	variance := elementVariance(runs)
	vs := tensor.Summarize(variance)
	var all []float64
	for _, r := range runs {
		all = append(all, r...)
	}
	overall := tensor.Summarize(all)
	var cov float64
	if overall.Mean != 0 {
		cov = overall.Std / overall.Mean
	}

	return model.StabilityReport{
		NumTests:               numTests,
		Seed:                   seed,
		IsDeterministic:        deterministic,
		MaxVariance:            model.Decimal(vs.Max),
		MeanVariance:           model.Decimal(vs.Mean),
		OutputStd:              model.Decimal(overall.Std),
		CoefficientOfVariation: model.Decimal(cov),
		ElementVariance:        model.Decimals(variance),
	}, nil
}
