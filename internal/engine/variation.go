package engine

import (
	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/output"
	"github.com/daryltucker/model-harness/internal/runtime"
	"github.com/daryltucker/model-harness/internal/synth"
	"github.com/daryltucker/model-harness/internal/tensor"
)

// ProbeVariations runs one inference per synthetic pattern. A failing
// pattern is recorded and the remaining patterns still run.
func ProbeVariations(s runtime.Session, spec tensor.Spec, gen *synth.Generator) model.Variations {
	out := make(model.Variations, 0, len(synth.Patterns))
	for _, p := range synth.Patterns {
		o := probeOne(s, spec, gen, p)
		if !o.Success {
			output.Logger.Warn("Pattern failed", "pattern", p, "error", o.Error)
		}
		out = append(out, o)
	}
	return out
}

func probeOne(s runtime.Session, spec tensor.Spec, gen *synth.Generator, p synth.Pattern) model.VariationOutcome {
	o := model.VariationOutcome{Pattern: string(p)}
	fail := func(err error) model.VariationOutcome {
		o.Error = err.Error()
		return o
	}

	input, err := gen.Generate(spec, p)
	if err != nil {
		return fail(err)
	}
	if err := infer(s, input); err != nil {
		return fail(err)
	}
	res, err := s.Output(0)
	if err != nil {
		return fail(err)
	}

	sum := res.Summarize()
	o.Success = true
	o.OutputShape = res.Shape
	o.OutputMean = model.DecimalPtr(sum.Mean)
	o.OutputStd = model.DecimalPtr(sum.Std)
	o.OutputMin = model.DecimalPtr(sum.Min)
	o.OutputMax = model.DecimalPtr(sum.Max)
	if len(res.Shape) >= 2 {
		if idx, v := tensor.ArgMax(res.FirstRow()); idx >= 0 {
			o.TopClass = &idx
			o.TopConfidence = model.DecimalPtr(v)
		}
	}
	return o
}
