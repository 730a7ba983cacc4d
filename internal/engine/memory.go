package engine

import (
	"fmt"

	"github.com/daryltucker/model-harness/internal/memprobe"
	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/runtime"
	"github.com/daryltucker/model-harness/internal/tensor"
)

// ProfileMemory samples resident memory once before the loop and then on
// every sampleEvery-th of total inferences, starting with the first.
// A probe that cannot read memory yields ErrMemoryUnavailable.
func ProfileMemory(s runtime.Session, input *tensor.Tensor, probe memprobe.Probe, total, sampleEvery int) (model.MemoryTrace, error) {
	if total < 1 || sampleEvery < 1 {
		return model.MemoryTrace{}, fmt.Errorf("memory profile needs positive iterations and interval, got %d/%d", total, sampleEvery)
	}
	baseline, err := probe.CurrentResidentMemoryMB()
	if err != nil {
		return model.MemoryTrace{}, err
	}

	var samples []float64
	for i := 0; i < total; i++ {
		if err := infer(s, input); err != nil {
			return model.MemoryTrace{}, fmt.Errorf("iteration %d: %w", i, err)
		}
		if i%sampleEvery == 0 {
			mb, err := probe.CurrentResidentMemoryMB()
			if err != nil {
				return model.MemoryTrace{}, err
			}
			samples = append(samples, mb)
		}
	}

	peak := samples[0]
	for _, v := range samples[1:] {
		peak = max(peak, v)
	}
	return model.MemoryTrace{
		TotalIterations:  total,
		SampleEvery:      sampleEvery,
		BaselineMemoryMB: model.Decimal(baseline),
		PeakMemoryMB:     model.Decimal(peak),
		MemoryIncreaseMB: model.Decimal(peak - baseline),
		MemorySamples:    model.Decimals(samples),
	}, nil
}
