package engine

import (
	"fmt"
	"time"

	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/runtime"
	"github.com/daryltucker/model-harness/internal/tensor"
)

// infer binds input to slot 0 and invokes once.
func infer(s runtime.Session, input *tensor.Tensor) error {
	if err := s.SetInput(0, input); err != nil {
		return err
	}
	return s.Invoke()
}

// Benchmark runs warmup untimed inferences, then iterations timed ones on
// the same input. Each timing brackets SetInput and Invoke only. The first
// failing inference aborts the run.
func Benchmark(s runtime.Session, input *tensor.Tensor, iterations, warmup int) (model.LatencyStats, error) {
	if iterations < 1 {
		return model.LatencyStats{}, fmt.Errorf("benchmark needs at least one iteration, got %d", iterations)
	}
	for i := 0; i < warmup; i++ {
		if err := infer(s, input); err != nil {
			return model.LatencyStats{}, fmt.Errorf("warmup iteration %d: %w", i, err)
		}
	}

	times := make([]time.Duration, iterations)
	for i := range times {
		start := time.Now()
		err := infer(s, input)
		times[i] = time.Since(start)
		if err != nil {
			return model.LatencyStats{}, fmt.Errorf("iteration %d: %w", i, err)
		}
	}
	return Latency(times, warmup), nil
}
