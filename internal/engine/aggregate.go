package engine

import (
	"time"

	"github.com/daryltucker/model-harness/internal/model"
)

// Aggregate composes the check records into a report stamped with now.
// accuracy may be nil.
func Aggregate(spec model.ModelSpec, now time.Time, speed model.Check[model.LatencyStats],
	variations model.Check[model.Variations], memory model.Check[model.MemoryTrace],
	stability model.Check[model.StabilityReport], accuracy *model.Check[model.AccuracyReport],
) *model.ValidationReport {
	return &model.ValidationReport{
		ModelInfo: spec.Info(),
		Timestamp: now.Format(model.TimestampLayout),
		Tests: model.Tests{
			Speed:           speed,
			InputVariations: variations,
			Memory:          memory,
			Stability:       stability,
			Accuracy:        accuracy,
		},
	}
}
