package output

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/model-harness/internal/model"
	"github.com/daryltucker/model-harness/internal/tensor"
)

func sampleReport() *model.ValidationReport {
	spec := model.ModelSpec{
		Path:      "assets/models/plant_classifier.tflite",
		Format:    "tflite",
		Runtime:   "tflite",
		SizeBytes: 4_718_592 + 17,
		Inputs:    []tensor.Spec{{Name: "input", Shape: []int{1, 224, 224, 3}, Dtype: tensor.Float32}},
		Outputs:   []tensor.Spec{{Name: "probs", Shape: []int{1, 10}, Dtype: tensor.Float32}},
	}
	top := 3
	conf := model.Decimal(0.000000125)
	return &model.ValidationReport{
		ModelInfo: spec.Info(),
		Timestamp: "2026-10-18 09:30:00",
		RunID:     "run-1",
		Tests: model.Tests{
			Speed: model.Passed(model.LatencyStats{
				NumIterations: 100, WarmupIterations: 10,
				MeanTimeMS: 12.345678901, FPS: model.Decimal(1000 / 12.345678901),
				MinTimeMS: 0.0000004,
			}),
			InputVariations: model.Passed(model.Variations{
				{Pattern: "zeros", Success: true, OutputShape: []int{1, 10}, TopClass: &top, TopConfidence: &conf},
				{Pattern: "ones", Success: false, Error: "inference failed"},
			}),
			Memory:    model.Failed[model.MemoryTrace](model.ErrMemoryUnavailable),
			Stability: model.Passed(model.StabilityReport{NumTests: 10, Seed: 42, IsDeterministic: true}),
		},
	}
}

func TestPersistRoundTrip(t *testing.T) {
	for _, name := range []string{"report.json", "report.yaml"} {
		t.Run(name, func(t *testing.T) {
			r := sampleReport()
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, PersistReport(r, path))

			back, err := LoadReport(path)
			require.NoError(t, err)
			assert.InDelta(t, float64(r.ModelInfo.ModelSizeMB), float64(back.ModelInfo.ModelSizeMB), 1e-6)
			require.True(t, back.Tests.Speed.OK())
			assert.InDelta(t, float64(r.Tests.Speed.Value.FPS), float64(back.Tests.Speed.Value.FPS), 1e-6)
			assert.Equal(t, r.ModelInfo.SizeBytes, back.ModelInfo.SizeBytes)
			assert.Equal(t, r.ModelInfo.InputShape, back.ModelInfo.InputShape)
			assert.False(t, back.Tests.Memory.OK())
			assert.Equal(t, model.ErrMemoryUnavailable.Error(), back.Tests.Memory.Err)
			require.Len(t, *back.Tests.InputVariations.Value, 2)
			assert.Equal(t, "ones", (*back.Tests.InputVariations.Value)[1].Pattern)
			assert.Nil(t, back.Tests.Accuracy)
		})
	}
}

func TestPersistedJSONLayout(t *testing.T) {
	data, err := EncodeReport(sampleReport(), "r.json")
	require.NoError(t, err)
	text := string(data)

	assert.Less(t, strings.Index(text, `"model_info"`), strings.Index(text, `"timestamp"`))
	assert.Less(t, strings.Index(text, `"timestamp"`), strings.Index(text, `"tests"`))
	assert.Less(t, strings.Index(text, `"speed"`), strings.Index(text, `"input_variations"`))
	assert.Contains(t, text, `"min_time_ms": 0.0000004`)
	assert.Contains(t, text, `"top_confidence": 0.000000125`)
	assert.Contains(t, text, `"memory": {`)
	assert.NotContains(t, text, "e-0")

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Equal(t, map[string]any{"error": model.ErrMemoryUnavailable.Error()}, generic["tests"].(map[string]any)["memory"])
}

func TestPersistFailureIsIOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := PersistReport(sampleReport(), filepath.Join(blocker, "report.json"))
	assert.True(t, errors.Is(err, model.ErrIO))

	_, err = LoadReport(filepath.Join(dir, "absent.json"))
	assert.True(t, errors.Is(err, model.ErrIO))
}

func sampleResult() model.Result {
	det := true
	return model.Result{
		RunID:           "run-1",
		Model:           "bird_classifier.tflite",
		Path:            "assets/models/bird_classifier.tflite",
		Modality:        model.Audio,
		Status:          model.StatusValidated,
		Timestamp:       time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
		SizeMB:          2.5,
		MeanTimeMS:      4.25,
		FPS:             235.25,
		IsDeterministic: &det,
		PeakMemoryMB:    88,
		ReportPath:      "bird_classifier_test_report.json",
	}
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleResult()))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{
		"run-1", "bird_classifier.tflite", "assets/models/bird_classifier.tflite", "audio",
		"validated", "2026-10-18T09:30:00Z", "2.5", "4.25", "235.25", "true",
		"88", "0", "bird_classifier_test_report.json", "",
	}, rows[1])
}

func TestJSONWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.jsonl")
	w, err := NewJSONWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleResult()))
	failed := model.Result{Model: "broken.tflite", Status: model.StatusLoadFailed, Error: "load error"}
	require.NoError(t, w.Write(failed))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "audio", lines[0]["modality"])
	assert.Equal(t, true, lines[0]["is_deterministic"])
	assert.Equal(t, "load_failed", lines[1]["status"])
	assert.NotContains(t, lines[1], "is_deterministic")
}

func TestConfigureLogger(t *testing.T) {
	old := Logger
	defer SetLogger(old)

	var buf bytes.Buffer
	require.NoError(t, Configure(&buf, "json", false))
	Logger.Debug("hidden")
	Logger.Info("Check finished", "check", "speed")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "speed", entry["check"])

	buf.Reset()
	require.NoError(t, Configure(&buf, "text", true))
	Logger.Debug("iteration", "i", 3)
	assert.Contains(t, buf.String(), "level=DEBUG")

	assert.Error(t, Configure(&buf, "xml", false))
}
