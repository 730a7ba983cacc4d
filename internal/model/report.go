/*
PURPOSE:
  Defines the structured results of one validation session: the model
  contract, each check's record and the root ValidationReport.

REQUIREMENTS:
  User-specified:
  - Top-level keys model_info, timestamp, tests.
  - tests holds speed, input_variations, memory, stability and optionally accuracy.
  - Numbers are plain decimals, never scientific notation.

  Implementation-discovered:
  - input_variations must keep generator pattern order, so it is a slice with
    custom object encoding instead of a Go map.
  - A failed check is written as {"error": "..."} (see Check).

ARCHITECTURE INTEGRATION:
  - Built by: internal/engine
  - Persisted by: internal/output

ERROR HANDLING:
  - None (pure data structs and codecs).

IMPLEMENTATION RULES:
  - Field order in the structs is the field order in the persisted document.
  - Use Decimal for every float that reaches a report.

RELATED FILES:
  - internal/model/check.go
  - internal/model/decimal.go
  - internal/output/report.go

MAINTENANCE:
  - Adding a check means adding a field to Tests and a runner step in engine.
*/

package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/daryltucker/model-harness/internal/tensor"
	"gopkg.in/yaml.v3"
)

// TimestampLayout is the layout of ValidationReport.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// ModelSpec is the input/output contract of a successfully loaded model.
type ModelSpec struct {
	Path      string
	Format    string
	Runtime   string
	SizeBytes int64
	Inputs    []tensor.Spec
	Outputs   []tensor.Spec
}

// Input returns the first input spec.
func (m ModelSpec) Input() tensor.Spec { return m.Inputs[0] }

// Output returns the first output spec.
func (m ModelSpec) Output() tensor.Spec { return m.Outputs[0] }

// SizeMB returns the artifact size in MiB.
func (m ModelSpec) SizeMB() float64 { return float64(m.SizeBytes) / (1024 * 1024) }

// Info flattens m into the model_info report block.
func (m ModelSpec) Info() ModelInfo {
	info := ModelInfo{
		ModelPath:   m.Path,
		Format:      m.Format,
		Runtime:     m.Runtime,
		SizeBytes:   m.SizeBytes,
		ModelSizeMB: Decimal(m.SizeMB()),
		NumInputs:   len(m.Inputs),
		NumOutputs:  len(m.Outputs),
		Inputs:      m.Inputs,
		Outputs:     m.Outputs,
	}
	if len(m.Inputs) > 0 {
		info.InputShape = m.Inputs[0].Shape
		info.InputDtype = m.Inputs[0].Dtype.String()
	}
	if len(m.Outputs) > 0 {
		info.OutputShape = m.Outputs[0].Shape
		info.OutputDtype = m.Outputs[0].Dtype.String()
	}
	return info
}

// ModelInfo is the model_info block of a report.
type ModelInfo struct {
	ModelPath   string        `json:"model_path" yaml:"model_path"`
	Format      string        `json:"format" yaml:"format"`
	Runtime     string        `json:"runtime" yaml:"runtime"`
	SizeBytes   int64         `json:"size_bytes" yaml:"size_bytes"`
	ModelSizeMB Decimal       `json:"model_size_mb" yaml:"model_size_mb"`
	InputShape  []int         `json:"input_shape" yaml:"input_shape,flow"`
	InputDtype  string        `json:"input_dtype" yaml:"input_dtype"`
	OutputShape []int         `json:"output_shape" yaml:"output_shape,flow"`
	OutputDtype string        `json:"output_dtype" yaml:"output_dtype"`
	NumInputs   int           `json:"num_inputs" yaml:"num_inputs"`
	NumOutputs  int           `json:"num_outputs" yaml:"num_outputs"`
	Inputs      []tensor.Spec `json:"inputs" yaml:"inputs"`
	Outputs     []tensor.Spec `json:"outputs" yaml:"outputs"`
}

// LatencyStats summarizes the timed iterations of one benchmark run.
// Times are in milliseconds; FPS is 1000/MeanTimeMS.
type LatencyStats struct {
	NumIterations    int     `json:"num_iterations" yaml:"num_iterations"`
	WarmupIterations int     `json:"warmup_iterations" yaml:"warmup_iterations"`
	MeanTimeMS       Decimal `json:"mean_time_ms" yaml:"mean_time_ms"`
	StdTimeMS        Decimal `json:"std_time_ms" yaml:"std_time_ms"`
	MinTimeMS        Decimal `json:"min_time_ms" yaml:"min_time_ms"`
	MaxTimeMS        Decimal `json:"max_time_ms" yaml:"max_time_ms"`
	MedianTimeMS     Decimal `json:"median_time_ms" yaml:"median_time_ms"`
	FPS              Decimal `json:"fps" yaml:"fps"`
	Percentile95MS   Decimal `json:"percentile_95_ms" yaml:"percentile_95_ms"`
	Percentile99MS   Decimal `json:"percentile_99_ms" yaml:"percentile_99_ms"`
}

// StabilityReport describes repeated inference on one fixed input.
type StabilityReport struct {
	NumTests               int       `json:"num_tests" yaml:"num_tests"`
	Seed                   uint64    `json:"seed" yaml:"seed"`
	IsDeterministic        bool      `json:"is_deterministic" yaml:"is_deterministic"`
	MaxVariance            Decimal   `json:"max_variance" yaml:"max_variance"`
	MeanVariance           Decimal   `json:"mean_variance" yaml:"mean_variance"`
	OutputStd              Decimal   `json:"output_std" yaml:"output_std"`
	CoefficientOfVariation Decimal   `json:"coefficient_of_variation" yaml:"coefficient_of_variation"`
	ElementVariance        []Decimal `json:"element_variance" yaml:"element_variance,flow"`
}

// MemoryTrace holds resident memory samples in MiB.
type MemoryTrace struct {
	TotalIterations  int       `json:"total_iterations" yaml:"total_iterations"`
	SampleEvery      int       `json:"sample_every" yaml:"sample_every"`
	BaselineMemoryMB Decimal   `json:"baseline_memory_mb" yaml:"baseline_memory_mb"`
	PeakMemoryMB     Decimal   `json:"peak_memory_mb" yaml:"peak_memory_mb"`
	MemoryIncreaseMB Decimal   `json:"memory_increase_mb" yaml:"memory_increase_mb"`
	MemorySamples    []Decimal `json:"memory_samples" yaml:"memory_samples,flow"`
}

// VariationOutcome is the result of one synthetic pattern.
type VariationOutcome struct {
	Pattern       string   `json:"-" yaml:"-"`
	Success       bool     `json:"success" yaml:"success"`
	Error         string   `json:"error,omitempty" yaml:"error,omitempty"`
	OutputShape   []int    `json:"output_shape,omitempty" yaml:"output_shape,omitempty,flow"`
	OutputMean    *Decimal `json:"output_mean,omitempty" yaml:"output_mean,omitempty"`
	OutputStd     *Decimal `json:"output_std,omitempty" yaml:"output_std,omitempty"`
	OutputMin     *Decimal `json:"output_min,omitempty" yaml:"output_min,omitempty"`
	OutputMax     *Decimal `json:"output_max,omitempty" yaml:"output_max,omitempty"`
	TopClass      *int     `json:"top_class" yaml:"top_class"`
	TopConfidence *Decimal `json:"top_confidence" yaml:"top_confidence"`
}

// Variations keeps outcomes in probe order and encodes them as an object
// keyed by pattern name.
type Variations []VariationOutcome

// Get returns the outcome for pattern.
func (v Variations) Get(pattern string) (VariationOutcome, bool) {
	for _, o := range v {
		if o.Pattern == pattern {
			return o, true
		}
	}
	return VariationOutcome{}, false
}

func (v Variations) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, o := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(o.Pattern)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (v *Variations) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("input_variations: expected object, got %v", tok)
	}
	out := Variations{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("input_variations: expected key, got %v", tok)
		}
		var o VariationOutcome
		if err := dec.Decode(&o); err != nil {
			return fmt.Errorf("input_variations.%s: %w", key, err)
		}
		o.Pattern = key
		out = append(out, o)
	}
	*v = out
	return nil
}

func (v Variations) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, o := range v {
		val := &yaml.Node{}
		if err := val.Encode(o); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: o.Pattern}, val)
	}
	return node, nil
}

func (v *Variations) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("input_variations: expected mapping at line %d", n.Line)
	}
	out := Variations{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		var o VariationOutcome
		if err := n.Content[i+1].Decode(&o); err != nil {
			return err
		}
		o.Pattern = n.Content[i].Value
		out = append(out, o)
	}
	*v = out
	return nil
}

// Prediction is the top class of one real sample.
type Prediction struct {
	File       string    `json:"file" yaml:"file"`
	TopClass   *int      `json:"top_class,omitempty" yaml:"top_class,omitempty"`
	TopLabel   string    `json:"top_label,omitempty" yaml:"top_label,omitempty"`
	Confidence *Decimal  `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	RawOutput  []Decimal `json:"raw_output,omitempty" yaml:"raw_output,omitempty,flow"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// AccuracyReport lists predictions over a directory of real samples.
type AccuracyReport struct {
	Modality    Modality     `json:"modality" yaml:"modality"`
	SamplesDir  string       `json:"samples_dir" yaml:"samples_dir"`
	Processed   int          `json:"processed" yaml:"processed"`
	Failed      int          `json:"failed" yaml:"failed"`
	Predictions []Prediction `json:"predictions" yaml:"predictions"`
}

// Tests holds every check keyed by its report name.
type Tests struct {
	Speed           Check[LatencyStats]    `json:"speed" yaml:"speed"`
	InputVariations Check[Variations]      `json:"input_variations" yaml:"input_variations"`
	Memory          Check[MemoryTrace]     `json:"memory" yaml:"memory"`
	Stability       Check[StabilityReport] `json:"stability" yaml:"stability"`
	Accuracy        *Check[AccuracyReport] `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
}

// ValidationReport is the root aggregate of one model's validation session.
// It is assembled once and treated as an immutable snapshot afterwards.
type ValidationReport struct {
	ModelInfo ModelInfo `json:"model_info" yaml:"model_info"`
	Timestamp string    `json:"timestamp" yaml:"timestamp"`
	RunID     string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Tests     Tests     `json:"tests" yaml:"tests"`
}
