/*
PURPOSE:
  Defines the configuration structure and loading logic for the model harness.
  One YAML file drives batch and single-model validation.

REQUIREMENTS:
  User-specified:
  - Configure where models live, where reports go and how hard each check runs.
  - Iteration counts default to 100 timed / 10 warmup, stability 10 runs seed 42,
    memory 50 iterations sampled every 10.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - The filename modality heuristic needs its keyword list here so it can be overridden.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - A missing default file is not an error; defaults are used.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Validate() rejects values the checks cannot run with.

USAGE:
  cfg, err := config.Load("harness.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and DefaultConfig().

RELATED FILES:
  - internal/cli/root.go
  - internal/engine/options.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFiles are searched in order when no --config is given.
var DefaultFiles = []string{"harness.yaml", "model_harness.yaml"}

// Config represents the full configuration of the harness.
type Config struct {
	ModelsDir   string   `yaml:"models_dir"`
	OutputDir   string   `yaml:"output_dir"`
	SummaryFile string   `yaml:"summary_file"` // base name; .csv and .jsonl are appended
	Extensions  []string `yaml:"extensions"`
	// AudioKeywords mark a model file as an audio classifier (substring match).
	AudioKeywords []string `yaml:"audio_keywords"`

	Iterations        int    `yaml:"iterations"`
	WarmupIterations  int    `yaml:"warmup_iterations"`
	StabilityTests    int    `yaml:"stability_tests"`
	StabilitySeed     uint64 `yaml:"stability_seed"`
	MemoryIterations  int    `yaml:"memory_iterations"`
	MemorySampleEvery int    `yaml:"memory_sample_every"`

	SampleRate      int    `yaml:"sample_rate"`
	ChannelOrder    string `yaml:"channel_order"`
	ImageSamplesDir string `yaml:"image_samples_dir"`
	AudioSamplesDir string `yaml:"audio_samples_dir"`

	ReportFormat       string `yaml:"report_format"` // json or yaml
	ONNXRuntimeLibrary string `yaml:"onnxruntime_library"`
	NumThreads         int    `yaml:"num_threads"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ModelsDir:         "assets/models",
		OutputDir:         ".",
		SummaryFile:       "model_validation_summary",
		Extensions:        []string{".tflite", ".onnx"},
		AudioKeywords:     []string{"bird", "audio"},
		Iterations:        100,
		WarmupIterations:  10,
		StabilityTests:    10,
		StabilitySeed:     42,
		MemoryIterations:  50,
		MemorySampleEvery: 10,
		SampleRate:        22050,
		ChannelOrder:      "rgb",
		ImageSamplesDir:   "test_data/flora_samples",
		AudioSamplesDir:   "test_data/audio_samples",
		ReportFormat:      "json",
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches DefaultFiles in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every setting the checks cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Iterations < 1 {
		errs = append(errs, fmt.Errorf("iterations must be >= 1, got %d", c.Iterations))
	}
	if c.WarmupIterations < 0 {
		errs = append(errs, fmt.Errorf("warmup_iterations must be >= 0, got %d", c.WarmupIterations))
	}
	if c.StabilityTests < 1 {
		errs = append(errs, fmt.Errorf("stability_tests must be >= 1, got %d", c.StabilityTests))
	}
	if c.MemoryIterations < 1 || c.MemorySampleEvery < 1 {
		errs = append(errs, fmt.Errorf("memory_iterations and memory_sample_every must be >= 1"))
	}
	if c.SampleRate < 1 {
		errs = append(errs, fmt.Errorf("sample_rate must be >= 1, got %d", c.SampleRate))
	}
	switch strings.ToLower(c.ReportFormat) {
	case "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("report_format must be json or yaml, got %q", c.ReportFormat))
	}
	switch strings.ToLower(c.ChannelOrder) {
	case "", "rgb", "bgr":
	default:
		errs = append(errs, fmt.Errorf("channel_order must be rgb or bgr, got %q", c.ChannelOrder))
	}
	return errors.Join(errs...)
}

// ReportExt returns the file extension of persisted reports.
func (c *Config) ReportExt() string {
	if strings.EqualFold(c.ReportFormat, "yaml") {
		return ".yaml"
	}
	return ".json"
}
