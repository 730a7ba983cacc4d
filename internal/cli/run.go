/*
PURPOSE:
  Defines the 'run' subcommand.
  Validates every model artifact in a directory.

REQUIREMENTS:
  User-specified:
  - Run the full check suite against all detected models.
  - Specific flags for overrides.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.
  - Modality comes from the filename unless --modality is given.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run()
  - Uses: internal/config

ERROR HANDLING:
  - Returns error if config load fails or the output files cannot be created.
  - Individual model failures are logged by the engine, not returned.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Discover -> Engine.Run.

USAGE:
  model-harness run --models-dir assets/models -o ./reports

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daryltucker/model-harness/internal/config"
	"github.com/daryltucker/model-harness/internal/engine"
	"github.com/daryltucker/model-harness/internal/output"
)

var (
	modelsDirOverride  string
	outputOverride     string
	formatOverride     string
	iterationsOverride int
	warmupOverride     int
	modalityOverride   string
	excludeOverride    []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Validate every model in a directory",
	Long: `Validates every model artifact (.tflite, .onnx) found in the models directory.
For each model the following checks run in order:
1. Speed: warmup plus timed inferences on a representative input.
2. Input variations: one inference per synthetic pattern.
3. Memory: resident memory sampled across repeated inferences.
4. Stability: repeated inference on one seeded input.
5. Accuracy: real sample files, when the samples directory holds any.

A report is written per model, and a summary row per model is appended to
<summary_file>.csv and <summary_file>.jsonl. A model that fails to load is
recorded and the run continues.`,
	Example: `  # Run with defaults (uses harness.yaml when present)
  model-harness run

  # Validate another directory and write reports elsewhere
  model-harness run --models-dir ./exported -o ./reports

  # Quick pass with fewer iterations and YAML reports
  model-harness run -i 20 --warmup 2 --format yaml

  # Skip quantized models
  model-harness run --exclude _int8,_quant`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// 2. Overrides
		if err := applyOverrides(cmd, cfg); err != nil {
			return err
		}
		if modelsDirOverride != "" {
			cfg.ModelsDir = modelsDirOverride
		}

		// 3. Discovery
		paths, err := engine.Discover(cfg.ModelsDir, cfg.Extensions)
		if err != nil {
			return err
		}
		var targets []engine.Target
		for _, p := range paths {
			if excluded(p) {
				output.Logger.Info("Skipping model (excluded)", "model", p)
				continue
			}
			m, err := resolveModality(modalityOverride, p, cfg.AudioKeywords)
			if err != nil {
				return err
			}
			targets = append(targets, engine.Target{Path: p, Modality: m})
		}
		if len(targets) == 0 {
			return fmt.Errorf("no models with extensions %v in %s", cfg.Extensions, cfg.ModelsDir)
		}
		output.Logger.Info("Found models", "dir", cfg.ModelsDir, "count", len(targets))

		// 4. Execution
		_, err = engine.Run(cfg, targets)
		return err
	},
}

// applyOverrides copies flags shared by run and validate onto cfg.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) error {
	if outputOverride != "" {
		cfg.OutputDir = outputOverride
	}
	if formatOverride != "" {
		cfg.ReportFormat = formatOverride
	}
	if cmd.Flags().Changed("iterations") {
		cfg.Iterations = iterationsOverride
	}
	if cmd.Flags().Changed("warmup") {
		cfg.WarmupIterations = warmupOverride
	}
	return cfg.Validate()
}

func excluded(path string) bool {
	for _, ex := range excludeOverride {
		if ex != "" && strings.Contains(strings.ToLower(path), strings.ToLower(ex)) {
			return true
		}
	}
	return false
}

func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputOverride, "output-dir", "o", "", "Output directory for reports and summaries")
	cmd.Flags().StringVar(&formatOverride, "format", "", "Report format: json or yaml")
	cmd.Flags().IntVarP(&iterationsOverride, "iterations", "i", 0, "Timed benchmark iterations")
	cmd.Flags().IntVar(&warmupOverride, "warmup", 0, "Untimed warmup iterations")
	cmd.Flags().StringVar(&modalityOverride, "modality", "", "Force modality (image or audio) instead of guessing from the file name")
}

func init() {
	rootCmd.AddCommand(runCmd)

	addCheckFlags(runCmd)
	runCmd.Flags().StringVar(&modelsDirOverride, "models-dir", "", "Directory containing model artifacts")
	runCmd.Flags().StringSliceVar(&excludeOverride, "exclude", nil, "Comma-separated list of substrings to exclude from model paths")
}
