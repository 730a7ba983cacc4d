/*
PURPOSE:
  Defines the 'validate' subcommand.
  Runs every check against a single model and writes its report.

REQUIREMENTS:
  User-specified:
  - Validate one model given by path.
  - Optional report path, iteration count and modality.

  Implementation-discovered:
  - Report format follows the -o extension when given, else report_format.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.New().Validate()
  - Uses: internal/config, internal/output

ERROR HANDLING:
  - Load failures are returned (exit code 1).
  - A report that cannot be written is returned as an error after the
    results have been logged.

IMPLEMENTATION RULES:
  - Logic: Load Config -> Override -> Validate -> Persist.

USAGE:
  model-harness validate -m assets/models/bird_classifier.tflite -i 50

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/cli/run.go
  - internal/engine/engine.go

MAINTENANCE:
  - Keep flags aligned with 'run'.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/model-harness/internal/engine"
	"github.com/daryltucker/model-harness/internal/output"
)

var (
	modelPath    string
	reportOutput string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a single model",
	Example: `  model-harness validate -m assets/models/plant_classifier.onnx
  model-harness validate -m bird.tflite --modality audio -o bird_report.yaml -i 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyOverrides(cmd, cfg); err != nil {
			return err
		}
		modality, err := resolveModality(modalityOverride, modelPath, cfg.AudioKeywords)
		if err != nil {
			return err
		}

		e, err := engine.New(cfg)
		if err != nil {
			return err
		}
		report, err := e.Validate(modelPath, modality)
		if err != nil {
			return err
		}

		if s := report.Tests.Speed.Value; s != nil {
			output.Logger.Info("Speed", "mean_time_ms", s.MeanTimeMS.String(), "fps", s.FPS.String(),
				"p95_ms", s.Percentile95MS.String())
		}
		if s := report.Tests.Stability.Value; s != nil {
			output.Logger.Info("Stability", "is_deterministic", s.IsDeterministic)
		}

		path := reportOutput
		if path == "" {
			path = engine.ReportPath(cfg, modelPath)
		}
		if err := output.PersistReport(report, path); err != nil {
			return err
		}
		output.Logger.Info("Report saved", "path", path, "failed_checks", engine.FailedChecks(report))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&modelPath, "model", "m", "", "Path to the model artifact (.tflite or .onnx)")
	validateCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Report file (default <output_dir>/<model>_test_report.<format>)")
	validateCmd.Flags().StringVar(&formatOverride, "format", "", "Report format: json or yaml")
	validateCmd.Flags().IntVarP(&iterationsOverride, "iterations", "i", 0, "Timed benchmark iterations")
	validateCmd.Flags().IntVar(&warmupOverride, "warmup", 0, "Untimed warmup iterations")
	validateCmd.Flags().StringVar(&modalityOverride, "modality", "", "Force modality (image or audio) instead of guessing from the file name")
	if err := validateCmd.MarkFlagRequired("model"); err != nil {
		panic(fmt.Sprintf("mark model flag: %v", err))
	}
}
