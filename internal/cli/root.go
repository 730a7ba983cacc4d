/*
PURPOSE:
  Defines the root Cobra command for the model harness CLI.
  Handles global flags, logging setup and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Logging must be configured before any subcommand logs.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/model-harness/main.go
  - Calls: Child commands (validate, run, inspect, generate-samples)
  - Modifies: Global logger (internal/output).

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init().

RELATED FILES:
  - cmd/model-harness/main.go
  - internal/config/config.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/model-harness/internal/config"
	"github.com/daryltucker/model-harness/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile   string
	verbose   bool
	logFormat string

	rootCmd = &cobra.Command{
		Use:   "model-harness",
		Short: "Validation and benchmarking harness for TFLite and ONNX classifiers",
		Long: `Loads on-device image and audio classifiers, measures latency, memory and
output stability, probes them with synthetic inputs and writes one structured
report per model. Use 'validate --help' or 'run --help' for options.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return output.Configure(os.Stdout, logFormat, verbose)
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./harness.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
}
