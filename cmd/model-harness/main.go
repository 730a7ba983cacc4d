/*
PURPOSE:
  Entry point for the model harness application.
  Initializes the CLI root command and executes it.

REQUIREMENTS:
  User-specified:
  - Must serve as the single binary entry point.
  - Must handle top-level errors gracefully.

  Implementation-discovered:
  - Uses cobra for CLI command management.
  - The ONNX Runtime environment is process-wide and must be torn down once.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cli.Execute()
  - Depends on: internal/cli, internal/runtime

ERROR HANDLING:
  - Explicit error check on Execute(); exit code 1 on failure.

IMPLEMENTATION RULES:
  - Critical: Keep main() minimal. All logic belongs in internal/ packages.
  - Do not put business logic here.
  - Do not use global variables for state here.

USAGE:
  go build -o model-harness ./cmd/model-harness
  go build -tags tflite -o model-harness ./cmd/model-harness  # with TFLite support
  ./model-harness [command] [flags]

SELF-HEALING INSTRUCTIONS:
  - If CLI fails to start, check internal/cli/root.go definition.
  - If imports fail, run `go mod tidy`.

RELATED FILES:
  - internal/cli/root.go - The actual root command definition.

MAINTENANCE:
  - Update when changing the CLI framework or high-level signal handling.
*/

package main

import (
	"fmt"
	"os"

	"github.com/daryltucker/model-harness/internal/cli"
	"github.com/daryltucker/model-harness/internal/runtime"
)

func main() {
	err := cli.Execute()
	if shutdownErr := runtime.ShutdownONNX(); shutdownErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", shutdownErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
