package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/daryltucker/model-harness/internal/artifact"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <model>...",
	Short: "Print what a model artifact declares, without loading a runtime",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for i, path := range args {
			info, err := artifact.Sniff(path)
			if err != nil {
				return err
			}
			if inspectJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(info); err != nil {
					return err
				}
				continue
			}
			if i > 0 {
				fmt.Fprintln(out, "---")
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(info); err != nil {
				return err
			}
			if err := enc.Close(); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print JSON instead of YAML")
}
