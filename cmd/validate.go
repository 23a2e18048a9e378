package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-sanpe/suricata/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an engine configuration file",
	Long: `Validate an engine configuration file without starting the pipeline.

This is useful for pre-checking configuration before deployment.

Examples:
  suricata validate
  suricata validate -c /etc/engine.yml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("VALID: capture %q, %d parser(s), metrics enabled: %v\n",
			cfg.Capture.Type,
			len(cfg.Parsers),
			cfg.Metrics.Enabled,
		)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
