// Package cmd implements CLI commands using the cobra framework.
package cmd

import (
	"github.com/spf13/cobra"

	// Register parser plugins.
	_ "github.com/John-sanpe/suricata/plugins"
)

var configFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "suricata",
	Short: "Traffic inspection engine with application-layer protocol parsers",
	Long: `A traffic inspection engine that decodes captured packets (L2-L4),
feeds application-layer payloads through protocol parser plugins, and
reassembles per-call data for downstream signature inspection.

Currently shipped parsers:
  - dcerpc_udp: DCERPC-over-UDP stub data reassembly`,
	Version: "0.1.0",
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml",
		"config file path")
}
