package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/John-sanpe/suricata/internal/config"
	"github.com/John-sanpe/suricata/internal/engine"
	"github.com/John-sanpe/suricata/internal/log"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the inspection pipeline",
	Long: `Run the inspection pipeline against the configured packet source.

Examples:
  suricata run                    # Use ./config.yaml
  suricata run -c /etc/engine.yml # Use an explicit config file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		log.Init(cfg.Log)

		eng, err := engine.New(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return eng.Run(ctx)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
}
