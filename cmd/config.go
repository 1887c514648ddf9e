package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/heimdall/config"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}

	cmd.AddCommand(NewConfigCheckCommand())

	return cmd
}

func NewConfigCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			h := cfg.Heimdall
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration OK.")
			fmt.Fprintf(out, "  service:     %s (%s)\n", h.ServiceName, h.Environment)
			fmt.Fprintf(out, "  enabled:     %t\n", h.Enabled)
			fmt.Fprintf(out, "  endpoint:    %s\n", h.Endpoint)
			fmt.Fprintf(out, "  api key:     %s\n", maskSecret(h.APIKey))
			fmt.Fprintf(out, "  batching:    %d spans, every %dms, queue %d\n", h.BatchSize, h.FlushIntervalMS, h.MaxQueueSize)
			fmt.Fprintf(out, "  transport:   %s\n", cfg.Server.Transport)
			return nil
		},
	}
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 4:
		return "****"
	default:
		return s[:4] + "****"
	}
}
