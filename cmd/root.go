package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "heimdall",
	Short: "Heimdall observability for MCP servers.",
	Long: `Heimdall traces Model Context Protocol servers: every tool, resource and
prompt call becomes a span tagged with the calling session and user.

This binary runs an instrumented example server and offers helpers for
checking configuration and inspecting bearer tokens.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewTokenCommand())
	rootCmd.AddCommand(NewDocsCommand())
}
