package cmd

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/heimdall/config"
	"github.com/Alijeyrad/heimdall/internal/api/http"
	"github.com/Alijeyrad/heimdall/internal/api/stdio"
	"github.com/Alijeyrad/heimdall/internal/app"
	"github.com/Alijeyrad/heimdall/internal/mcpserver"
	"github.com/Alijeyrad/heimdall/pkg/logs"
)

func NewServeCommand() *cobra.Command {
	var (
		transport       string
		port            int
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the instrumented example MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return err
			}

			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("transport") {
				cfg.Server.Transport = transport
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("shutdown-timeout") {
				shutdownTimeout = time.Duration(cfg.Server.ShutdownSeconds) * time.Second
			}

			// Set up structured logger before fx starts so all logs use it.
			slog.SetDefault(logs.New(cfg))

			fxApp := fx.New(serveOptions(cfg, shutdownTimeout)...)
			fxApp.Run()
			return fxApp.Err()
		},
	}

	cmd.Flags().StringVar(&transport, "transport", config.TransportStdio, "MCP transport: stdio or http")
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP port when --transport=http")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Maximum time to wait for graceful shutdown")

	return cmd
}

func serveOptions(cfg *config.Config, shutdownTimeout time.Duration) []fx.Option {
	opts := []fx.Option{
		fx.Supply(cfg),
		app.InfraModule,
		mcpserver.Module,
		fx.StopTimeout(shutdownTimeout),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	}

	switch cfg.Server.Transport {
	case config.TransportHTTP:
		opts = append(opts,
			http.Module,
			// Invoke *fiber.App so the OnStart hook that listens is registered.
			fx.Invoke(func(*fiber.App) {}),
		)
	default:
		opts = append(opts, stdio.Module)
	}
	return opts
}
