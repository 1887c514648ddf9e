package app

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/Alijeyrad/heimdall/config"
	"github.com/Alijeyrad/heimdall/pkg/heimdall"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideHeimdallClient),
)

// ProvideHeimdallClient installs the process-wide client and flushes it on
// shutdown.
func ProvideHeimdallClient(lc fx.Lifecycle, cfg *config.Config) (*heimdall.Client, error) {
	client, err := heimdall.Init(context.Background(), cfg.Heimdall.Observability())
	if err != nil {
		return nil, err
	}
	client.SetSessionID(cfg.Heimdall.SessionID)
	client.SetUserID(cfg.Heimdall.UserID)

	slog.Info("heimdall initialized",
		"enabled", client.Enabled(),
		"endpoint", cfg.Heimdall.Endpoint,
		"environment", cfg.Heimdall.Environment,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down heimdall client")
			return heimdall.Shutdown(ctx)
		},
	})
	return client, nil
}
