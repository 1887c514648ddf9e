package stdio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"
)

// Module runs the MCP server over stdin/stdout for the lifetime of the app.
var Module = fx.Module("stdio", fx.Invoke(Register))

type Params struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	MCP        *server.MCPServer
}

// Register starts the stdio loop on app start. When the client closes
// stdin the whole app shuts down.
func Register(p Params) {
	RegisterWithIO(p, os.Stdin, os.Stdout)
}

// RegisterWithIO is Register with explicit streams.
func RegisterWithIO(p Params, in io.Reader, out io.Writer) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	srv := server.NewStdioServer(p.MCP)
	srv.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				err := srv.Listen(ctx, in, out)
				if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
					slog.Error("stdio transport stopped", "error", err)
				}
				if ctx.Err() == nil {
					_ = p.Shutdowner.Shutdown()
				}
			}()
			slog.Info("MCP stdio server started")
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
