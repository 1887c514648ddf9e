package http

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"

	"github.com/Alijeyrad/heimdall/config"
	"github.com/Alijeyrad/heimdall/internal/api/http/middleware"
	"github.com/Alijeyrad/heimdall/pkg/heimdall"
	"github.com/Alijeyrad/heimdall/pkg/observability"
	"github.com/Alijeyrad/heimdall/pkg/reqctx"
)

// Module provides the HTTP Server to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	MCP       *server.MCPServer
	Client    *heimdall.Client
}

func NewServer(p Params) *fiber.App {
	app := NewApp(p.Cfg, p.MCP, p.Client)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
					slog.Error("HTTP server error", "error", err)
				}
			}()
			slog.Info("MCP HTTP server listening", "addr", addr, "endpoint", p.Cfg.Server.EndpointPath)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

// NewApp builds the Fiber front: global middleware, operational routes and
// the streamable HTTP MCP endpoint.
func NewApp(cfg *config.Config, mcpServer *server.MCPServer, client *heimdall.Client) *fiber.App {
	app := fiber.New(fiber.Config{AppName: cfg.Server.Name})

	configureGlobalMiddleware(app, cfg, client)

	app.Get("/healthz", health(cfg, client))
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		// ready while the client this app was built with is still installed
		Probe: func(fiber.Ctx) bool { return heimdall.Current() == client },
	}))
	app.Get("/whoami", whoami)
	if p := client.Provider(); p != nil {
		app.Get("/metrics", adaptor.HTTPHandler(p.MetricsHandler()))
	}

	opts := []server.StreamableHTTPOption{
		server.WithEndpointPath(cfg.Server.EndpointPath),
		server.WithHTTPContextFunc(reqctx.HTTPContextFunc),
	}
	// WithStateLess ignores its argument and always drops session ids.
	if cfg.Server.Stateless {
		opts = append(opts, server.WithStateLess(true))
	}
	streamable := server.NewStreamableHTTPServer(mcpServer, opts...)
	app.All(cfg.Server.EndpointPath, adaptor.HTTPHandlerWithContext(streamable))

	return app
}

func configureGlobalMiddleware(app *fiber.App, cfg *config.Config, client *heimdall.Client) {
	app.Use(middleware.RequestID())
	app.Use(recoverer.New())
	app.Use(helmet.New())

	if client.Enabled() {
		app.Use(observability.FiberMiddleware(cfg.Heimdall.ServiceName))
	}

	if cfg.Server.CORS.Enabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.Server.CORS.AllowOrigins,
			AllowHeaders:  []string{reqctx.HeaderSessionID, reqctx.HeaderAuthorization, "Content-Type"},
			ExposeHeaders: []string{reqctx.HeaderSessionID, middleware.HeaderRequestID},
		}))
	}

	app.Use(logger.New(logger.Config{
		Format: "${ip} - [${time}] [req_id=${locals:request_id}] ${method} ${url} ${status}\n",
		Stream: logWriter{},
	}))

	app.Use(reqctx.FiberMiddleware())
}

// logWriter sends access log lines through the default slog logger so stdio
// transports keep stdout clean.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	slog.Debug("http access", "line", string(p))
	return len(p), nil
}

func health(cfg *config.Config, client *heimdall.Client) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   cfg.Heimdall.ServiceName,
			"version":   cfg.Server.Version,
			"transport": cfg.Server.Transport,
			"tracing":   client.Enabled(),
		})
	}
}

// whoami echoes the identity Heimdall resolves from the request headers.
func whoami(c fiber.Ctx) error {
	rc, _ := reqctx.FromContext(c.Context())
	rid, _ := middleware.RequestIDFromFiber(c)
	return c.JSON(fiber.Map{
		"request_id": rid,
		"session_id": rc.SessionID(),
		"user_id":    rc.UserID(),
		"claims":     rc.Claims(),
	})
}
