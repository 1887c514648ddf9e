package logs

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Alijeyrad/heimdall/config"
)

// New builds a logger from config. Stdio transports reserve stdout for the
// protocol, so console output goes to stderr.
func New(cfg *config.Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit console writer.
func NewWithWriter(cfg *config.Config, console io.Writer) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)
	if cfg.Heimdall.Debug {
		level = slog.LevelDebug
	}
	isDev := strings.EqualFold(cfg.Heimdall.Environment, "development")

	var writers []io.Writer

	// Console output unless the file is the only configured sink
	if cfg.Logging.Output.Stdout || !cfg.Logging.Output.File.Enabled {
		writers = append(writers, console)
	}

	// File output with rotation via lumberjack
	if cfg.Logging.Output.File.Enabled {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.Logging.Output.File.Path,
			MaxSize:    cfg.Logging.Output.File.MaxSizeMB,
			MaxBackups: cfg.Logging.Output.File.MaxBackups,
			MaxAge:     cfg.Logging.Output.File.MaxAgeDays,
			Compress:   cfg.Logging.Output.File.Compress,
		})
	}

	w := io.MultiWriter(writers...)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: isDev && level == slog.LevelDebug,
	}

	var h slog.Handler
	if strings.EqualFold(cfg.Logging.Format, "json") || !isDev {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h).With(
		slog.String("service", cfg.Heimdall.ServiceName),
		slog.String("version", cfg.Heimdall.ServiceVersion),
		slog.String("env", cfg.Heimdall.Environment),
	)
}

func Default() *slog.Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: false,
	})
	return slog.New(h).With(slog.String("service", "heimdall"))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
