package config

import (
	"fmt"
	"time"

	"github.com/Alijeyrad/heimdall/pkg/observability"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type Config struct {
	Heimdall HeimdallConfig `mapstructure:"heimdall"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type HeimdallConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	Debug           bool              `mapstructure:"debug"`
	APIKey          string            `mapstructure:"api_key"`
	Endpoint        string            `mapstructure:"endpoint"`
	ServiceName     string            `mapstructure:"service_name"`
	ServiceVersion  string            `mapstructure:"service_version"`
	Environment     string            `mapstructure:"environment"`
	BatchSize       int               `mapstructure:"batch_size"`
	FlushIntervalMS int               `mapstructure:"flush_interval_ms"`
	MaxQueueSize    int               `mapstructure:"max_queue_size"`
	SamplingRate    float64           `mapstructure:"sampling_rate"`
	Metadata        map[string]string `mapstructure:"metadata"`

	// SessionID and UserID seed the client-level identity store.
	SessionID string `mapstructure:"session_id"`
	UserID    string `mapstructure:"user_id"`
}

// Observability converts the file/env representation into the pipeline config.
func (h HeimdallConfig) Observability() observability.Config {
	return observability.Config{
		ServiceName:    h.ServiceName,
		ServiceVersion: h.ServiceVersion,
		Environment:    h.Environment,
		Enabled:        h.Enabled,
		Debug:          h.Debug,
		APIKey:         h.APIKey,
		Endpoint:       h.Endpoint,
		BatchSize:      h.BatchSize,
		FlushInterval:  time.Duration(h.FlushIntervalMS) * time.Millisecond,
		MaxQueueSize:   h.MaxQueueSize,
		SamplingRate:   h.SamplingRate,
		Metadata:       h.Metadata,
	}
}

type ServerConfig struct {
	Name            string     `mapstructure:"name"`
	Version         string     `mapstructure:"version"`
	Transport       string     `mapstructure:"transport"` // stdio, http
	Port            int        `mapstructure:"port"`
	EndpointPath    string     `mapstructure:"endpoint_path"`
	Stateless       bool       `mapstructure:"stateless"`
	ShutdownSeconds int        `mapstructure:"shutdown_seconds"`
	CORS            CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`        // e.g. "logs/heimdall.log"
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotate after N MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func (c *Config) Validate() error {
	if err := c.Heimdall.Observability().Validate(); err != nil {
		return err
	}

	switch c.Server.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, c.Server.Transport)
	}

	if c.Logging.Output.File.Enabled && c.Logging.Output.File.Path == "" {
		return ErrLogFilePath
	}
	return nil
}
