package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Alijeyrad/heimdall/pkg/observability"
)

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "HEIMDALL"
)

var GlobalConf *Config

// legacyEnv maps keys to the flat variable names used by existing
// deployments, e.g. HEIMDALL_API_KEY rather than HEIMDALL_HEIMDALL_API_KEY.
var legacyEnv = map[string]string{
	"heimdall.api_key":           "HEIMDALL_API_KEY",
	"heimdall.endpoint":          "HEIMDALL_ENDPOINT",
	"heimdall.service_name":      "HEIMDALL_SERVICE_NAME",
	"heimdall.service_version":   "HEIMDALL_SERVICE_VERSION",
	"heimdall.environment":       "HEIMDALL_ENVIRONMENT",
	"heimdall.enabled":           "HEIMDALL_ENABLED",
	"heimdall.debug":             "HEIMDALL_DEBUG",
	"heimdall.batch_size":        "HEIMDALL_BATCH_SIZE",
	"heimdall.flush_interval_ms": "HEIMDALL_FLUSH_INTERVAL_MS",
	"heimdall.max_queue_size":    "HEIMDALL_MAX_QUEUE_SIZE",
	"heimdall.session_id":        "HEIMDALL_SESSION_ID",
	"heimdall.user_id":           "HEIMDALL_USER_ID",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("heimdall.enabled", true)
	v.SetDefault("heimdall.debug", false)
	v.SetDefault("heimdall.api_key", "")
	v.SetDefault("heimdall.endpoint", observability.DefaultEndpoint)
	v.SetDefault("heimdall.service_name", observability.DefaultServiceName)
	v.SetDefault("heimdall.service_version", "")
	v.SetDefault("heimdall.environment", observability.DefaultEnvironment)
	v.SetDefault("heimdall.batch_size", observability.DefaultBatchSize)
	v.SetDefault("heimdall.flush_interval_ms", observability.DefaultFlushInterval.Milliseconds())
	v.SetDefault("heimdall.max_queue_size", observability.DefaultMaxQueueSize)
	v.SetDefault("heimdall.sampling_rate", 1.0)
	v.SetDefault("heimdall.session_id", "")
	v.SetDefault("heimdall.user_id", "")

	v.SetDefault("server.name", "heimdall-example")
	v.SetDefault("server.version", "0.1.0")
	v.SetDefault("server.transport", TransportStdio)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.endpoint_path", "/mcp")
	v.SetDefault("server.stateless", false)
	v.SetDefault("server.shutdown_seconds", 30)
	v.SetDefault("server.cors.enabled", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output.stdout", true)
	v.SetDefault("logging.output.file.enabled", false)
	v.SetDefault("logging.output.file.max_size_mb", 100)
	v.SetDefault("logging.output.file.max_backups", 3)
	v.SetDefault("logging.output.file.max_age_days", 28)
}

// ReadConfig loads config.yaml from configPath when present, then applies
// HEIMDALL_* environment overrides. A missing file is not an error.
func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType(ConfigFormat)
	v.AddConfigPath(configPath)

	setDefaults(v)

	// e.g. HEIMDALL_SERVER_PORT overrides server.port
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}
