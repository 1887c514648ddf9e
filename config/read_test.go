package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/heimdall/pkg/observability"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestReadConfig_Defaults(t *testing.T) {
	cfg, err := ReadConfig(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Heimdall.Enabled)
	assert.False(t, cfg.Heimdall.Debug)
	assert.Equal(t, "https://api.heimdall.dev", cfg.Heimdall.Endpoint)
	assert.Equal(t, "mcp-server", cfg.Heimdall.ServiceName)
	assert.Equal(t, "development", cfg.Heimdall.Environment)
	assert.Equal(t, 100, cfg.Heimdall.BatchSize)
	assert.Equal(t, 5000, cfg.Heimdall.FlushIntervalMS)
	assert.Equal(t, 1000, cfg.Heimdall.MaxQueueSize)
	assert.Equal(t, TransportStdio, cfg.Server.Transport)
	assert.Equal(t, "/mcp", cfg.Server.EndpointPath)
	assert.Equal(t, "info", cfg.Logging.Level)

	obs := cfg.Heimdall.Observability()
	assert.Equal(t, 5*time.Second, obs.FlushInterval)
	assert.NoError(t, obs.Validate())
}

func TestReadConfig_File(t *testing.T) {
	dir := writeConfig(t, `
heimdall:
  service_name: search-server
  environment: production
  api_key: file-key
  batch_size: 50
  metadata:
    team: search
server:
  transport: http
  port: 9000
logging:
  level: debug
  format: json
`)

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "search-server", cfg.Heimdall.ServiceName)
	assert.Equal(t, "production", cfg.Heimdall.Environment)
	assert.Equal(t, "file-key", cfg.Heimdall.APIKey)
	assert.Equal(t, 50, cfg.Heimdall.BatchSize)
	assert.Equal(t, map[string]string{"team": "search"}, cfg.Heimdall.Metadata)
	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestReadConfig_Env(t *testing.T) {
	dir := writeConfig(t, `
heimdall:
  api_key: file-key
`)
	t.Setenv("HEIMDALL_API_KEY", "env-key")
	t.Setenv("HEIMDALL_ENDPOINT", "https://test.heimdall.dev")
	t.Setenv("HEIMDALL_SERVICE_NAME", "test-service")
	t.Setenv("HEIMDALL_ENVIRONMENT", "test")
	t.Setenv("HEIMDALL_ENABLED", "false")
	t.Setenv("HEIMDALL_FLUSH_INTERVAL_MS", "250")
	t.Setenv("HEIMDALL_SESSION_ID", "env-session")
	t.Setenv("HEIMDALL_USER_ID", "env-user")
	t.Setenv("HEIMDALL_SERVER_TRANSPORT", "http")
	t.Setenv("HEIMDALL_SERVER_PORT", "9090")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Heimdall.APIKey)
	assert.Equal(t, "https://test.heimdall.dev", cfg.Heimdall.Endpoint)
	assert.Equal(t, "test-service", cfg.Heimdall.ServiceName)
	assert.Equal(t, "test", cfg.Heimdall.Environment)
	assert.False(t, cfg.Heimdall.Enabled)
	assert.Equal(t, 250, cfg.Heimdall.FlushIntervalMS)
	assert.Equal(t, "env-session", cfg.Heimdall.SessionID)
	assert.Equal(t, "env-user", cfg.Heimdall.UserID)
	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestReadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{name: "batch size", env: map[string]string{"HEIMDALL_BATCH_SIZE": "0"}, wantErr: observability.ErrBatchSize},
		{name: "flush interval", env: map[string]string{"HEIMDALL_FLUSH_INTERVAL_MS": "50"}, wantErr: observability.ErrFlushInterval},
		{name: "queue smaller than batch", env: map[string]string{"HEIMDALL_MAX_QUEUE_SIZE": "10"}, wantErr: observability.ErrQueueSize},
		{name: "transport", env: map[string]string{"HEIMDALL_SERVER_TRANSPORT": "grpc"}, wantErr: ErrUnknownTransport},
		{name: "port", env: map[string]string{"HEIMDALL_SERVER_TRANSPORT": "http", "HEIMDALL_SERVER_PORT": "0"}, wantErr: ErrInvalidPort},
		{name: "log file path", env: map[string]string{"HEIMDALL_LOGGING_OUTPUT_FILE_ENABLED": "true"}, wantErr: ErrLogFilePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := ReadConfig(t.TempDir())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReadConfig_MalformedFile(t *testing.T) {
	dir := writeConfig(t, "heimdall: [unclosed")
	_, err := ReadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestMustReadConfig(t *testing.T) {
	cfg := MustReadConfig(t.TempDir())
	assert.Same(t, cfg, GlobalConf)

	t.Setenv("HEIMDALL_BATCH_SIZE", "0")
	assert.Panics(t, func() { MustReadConfig(t.TempDir()) })
}
