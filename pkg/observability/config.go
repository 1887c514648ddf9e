package observability

import (
	"fmt"
	"time"
)

const (
	DefaultEndpoint      = "https://api.heimdall.dev"
	DefaultServiceName   = "mcp-server"
	DefaultEnvironment   = "development"
	DefaultBatchSize     = 100
	DefaultFlushInterval = 5 * time.Second
	DefaultMaxQueueSize  = 1000

	// MinFlushInterval is the shortest accepted export interval.
	MinFlushInterval = 100 * time.Millisecond
)

// Config holds observability configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Enabled turns span recording on. A disabled config yields a client that
	// passes every call straight through.
	Enabled bool
	Debug   bool

	// Heimdall platform. Spans are exported to Endpoint + "/v1/traces".
	APIKey   string
	Endpoint string

	// Batching
	BatchSize     int
	FlushInterval time.Duration
	MaxQueueSize  int

	// Sampling
	SamplingRate float64 // 0.0 (none) to 1.0 (all)

	// Metadata is attached to the resource of every span.
	Metadata map[string]string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		ServiceName:   DefaultServiceName,
		Environment:   DefaultEnvironment,
		Enabled:       true,
		Endpoint:      DefaultEndpoint,
		BatchSize:     DefaultBatchSize,
		FlushInterval: DefaultFlushInterval,
		MaxQueueSize:  DefaultMaxQueueSize,
		SamplingRate:  1.0,
	}
}

// Validate checks the batching parameters.
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: got %d", ErrBatchSize, c.BatchSize)
	}
	if c.FlushInterval < MinFlushInterval {
		return fmt.Errorf("%w: got %s", ErrFlushInterval, c.FlushInterval)
	}
	if c.MaxQueueSize < c.BatchSize {
		return fmt.Errorf("%w: queue %d, batch %d", ErrQueueSize, c.MaxQueueSize, c.BatchSize)
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		return fmt.Errorf("%w: got %v", ErrSamplingRate, c.SamplingRate)
	}
	return nil
}
