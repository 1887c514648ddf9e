package observability

import "errors"

var (
	ErrBatchSize     = errors.New("batch_size must be at least 1")
	ErrFlushInterval = errors.New("flush_interval_ms must be at least 100")
	ErrQueueSize     = errors.New("max_queue_size must be at least batch_size")
	ErrSamplingRate  = errors.New("sampling_rate must be between 0 and 1")
)
