package config

import "errors"

var (
	ErrUnknownTransport = errors.New("server.transport must be stdio or http")
	ErrInvalidPort      = errors.New("server.port out of range")
	ErrLogFilePath      = errors.New("logging.output.file.path is required when file output is enabled")
)
