package heimdall

import "errors"

var (
	ErrAlreadyInitialized = errors.New("heimdall client already initialized")
	ErrInvalidConfig      = errors.New("invalid heimdall configuration")
)
