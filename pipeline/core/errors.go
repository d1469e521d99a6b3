package core

import (
	"errors"
)

var (
	ErrShuttingDown  = errors.New("pipeline is shutting down")
	ErrInvalidConfig = errors.New("invalid configuration")
)
