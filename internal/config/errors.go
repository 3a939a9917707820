package config

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

func wrap(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}

func wrapMsg(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}
