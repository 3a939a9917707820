package persistence

import (
	"errors"
	"fmt"
)

// Sentinel kinds for persistence errors.
var (
	ErrInvalidURL   = errors.New("invalid persistence url")
	ErrLoadSnapshot = errors.New("load snapshot failed")
	ErrSaveSnapshot = errors.New("save snapshot failed")
)

func wrapConfig(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidURL, err)
}

func wrapLoad(err error) error {
	return fmt.Errorf("%w: %w", ErrLoadSnapshot, err)
}

func wrapSave(err error) error {
	return fmt.Errorf("%w: %w", ErrSaveSnapshot, err)
}
