package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var ErrMethodNotAllowed = errors.New("method not allowed")

// NewKind tags a sentinel with the operation that raised it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}
