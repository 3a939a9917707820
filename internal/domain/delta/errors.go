package delta

import (
	"errors"
	"fmt"
)

// ErrMalformedCount marks a participant counter that could not be parsed.
var ErrMalformedCount = errors.New("malformed participant count")

func wrapParse(text string, err error) error {
	return fmt.Errorf("%w: %q: %w", ErrMalformedCount, text, err)
}
