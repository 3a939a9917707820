package resolver

import "errors"

// Sentinel kinds for resolution failures.
var (
	ErrSourceUnavailable = errors.New("source page unavailable")
	ErrNoEndpoint        = errors.New("no stream endpoint in source page")
)
