package resolver

import (
	"net/http"
	"time"

	"github.com/treyp/clickhistory/pkg/logger"
)

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithSourceURL sets the page fetched for endpoint discovery.
func WithSourceURL(url string) Option {
	return func(r *Resolver) {
		if url != "" {
			r.sourceURL = url
		}
	}
}

// WithRetryInterval sets the delay between failed attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithHTTPClient sets the client used for the source fetch.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.client = c
		}
	}
}

// WithLogger sets a custom logger for the resolver.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}
