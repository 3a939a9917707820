// Package resolver discovers the streaming endpoint by scanning a source
// web page for a secure-websocket URL.
package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/treyp/clickhistory/pkg/logger"
	"github.com/treyp/clickhistory/pkg/metrics"
)

// DefaultSourceURL is the page scanned for the endpoint.
const DefaultSourceURL = "http://www.reddit.com/r/thebutton"

// DefaultRetryInterval is the fixed delay between failed attempts.
const DefaultRetryInterval = 5 * time.Second

// maxBodyBytes caps how much of the source page is read.
const maxBodyBytes = 4 << 20

// endpointPattern matches the first wss:// URL up to the closing quote.
var endpointPattern = regexp.MustCompile(`"(wss://[^"]+)`)

// Resolver fetches the source page and extracts the endpoint, retrying on
// a fixed interval until it succeeds or the context is canceled. Failures
// are never surfaced per-attempt; only context cancellation ends the loop.
type Resolver struct {
	sourceURL string
	interval  time.Duration
	client    *http.Client
	logger    logger.Logger
}

// New creates a resolver with configuration options.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		sourceURL: DefaultSourceURL,
		interval:  DefaultRetryInterval,
		client:    &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logger.Get().Named("resolver")
	}

	return r
}

// Resolve loops until an endpoint is found or ctx is canceled.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	for {
		r.logger.Info(ctx, "finding stream endpoint", logger.String("source", r.sourceURL))
		metrics.RecordResolverAttempt()

		endpoint, err := r.attempt(ctx)
		if err == nil {
			r.logger.Info(ctx, "stream endpoint found", logger.String("endpoint", endpoint))
			return endpoint, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		r.logger.Warn(ctx, "endpoint resolution failed; retrying",
			logger.Error(err),
			logger.Duration("retry_in", r.interval),
		)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.interval):
		}
	}
}

// attempt performs a single fetch-and-extract. Every failure branch
// returns; nothing falls through to the extraction on a bad response.
func (r *Resolver) attempt(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.sourceURL, nil)
	if err != nil {
		metrics.RecordResolverFailure("request")
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		metrics.RecordResolverFailure("transport")
		return "", fmt.Errorf("fetch source page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordResolverFailure("status")
		return "", fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordResolverFailure("body")
		return "", fmt.Errorf("read source page: %w", err)
	}

	m := endpointPattern.FindSubmatch(body)
	if len(m) < 2 {
		metrics.RecordResolverFailure("no_match")
		return "", ErrNoEndpoint
	}

	return string(m[1]), nil
}
