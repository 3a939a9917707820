// Package stream owns the websocket session that consumes the live tick
// feed.
//
// A session never retries its own connection: when the peer closes, the
// network fails, or the protocol breaks, Open returns and the caller goes
// back to endpoint resolution.
package stream

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/treyp/clickhistory/internal/adapters/mq/queue"
	"github.com/treyp/clickhistory/pkg/logger"
	"github.com/treyp/clickhistory/pkg/metrics"
)

// tickKind is the only frame type acted upon; everything else is ignored.
const tickKind = "ticking"

// Sink receives decoded tick samples. Satisfied by the ingest queue.
type Sink interface {
	Enqueue(ctx context.Context, s queue.Sample) bool
}

// tickFrame mirrors the wire shape of inbound frames.
//
// Sample tick data:
//
//	{
//	    "type": "ticking",
//	    "payload": {
//	        "participants_text": "608,802",
//	        "tick_mac": "50e7a9fd2e4c8feae6851884f91d65908cceb06b",
//	        "seconds_left": 60.0,
//	        "now_str": "2015-04-06-04-08-07"
//	    }
//	}
type tickFrame struct {
	Type    string `json:"type"`
	Payload struct {
		ParticipantsText string  `json:"participants_text"`
		SecondsLeft      float64 `json:"seconds_left"`
	} `json:"payload"`
}

// Session dials a streaming endpoint and forwards tick samples to a sink.
// One live instance at a time; the caller serializes Open calls.
type Session struct {
	sink   Sink
	dialer *websocket.Dialer
	logger logger.Logger
}

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithDialer sets the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(s *Session) {
		if d != nil {
			s.dialer = d
		}
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates a session forwarding samples to sink.
func NewSession(sink Sink, opts ...Option) *Session {
	s := &Session{
		sink:   sink,
		dialer: websocket.DefaultDialer,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("stream")
	}

	return s
}

// Open connects to endpoint and consumes frames until the connection
// closes or ctx is canceled. Samples are tagged with gen so late arrivals
// from a superseded session can be discarded downstream. Returns nil on a
// context-driven close, the transport error otherwise.
func (s *Session) Open(ctx context.Context, endpoint string, gen uint64) error {
	conn, resp, err := s.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return err
	}
	metrics.RecordStreamConnect()
	defer metrics.RecordStreamDisconnect()

	s.logger.Info(ctx, "listening to stream messages",
		logger.String("endpoint", endpoint),
		logger.Uint64("session", gen),
	)

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer func() { _ = conn.Close() }()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		metrics.RecordStreamMessage()

		var frame tickFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			// Not the expected discriminated shape; drop silently.
			metrics.RecordStreamIgnored()
			continue
		}
		if frame.Type != tickKind {
			metrics.RecordStreamIgnored()
			continue
		}

		sample := queue.Sample{
			ParticipantsText: frame.Payload.ParticipantsText,
			SecondsLeft:      frame.Payload.SecondsLeft,
			Session:          gen,
		}
		if !s.sink.Enqueue(ctx, sample) {
			s.logger.Warn(ctx, "ingest queue rejected sample; dropping",
				logger.Uint64("session", gen),
			)
		}
	}
}
