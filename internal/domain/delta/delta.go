// Package delta converts raw counter samples into discrete press events.
//
// The engine is stateful: it remembers the previous participant count and
// the previous seconds-left reading, and emits one event per strictly
// increasing counter jump. State belongs to a single stream session; a
// reconnect must start from a reset engine so the first sample of the new
// session never emits against stale state.
package delta

import (
	"strconv"
	"strings"
	"time"

	"github.com/treyp/clickhistory/internal/domain/model"
)

// Engine holds the last-seen counter and countdown values.
// Not safe for concurrent use; it is owned by the single pipeline worker.
type Engine struct {
	prevParticipants int
	prevSeconds      float64
	primed           bool

	now func() time.Time
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine with no prior state.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reset clears all held state. Called when a new stream session starts.
func (e *Engine) Reset() {
	e.prevParticipants = 0
	e.prevSeconds = 0
	e.primed = false
}

// OnSample evaluates one tick sample against the held state.
//
// An event is emitted only when a previous count exists and the new count
// is strictly greater. The emitted event carries the seconds-left reading
// from the tick BEFORE the jump, not the current one. State is updated to
// the current sample's values whether or not an event was emitted.
//
// A malformed participant counter leaves the state untouched and returns
// an error; the caller decides to drop the sample.
func (e *Engine) OnSample(s model.TickSample) (model.Event, bool, error) {
	count, err := ParseParticipants(s.ParticipantsText)
	if err != nil {
		return model.Event{}, false, err
	}

	var evt model.Event
	emitted := false
	if e.primed && count > e.prevParticipants {
		evt = model.Event{
			Seconds: e.prevSeconds,
			Time:    e.now().UnixMilli(),
			Color:   Bucket(e.prevSeconds),
			Clicks:  count - e.prevParticipants,
		}
		emitted = true
	}

	e.prevParticipants = count
	e.prevSeconds = s.SecondsLeft
	e.primed = true

	return evt, emitted, nil
}

// ParseParticipants parses a participant counter string, stripping
// thousands separators.
func ParseParticipants(text string) (int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, wrapParse(text, err)
	}
	return n, nil
}
