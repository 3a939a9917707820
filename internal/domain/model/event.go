// Package model contains domain models passed between layers.
package model

// Category buckets for press events, derived from the seconds-left reading
// attached to the tick preceding the press. Names mirror the flair classes
// used by the upstream page.
const (
	CategoryPress1 = "flair-press-1"
	CategoryPress2 = "flair-press-2"
	CategoryPress3 = "flair-press-3"
	CategoryPress4 = "flair-press-4"
	CategoryPress5 = "flair-press-5"
	CategoryPress6 = "flair-press-6"
)

// TickSample is one decoded ticking frame from the stream. Samples are
// consumed immediately by the delta engine and never stored.
type TickSample struct {
	// ParticipantsText is the raw participant counter, digits with
	// thousands separators, e.g. "608,802".
	ParticipantsText string

	// SecondsLeft is the countdown value in [0, 60].
	SecondsLeft float64

	// Session identifies the stream session that produced the sample.
	// Generations are monotonically increasing across reconnects.
	Session uint64
}

// Event is one recorded press, derived from a strictly increasing jump in
// the participant counter. Immutable once created. JSON field names match
// the persisted snapshot and the query surface.
type Event struct {
	// Seconds is the countdown reading from the tick before the jump.
	Seconds float64 `json:"seconds"`

	// Time is the creation timestamp in milliseconds since epoch.
	Time int64 `json:"time"`

	// Color is the category bucket derived from Seconds.
	Color string `json:"color"`

	// Clicks is the magnitude of the participant-count jump.
	Clicks int `json:"clicks"`
}
