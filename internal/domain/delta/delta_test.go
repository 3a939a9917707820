package delta_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	delta "github.com/treyp/clickhistory/internal/domain/delta"
	"github.com/treyp/clickhistory/internal/domain/model"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestEngine_OnSample(t *testing.T) {
	Convey("Given a fresh delta engine", t, func() {
		engine := delta.NewEngine(delta.WithClock(fixedClock(1428293287000)))

		Convey("When the first sample of a session arrives", func() {
			_, emitted, err := engine.OnSample(model.TickSample{ParticipantsText: "100", SecondsLeft: 55})

			Convey("Then no event is emitted", func() {
				So(err, ShouldBeNil)
				So(emitted, ShouldBeFalse)
			})
		})

		Convey("When the counter jumps after a first sample", func() {
			_, _, err := engine.OnSample(model.TickSample{ParticipantsText: "100", SecondsLeft: 55})
			So(err, ShouldBeNil)

			evt, emitted, err := engine.OnSample(model.TickSample{ParticipantsText: "150", SecondsLeft: 40})

			Convey("Then one event is emitted with the prior countdown reading", func() {
				So(err, ShouldBeNil)
				So(emitted, ShouldBeTrue)
				So(evt.Clicks, ShouldEqual, 50)
				So(evt.Seconds, ShouldEqual, 55)
				So(evt.Color, ShouldEqual, model.CategoryPress6)
				So(evt.Time, ShouldEqual, 1428293287000)
			})
		})

		Convey("When the counter uses thousands separators", func() {
			_, _, err := engine.OnSample(model.TickSample{ParticipantsText: "608,802", SecondsLeft: 60})
			So(err, ShouldBeNil)

			evt, emitted, err := engine.OnSample(model.TickSample{ParticipantsText: "608,805", SecondsLeft: 59})

			Convey("Then the delta is computed on the parsed integers", func() {
				So(err, ShouldBeNil)
				So(emitted, ShouldBeTrue)
				So(evt.Clicks, ShouldEqual, 3)
				So(evt.Seconds, ShouldEqual, 60)
			})
		})

		Convey("When every sample strictly increases the counter", func() {
			counts := []int{100, 103, 110, 111, 150}
			emittedTotal := 0
			clicksTotal := 0
			for i, c := range counts {
				evt, emitted, err := engine.OnSample(model.TickSample{
					ParticipantsText: fmt.Sprintf("%d", c),
					SecondsLeft:      float64(60 - i),
				})
				So(err, ShouldBeNil)
				if emitted {
					emittedTotal++
					clicksTotal += evt.Clicks
				}
			}

			Convey("Then exactly one event per sample after the first is emitted", func() {
				So(emittedTotal, ShouldEqual, len(counts)-1)
				So(clicksTotal, ShouldEqual, 50)
			})
		})

		Convey("When the counter is non-increasing", func() {
			_, _, err := engine.OnSample(model.TickSample{ParticipantsText: "200", SecondsLeft: 50})
			So(err, ShouldBeNil)

			_, emittedSame, err := engine.OnSample(model.TickSample{ParticipantsText: "200", SecondsLeft: 49})
			So(err, ShouldBeNil)
			_, emittedLower, err := engine.OnSample(model.TickSample{ParticipantsText: "180", SecondsLeft: 48})
			So(err, ShouldBeNil)

			Convey("Then nothing is emitted", func() {
				So(emittedSame, ShouldBeFalse)
				So(emittedLower, ShouldBeFalse)
			})

			Convey("And the state still tracks the latest values", func() {
				// A jump from the lowered baseline must emit against 180,
				// with the countdown reading recorded at that sample.
				evt, emitted, err := engine.OnSample(model.TickSample{ParticipantsText: "185", SecondsLeft: 47})
				So(err, ShouldBeNil)
				So(emitted, ShouldBeTrue)
				So(evt.Clicks, ShouldEqual, 5)
				So(evt.Seconds, ShouldEqual, 48)
			})
		})

		Convey("When a sample carries a malformed counter", func() {
			_, _, err := engine.OnSample(model.TickSample{ParticipantsText: "100", SecondsLeft: 55})
			So(err, ShouldBeNil)

			_, emitted, err := engine.OnSample(model.TickSample{ParticipantsText: "garbage", SecondsLeft: 54})

			Convey("Then the sample is rejected with ErrMalformedCount", func() {
				So(emitted, ShouldBeFalse)
				So(errors.Is(err, delta.ErrMalformedCount), ShouldBeTrue)
			})

			Convey("And the held state is untouched", func() {
				evt, emitted, err := engine.OnSample(model.TickSample{ParticipantsText: "101", SecondsLeft: 53})
				So(err, ShouldBeNil)
				So(emitted, ShouldBeTrue)
				So(evt.Clicks, ShouldEqual, 1)
				So(evt.Seconds, ShouldEqual, 55)
			})
		})

		Convey("When the engine is reset between sessions", func() {
			_, _, err := engine.OnSample(model.TickSample{ParticipantsText: "100", SecondsLeft: 55})
			So(err, ShouldBeNil)

			engine.Reset()

			_, emitted, err := engine.OnSample(model.TickSample{ParticipantsText: "500", SecondsLeft: 30})

			Convey("Then the first sample after the reset never emits", func() {
				So(err, ShouldBeNil)
				So(emitted, ShouldBeFalse)
			})
		})
	})
}

func TestParseParticipants(t *testing.T) {
	Convey("Given the participant counter parser", t, func() {
		Convey("Plain digit strings parse", func() {
			n, err := delta.ParseParticipants("12345")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 12345)
		})

		Convey("Thousands separators are stripped", func() {
			n, err := delta.ParseParticipants("1,234,567")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1234567)
		})

		Convey("Surrounding whitespace is tolerated", func() {
			n, err := delta.ParseParticipants(" 42 ")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 42)
		})

		Convey("Non-numeric input fails", func() {
			_, err := delta.ParseParticipants("n/a")
			So(errors.Is(err, delta.ErrMalformedCount), ShouldBeTrue)
		})

		Convey("Empty input fails", func() {
			_, err := delta.ParseParticipants("")
			So(errors.Is(err, delta.ErrMalformedCount), ShouldBeTrue)
		})
	})
}
