package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	. "github.com/smartystreets/goconvey/convey"

	persistence "github.com/treyp/clickhistory/internal/adapters/persistence"
	"github.com/treyp/clickhistory/internal/domain/model"
	"github.com/treyp/clickhistory/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func newGateway(t *testing.T, mr *miniredis.Miniredis) *persistence.Gateway {
	t.Helper()
	g, err := persistence.New("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("gateway construction failed: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestGateway(t *testing.T) {
	Convey("Given a persistence gateway backed by miniredis", t, func() {
		mr := miniredis.RunT(t)
		ctx := context.Background()
		g := newGateway(t, mr)

		events := []model.Event{
			{Seconds: 55, Time: 1428293287000, Color: model.CategoryPress6, Clicks: 50},
			{Seconds: 40, Time: 1428293288000, Color: model.CategoryPress4, Clicks: 3},
		}

		Convey("When a snapshot is saved and loaded back", func() {
			So(g.Save(ctx, events), ShouldBeNil)

			loaded, err := g.Load(ctx)

			Convey("Then the round-trip is structurally equal", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldResemble, events)
			})
		})

		Convey("When loading with no persisted row", func() {
			loaded, err := g.Load(ctx)

			Convey("Then an empty history is returned", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldBeEmpty)
			})

			Convey("And an empty placeholder row is written", func() {
				payload, err := mr.Get(persistence.DefaultKey)
				So(err, ShouldBeNil)
				So(payload, ShouldEqual, "[]")
			})
		})

		Convey("When the persisted row is corrupt", func() {
			mr.Set(persistence.DefaultKey, "{not json")

			_, err := g.Load(ctx)

			Convey("Then loading fails with the load sentinel", func() {
				So(errors.Is(err, persistence.ErrLoadSnapshot), ShouldBeTrue)
			})
		})

		Convey("When the backend is unreachable", func() {
			mr.Close()

			Convey("Then loads fail without panicking", func() {
				_, err := g.Load(ctx)
				So(errors.Is(err, persistence.ErrLoadSnapshot), ShouldBeTrue)
			})

			Convey("And saves fail with the save sentinel", func() {
				err := g.Save(ctx, events)
				So(errors.Is(err, persistence.ErrSaveSnapshot), ShouldBeTrue)
			})
		})

		Convey("When a nil slice is saved", func() {
			So(g.Save(ctx, nil), ShouldBeNil)

			Convey("Then the row holds an empty array, not null", func() {
				payload, err := mr.Get(persistence.DefaultKey)
				So(err, ShouldBeNil)
				So(payload, ShouldEqual, "[]")
			})
		})

		Convey("When rapid successive saves race", func() {
			// Last write wins on the fixed key; each write is a full
			// snapshot so no interleaving can corrupt the row.
			for i := 0; i < 20; i++ {
				So(g.Save(ctx, events[:1]), ShouldBeNil)
			}
			So(g.Save(ctx, events), ShouldBeNil)

			loaded, err := g.Load(ctx)
			So(err, ShouldBeNil)
			So(loaded, ShouldResemble, events)
		})
	})
}

func TestGatewayInvalidURL(t *testing.T) {
	_, err := persistence.New("not-a-url")
	if !errors.Is(err, persistence.ErrInvalidURL) {
		t.Fatalf("expected invalid url error, got %v", err)
	}
}

func TestGatewayCustomKey(t *testing.T) {
	mr := miniredis.RunT(t)
	g, err := persistence.New("redis://"+mr.Addr(), persistence.WithKey("history:test"))
	if err != nil {
		t.Fatalf("gateway construction failed: %v", err)
	}
	defer func() { _ = g.Close() }()

	ctx := context.Background()
	if err := g.Save(ctx, []model.Event{{Clicks: 1}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := mr.Get("history:test"); err != nil {
		t.Fatalf("expected snapshot under custom key: %v", err)
	}
}
