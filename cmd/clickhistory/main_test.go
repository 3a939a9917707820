package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/treyp/clickhistory/internal/adapters/http/api"
	app "github.com/treyp/clickhistory/internal/app"
	"github.com/treyp/clickhistory/internal/config"
	"github.com/treyp/clickhistory/pkg/logger"
	"github.com/treyp/clickhistory/pkg/metrics"
)

func init() {
	_ = logger.Init()
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("CLICKHISTORY_ADDR", ":8080")
			_ = os.Setenv("CLICKHISTORY_MAX_ENTRIES", "500")
			_ = os.Setenv("CLICKHISTORY_QUEUE_SIZE", "2048")
			defer func() {
				_ = os.Unsetenv("CLICKHISTORY_ADDR")
				_ = os.Unsetenv("CLICKHISTORY_MAX_ENTRIES")
				_ = os.Unsetenv("CLICKHISTORY_QUEUE_SIZE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxEntries, convey.ShouldEqual, 500)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 2048)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithMaxEntries(500),
					app.WithQueueSize(2048),
					app.WithRetryInterval(time.Second),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			mux := http.NewServeMux()
			apiServer := api.NewServer(svc, svc)
			apiServer.Register(context.Background(), mux)

			srv := &http.Server{
				Addr:              ":0",
				Handler:           mux,
				ReadTimeout:       readTimeout,
				WriteTimeout:      writeTimeout,
				IdleTimeout:       idleTimeout,
				ReadHeaderTimeout: readHeaderTimeout,
			}

			convey.Convey("Then the server should carry the expected timeouts", func() {
				convey.So(srv.ReadTimeout, convey.ShouldEqual, 10*time.Second)
				convey.So(srv.WriteTimeout, convey.ShouldEqual, 10*time.Second)
				convey.So(srv.IdleTimeout, convey.ShouldEqual, 60*time.Second)
			})
		})

		convey.Convey("When testing metrics updates", func() {
			convey.Convey("Then system metrics should update without panicking", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			})

			convey.Convey("And the registry should be available", func() {
				convey.So(metrics.GetRegistry(), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestSystemMetricsUpdaterStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		startSystemMetricsUpdater(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("system metrics updater did not stop on cancel")
	}
}
