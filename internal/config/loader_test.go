package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/treyp/clickhistory/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8001")
				convey.So(cfg.MaxEntries, convey.ShouldEqual, 1000)
				convey.So(cfg.SourceURL, convey.ShouldEqual, "http://www.reddit.com/r/thebutton")
				convey.So(cfg.RetryIntervalMS, convey.ShouldEqual, 5000)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CLICKHISTORY_ADDR", ":9001")
			_ = os.Setenv("CLICKHISTORY_MAX_ENTRIES", "250")
			_ = os.Setenv("CLICKHISTORY_RETRY_INTERVAL_MS", "100")
			_ = os.Setenv("CLICKHISTORY_REDIS_URL", "redis://cache:6379/1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9001")
				convey.So(cfg.MaxEntries, convey.ShouldEqual, 250)
				convey.So(cfg.RetryIntervalMS, convey.ShouldEqual, 100)
				convey.So(cfg.RedisURL, convey.ShouldEqual, "redis://cache:6379/1")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":9002"
max_entries: 500
source_url: "http://example.com/page"
queue_size: 64
`
			tmpFile := createTempConfigFile(t, yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CLICKHISTORY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9002")
				convey.So(cfg.MaxEntries, convey.ShouldEqual, 500)
				convey.So(cfg.SourceURL, convey.ShouldEqual, "http://example.com/page")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9002"
max_entries: 500
`
			tmpFile := createTempConfigFile(t, yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CLICKHISTORY_CONFIG", tmpFile)
			_ = os.Setenv("CLICKHISTORY_ADDR", ":9003")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9003")   // overridden by env
				convey.So(cfg.MaxEntries, convey.ShouldEqual, 500) // from file
			})
		})

		convey.Convey("When only the bare PORT env var is set", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PORT", "8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the listen address is derived from it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			})
		})

		convey.Convey("When a value fails validation", func() {
			clearConfigEnvVars()
			_ = os.Setenv("CLICKHISTORY_MAX_ENTRIES", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails with an invalid-config error", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"CLICKHISTORY_CONFIG",
		"CLICKHISTORY_ADDR",
		"CLICKHISTORY_MAX_ENTRIES",
		"CLICKHISTORY_SOURCE_URL",
		"CLICKHISTORY_REDIS_URL",
		"CLICKHISTORY_RETRY_INTERVAL_MS",
		"CLICKHISTORY_QUEUE_SIZE",
		"CLICKHISTORY_LOG_LEVEL",
		"PORT",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "clickhistory-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp config file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("failed to write temp config file: %v", err)
	}
	_ = f.Close()
	return f.Name()
}
