package config_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/okian/tourdesk/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
			convey.So(cfg.DefaultPageSize, convey.ShouldEqual, 10)
			convey.So(cfg.MaxPageSize, convey.ShouldEqual, 100)
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 1<<20)
			convey.So(cfg.SeedData, convey.ShouldBeTrue)
			convey.So(cfg.ReviewQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.ReviewWorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DecisionTTL(), convey.ShouldEqual, 0)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid values", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = " " }},
			{"zero default page", func(c *config.Config) { c.DefaultPageSize = 0 }},
			{"max below default", func(c *config.Config) { c.MaxPageSize = 5 }},
			{"zero body limit", func(c *config.Config) { c.MaxBodyBytes = 0 }},
			{"zero queue", func(c *config.Config) { c.ReviewQueueSize = 0 }},
			{"zero workers", func(c *config.Config) { c.ReviewWorkerCount = 0 }},
			{"negative ttl", func(c *config.Config) { c.DecisionTTLSeconds = -1 }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
		}
		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)
			convey.Convey("Then "+tc.name+" should be rejected", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
				convey.So(cfg.DefaultPageSize, convey.ShouldEqual, 10)
				convey.So(cfg.SeedData, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TOURDESK_ADDR", ":8080")
			_ = os.Setenv("TOURDESK_MAX_PAGE_SIZE", "50")
			_ = os.Setenv("TOURDESK_SEED_DATA", "false")
			_ = os.Setenv("TOURDESK_REVIEW_WORKER_COUNT", "3")
			_ = os.Setenv("TOURDESK_DECISION_TTL_SECONDS", "60")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxPageSize, convey.ShouldEqual, 50)
				convey.So(cfg.SeedData, convey.ShouldBeFalse)
				convey.So(cfg.ReviewWorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.DecisionTTL().Seconds(), convey.ShouldEqual, 60)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
default_page_size: 20
max_page_size: 200
log_format: json
review_queue_size: 16
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TOURDESK_CONFIG", tmpFile)
			_ = os.Setenv("TOURDESK_ADDR", ":8081")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.DefaultPageSize, convey.ShouldEqual, 20)
				convey.So(cfg.MaxPageSize, convey.ShouldEqual, 200)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.ReviewQueueSize, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("TOURDESK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return ErrLoadConfig", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a missing file", func() {
			_ = os.Setenv("TOURDESK_CONFIG", "/nonexistent/tourdesk.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return ErrLoadConfig", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When env vars produce an invalid config", func() {
			_ = os.Setenv("TOURDESK_DEFAULT_PAGE_SIZE", "500")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"TOURDESK_CONFIG",
		"TOURDESK_ADDR",
		"TOURDESK_LOG_LEVEL",
		"TOURDESK_LOG_FORMAT",
		"TOURDESK_DEFAULT_PAGE_SIZE",
		"TOURDESK_MAX_PAGE_SIZE",
		"TOURDESK_MAX_BODY_BYTES",
		"TOURDESK_SEED_DATA",
		"TOURDESK_REVIEW_QUEUE_SIZE",
		"TOURDESK_REVIEW_WORKER_COUNT",
		"TOURDESK_DECISION_TTL_SECONDS",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "tourdesk-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	return f.Name()
}
