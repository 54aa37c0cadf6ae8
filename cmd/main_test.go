package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/tourdesk/internal/config"
	"github.com/okian/tourdesk/internal/domain/types"
	"github.com/okian/tourdesk/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestConfigWiring(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		_ = os.Setenv("TOURDESK_ADDR", ":8080")
		_ = os.Setenv("TOURDESK_REVIEW_QUEUE_SIZE", "16")
		_ = os.Setenv("TOURDESK_SEED_DATA", "false")
		defer func() {
			_ = os.Unsetenv("TOURDESK_ADDR")
			_ = os.Unsetenv("TOURDESK_REVIEW_QUEUE_SIZE")
			_ = os.Unsetenv("TOURDESK_SEED_DATA")
		}()

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the service reflects them", func() {
			svc := newService(cfg, logger.Get())
			stats := svc.GetStats()
			convey.So(stats["records"], convey.ShouldEqual, 0)
			convey.So(stats["queueSize"], convey.ShouldEqual, 16)
		})
	})
}

func TestRoutes(t *testing.T) {
	convey.Convey("Given the full mux over a started service", t, func() {
		ctx := context.Background()
		cfg := config.New()
		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		srv := httptest.NewServer(newMux(ctx, cfg, svc))
		defer srv.Close()

		get := func(path string) (*http.Response, string) {
			resp, err := http.Get(srv.URL + path)
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			return resp, string(body)
		}

		convey.Convey("Then the index, assets and docs are served", func() {
			resp, body := get("/")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(body, convey.ShouldContainSubstring, "Tour Guide Requests")

			resp, _ = get("/static/scripts.js")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			resp, _ = get("/api-docs")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			resp, _ = get("/nope")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("Then a submission is visible through the listing", func() {
			resp, err := http.Post(srv.URL+"/submit-user-data", "application/json", strings.NewReader(
				`{"uid":"u-1","username":"Test User","email":"test@example.com","registrationData":{"description":"hello"}}`))
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			resp, body := get("/requests?search=test")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			var page types.Page
			convey.So(json.Unmarshal([]byte(body), &page), convey.ShouldBeNil)
			convey.So(page.TotalItems, convey.ShouldEqual, 1)
			convey.So(page.Requests[0].Name, convey.ShouldEqual, "Test User")
		})

		convey.Convey("Then health and metrics respond", func() {
			resp, body := get("/healthz")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(body, convey.ShouldContainSubstring, "ok")

			resp, body = get("/metrics")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(body, convey.ShouldContainSubstring, "tourdesk_registrations_requests_stored")
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
	})
}
