package loadgen

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/tourdesk/internal/adapters/http/api"
	service "github.com/okian/tourdesk/internal/app"
	"github.com/okian/tourdesk/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func newTestServer() (*httptest.Server, *service.Service) {
	svc := service.New()
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return httptest.NewServer(mux), svc
}

func TestGenerate(t *testing.T) {
	Convey("Given a run tag", t, func() {
		tag := NewRunTag()

		Convey("When generating submissions", func() {
			subs := Generate(25, tag)

			Convey("Then every name carries the tag and every uid is unique", func() {
				So(len(subs), ShouldEqual, 25)
				uids := map[string]bool{}
				for _, s := range subs {
					So(strings.Contains(strings.ToLower(s.Username), strings.ToLower(tag)), ShouldBeTrue)
					So(s.Email, ShouldContainSubstring, "@")
					So(s.RegistrationData.UploadedURL, ShouldStartWith, "https://")
					uids[s.UID] = true
				}
				So(len(uids), ShouldEqual, 25)
			})
		})

		Convey("Then two tags differ", func() {
			So(NewRunTag(), ShouldNotEqual, tag)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a live server", t, func() {
		srv, svc := newTestServer()
		defer srv.Close()
		defer svc.Stop()
		out := filepath.Join(t.TempDir(), "subs", "out.json")

		Convey("When a run submits and decides 37 requests", func() {
			stats, err := Run(context.Background(), &Config{
				BaseURL:     srv.URL,
				NumRequests: 37,
				Workers:     4,
				PageSize:    10,
				Decide:      true,
				Timeout:     5 * time.Second,
				OutputFile:  out,
			})

			Convey("Then the listing holds each submission exactly once", func() {
				So(err, ShouldBeNil)
				So(stats.Successful, ShouldEqual, 37)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.ListedTotal, ShouldEqual, 37)
				So(stats.PagesRead, ShouldEqual, 4)
				So(stats.DecisionsQueued, ShouldEqual, 37)
			})

			Convey("Then the submissions were saved", func() {
				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "registrationData")
			})
		})
	})
}

func TestRunFailures(t *testing.T) {
	Convey("Given an unhealthy server", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := Run(context.Background(), &Config{BaseURL: srv.URL, NumRequests: 1, Workers: 1, Timeout: time.Second})

		Convey("Then ErrUnhealthy is returned", func() {
			So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
		})
	})

	Convey("Given a server whose listing loses records", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
		mux.HandleFunc("/submit-user-data", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
		mux.HandleFunc("/requests", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"requests":[],"totalItems":0}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		_, err := Run(context.Background(), &Config{BaseURL: srv.URL, NumRequests: 3, Workers: 2, Timeout: time.Second})

		Convey("Then ErrVerification is returned", func() {
			So(errors.Is(err, ErrVerification), ShouldBeTrue)
		})
	})
}
