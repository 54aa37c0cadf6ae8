package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/tourdesk/internal/adapters/http/api"
	service "github.com/okian/tourdesk/internal/app"
	"github.com/okian/tourdesk/internal/domain/listing"
	"github.com/okian/tourdesk/internal/domain/model"
	"github.com/okian/tourdesk/internal/domain/types"
	"github.com/okian/tourdesk/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

// mockDeps returns canned errors so every status mapping can be exercised.
type mockDeps struct {
	submitErr   error
	listErr     error
	decideErr   error
	duplicate   bool
	decision    types.DecisionView
	decisionErr error

	lastQuery listing.Query
	submitted []model.Request
}

func (m *mockDeps) Submit(_ context.Context, rec model.Request) (model.Request, error) {
	if m.submitErr != nil {
		return model.Request{}, m.submitErr
	}
	m.submitted = append(m.submitted, rec)
	return rec, nil
}

func (m *mockDeps) List(_ context.Context, q listing.Query) (types.Page, error) {
	m.lastQuery = q
	if m.listErr != nil {
		return types.Page{}, m.listErr
	}
	return types.NewPage(nil, 0), nil
}

func (m *mockDeps) Decide(context.Context, string, model.Verdict) (bool, error) {
	return m.duplicate, m.decideErr
}

func (m *mockDeps) Decision(context.Context, string) (types.DecisionView, error) {
	return m.decision, m.decisionErr
}

type mockStats struct{}

func (mockStats) GetStats() map[string]any { return map[string]any{"records": 20} }

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodePage(w *httptest.ResponseRecorder) types.Page {
	var page types.Page
	So(json.Unmarshal(w.Body.Bytes(), &page), ShouldBeNil)
	return page
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

const validSubmission = `{
	"uid": "uid-test",
	"username": "Test User",
	"email": "test@example.com",
	"authState": {"provider": "google"},
	"registrationData": {"description": "I know every street.", "uploadedUrl": "https://example.com/photo.png"}
}`

func TestRequests_SeededService(t *testing.T) {
	Convey("Given the API over a seeded service", t, func() {
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc)

		Convey("When requesting page 1 of size 10", func() {
			w := do(mux, http.MethodGet, "/requests?page=1&pageSize=10", "")

			Convey("Then ten records and a total of twenty are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				page := decodePage(w)
				So(len(page.Requests), ShouldEqual, 10)
				So(page.TotalItems, ShouldEqual, 20)
				So(page.Requests[0].Name, ShouldEqual, "Emma Johnson")
				So(page.Requests[0].Message, ShouldEqual, "Looking forward to guiding.")
			})
		})

		Convey("When requesting page 2", func() {
			page := decodePage(do(mux, http.MethodGet, "/requests?page=2&pageSize=10", ""))

			Convey("Then the remaining ten are returned", func() {
				So(len(page.Requests), ShouldEqual, 10)
				So(page.TotalItems, ShouldEqual, 20)
			})
		})

		Convey("When no query parameters are given", func() {
			page := decodePage(do(mux, http.MethodGet, "/requests", ""))

			Convey("Then the defaults apply", func() {
				So(len(page.Requests), ShouldEqual, 10)
			})
		})

		Convey("When searching for emma in mixed case", func() {
			page := decodePage(do(mux, http.MethodGet, "/requests?search=eMmA", ""))

			Convey("Then both Emma Johnson records match", func() {
				So(page.TotalItems, ShouldEqual, 2)
			})
		})

		Convey("When asking for a page past the end", func() {
			w := do(mux, http.MethodGet, "/requests?page=99&pageSize=10", "")

			Convey("Then requests is an empty array, not null", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"requests":[]`)
				So(decodePage(w).TotalItems, ShouldEqual, 20)
			})
		})

		Convey("When page is zero or negative", func() {
			w := do(mux, http.MethodGet, "/requests?page=-1", "")

			Convey("Then an empty page is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(decodePage(w).Requests), ShouldEqual, 0)
			})
		})

		Convey("When page is huge", func() {
			w := do(mux, http.MethodGet, "/requests?page=9223372036854775807&pageSize=100", "")

			Convey("Then the offsets do not overflow", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(decodePage(w).Requests), ShouldEqual, 0)
			})
		})

		Convey("When page is not a number", func() {
			w := do(mux, http.MethodGet, "/requests?page=abc", "")

			Convey("Then 400 bad_request is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			})
		})

		Convey("When pageSize is not a number", func() {
			w := do(mux, http.MethodGet, "/requests?pageSize=ten", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When pageSize exceeds the maximum", func() {
			w := do(mux, http.MethodGet, "/requests?pageSize=101", "")

			Convey("Then 400 page_size_exceeded is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "page_size_exceeded")
			})
		})

		Convey("When Test User is submitted", func() {
			before := decodePage(do(mux, http.MethodGet, "/requests", "")).TotalItems
			w := do(mux, http.MethodPost, "/submit-user-data", validSubmission)

			Convey("Then the acknowledgement is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"message":"User data received successfully"`)
			})

			Convey("Then totalItems grows by exactly one", func() {
				after := decodePage(do(mux, http.MethodGet, "/requests", "")).TotalItems
				So(after, ShouldEqual, before+1)
			})

			Convey("Then a search for test finds exactly that record", func() {
				page := decodePage(do(mux, http.MethodGet, "/requests?search=test", ""))
				So(page.TotalItems, ShouldEqual, 1)
				So(page.Requests[0].Name, ShouldEqual, "Test User")
				So(page.Requests[0].Message, ShouldEqual, "I know every street.")
				So(page.Requests[0].UserID, ShouldEqual, "uid-test")
				So(page.Requests[0].UploadedURL, ShouldEqual, "https://example.com/photo.png")
			})

			Convey("And the user is accepted", func() {
				w := do(mux, http.MethodPost, "/accept-request", `{"userId":"uid-test"}`)
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(w.Body.String(), ShouldContainSubstring, `"status":"queued"`)

				Convey("Then a second decision is a duplicate", func() {
					w := do(mux, http.MethodPost, "/reject-request", `{"userId":"uid-test"}`)
					So(w.Code, ShouldEqual, http.StatusOK)
					So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
				})

				Convey("Then the decision becomes readable", func() {
					var got *httptest.ResponseRecorder
					for i := 0; i < 100; i++ {
						got = do(mux, http.MethodGet, "/decisions/uid-test", "")
						if got.Code == http.StatusOK {
							break
						}
						time.Sleep(10 * time.Millisecond)
					}
					So(got.Code, ShouldEqual, http.StatusOK)
					So(got.Body.String(), ShouldContainSubstring, `"verdict":"approved"`)
				})
			})
		})

		Convey("When deciding an unknown user", func() {
			w := do(mux, http.MethodPost, "/accept-request", `{"userId":"nobody"}`)

			Convey("Then 404 not_found is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(errorCode(w), ShouldEqual, "not_found")
			})
		})
	})
}

func TestSubmit_Validation(t *testing.T) {
	Convey("Given the submission endpoint", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps, api.WithMaxBodyBytes(512))

		cases := []struct {
			name string
			body string
		}{
			{"malformed JSON", `{"username":`},
			{"trailing data after the object", `{"username":"Test User","email":"test@example.com","registrationData":{}} trailing-garbage`},
			{"two JSON objects", `{"username":"Test User","email":"test@example.com","registrationData":{}}{}`},
			{"missing registrationData", `{"username":"Test User","email":"test@example.com"}`},
			{"null registrationData", `{"username":"Test User","email":"test@example.com","registrationData":null}`},
			{"blank username", `{"username":"  ","email":"test@example.com","registrationData":{}}`},
			{"missing email", `{"username":"Test User","registrationData":{}}`},
			{"unparseable email", `{"username":"Test User","email":"not-an-email","registrationData":{}}`},
			{"relative uploadedUrl", `{"username":"Test User","email":"test@example.com","registrationData":{"uploadedUrl":"/photo.png"}}`},
			{"oversized body", `{"username":"` + strings.Repeat("x", 1024) + `"}`},
		}
		for _, tc := range cases {
			Convey("When the body has "+tc.name, func() {
				w := do(mux, http.MethodPost, "/submit-user-data", tc.body)

				Convey("Then 400 bad_request is returned and nothing is stored", func() {
					So(w.Code, ShouldEqual, http.StatusBadRequest)
					So(errorCode(w), ShouldEqual, "bad_request")
					So(deps.submitted, ShouldBeEmpty)
				})
			})
		}

		Convey("When the body is minimal but valid", func() {
			w := do(mux, http.MethodPost, "/submit-user-data",
				`{"username":"Test User","email":"test@example.com","registrationData":{"description":"hi"}}`)

			Convey("Then the mapped record is submitted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(deps.submitted), ShouldEqual, 1)
				So(deps.submitted[0].Name, ShouldEqual, "Test User")
				So(deps.submitted[0].Message, ShouldEqual, "hi")
				So(deps.submitted[0].UserID, ShouldBeEmpty)
			})
		})

		Convey("When the store rejects the record", func() {
			deps.submitErr = fmt.Errorf("%w: name", service.ErrInvalidInput)
			w := do(mux, http.MethodPost, "/submit-user-data", validSubmission)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is GET", func() {
			w := do(mux, http.MethodGet, "/submit-user-data", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestDecisions_ErrorMapping(t *testing.T) {
	Convey("Given the decision endpoints over a mock", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		cases := []struct {
			err    error
			status int
			code   string
		}{
			{fmt.Errorf("%w: full", service.ErrBackpressure), http.StatusTooManyRequests, "backpressure"},
			{service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
			{fmt.Errorf("%w: u1", service.ErrNotFound), http.StatusNotFound, "not_found"},
			{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		}
		for _, tc := range cases {
			Convey(fmt.Sprintf("When Decide fails with %v", tc.err), func() {
				deps.decideErr = tc.err
				w := do(mux, http.MethodPost, "/reject-request", `{"userId":"u1"}`)

				Convey(fmt.Sprintf("Then %d %s is returned", tc.status, tc.code), func() {
					So(w.Code, ShouldEqual, tc.status)
					So(errorCode(w), ShouldEqual, tc.code)
				})
			})
		}

		Convey("When userId is missing", func() {
			w := do(mux, http.MethodPost, "/accept-request", `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/accept-request", `userId=u1`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body has data after the object", func() {
			w := do(mux, http.MethodPost, "/accept-request", `{"userId":"u1"} x`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a decision is read", func() {
			deps.decision = types.DecisionView{UserID: "u1", Verdict: "rejected"}
			w := do(mux, http.MethodGet, "/decisions/u1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"verdict":"rejected"`)
		})

		Convey("When the decision path has no user id", func() {
			w := do(mux, http.MethodGet, "/decisions/", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the decision is missing", func() {
			deps.decisionErr = fmt.Errorf("%w: u1", service.ErrNotFound)
			w := do(mux, http.MethodGet, "/decisions/u1", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given the API over a mock", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps, api.WithDefaultPageSize(5), api.WithMaxPageSize(20))

		Convey("Then /healthz reports ok", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Then /stats returns the provider's map", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"records":20`)
		})

		Convey("Then /metrics exposes the HTTP counters", func() {
			do(mux, http.MethodGet, "/healthz", "")
			w := do(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "tourdesk_registrations_http_requests_total")
		})

		Convey("Then configured page sizes are honoured", func() {
			do(mux, http.MethodGet, "/requests", "")
			So(deps.lastQuery.PageSize, ShouldEqual, 5)
			w := do(mux, http.MethodGet, "/requests?pageSize=21", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then a listing failure is a 500", func() {
			deps.listErr = errors.New("boom")
			w := do(mux, http.MethodGet, "/requests", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("Then wrong methods are 404", func() {
			So(do(mux, http.MethodPost, "/requests", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/healthz", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/accept-request", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestErrorType(t *testing.T) {
	Convey("Given an api Error", t, func() {
		cause := errors.New("cause")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both kind and cause are matchable", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: cause")
		})

		Convey("Then NewKind and Wrap render their parts", func() {
			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
			So(errors.Is(api.Wrap("api.op", cause), api.ErrInternal), ShouldBeTrue)
		})
	})
}
