package searchprobe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/dreamteam/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const goodStream = "event: status\ndata: Searching for up to 100 candidates...\n\n" +
	"event: candidate\ndata: {\"username\":\"ana\"}\n\n" +
	": keep-alive\n\n" +
	"event: candidate\ndata: {\"username\":\"ben\"}\n\n" +
	"event: status\ndata: Found 2 candidates.\ndata: Fetching detailed profiles...\n\n" +
	"event: status\ndata: Analyzing profiles and selecting the optimal team of 2...\n\n" +
	"event: dreamTeam\ndata: [{\"username\":\"ana\",\"strengths\":[{\"name\":\"go\",\"proficiency\":\"master\"}]},{\"username\":\"ben\",\"strengths\":[]}]\n\n"

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func TestReadEvents(t *testing.T) {
	Convey("Given a server-sent event stream", t, func() {
		var seen int
		events, err := ReadEvents(strings.NewReader(goodStream), func(Event) { seen++ })

		Convey("Then blocks are split and multi-line data joined", func() {
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, 6)
			So(seen, ShouldEqual, 6)
			So(events[0], ShouldResemble, Event{Kind: "status", Data: "Searching for up to 100 candidates..."})
			So(events[3].Data, ShouldEqual, "Found 2 candidates.\nFetching detailed profiles...")
			So(events[5].Kind, ShouldEqual, "dreamTeam")
		})
	})

	Convey("Given a stream without a trailing blank line", t, func() {
		events, err := ReadEvents(strings.NewReader("event: error\ndata: {\"message\":\"x\"}"), nil)

		Convey("Then the last block is still dispatched", func() {
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, 1)
			So(events[0].Kind, ShouldEqual, "error")
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a well-formed stream", t, func() {
		events, _ := ReadEvents(strings.NewReader(goodStream), nil)
		report := &Report{}
		err := Verify(events, 2, report)

		Convey("Then it passes and the report is filled", func() {
			So(err, ShouldBeNil)
			So(report.Candidates, ShouldEqual, 2)
			So(len(report.Statuses), ShouldEqual, 3)
			So(len(report.Team), ShouldEqual, 2)
			So(report.Team[0].Strengths[0].Proficiency, ShouldEqual, "master")
		})
	})

	Convey("Given streams that break the contract", t, func() {
		cases := []struct {
			name   string
			events []Event
			size   int
			want   string
		}{
			{"empty", nil, 3, "no events"},
			{"no leading status", []Event{{KindCandidate, `{"username":"a"}`}, {KindDreamTeam, `[]`}}, 3, "first event"},
			{"late candidate", []Event{{KindStatus, "s"}, {KindStatus, "e"}, {KindCandidate, `{}`}, {KindDreamTeam, `[]`}}, 3, "after status 2"},
			{"after terminal", []Event{{KindStatus, "s"}, {KindDreamTeam, `[]`}, {KindStatus, "x"}}, 3, "follows the terminal"},
			{"no terminal", []Event{{KindStatus, "s"}}, 3, "without dreamTeam"},
			{"too large", []Event{{KindStatus, "s"}, {KindDreamTeam, `[{"username":"a"},{"username":"b"}]`}}, 1, "requested 1"},
			{"repeated member", []Event{{KindStatus, "s"}, {KindDreamTeam, `[{"username":"a"},{"username":"a"}]`}}, 3, "appears twice"},
			{"unknown kind", []Event{{KindStatus, "s"}, {"message", "x"}, {KindDreamTeam, `[]`}}, 3, "unknown event kind"},
		}
		for _, c := range cases {
			err := Verify(c.events, c.size, &Report{})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, c.want)
		}
	})

	Convey("Given a stream that ends with an error event", t, func() {
		report := &Report{}
		err := Verify([]Event{{KindStatus, "s"}, {KindError, `{"message":"search request failed with status 500"}`}}, 3, report)

		Convey("Then it is well-formed and the failure is recorded", func() {
			So(err, ShouldBeNil)
			So(report.Failure, ShouldContainSubstring, "500")
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz":
				w.WriteHeader(http.StatusOK)
			case "/api/search":
				gotQuery = r.URL.RawQuery
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = io.WriteString(w, goodStream)
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		Convey("When probing", func() {
			report, err := Run(context.Background(), &Config{
				BaseURL: srv.URL,
				Skills:  "go,sql",
				Size:    2,
				Timeout: 5 * time.Second,
			})

			Convey("Then the stream is verified", func() {
				So(err, ShouldBeNil)
				So(gotQuery, ShouldEqual, "size=2&skills=go%2Csql")
				So(len(report.Team), ShouldEqual, 2)
			})
		})

		Convey("When the team exceeds the requested size", func() {
			_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Skills: "go", Size: 1, Timeout: 5 * time.Second})

			Convey("Then the probe fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "verification failed")
			})
		})
	})

	Convey("Given a service that rejects the search", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" {
				return
			}
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"code":"bad_request"}`)
		}))
		defer srv.Close()

		_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Skills: "", Size: 3, Timeout: 5 * time.Second})

		Convey("Then the status is reported", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "400")
		})
	})
}
