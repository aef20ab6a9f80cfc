package service_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/dreamteam/internal/adapters/mq/queue"
	"github.com/okian/dreamteam/internal/adapters/torre"
	service "github.com/okian/dreamteam/internal/app"
	"github.com/okian/dreamteam/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given fake search and genome services", t, func() {
		search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var q torre.Query
			_ = json.NewDecoder(r.Body).Decode(&q)
			if len(q.And) != 4 {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, "unexpected query")
				return
			}
			_, _ = io.WriteString(w, `{"results":[
				{"username":"ana","name":"Ana"},
				{"username":"ben","name":"Ben","picture":"https://img/ben.png"},
				{"username":"cam","name":"Cam"}
			]}`)
		}))
		defer search.Close()

		genome := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch strings.TrimPrefix(r.URL.Path, "/bios/") {
			case "ana":
				_, _ = io.WriteString(w, `{"person":{"professionalHeadline":"Data engineer"},"strengths":[
					{"name":"python","proficiency":"expert","weight":3},{"name":"sql","proficiency":"novice"}]}`)
			case "ben":
				_, _ = io.WriteString(w, `{"person":{"name":"Benjamin"},"strengths":[{"name":"python","proficiency":"master"}]}`)
			case "cam":
				time.Sleep(50 * time.Millisecond)
				w.WriteHeader(http.StatusInternalServerError)
			}
		}))
		defer genome.Close()

		svc := service.New(
			torre.NewSearchClient(search.URL+"/people/_search"),
			torre.NewGenomeClient(genome.URL+"/bios", torre.WithTimeout(time.Second)),
			service.WithEnrichConcurrency(2),
		)

		Convey("When running end to end through a channel sink", func() {
			sink := queue.NewChannelSink()
			errc := make(chan error, 1)
			go func() {
				defer sink.Finish()
				errc <- svc.Run(context.Background(), []string{"python", "sql"}, 2, sink)
			}()

			var kinds []types.EventKind
			var last []byte
			for e := range sink.Events() {
				kinds = append(kinds, e.Kind)
				data, err := e.Data()
				So(err, ShouldBeNil)
				last = data
			}

			Convey("Then the stream ends with the expected team", func() {
				So(<-errc, ShouldBeNil)
				So(kinds[0], ShouldEqual, types.EventStatus)
				So(kinds[len(kinds)-1], ShouldEqual, types.EventDreamTeam)

				var team []map[string]any
				So(json.Unmarshal(last, &team), ShouldBeNil)
				So(len(team), ShouldEqual, 2)
				So(team[0]["username"], ShouldEqual, "ana")
				So(team[0]["name"], ShouldEqual, "Ana")
				So(team[0]["professionalHeadline"], ShouldEqual, "Data engineer")
				strengths := team[0]["strengths"].([]any)
				So(strengths[0], ShouldResemble, map[string]any{"name": "python", "proficiency": "expert", "weight": float64(3)})
				So(team[1]["username"], ShouldEqual, "ben")
				So(team[1]["name"], ShouldEqual, "Benjamin")
				So(team[1]["picture"], ShouldEqual, "https://img/ben.png")
			})
		})

		Convey("When the consumer leaves early", func() {
			sink := queue.NewChannelSink(queue.WithBufferSize(1))
			ctx, cancel := context.WithCancel(context.Background())
			errc := make(chan error, 1)
			go func() {
				defer sink.Finish()
				errc <- svc.Run(ctx, []string{"python"}, 2, sink)
			}()

			<-sink.Events()
			cancel()
			_ = sink.Close()

			Convey("Then the run stops without blocking", func() {
				select {
				case <-errc:
				case <-time.After(5 * time.Second):
					t.Fatal("run did not stop after the consumer left")
				}
			})
		})
	})
}
