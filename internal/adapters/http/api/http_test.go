package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/softprocon/ShipTracker/internal/adapters/http/api"
	service "github.com/softprocon/ShipTracker/internal/app"
	"github.com/softprocon/ShipTracker/internal/domain/model"
	"github.com/softprocon/ShipTracker/pkg/logger"
)

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

// failingDeps returns a fixed error from every run.
type failingDeps struct {
	err error
}

func (f failingDeps) Run(context.Context, service.Request) (service.Result, error) {
	return service.Result{RunID: "fixed"}, f.err
}

func (f failingDeps) ProximityBuffer(context.Context, []model.TrajectoryPoint, float64) ([][]model.Position, error) {
	return nil, f.err
}

func (f failingDeps) Defaults() service.Params {
	return service.Params{BufferSizeKM: 10, TimeIntervalMinutes: 30}
}

type rankBody struct {
	RunID   string `json:"run_id"`
	Empty   bool   `json:"empty"`
	Vessels []struct {
		Rank        int     `json:"rank"`
		MMSI        string  `json:"mmsi"`
		Score       int     `json:"score"`
		DistanceKM  float64 `json:"distance_km"`
		TimeDiffMin float64 `json:"time_diff_min"`
		Day         string  `json:"day"`
	} `json:"vessels"`
	Focus *struct {
		Found   bool              `json:"found"`
		Vessels []json.RawMessage `json:"vessels"`
	} `json:"focus"`
	Buffer  [][]json.RawMessage `json:"buffer"`
	Summary struct {
		Points  int               `json:"points"`
		Anchors []json.RawMessage `json:"anchors"`
	} `json:"summary"`
	Params struct {
		BufferSizeKM    float64 `json:"buffer_size_km"`
		ProximityPolicy string  `json:"proximity_policy"`
	} `json:"params"`
}

const day5 = "2021-12-05T%s:00Z"

func trajectoryJSON() string {
	return fmt.Sprintf(`[
		{"lon": -35.0, "lat": -7.0, "timestamp": %q},
		{"lon": -34.81981981981982, "lat": -7.0, "timestamp": %q}
	]`, fmt.Sprintf(day5, "05:00"), fmt.Sprintf(day5, "05:10"))
}

func observation(mmsi string, kmWest float64, hhmm string) string {
	return fmt.Sprintf(`{"mmsi": %q, "name": "V%s", "lon": %v, "lat": -7.0, "timestamp": %q}`,
		mmsi, mmsi, -35.0-kmWest/model.KMPerDegree, fmt.Sprintf(day5, hhmm))
}

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"runs": 0}}, opts...).Register(mux)
	return mux
}

func post(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		svc := service.New(service.WithLogger(logger.New(logger.WithWriter(io.Discard))))
		mux := newMux(svc)

		Convey("Then health should report ok", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"ok"`)
		})

		Convey("Then stats should be served as JSON", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
		})

		Convey("Then metrics should be exposed", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			w = httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "shiptracker_ranking_http_requests_total")
		})

		Convey("Then GET /rank should not be routed", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rank", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHandlePostRank(t *testing.T) {
	Convey("Given the rank endpoint backed by the service", t, func() {
		svc := service.New(service.WithLogger(logger.New(logger.WithWriter(io.Discard))))
		mux := newMux(svc)

		Convey("When ranking nearby ships with a day focus and buffer", func() {
			body := fmt.Sprintf(`{
				"trajectory": %s,
				"observations": [%s, %s, %s],
				"selected_day": "2021-12-05",
				"include_buffer": true
			}`, trajectoryJSON(),
				observation("1", 2, "05:03"),
				observation("2", 8, "05:12"),
				observation("3", 60, "05:01"))
			w := post(mux, "/rank", body)

			Convey("Then the ranked vessels should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var out rankBody
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(out.RunID, ShouldNotBeEmpty)
				So(out.Empty, ShouldBeFalse)
				So(out.Vessels, ShouldHaveLength, 2)
				So(out.Vessels[0].MMSI, ShouldEqual, "1")
				So(out.Vessels[0].Rank, ShouldEqual, 1)
				So(out.Vessels[0].Day, ShouldEqual, "2021-12-05")
				So(out.Vessels[1].Score, ShouldEqual, 199)
				So(out.Params.BufferSizeKM, ShouldEqual, 10.0)
				So(out.Params.ProximityPolicy, ShouldEqual, "threshold")
				So(out.Summary.Points, ShouldEqual, 2)
				So(out.Focus, ShouldNotBeNil)
				So(out.Focus.Found, ShouldBeTrue)
				So(out.Buffer, ShouldHaveLength, 2)
			})
		})

		Convey("When mmsi values arrive as JSON integers", func() {
			body := fmt.Sprintf(`{"trajectory": %s, "observations": [
				{"mmsi": 710000001, "name": "A", "lon": -35.018, "lat": -7.0, "timestamp": %q}
			]}`, trajectoryJSON(), fmt.Sprintf(day5, "05:03"))
			w := post(mux, "/rank", body)

			Convey("Then the vessel should be ranked under its decimal mmsi", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var out rankBody
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(out.Vessels, ShouldHaveLength, 1)
				So(out.Vessels[0].MMSI, ShouldEqual, "710000001")
			})
		})

		Convey("When an mmsi is fractional", func() {
			body := fmt.Sprintf(`{"trajectory": %s, "observations": [
				{"mmsi": 7100.5, "name": "A", "lon": -35.018, "lat": -7.0, "timestamp": %q}
			]}`, trajectoryJSON(), fmt.Sprintf(day5, "05:03"))
			w := post(mux, "/rank", body)

			Convey("Then the request should be rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When no ship survives the filters", func() {
			body := fmt.Sprintf(`{"trajectory": %s, "observations": [%s], "buffer_size_km": 1}`,
				trajectoryJSON(), observation("1", 5, "05:03"))
			w := post(mux, "/rank", body)

			Convey("Then the response should be an empty success", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var out rankBody
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(out.Empty, ShouldBeTrue)
				So(out.Vessels, ShouldBeEmpty)
				So(out.Params.BufferSizeKM, ShouldEqual, 1.0)
			})
		})

		Convey("When the trajectory is empty", func() {
			w := post(mux, "/rank", fmt.Sprintf(`{"trajectory": [], "observations": [%s]}`, observation("1", 1, "05:00")))

			Convey("Then it should be unprocessable", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(w.Body.String(), ShouldContainSubstring, "empty_trajectory")
			})
		})

		Convey("When the retained set is degenerate", func() {
			body := fmt.Sprintf(`{"trajectory": %s, "observations": [%s, %s]}`,
				trajectoryJSON(), observation("1", 0, "05:00"), observation("2", 0, "05:00"))
			w := post(mux, "/rank", body)

			Convey("Then it should be unprocessable", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(w.Body.String(), ShouldContainSubstring, "degenerate_scoring_input")
			})
		})

		Convey("When the request is malformed", func() {
			cases := []string{
				`{"trajectory": [`,
				fmt.Sprintf(`{"trajectory": %s, "observations": [], "buffer_size_km": -1}`, trajectoryJSON()),
				fmt.Sprintf(`{"trajectory": %s, "observations": [], "proximity_policy": "nearest"}`, trajectoryJSON()),
				fmt.Sprintf(`{"trajectory": %s, "observations": [], "selected_day": "5th"}`, trajectoryJSON()),
				fmt.Sprintf(`{"trajectory": %s, "observations": [{"mmsi": "", "timestamp": %q}]}`, trajectoryJSON(), time.Now().UTC().Format(time.RFC3339)),
				`{"trajectory": [{"lon": 1, "lat": 2}], "observations": []}`,
			}

			Convey("Then every case should be a bad request", func() {
				for _, body := range cases {
					w := post(mux, "/rank", body)
					So(w.Code, ShouldEqual, http.StatusBadRequest)
				}
			})
		})
	})
}

func TestRequestLimits(t *testing.T) {
	Convey("Given a server with tight limits", t, func() {
		svc := service.New(service.WithLogger(logger.New(logger.WithWriter(io.Discard))))
		mux := newMux(svc, api.WithMaxObservations(1), api.WithMaxBodyBytes(4096))

		Convey("When too many observations are sent", func() {
			body := fmt.Sprintf(`{"trajectory": %s, "observations": [%s, %s]}`,
				trajectoryJSON(), observation("1", 1, "05:01"), observation("2", 1, "05:02"))
			w := post(mux, "/rank", body)

			Convey("Then it should be rejected as too large", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})

		Convey("When the body exceeds the byte limit", func() {
			big := `{"trajectory": [], "observations": [], "selected_day": "` + string(bytes.Repeat([]byte("x"), 8192)) + `"}`
			w := post(mux, "/rank", big)

			Convey("Then it should be rejected as too large", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})
	})
}

func TestHandlePostBuffer(t *testing.T) {
	Convey("Given the buffer endpoint", t, func() {
		svc := service.New(service.WithLogger(logger.New(logger.WithWriter(io.Discard))))
		mux := newMux(svc)

		Convey("When requesting the buffer of a trajectory", func() {
			w := post(mux, "/buffer", fmt.Sprintf(`{"trajectory": %s, "buffer_size_km": 5}`, trajectoryJSON()))

			Convey("Then one closed ring per point should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var out struct {
					BufferSizeKM float64 `json:"buffer_size_km"`
					Polygons     [][]struct {
						Lon float64 `json:"lon"`
						Lat float64 `json:"lat"`
					} `json:"polygons"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(out.BufferSizeKM, ShouldEqual, 5.0)
				So(out.Polygons, ShouldHaveLength, 2)
				So(out.Polygons[0], ShouldHaveLength, 65)
				So(out.Polygons[0][0], ShouldResemble, out.Polygons[0][64])
			})
		})

		Convey("When the trajectory is empty", func() {
			w := post(mux, "/buffer", `{"trajectory": []}`)

			Convey("Then it should be unprocessable", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			})
		})
	})
}

func TestErrorMapping(t *testing.T) {
	Convey("Given dependencies that fail", t, func() {
		Convey("When the run reports an unexpected error", func() {
			mux := newMux(failingDeps{err: fmt.Errorf("boom")})
			w := post(mux, "/rank", fmt.Sprintf(`{"trajectory": %s, "observations": []}`, trajectoryJSON()))

			Convey("Then it should be an internal error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "internal_error")
			})
		})

		Convey("When the run is cancelled", func() {
			mux := newMux(failingDeps{err: fmt.Errorf("nearest batch: %w", context.Canceled)})
			w := post(mux, "/rank", fmt.Sprintf(`{"trajectory": %s, "observations": []}`, trajectoryJSON()))

			Convey("Then the service should be reported unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}
