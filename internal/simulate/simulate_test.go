package simulate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/softprocon/ShipTracker/internal/adapters/http/api"
	service "github.com/softprocon/ShipTracker/internal/app"
	"github.com/softprocon/ShipTracker/internal/simulate"
)

func testConfig(baseURL string) *simulate.Config {
	return &simulate.Config{
		BaseURL:             baseURL,
		NearVessels:         25,
		FarVessels:          10,
		PingsPerVessel:      3,
		TrajectoryHours:     48,
		BufferSizeKM:        10,
		TimeIntervalMinutes: 60,
		ProximityPolicy:     "threshold",
		Seed:                42,
		Timeout:             5 * time.Second,
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a fake clock", t, func() {
		clock := clockwork.NewFakeClockAt(time.Date(2021, 12, 5, 17, 42, 0, 0, time.UTC))
		cfg := testConfig("")

		Convey("When generating a scenario", func() {
			scenario, err := simulate.Generate(clock, cfg)
			So(err, ShouldBeNil)

			Convey("Then the drift should start at 06:00 UTC and step every 10 minutes", func() {
				So(scenario.Trajectory[0].Timestamp, ShouldEqual, time.Date(2021, 12, 5, 6, 0, 0, 0, time.UTC))
				So(scenario.Trajectory, ShouldHaveLength, 48*6+1)
				So(scenario.Trajectory[1].Timestamp.Sub(scenario.Trajectory[0].Timestamp), ShouldEqual, 10*time.Minute)
			})

			Convey("Then every vessel should report the configured number of times", func() {
				So(scenario.Near, ShouldHaveLength, 25)
				So(scenario.Far, ShouldHaveLength, 10)
				So(scenario.Observations, ShouldHaveLength, 35*3)
			})

			Convey("Then far vessels should sit south of the whole drift", func() {
				far := map[string]bool{}
				for _, m := range scenario.Far {
					far[m] = true
				}
				for _, o := range scenario.Observations {
					if far[o.MMSI] {
						So(o.Lat, ShouldBeLessThan, scenario.Trajectory[0].Lat-0.4)
					}
				}
			})

			Convey("Then the same seed should produce the same scenario", func() {
				again, err := simulate.Generate(clock, cfg)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, scenario)
			})
		})

		Convey("When the configuration is unusable", func() {
			cfg.BufferSizeKM = 0
			_, err := simulate.Generate(clock, cfg)

			Convey("Then generation should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestVerifyRanking(t *testing.T) {
	entry := func(rank, score int, mmsi string) simulate.Entry {
		return simulate.Entry{Rank: rank, Score: score, MMSI: mmsi, Name: "V" + mmsi}
	}

	Convey("Given ranked entries", t, func() {
		Convey("When ranks follow competition ranking", func() {
			entries := []simulate.Entry{entry(1, 10, "a"), entry(1, 10, "b"), entry(3, 12, "c"), entry(4, 40, "d")}

			Convey("Then verification should pass", func() {
				So(simulate.VerifyRanking(entries), ShouldBeNil)
				So(simulate.VerifyRanking(nil), ShouldBeNil)
			})
		})

		Convey("When a rank after a tie is dense instead of skipping", func() {
			entries := []simulate.Entry{entry(1, 10, "a"), entry(1, 10, "b"), entry(2, 12, "c")}
			So(simulate.VerifyRanking(entries), ShouldNotBeNil)
		})

		Convey("When tied scores carry different ranks", func() {
			entries := []simulate.Entry{entry(1, 10, "a"), entry(2, 10, "b")}
			So(simulate.VerifyRanking(entries), ShouldNotBeNil)
		})

		Convey("When the first rank is not 1", func() {
			So(simulate.VerifyRanking([]simulate.Entry{entry(2, 10, "a")}), ShouldNotBeNil)
		})

		Convey("When scores decrease", func() {
			entries := []simulate.Entry{entry(1, 10, "a"), entry(2, 5, "b")}
			So(simulate.VerifyRanking(entries), ShouldNotBeNil)
		})

		Convey("When a vessel appears twice", func() {
			entries := []simulate.Entry{entry(1, 10, "a"), entry(2, 12, "a")}
			So(simulate.VerifyRanking(entries), ShouldNotBeNil)
		})
	})
}

func TestVerifyMembership(t *testing.T) {
	Convey("Given a scenario with near and far vessels", t, func() {
		scenario := simulate.Scenario{Near: []string{"1", "2"}, Far: []string{"3"}}

		Convey("Then ranking exactly the near vessels should pass", func() {
			So(simulate.VerifyMembership([]simulate.Entry{{MMSI: "2"}, {MMSI: "1"}}, scenario), ShouldBeNil)
		})

		Convey("Then ranking a far vessel should fail", func() {
			So(simulate.VerifyMembership([]simulate.Entry{{MMSI: "1"}, {MMSI: "3"}}, scenario), ShouldNotBeNil)
		})

		Convey("Then missing a near vessel should fail", func() {
			So(simulate.VerifyMembership([]simulate.Entry{{MMSI: "1"}}, scenario), ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running ranking service", t, func() {
		svc := service.New()
		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

		for _, policy := range []string{"threshold", "containment"} {
			Convey("When simulating with the "+policy+" policy", func() {
				cfg := testConfig(srv.URL)
				cfg.ProximityPolicy = policy
				stats, err := simulate.Run(context.Background(), clock, cfg)

				Convey("Then every near vessel should be ranked and verified", func() {
					So(err, ShouldBeNil)
					So(stats.VesselsRanked, ShouldEqual, 25)
					So(stats.Observations, ShouldEqual, 105)
				})
			})
		}

		Convey("When the service is unreachable", func() {
			cfg := testConfig("http://127.0.0.1:1")
			cfg.Timeout = time.Second
			_, err := simulate.Run(context.Background(), clock, cfg)

			Convey("Then the health check should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
