package types_test

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/softprocon/ShipTracker/internal/domain/model"
	"github.com/softprocon/ShipTracker/internal/domain/types"
)

func TestEntry(t *testing.T) {
	Convey("Given a ranked vessel", t, func() {
		ts := time.Date(2021, 12, 5, 5, 17, 0, 0, time.UTC)
		var v model.RankedVessel
		v.Rank = 2
		v.MMSI = "710000000"
		v.Name = "NAVIO"
		v.Score = 37
		v.Position = model.Position{Lon: -35.1, Lat: -7.2}
		v.Timestamp = ts
		v.Day = model.DayOf(ts, nil)
		v.DistanceKM = 4.44
		v.TimeDiffMin = -3

		Convey("When converting it to an entry", func() {
			e := types.FromRanked(v)

			Convey("Then every field should carry over", func() {
				So(e.Rank, ShouldEqual, 2)
				So(e.MMSI, ShouldEqual, "710000000")
				So(e.Score, ShouldEqual, 37)
				So(e.Lon, ShouldEqual, -35.1)
				So(e.Day, ShouldEqual, "2021-12-05")
				So(e.DistanceKM, ShouldEqual, 4.44)
			})

			Convey("And it should encode with snake_case keys", func() {
				b, err := json.Marshal(e)
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"distance_km":4.44`)
				So(string(b), ShouldContainSubstring, `"time_diff_min":-3`)
				So(string(b), ShouldContainSubstring, `"mmsi":"710000000"`)
			})
		})
	})
}

func TestObservationModel(t *testing.T) {
	Convey("Given a wire observation", t, func() {
		ts := time.Date(2021, 12, 5, 5, 0, 0, 0, time.UTC)
		o := types.Observation{MMSI: "1", Name: "A", Lon: 1.5, Lat: -2.5, Timestamp: ts}

		Convey("Then it should convert to a domain observation", func() {
			m := o.Model()
			So(m.Key(), ShouldResemble, model.VesselKey{MMSI: "1", Name: "A"})
			So(m.Position, ShouldResemble, model.Position{Lon: 1.5, Lat: -2.5})
			So(m.Timestamp, ShouldEqual, ts)
		})
	})
}

func TestMMSIDecoding(t *testing.T) {
	Convey("Given observation bodies with different mmsi encodings", t, func() {
		decode := func(mmsi string) (types.Observation, error) {
			var o types.Observation
			err := json.Unmarshal([]byte(`{"mmsi": `+mmsi+`, "name": "A"}`), &o)
			return o, err
		}

		Convey("When the mmsi is an integer", func() {
			o, err := decode("710000001")

			Convey("Then it should decode to its decimal string", func() {
				So(err, ShouldBeNil)
				So(o.Model().MMSI, ShouldEqual, "710000001")
			})
		})

		Convey("When the mmsi is a string", func() {
			o, err := decode(`"710000001"`)

			Convey("Then it should be kept as is", func() {
				So(err, ShouldBeNil)
				So(o.MMSI, ShouldEqual, types.MMSI("710000001"))
			})
		})

		Convey("When the mmsi is fractional", func() {
			_, err := decode("7100.5")

			Convey("Then decoding should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the mmsi is not a number or string", func() {
			_, err := decode("true")

			Convey("Then decoding should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
