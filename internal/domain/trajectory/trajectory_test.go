package trajectory_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/softprocon/ShipTracker/internal/domain/model"
	"github.com/softprocon/ShipTracker/internal/domain/trajectory"
)

func point(lon, lat float64, day, hour int) model.TrajectoryPoint {
	return model.TrajectoryPoint{
		Position:  model.Position{Lon: lon, Lat: lat},
		Timestamp: time.Date(2021, 12, day, hour, 0, 0, 0, time.UTC),
	}
}

func ranked(mmsi string, rank int, pos model.Position) model.RankedVessel {
	var v model.RankedVessel
	v.MMSI = mmsi
	v.Rank = rank
	v.Position = pos
	return v
}

func TestSummarize(t *testing.T) {
	Convey("Given a trajectory spanning two days out of order", t, func() {
		traj := []model.TrajectoryPoint{
			point(-34.0, -7.0, 6, 3),
			point(-35.0, -7.0, 5, 8),
			point(-35.2, -7.2, 5, 2),
			point(-34.2, -7.2, 6, 9),
		}

		Convey("When summarizing it", func() {
			s, err := trajectory.Summarize(traj, nil)
			So(err, ShouldBeNil)

			Convey("Then the time span should cover every point", func() {
				So(s.Points, ShouldEqual, 4)
				So(s.Start, ShouldEqual, traj[2].Timestamp)
				So(s.End, ShouldEqual, traj[3].Timestamp)
			})

			Convey("And anchors and centroids should be ordered by day", func() {
				So(s.Anchors, ShouldHaveLength, 2)
				So(s.Anchors[0].Time, ShouldEqual, traj[2].Timestamp)
				So(s.Centroids, ShouldHaveLength, 2)
				So(s.Centroids[0].Day.String(), ShouldEqual, "2021-12-05")
				So(s.Centroids[0].Position.Lon, ShouldAlmostEqual, -35.1, 1e-9)
				So(s.Centroids[0].Position.Lat, ShouldAlmostEqual, -7.1, 1e-9)
				So(s.Centroids[1].Points, ShouldEqual, 2)
			})
		})

		Convey("When the trajectory is empty", func() {
			_, err := trajectory.Summarize(nil, nil)

			Convey("Then it should report an empty trajectory", func() {
				So(err, ShouldWrap, model.ErrEmptyTrajectoryInput)
			})
		})
	})
}

func TestDayFocus(t *testing.T) {
	Convey("Given a summary and ranked vessels", t, func() {
		s, err := trajectory.Summarize([]model.TrajectoryPoint{
			point(-35.0, -7.0, 5, 1),
			point(-35.0, -7.2, 5, 4),
		}, nil)
		So(err, ShouldBeNil)
		vessels := []model.RankedVessel{
			ranked("1", 1, model.Position{Lon: -35.02, Lat: -7.1}),
			ranked("2", 2, model.Position{Lon: -34.0, Lat: -7.1}),
			ranked("3", 2, model.Position{Lon: -35.0, Lat: -7.15}),
		}
		day, err := model.ParseDay("2021-12-05")
		So(err, ShouldBeNil)

		Convey("When focusing on a trajectory day", func() {
			f, err := trajectory.DayFocus(s, day, vessels, 10, 16)
			So(err, ShouldBeNil)

			Convey("Then only vessels inside the centroid buffer should remain", func() {
				So(f.Found, ShouldBeTrue)
				So(f.Center.Lat, ShouldAlmostEqual, -7.1, 1e-9)
				So(f.Ring, ShouldHaveLength, 65)
				So(f.Vessels, ShouldHaveLength, 2)
				So(f.Vessels[0].MMSI, ShouldEqual, "1")
				So(f.Vessels[1].MMSI, ShouldEqual, "3")
			})
		})

		Convey("When focusing on a day without trajectory points", func() {
			other, _ := model.ParseDay("2021-12-09")
			f, err := trajectory.DayFocus(s, other, vessels, 10, 16)

			Convey("Then the focus should be empty without an error", func() {
				So(err, ShouldBeNil)
				So(f.Found, ShouldBeFalse)
				So(f.Vessels, ShouldBeEmpty)
			})
		})

		Convey("When the buffer rounds to zero degrees", func() {
			f, err := trajectory.DayFocus(s, day, vessels, 0.5, 16)

			Convey("Then the day should be found with an empty buffer", func() {
				So(err, ShouldBeNil)
				So(f.Found, ShouldBeTrue)
				So(f.Ring, ShouldBeEmpty)
				So(f.Vessels, ShouldBeEmpty)
			})
		})
	})
}
