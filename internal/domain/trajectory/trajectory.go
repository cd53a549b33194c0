// Package trajectory summarizes a modeled drift trajectory: its time span,
// day anchors and per-day centroids.
package trajectory

import (
	"sort"
	"time"

	geo "github.com/paulmach/go.geo"

	"github.com/softprocon/ShipTracker/internal/domain/model"
	"github.com/softprocon/ShipTracker/internal/domain/spatial"
	"github.com/softprocon/ShipTracker/internal/domain/window"
)

// DayCentroid is the mean position of the trajectory points of one day.
type DayCentroid struct {
	Day      model.Day
	Position model.Position
	Points   int
}

// Summary describes a trajectory.
type Summary struct {
	Start     time.Time
	End       time.Time
	Points    int
	Anchors   []model.DayAnchor
	Centroids []DayCentroid
}

// Summarize computes the summary of trajectory. Day buckets follow loc as in
// window.Anchors.
func Summarize(trajectory []model.TrajectoryPoint, loc *time.Location) (Summary, error) {
	anchors, err := window.Anchors(trajectory, loc)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Start:   trajectory[0].Timestamp,
		End:     trajectory[0].Timestamp,
		Points:  len(trajectory),
		Anchors: window.Sorted(anchors),
	}
	sets := make(map[model.Day]*geo.PointSet, len(anchors))
	counts := make(map[model.Day]int, len(anchors))
	for _, p := range trajectory {
		if p.Timestamp.Before(s.Start) {
			s.Start = p.Timestamp
		}
		if p.Timestamp.After(s.End) {
			s.End = p.Timestamp
		}
		d := model.DayOf(p.Timestamp, loc)
		ps, ok := sets[d]
		if !ok {
			ps = geo.NewPointSet()
			sets[d] = ps
		}
		ps.Push(geo.NewPoint(p.Position.Lon, p.Position.Lat))
		counts[d]++
	}

	s.Centroids = make([]DayCentroid, 0, len(sets))
	for d, ps := range sets {
		c := ps.Centroid()
		s.Centroids = append(s.Centroids, DayCentroid{
			Day:      d,
			Position: model.Position{Lon: c.X(), Lat: c.Y()},
			Points:   counts[d],
		})
	}
	sort.Slice(s.Centroids, func(i, j int) bool {
		return s.Centroids[i].Day.Before(s.Centroids[j].Day)
	})
	return s, nil
}

// Centroid returns the centroid of day, if the trajectory has points on it.
func (s Summary) Centroid(day model.Day) (DayCentroid, bool) {
	for _, c := range s.Centroids {
		if c.Day == day {
			return c, true
		}
	}
	return DayCentroid{}, false
}

// Focus lists the ranked vessels whose best observation lies inside the
// buffer around a day's centroid.
type Focus struct {
	Day     model.Day
	Found   bool
	Center  model.Position
	Ring    []model.Position
	Vessels []model.RankedVessel
}

// DayFocus buffers the centroid of day by bufferKM and keeps the ranked
// vessels inside it, in rank order. A day without trajectory points yields
// an empty Focus with Found unset. A buffer that rounds to zero degrees is
// empty: the day is found but no vessel lies inside it.
func DayFocus(s Summary, day model.Day, ranked []model.RankedVessel, bufferKM float64, quadSegs int) (Focus, error) {
	f := Focus{Day: day}
	c, ok := s.Centroid(day)
	if !ok {
		return f, nil
	}
	f.Found = true
	f.Center = c.Position
	radius := model.KMToDegrees(bufferKM)
	if radius == 0 {
		return f, nil
	}
	poly, err := spatial.Circle(c.Position, radius, quadSegs)
	if err != nil {
		return Focus{Day: day}, err
	}

	f.Ring = poly.Ring()
	for _, v := range ranked {
		if poly.Contains(v.Position) {
			f.Vessels = append(f.Vessels, v)
		}
	}
	return f, nil
}
