// Package window keeps the ship observations that fall inside the temporal
// window around each trajectory day anchor.
package window

import (
	"math"
	"sort"
	"time"

	"github.com/softprocon/ShipTracker/internal/domain/model"
)

// Anchors maps every day present in the trajectory to its earliest
// timestamp. Days are taken in loc, or in each timestamp's own location
// when loc is nil.
func Anchors(trajectory []model.TrajectoryPoint, loc *time.Location) (map[model.Day]time.Time, error) {
	if len(trajectory) == 0 {
		return nil, model.ErrEmptyTrajectoryInput
	}
	anchors := make(map[model.Day]time.Time)
	for _, tp := range trajectory {
		day := model.DayOf(tp.Timestamp, loc)
		if cur, ok := anchors[day]; !ok || tp.Timestamp.Before(cur) {
			anchors[day] = tp.Timestamp
		}
	}
	return anchors, nil
}

// Sorted returns the anchors ordered by day.
func Sorted(anchors map[model.Day]time.Time) []model.DayAnchor {
	out := make([]model.DayAnchor, 0, len(anchors))
	for d, t := range anchors {
		out = append(out, model.DayAnchor{Day: d, Time: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// Span converts a window length in minutes to a duration.
func Span(intervalMinutes float64) time.Duration {
	return time.Duration(math.Round(intervalMinutes * float64(time.Minute)))
}

// Result holds the retained observations and the drop counts per reason.
type Result struct {
	Kept         []model.ShipObservation
	UnmatchedDay int // observation day absent from the trajectory
	OutsideSpan  int // matched day, outside the window
}

// Filter keeps an observation of day d iff
// anchor[d] - span/2 <= ts < anchor[d] + span/2.
// Observations on days without an anchor are dropped silently. Input order
// is preserved.
func Filter(observations []model.ShipObservation, anchors map[model.Day]time.Time, intervalMinutes float64, loc *time.Location) Result {
	half := Span(intervalMinutes) / 2
	res := Result{Kept: make([]model.ShipObservation, 0, len(observations))}
	for _, o := range observations {
		anchor, ok := anchors[model.DayOf(o.Timestamp, loc)]
		if !ok {
			res.UnmatchedDay++
			continue
		}
		if o.Timestamp.Before(anchor.Add(-half)) || !o.Timestamp.Before(anchor.Add(half)) {
			res.OutsideSpan++
			continue
		}
		res.Kept = append(res.Kept, o)
	}
	return res
}
