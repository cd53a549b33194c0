// Package annotate computes the nearest-trajectory distance and the signed
// time offset from the day anchor for every windowed observation.
package annotate

import (
	"context"
	"time"

	"github.com/softprocon/ShipTracker/internal/domain/dedupe"
	"github.com/softprocon/ShipTracker/internal/domain/model"
	"github.com/softprocon/ShipTracker/internal/domain/spatial"
)

// Result holds the annotated rows and the number of exact duplicates removed.
type Result struct {
	Rows       []model.FilteredObservation
	Duplicates int
}

// Annotate enriches observations with distance_km (rounded to 2 decimals)
// and time_diff_min, then removes exact duplicates keeping the first row.
// Observations whose day has no anchor are skipped. idx must be built over
// trajectory.
func Annotate(ctx context.Context, idx *spatial.Index, trajectory []model.TrajectoryPoint, anchors map[model.Day]time.Time, observations []model.ShipObservation, loc *time.Location) (Result, error) {
	queries := make([]model.Position, len(observations))
	for i, o := range observations {
		queries[i] = o.Position
	}
	matches, err := idx.NearestBatch(ctx, queries)
	if err != nil {
		return Result{}, err
	}

	seen := dedupe.NewInMemoryDeduper(dedupe.WithExpectedSize(len(observations)))
	res := Result{Rows: make([]model.FilteredObservation, 0, len(observations))}
	for i, o := range observations {
		day := model.DayOf(o.Timestamp, loc)
		anchor, ok := anchors[day]
		if !ok {
			continue
		}
		m := matches[i]
		row := model.FilteredObservation{
			ShipObservation: o,
			DistanceKM:      model.Round2(model.DegreesToKM(m.DistanceDeg)),
			Day:             day,
			TimeDiffMin:     o.Timestamp.Sub(anchor).Minutes(),
			NearestIndex:    m.Index,
		}
		if m.Index >= 0 && m.Index < len(trajectory) {
			row.NearestTime = trajectory[m.Index].Timestamp
		}
		if seen.SeenAndRecord(ctx, dedupe.Key(row)) {
			res.Duplicates++
			continue
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}
