// Package scoring converts annotated observations into integer proximity
// scores. Lower scores mean closer in space and time to the trajectory.
package scoring

import (
	"fmt"
	"math"

	"github.com/softprocon/ShipTracker/internal/domain/model"
)

// Score bounds for a non-degenerate input set.
const (
	MinScore = 1
	MaxScore = 199

	scoreBase  = 1.0
	scoreRange = 99.0
)

// Extent holds the normalization denominators of a scoring run.
type Extent struct {
	MaxDistanceKM float64
	MaxTimeDiff   float64
}

// Measure returns the maximum distance and maximum absolute time difference
// over rows. Normalization is global: every row of a run shares one Extent.
func Measure(rows []model.FilteredObservation) Extent {
	var e Extent
	for _, r := range rows {
		if r.DistanceKM > e.MaxDistanceKM || math.IsNaN(r.DistanceKM) {
			e.MaxDistanceKM = r.DistanceKM
		}
		if td := math.Abs(r.TimeDiffMin); td > e.MaxTimeDiff || math.IsNaN(td) {
			e.MaxTimeDiff = td
		}
	}
	return e
}

func (e Extent) degenerate() bool {
	return !usable(e.MaxDistanceKM) || !usable(e.MaxTimeDiff)
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Score assigns floor(1 + 99*(nd+nt)) to every row, where nd and nt are the
// row's distance and absolute time difference divided by the run maxima.
// The result is not clamped, so it ranges over [1, 199].
func Score(rows []model.FilteredObservation) ([]model.ScoredObservation, error) {
	if len(rows) == 0 {
		return nil, model.ErrEmptyResultSet
	}
	e := Measure(rows)
	if e.degenerate() {
		return nil, fmt.Errorf("max distance %v km, max time diff %v min: %w",
			e.MaxDistanceKM, e.MaxTimeDiff, model.ErrDegenerateScoringInput)
	}

	out := make([]model.ScoredObservation, len(rows))
	for i, r := range rows {
		nd := r.DistanceKM / e.MaxDistanceKM
		nt := math.Abs(r.TimeDiffMin) / e.MaxTimeDiff
		out[i] = model.ScoredObservation{
			FilteredObservation: r,
			Score:               int(math.Floor(scoreBase + scoreRange*(nd+nt))),
		}
	}
	return out, nil
}
