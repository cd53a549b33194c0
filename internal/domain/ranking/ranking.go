// Package ranking reduces scored observations to one row per vessel and
// assigns competition ranks.
package ranking

import (
	"sort"

	"github.com/softprocon/ShipTracker/internal/domain/model"
)

// best keeps the lowest-scored row of a vessel and the order in which the
// vessel was first seen.
type best struct {
	row   model.ScoredObservation
	order int
}

// Best returns the minimum-score row of every vessel, in first-appearance
// order. On equal scores the earliest row wins.
func Best(rows []model.ScoredObservation) []model.ScoredObservation {
	byKey := make(map[model.VesselKey]*best, len(rows))
	order := make([]model.VesselKey, 0, len(rows))
	for _, r := range rows {
		k := r.Key()
		b, ok := byKey[k]
		if !ok {
			byKey[k] = &best{row: r, order: len(order)}
			order = append(order, k)
			continue
		}
		if r.Score < b.row.Score {
			b.row = r
		}
	}

	out := make([]model.ScoredObservation, len(order))
	for i, k := range order {
		out[i] = byKey[k].row
	}
	return out
}

// Rank returns one RankedVessel per distinct (mmsi, name), ordered by rank.
// Equal scores share a rank and the next rank skips the tied positions, so
// rank = 1 + number of vessels with a strictly lower score. Vessels with the
// same rank keep their first-appearance order.
func Rank(rows []model.ScoredObservation) []model.RankedVessel {
	bests := Best(rows)
	sort.SliceStable(bests, func(i, j int) bool {
		return bests[i].Score < bests[j].Score
	})

	out := make([]model.RankedVessel, len(bests))
	assignRanksWithTies(bests, out)
	return out
}

// assignRanksWithTies expects entries sorted by ascending score.
func assignRanksWithTies(entries []model.ScoredObservation, out []model.RankedVessel) {
	currentRank := 1
	for i := range entries {
		if i > 0 && entries[i].Score != entries[i-1].Score {
			currentRank = i + 1
		}
		out[i] = model.RankedVessel{ScoredObservation: entries[i], Rank: currentRank}
	}
}
