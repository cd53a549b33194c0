package simulate

import (
	"fmt"
	"slices"
)

// VerifyRanking checks the competition ranking invariants of a response:
// rank 1 leads, ranks and scores never decrease, tied scores share a rank,
// and a new score takes rank 1 + rows ahead of it.
func VerifyRanking(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		key := e.MMSI + "\x00" + e.Name
		if _, dup := seen[key]; dup {
			return fmt.Errorf("vessel %s (%s) ranked twice", e.MMSI, e.Name)
		}
		seen[key] = struct{}{}

		if i == 0 {
			if e.Rank != 1 {
				return fmt.Errorf("first entry has rank %d, want 1", e.Rank)
			}
			continue
		}
		prev := entries[i-1]
		switch {
		case e.Score < prev.Score:
			return fmt.Errorf("entry %d: score %d after score %d", i, e.Score, prev.Score)
		case e.Score == prev.Score && e.Rank != prev.Rank:
			return fmt.Errorf("entry %d: tied score %d has rank %d, want %d", i, e.Score, e.Rank, prev.Rank)
		case e.Score > prev.Score && e.Rank != i+1:
			return fmt.Errorf("entry %d: rank %d, want %d", i, e.Rank, i+1)
		}
	}
	return nil
}

// VerifyMembership checks that exactly the near vessels were ranked.
func VerifyMembership(entries []Entry, scenario Scenario) error {
	for _, e := range entries {
		if slices.Contains(scenario.Far, e.MMSI) {
			return fmt.Errorf("far vessel %s was ranked", e.MMSI)
		}
		if !slices.Contains(scenario.Near, e.MMSI) {
			return fmt.Errorf("unknown vessel %s was ranked", e.MMSI)
		}
	}
	if len(entries) != len(scenario.Near) {
		return fmt.Errorf("ranked %d vessels, want %d", len(entries), len(scenario.Near))
	}
	return nil
}

// countTies returns how many entries share their rank with the entry before.
func countTies(entries []Entry) int {
	ties := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].Rank == entries[i-1].Rank {
			ties++
		}
	}
	return ties
}
