// Package types contains the wire shapes exchanged with API clients.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/softprocon/ShipTracker/internal/domain/model"
)

// Point is a position on the wire.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// TrajectoryPoint is one sample of the modeled spill drift.
type TrajectoryPoint struct {
	Lon       float64   `json:"lon"`
	Lat       float64   `json:"lat"`
	Timestamp time.Time `json:"timestamp"`
}

// MMSI is a vessel identifier. AIS exports carry it as an integer, so the
// wire accepts a JSON string or an integral number.
type MMSI string

// UnmarshalJSON accepts "710000001" and 710000001 alike.
func (m *MMSI) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = MMSI(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("mmsi: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("mmsi %s is not an integer", n)
	}
	*m = MMSI(n.String())
	return nil
}

// Observation is one AIS position report.
type Observation struct {
	MMSI      MMSI      `json:"mmsi"`
	Name      string    `json:"name"`
	Lon       float64   `json:"lon"`
	Lat       float64   `json:"lat"`
	Timestamp time.Time `json:"timestamp"`
}

// Entry is a ranked vessel row.
type Entry struct {
	Rank         int       `json:"rank"`
	MMSI         string    `json:"mmsi"`
	Name         string    `json:"name"`
	Score        int       `json:"score"`
	Lon          float64   `json:"lon"`
	Lat          float64   `json:"lat"`
	Timestamp    time.Time `json:"timestamp"`
	Day          string    `json:"day"`
	DistanceKM   float64   `json:"distance_km"`
	TimeDiffMin  float64   `json:"time_diff_min"`
	NearestIndex int       `json:"nearest_index"`
	NearestTime  time.Time `json:"nearest_time"`
}

// Model converts the wire point to a domain trajectory point.
func (p TrajectoryPoint) Model() model.TrajectoryPoint {
	return model.TrajectoryPoint{
		Position:  model.Position{Lon: p.Lon, Lat: p.Lat},
		Timestamp: p.Timestamp,
	}
}

// Model converts the wire observation to a domain observation.
func (o Observation) Model() model.ShipObservation {
	return model.ShipObservation{
		MMSI:      string(o.MMSI),
		Name:      o.Name,
		Position:  model.Position{Lon: o.Lon, Lat: o.Lat},
		Timestamp: o.Timestamp,
	}
}

// FromPosition converts a domain position.
func FromPosition(p model.Position) Point {
	return Point{Lon: p.Lon, Lat: p.Lat}
}

// FromPositions converts a ring or path.
func FromPositions(ps []model.Position) []Point {
	out := make([]Point, len(ps))
	for i, p := range ps {
		out[i] = FromPosition(p)
	}
	return out
}

// FromRanked converts a ranked vessel to its wire row.
func FromRanked(v model.RankedVessel) Entry {
	return Entry{
		Rank:         v.Rank,
		MMSI:         v.MMSI,
		Name:         v.Name,
		Score:        v.Score,
		Lon:          v.Position.Lon,
		Lat:          v.Position.Lat,
		Timestamp:    v.Timestamp,
		Day:          v.Day.String(),
		DistanceKM:   v.DistanceKM,
		TimeDiffMin:  v.TimeDiffMin,
		NearestIndex: v.NearestIndex,
		NearestTime:  v.NearestTime,
	}
}

// FromRankedList converts a ranking result, preserving order.
func FromRankedList(vs []model.RankedVessel) []Entry {
	out := make([]Entry, len(vs))
	for i, v := range vs {
		out[i] = FromRanked(v)
	}
	return out
}
