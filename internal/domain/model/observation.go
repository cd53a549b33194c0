// Package model contains domain models passed between the ranking stages.
package model

import (
	"fmt"
	"math"
	"time"
)

// KMPerDegree converts planar degree distances to kilometers. No ellipsoidal
// correction is applied.
const KMPerDegree = 111.0

// Position is a geographic position in degrees.
type Position struct {
	Lon float64
	Lat float64
}

// VesselKey identifies a logical vessel. Names may collide across MMSIs, so
// both fields are part of the identity.
type VesselKey struct {
	MMSI string
	Name string
}

func (k VesselKey) String() string {
	return fmt.Sprintf("%s/%s", k.MMSI, k.Name)
}

// ShipObservation is a single AIS position report.
type ShipObservation struct {
	MMSI      string    // vessel identifier, repeated across time
	Name      string    // vessel name as reported
	Position  Position  // reported position
	Timestamp time.Time // report time
}

// Key returns the vessel identity of the observation.
func (o ShipObservation) Key() VesselKey {
	return VesselKey{MMSI: o.MMSI, Name: o.Name}
}

// TrajectoryPoint is one sampled point of the modeled spill drift.
type TrajectoryPoint struct {
	Position  Position
	Timestamp time.Time
}

// FilteredObservation is an observation that survived the proximity and
// temporal filters, annotated with its distance and time offset.
type FilteredObservation struct {
	ShipObservation
	DistanceKM   float64   // distance to the nearest trajectory point, rounded to 2 decimals
	Day          Day       // day bucket of the window match
	TimeDiffMin  float64   // signed minutes from the day anchor
	NearestIndex int       // index of the nearest trajectory point
	NearestTime  time.Time // timestamp of the nearest trajectory point
}

// ScoredObservation carries the suitability score. Lower is better.
type ScoredObservation struct {
	FilteredObservation
	Score int
}

// RankedVessel is the best scored observation of a vessel plus its rank.
type RankedVessel struct {
	ScoredObservation
	Rank int
}

// Round2 rounds x to two decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// DegreesToKM scales a planar degree distance to kilometers.
func DegreesToKM(deg float64) float64 {
	return deg * KMPerDegree
}

// KMToDegrees converts a buffer radius in kilometers to degrees, rounded to
// two decimals.
func KMToDegrees(km float64) float64 {
	return Round2(km / KMPerDegree)
}
