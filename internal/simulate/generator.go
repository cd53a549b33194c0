package simulate

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/softprocon/ShipTracker/internal/domain/types"
)

// Generate builds a reproducible scenario: a drift heading north-east from a
// fixed origin, near vessels reporting inside the buffer shortly after their
// day's anchor, and far vessels south of the whole drift.
func Generate(clock clockwork.Clock, config *Config) (Scenario, error) {
	if config.TrajectoryHours <= 0 || config.PingsPerVessel <= 0 {
		return Scenario{}, fmt.Errorf("trajectory hours and pings per vessel must be positive")
	}
	if config.NearVessels < 0 || config.FarVessels < 0 {
		return Scenario{}, fmt.Errorf("vessel counts must not be negative")
	}
	if !(config.BufferSizeKM > 0) || !(config.TimeIntervalMinutes > 0) {
		return Scenario{}, fmt.Errorf("buffer and time interval must be positive")
	}

	rng := rand.New(rand.NewPCG(config.Seed, config.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // reproducible scenarios
	start := clock.Now().UTC().Truncate(24 * time.Hour).Add(startHourUTC * time.Hour)

	trajectory := generateTrajectory(start, config.TrajectoryHours)
	anchors := dayAnchors(trajectory)

	scenario := Scenario{Trajectory: trajectory}
	reach := config.BufferSizeKM * nearFraction
	lead := time.Duration(config.TimeIntervalMinutes / 2 * nearFraction * float64(time.Minute))

	for i := 0; i < config.NearVessels; i++ {
		mmsi, name := vesselID(i)
		scenario.Near = append(scenario.Near, mmsi)
		for j := 0; j < config.PingsPerVessel; j++ {
			anchor := trajectory[anchors[rng.IntN(len(anchors))]]
			pos := offsetKM(anchor.Lon, anchor.Lat, reach*rng.Float64(), 2*math.Pi*rng.Float64())
			ts := anchor.Timestamp.Add(time.Duration(rng.Int64N(int64(lead) + 1)))
			scenario.Observations = append(scenario.Observations, types.Observation{
				MMSI: types.MMSI(mmsi), Name: name, Lon: pos.Lon, Lat: pos.Lat, Timestamp: ts.Truncate(time.Second),
			})
		}
	}

	farLat := originLat - farMultiplier*config.BufferSizeKM/kmPerDegree
	for i := 0; i < config.FarVessels; i++ {
		mmsi, name := vesselID(config.NearVessels + i)
		scenario.Far = append(scenario.Far, mmsi)
		for j := 0; j < config.PingsPerVessel; j++ {
			anchor := trajectory[anchors[rng.IntN(len(anchors))]]
			scenario.Observations = append(scenario.Observations, types.Observation{
				MMSI:      types.MMSI(mmsi),
				Name:      name,
				Lon:       anchor.Lon + rng.Float64() - 0.5,
				Lat:       farLat - rng.Float64(),
				Timestamp: anchor.Timestamp,
			})
		}
	}

	rng.Shuffle(len(scenario.Observations), func(i, j int) {
		scenario.Observations[i], scenario.Observations[j] = scenario.Observations[j], scenario.Observations[i]
	})
	return scenario, nil
}

func generateTrajectory(start time.Time, hours int) []types.TrajectoryPoint {
	steps := int(time.Duration(hours)*time.Hour/trajectoryStep) + 1
	out := make([]types.TrajectoryPoint, 0, steps)
	for i := 0; i < steps; i++ {
		p := offsetKM(originLon, originLat, driftKMPerStep*float64(i), math.Pi/4)
		out = append(out, types.TrajectoryPoint{
			Lon:       p.Lon,
			Lat:       p.Lat,
			Timestamp: start.Add(time.Duration(i) * trajectoryStep),
		})
	}
	return out
}

// dayAnchors returns the index of the first trajectory point of every UTC day.
func dayAnchors(trajectory []types.TrajectoryPoint) []int {
	var out []int
	last := ""
	for i, p := range trajectory {
		day := p.Timestamp.UTC().Format(time.DateOnly)
		if day != last {
			out = append(out, i)
			last = day
		}
	}
	return out
}

// offsetKM moves a planar point by km along bearing, measured in radians from east.
func offsetKM(lon, lat, km, bearing float64) types.Point {
	return types.Point{
		Lon: lon + km*math.Cos(bearing)/kmPerDegree,
		Lat: lat + km*math.Sin(bearing)/kmPerDegree,
	}
}

func vesselID(i int) (mmsi, name string) {
	return strconv.Itoa(mmsiBase + i), fmt.Sprintf(nameFormat, i)
}
