// Package proximity selects the ship observations that lie close to the
// modeled spill trajectory.
package proximity

import (
	"context"
	"fmt"
	"strings"

	"github.com/softprocon/ShipTracker/internal/domain/model"
	"github.com/softprocon/ShipTracker/internal/domain/spatial"
)

// Policy selects how proximity to the trajectory is decided.
type Policy int

const (
	// PolicyThreshold keeps observations whose nearest-point distance in km
	// is at most the buffer size.
	PolicyThreshold Policy = iota
	// PolicyContainment keeps observations inside the union of point
	// buffers around the trajectory.
	PolicyContainment
)

func (p Policy) String() string {
	switch p {
	case PolicyThreshold:
		return "threshold"
	case PolicyContainment:
		return "containment"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy parses a policy name (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "threshold":
		return PolicyThreshold, nil
	case "containment", "within":
		return PolicyContainment, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Filter returns the observations near the trajectory under policy. Input
// order is preserved and the input slice is not modified. The index must be
// built over the same trajectory.
func Filter(ctx context.Context, idx *spatial.Index, trajectory []model.TrajectoryPoint, observations []model.ShipObservation, bufferKM float64, policy Policy, opts ...Option) ([]model.ShipObservation, error) {
	cfg := newConfig(opts...)
	switch policy {
	case PolicyThreshold:
		return byThreshold(ctx, idx, observations, bufferKM)
	case PolicyContainment:
		union, err := Buffer(trajectory, bufferKM, cfg.quadSegs)
		if err != nil {
			return nil, err
		}
		return byContainment(union, observations), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, policy)
	}
}

// Buffer builds the union of buffers of bufferKM around every trajectory
// point. The radius is converted with model.KMToDegrees.
func Buffer(trajectory []model.TrajectoryPoint, bufferKM float64, quadSegs int) (*spatial.BufferUnion, error) {
	points := make([]model.Position, len(trajectory))
	for i, tp := range trajectory {
		points[i] = tp.Position
	}
	union, err := spatial.NewBufferUnion(points, model.KMToDegrees(bufferKM), quadSegs)
	if err != nil {
		return nil, fmt.Errorf("build proximity buffer: %w", err)
	}
	return union, nil
}

func byThreshold(ctx context.Context, idx *spatial.Index, observations []model.ShipObservation, bufferKM float64) ([]model.ShipObservation, error) {
	queries := make([]model.Position, len(observations))
	for i, o := range observations {
		queries[i] = o.Position
	}
	matches, err := idx.NearestBatch(ctx, queries)
	if err != nil {
		return nil, err
	}

	out := make([]model.ShipObservation, 0, len(observations))
	for i, m := range matches {
		if model.Round2(model.DegreesToKM(m.DistanceDeg)) <= bufferKM {
			out = append(out, observations[i])
		}
	}
	return out, nil
}

func byContainment(union *spatial.BufferUnion, observations []model.ShipObservation) []model.ShipObservation {
	out := make([]model.ShipObservation, 0, len(observations))
	for _, o := range observations {
		if union.Contains(o.Position) {
			out = append(out, o)
		}
	}
	return out
}
