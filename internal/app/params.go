package service

import (
	"fmt"
	"math"

	"github.com/softprocon/ShipTracker/internal/domain/model"
	"github.com/softprocon/ShipTracker/internal/domain/proximity"
)

// Params are the explicit inputs of a ranking run.
type Params struct {
	BufferSizeKM        float64
	TimeIntervalMinutes float64
	Policy              proximity.Policy
}

// Validate requires positive finite sizes and a known policy.
func (p Params) Validate() error {
	if !positive(p.BufferSizeKM) {
		return fmt.Errorf("%w: buffer_size_km %v", model.ErrInvalidParameters, p.BufferSizeKM)
	}
	if !positive(p.TimeIntervalMinutes) {
		return fmt.Errorf("%w: time_interval_minutes %v", model.ErrInvalidParameters, p.TimeIntervalMinutes)
	}
	switch p.Policy {
	case proximity.PolicyThreshold, proximity.PolicyContainment:
	default:
		return fmt.Errorf("%w: %s", model.ErrInvalidParameters, p.Policy)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
