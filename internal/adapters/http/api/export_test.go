package api

import (
	service "github.com/softprocon/ShipTracker/internal/app"
	"github.com/softprocon/ShipTracker/internal/domain/proximity"
)

func serviceDefaults() service.Params {
	return service.Params{BufferSizeKM: 10, TimeIntervalMinutes: 30, Policy: proximity.PolicyThreshold}
}
