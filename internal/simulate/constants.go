package simulate

import "time"

// Scenario defaults.
const (
	DefaultNearVessels         = 40
	DefaultFarVessels          = 20
	DefaultPingsPerVessel      = 3
	DefaultTrajectoryHours     = 48
	DefaultBufferSizeKM        = 10
	DefaultTimeIntervalMinutes = 60
	DefaultTimeout             = 30 * time.Second
	DefaultProximityPolicy     = "threshold"
)

// Generator constants.
const (
	trajectoryStep = 10 * time.Minute
	driftKMPerStep = 0.25
	startHourUTC   = 6
	nearFraction   = 0.8
	farMultiplier  = 5
	kmPerDegree    = 111
	originLon      = -35.0
	originLat      = -7.0
	mmsiBase       = 257000000
	nameFormat     = "SIM VESSEL %03d"
)
