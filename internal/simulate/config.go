package simulate

import (
	"time"

	"github.com/softprocon/ShipTracker/internal/domain/types"
)

// Config holds configuration for a simulated scenario run.
type Config struct {
	BaseURL             string        // Base URL of the service
	NearVessels         int           // Vessels crossing the drift within the buffer and window
	FarVessels          int           // Vessels kept well outside the buffer
	PingsPerVessel      int           // AIS reports per vessel
	TrajectoryHours     int           // Length of the simulated drift
	BufferSizeKM        float64       // Buffer sent with the request
	TimeIntervalMinutes float64       // Window sent with the request
	ProximityPolicy     string        // threshold or containment
	Seed                uint64        // Seed for reproducible scenarios
	Timeout             time.Duration // HTTP request timeout
	OutputFile          string        // Optional file for the generated scenario
	LogFile             string        // Optional log file
	Verbose             bool          // Log every ranked vessel
}

// Scenario is a generated trajectory plus AIS traffic around it.
type Scenario struct {
	Trajectory   []types.TrajectoryPoint `json:"trajectory"`
	Observations []types.Observation     `json:"observations"`
	Near         []string                `json:"near"`
	Far          []string                `json:"far"`
}

// Entry is a ranked vessel as returned by POST /rank.
type Entry = types.Entry

// RankResponse is the subset of the POST /rank response the simulator checks.
type RankResponse struct {
	RunID   string  `json:"run_id"`
	Empty   bool    `json:"empty"`
	Vessels []Entry `json:"vessels"`
}

// Stats holds run statistics.
type Stats struct {
	TrajectoryPoints int
	Observations     int
	VesselsRanked    int
	Ties             int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
