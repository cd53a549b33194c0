// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New(ctx) builds a Config with defaults; Load layers file and env on top.
//   - Validate reports every problem wrapped in ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"
	"time"

	"github.com/softprocon/ShipTracker/internal/domain/proximity"
	"github.com/softprocon/ShipTracker/internal/domain/spatial"
	"github.com/softprocon/ShipTracker/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BufferSizeKM is the default proximity radius of a ranking run.
	BufferSizeKM float64 `koanf:"buffer_size_km"`

	// TimeIntervalMinutes is the default full width of the temporal window.
	TimeIntervalMinutes float64 `koanf:"time_interval_minutes"`

	// ProximityPolicy is the default proximity rule: threshold or containment.
	ProximityPolicy string `koanf:"proximity_policy"`

	// BufferQuadSegments sets the polygon resolution of point buffers.
	BufferQuadSegments int `koanf:"buffer_quad_segments"`

	// QueryWorkers bounds the goroutines used for batched nearest-point lookups.
	QueryWorkers int `koanf:"query_workers"`

	// MaxObservations and MaxTrajectoryPoints cap a single ranking request.
	MaxObservations     int `koanf:"max_observations"`
	MaxTrajectoryPoints int `koanf:"max_trajectory_points"`

	// MaxBodyBytes caps the size of a request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// DayLocation is the IANA zone used to bucket timestamps into days.
	// Empty keeps each timestamp's own location.
	DayLocation string `koanf:"day_location"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           logger.FormatText,
		Addr:                ":9080",
		BufferSizeKM:        10,
		TimeIntervalMinutes: 30,
		ProximityPolicy:     proximity.PolicyThreshold.String(),
		BufferQuadSegments:  spatial.DefaultQuadSegments,
		QueryWorkers:        runtime.NumCPU(),
		MaxObservations:     1_000_000,
		MaxTrajectoryPoints: 100_000,
		MaxBodyBytes:        256 << 20,
		DayLocation:         "",
	}
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "addr must not be empty")
	}
	if !positive(c.BufferSizeKM) {
		problems = append(problems, "buffer_size_km must be a positive number")
	}
	if !positive(c.TimeIntervalMinutes) {
		problems = append(problems, "time_interval_minutes must be a positive number")
	}
	if _, err := proximity.ParsePolicy(c.ProximityPolicy); err != nil {
		problems = append(problems, err.Error())
	}
	if c.BufferQuadSegments <= 0 {
		problems = append(problems, "buffer_quad_segments must be positive")
	}
	if c.QueryWorkers <= 0 {
		problems = append(problems, "query_workers must be positive")
	}
	if c.MaxObservations <= 0 || c.MaxTrajectoryPoints <= 0 || c.MaxBodyBytes <= 0 {
		problems = append(problems, "request limits must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case logger.FormatText, logger.FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("unknown log_format %q", c.LogFormat))
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Policy returns the parsed default proximity policy.
func (c *Config) Policy() (proximity.Policy, error) {
	return proximity.ParsePolicy(c.ProximityPolicy)
}

// Location resolves DayLocation. Empty means nil: each timestamp keeps its
// own location.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.DayLocation)
	if name == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("day_location %q: %w", name, err)
	}
	return loc, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
