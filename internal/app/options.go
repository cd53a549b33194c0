package service

import (
	"time"

	"github.com/softprocon/ShipTracker/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQueryWorkers bounds the goroutines used for batched nearest-point lookups.
func WithQueryWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queryWorkers = n
		}
	}
}

// WithQuadSegments sets the polygon resolution of point buffers.
func WithQuadSegments(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.quadSegs = n
		}
	}
}

// WithLocation sets the zone used to bucket timestamps into days. Nil keeps
// each timestamp's own location.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.location = loc
	}
}

// WithDefaults sets the parameters used for fields a request leaves unset.
func WithDefaults(p Params) Option {
	return func(s *Service) {
		if p.Validate() == nil {
			s.defaults = p
		}
	}
}
