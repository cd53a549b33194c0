package proximity

import "github.com/softprocon/ShipTracker/internal/domain/spatial"

type config struct {
	quadSegs int
}

// Option applies a configuration option to Filter.
type Option func(*config)

// WithQuadSegments sets the buffer resolution of the containment policy.
func WithQuadSegments(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.quadSegs = n
		}
	}
}

func newConfig(opts ...Option) config {
	c := config{quadSegs: spatial.DefaultQuadSegments}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
