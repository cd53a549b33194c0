package api

// Option applies a configuration option to the Server.
type Option func(*limits)

type limits struct {
	maxObservations     int
	maxTrajectoryPoints int
	maxBodyBytes        int64
}

// Default request limits.
const (
	defaultMaxObservations     = 1_000_000
	defaultMaxTrajectoryPoints = 100_000
	defaultMaxBodyBytes        = 256 << 20
)

// WithMaxObservations caps the observations accepted by one request.
func WithMaxObservations(n int) Option {
	return func(l *limits) {
		if n > 0 {
			l.maxObservations = n
		}
	}
}

// WithMaxTrajectoryPoints caps the trajectory points accepted by one request.
func WithMaxTrajectoryPoints(n int) Option {
	return func(l *limits) {
		if n > 0 {
			l.maxTrajectoryPoints = n
		}
	}
}

// WithMaxBodyBytes caps the request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(l *limits) {
		if n > 0 {
			l.maxBodyBytes = n
		}
	}
}

func newLimits(opts ...Option) limits {
	l := limits{
		maxObservations:     defaultMaxObservations,
		maxTrajectoryPoints: defaultMaxTrajectoryPoints,
		maxBodyBytes:        defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}
