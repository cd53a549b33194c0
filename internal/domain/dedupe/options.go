package dedupe

const defaultExpectedSize = 1024

type config struct {
	expected int
}

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*config)

// WithExpectedSize presizes the key set. Values <= 0 keep the default.
func WithExpectedSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.expected = n
		}
	}
}
