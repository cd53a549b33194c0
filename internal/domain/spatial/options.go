package spatial

import "runtime"

// Option applies a configuration option to the Index.
type Option func(*Index)

// WithWorkers bounds the goroutines used by NearestBatch.
func WithWorkers(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.workers = n
		}
	}
}

func defaultWorkers() int {
	return runtime.NumCPU()
}
