// Package dedupe detects exact-duplicate annotated observations.
package dedupe

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/softprocon/ShipTracker/internal/domain/model"
)

// Deduper records row fingerprints so that each row is kept once.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	Size() int64
}

// inMemoryDeduper implements Deduper with a map. It never evicts: a
// forgotten key would let a duplicate row through.
type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	c := config{expected: defaultExpectedSize}
	for _, opt := range opts {
		opt(&c)
	}
	return &inMemoryDeduper{seen: make(map[string]struct{}, c.expected)}
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}

// Key fingerprints every field that makes two annotated rows identical:
// vessel, position, timestamp, distance and time offset. Floats are encoded
// exactly.
func Key(row model.FilteredObservation) string {
	var b strings.Builder
	b.Grow(128)
	b.WriteString(row.MMSI)
	b.WriteByte(0)
	b.WriteString(row.Name)
	b.WriteByte(0)
	writeFloat(&b, row.Position.Lon)
	writeFloat(&b, row.Position.Lat)
	b.WriteString(row.Timestamp.UTC().Format(time.RFC3339Nano))
	b.WriteByte(0)
	writeFloat(&b, row.DistanceKM)
	writeFloat(&b, row.TimeDiffMin)
	return b.String()
}

func writeFloat(b *strings.Builder, f float64) {
	b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	b.WriteByte(0)
}
