// Package spatial answers nearest-point queries against a fixed set of
// trajectory points and builds the planar buffer geometry around them.
//
// All distances are planar and expressed in degrees; callers scale them to
// kilometers with model.KMPerDegree.
package spatial

import (
	"context"
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	geo "github.com/paulmach/go.geo"
	"golang.org/x/sync/errgroup"

	"github.com/softprocon/ShipTracker/internal/domain/model"
)

// R-tree tuning. Points are stored as near-zero rectangles.
const (
	treeDim         = 2
	treeMinChildren = 25
	treeMaxChildren = 50
	pointTolerance  = 1e-12
	minBatchChunk   = 256
)

// Match is the result of a nearest-point lookup.
type Match struct {
	DistanceDeg float64 // planar distance to the nearest reference point
	Index       int     // index of the nearest reference point in the build input
}

// refPoint is a reference point stored in the R-tree.
type refPoint struct {
	idx  int
	pt   *geo.Point
	rect rtreego.Rect
}

func (r *refPoint) Bounds() rtreego.Rect { return r.rect }

// Index is an immutable nearest-neighbor index. It is safe for concurrent
// queries once built.
type Index struct {
	tree    *rtreego.Rtree
	points  []*geo.Point
	workers int
}

// NewIndex builds an index over points. The slice is copied.
func NewIndex(points []model.Position, opts ...Option) (*Index, error) {
	if len(points) == 0 {
		return nil, model.ErrEmptyTrajectoryInput
	}
	idx := &Index{
		points:  make([]*geo.Point, len(points)),
		workers: defaultWorkers(),
	}
	for _, opt := range opts {
		opt(idx)
	}

	objs := make([]rtreego.Spatial, len(points))
	for i, p := range points {
		gp := toPoint(p)
		idx.points[i] = gp
		objs[i] = &refPoint{
			idx:  i,
			pt:   gp,
			rect: rtreego.Point{p.Lon, p.Lat}.ToRect(pointTolerance),
		}
	}
	idx.tree = rtreego.NewTree(treeDim, treeMinChildren, treeMaxChildren, objs...)
	return idx, nil
}

// Len returns the number of reference points.
func (i *Index) Len() int { return len(i.points) }

// Point returns the reference point at position n.
func (i *Index) Point(n int) model.Position {
	return fromPoint(i.points[n])
}

// Nearest returns the planar distance in degrees to the nearest reference
// point and that point's index. Ties resolve to any of the nearest points.
func (i *Index) Nearest(q model.Position) (float64, int) {
	hit := i.tree.NearestNeighbor(rtreego.Point{q.Lon, q.Lat})
	ref, ok := hit.(*refPoint)
	if !ok {
		return math.Inf(1), -1
	}
	return toPoint(q).DistanceFrom(ref.pt), ref.idx
}

// NearestBatch runs Nearest for every query. Large batches are split across
// a bounded number of goroutines; results keep the query order. It stops
// early and returns ctx.Err() when ctx is cancelled.
func (i *Index) NearestBatch(ctx context.Context, queries []model.Position) ([]Match, error) {
	out := make([]Match, len(queries))
	chunk := len(queries) / i.workers
	if chunk < minBatchChunk {
		chunk = minBatchChunk
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for start := 0; start < len(queries); start += chunk {
		end := min(start+chunk, len(queries))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for n := start; n < end; n++ {
				d, idx := i.Nearest(queries[n])
				out[n] = Match{DistanceDeg: d, Index: idx}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("nearest batch: %w", err)
	}
	return out, nil
}

func toPoint(p model.Position) *geo.Point {
	return geo.NewPoint(p.Lon, p.Lat)
}

func fromPoint(p *geo.Point) model.Position {
	return model.Position{Lon: p.X(), Lat: p.Y()}
}
