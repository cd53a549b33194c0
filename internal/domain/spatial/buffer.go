package spatial

import (
	"math"

	"github.com/dhconnelly/rtreego"
	geo "github.com/paulmach/go.geo"

	"github.com/softprocon/ShipTracker/internal/domain/model"
)

// DefaultQuadSegments is the number of segments used to approximate a quarter
// circle of a point buffer.
const DefaultQuadSegments = 16

// Polygon is a closed planar ring approximating a point buffer.
type Polygon struct {
	ring  *geo.Path
	bound *geo.Bound
}

// Circle approximates the buffer of radiusDeg around center with
// 4*quadSegs vertices. The ring is closed (first vertex repeated last).
func Circle(center model.Position, radiusDeg float64, quadSegs int) (*Polygon, error) {
	if radiusDeg <= 0 || math.IsNaN(radiusDeg) || math.IsInf(radiusDeg, 0) {
		return nil, ErrInvalidRadius
	}
	if quadSegs <= 0 {
		quadSegs = DefaultQuadSegments
	}
	n := 4 * quadSegs
	ring := geo.NewPath()
	for k := 0; k < n; k++ {
		theta := 2 * math.Pi * float64(k) / float64(n)
		ring.Push(geo.NewPoint(
			center.Lon+radiusDeg*math.Cos(theta),
			center.Lat+radiusDeg*math.Sin(theta),
		))
	}
	ring.Push(ring.GetAt(0).Clone())
	return &Polygon{ring: ring, bound: ring.Bound()}, nil
}

// Ring returns the polygon vertices, closed.
func (p *Polygon) Ring() []model.Position {
	pts := p.ring.Points()
	out := make([]model.Position, len(pts))
	for i := range pts {
		out[i] = model.Position{Lon: pts[i].X(), Lat: pts[i].Y()}
	}
	return out
}

// Contains reports whether q lies inside the polygon (even-odd rule).
func (p *Polygon) Contains(q model.Position) bool {
	if !p.bound.Contains(toPoint(q)) {
		return false
	}
	pts := p.ring.Points()
	inside := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		xi, yi := pts[i].X(), pts[i].Y()
		xj, yj := pts[j].X(), pts[j].Y()
		if (yi > q.Lat) != (yj > q.Lat) &&
			q.Lon < (xj-xi)*(q.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func (p *Polygon) rect() rtreego.Rect {
	sw := p.bound.SouthWest()
	ne := p.bound.NorthEast()
	r, err := rtreego.NewRect(rtreego.Point{sw.X(), sw.Y()}, []float64{ne.X() - sw.X(), ne.Y() - sw.Y()})
	if err != nil {
		return rtreego.Point{sw.X(), sw.Y()}.ToRect(pointTolerance)
	}
	return r
}

type indexedPolygon struct {
	poly *Polygon
	rect rtreego.Rect
}

func (ip *indexedPolygon) Bounds() rtreego.Rect { return ip.rect }

// BufferUnion is the union of point buffers around a trajectory. Membership
// is tested against candidate polygons found through their bounding boxes.
type BufferUnion struct {
	polygons []*Polygon
	tree     *rtreego.Rtree
}

// NewBufferUnion buffers every point by radiusDeg. A zero radius buffers
// every point to an empty polygon, so the union has no buffers and contains
// nothing.
func NewBufferUnion(points []model.Position, radiusDeg float64, quadSegs int) (*BufferUnion, error) {
	if len(points) == 0 {
		return nil, model.ErrEmptyTrajectoryInput
	}
	if radiusDeg == 0 {
		return &BufferUnion{}, nil
	}
	u := &BufferUnion{polygons: make([]*Polygon, 0, len(points))}
	objs := make([]rtreego.Spatial, 0, len(points))
	for _, p := range points {
		poly, err := Circle(p, radiusDeg, quadSegs)
		if err != nil {
			return nil, err
		}
		u.polygons = append(u.polygons, poly)
		objs = append(objs, &indexedPolygon{poly: poly, rect: poly.rect()})
	}
	u.tree = rtreego.NewTree(treeDim, treeMinChildren, treeMaxChildren, objs...)
	return u, nil
}

// Contains reports whether q falls inside any buffer.
func (u *BufferUnion) Contains(q model.Position) bool {
	if u.tree == nil {
		return false
	}
	probe := rtreego.Point{q.Lon, q.Lat}.ToRect(pointTolerance)
	for _, hit := range u.tree.SearchIntersect(probe) {
		if ip, ok := hit.(*indexedPolygon); ok && ip.poly.Contains(q) {
			return true
		}
	}
	return false
}

// Polygons returns the rings of every buffer for rendering.
func (u *BufferUnion) Polygons() [][]model.Position {
	out := make([][]model.Position, len(u.polygons))
	for i, p := range u.polygons {
		out[i] = p.Ring()
	}
	return out
}

// Len returns the number of buffers in the union.
func (u *BufferUnion) Len() int { return len(u.polygons) }
