package geo

import "math"

// Polygon is a closed ring of vertices in order. The last vertex connects
// back to the first implicitly.
type Polygon []Coordinate

// boundaryEps is the distance, in degrees, within which a point is treated
// as lying on a polygon boundary (about 0.1 mm).
const boundaryEps = 1e-9

// IsEmpty returns true if the polygon has fewer than 3 vertices.
func (p Polygon) IsEmpty() bool {
	return len(p) < 3
}

// Edge returns the i-th edge as (start, end). Wraps around.
func (p Polygon) Edge(i int) (Coordinate, Coordinate) {
	n := len(p)
	return p[i%n], p[(i+1)%n]
}

// SignedArea returns the signed area using the shoelace formula, in square
// degrees. Positive for counterclockwise winding, negative for clockwise.
func (p Polygon) SignedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p[i].Lng * p[j].Lat
		area -= p[j].Lng * p[i].Lat
	}
	return area / 2
}

// Area returns the unsigned area of the polygon.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// PolygonArea returns the unsigned shoelace area of the vertex ring.
func PolygonArea(vertices []Coordinate) float64 {
	return Polygon(vertices).Area()
}

// IsCounterClockwise returns true if vertices are in CCW order.
func (p Polygon) IsCounterClockwise() bool {
	return p.SignedArea() > 0
}

// EnsureCCW returns the polygon with vertices in counterclockwise order.
func (p Polygon) EnsureCCW() Polygon {
	if p.SignedArea() < 0 {
		return p.Reverse()
	}
	return p
}

// Reverse returns the polygon with reversed vertex order.
func (p Polygon) Reverse() Polygon {
	n := len(p)
	rev := make(Polygon, n)
	for i, v := range p {
		rev[n-1-i] = v
	}
	return rev
}

// Clone returns a copy that does not share the backing array.
func (p Polygon) Clone() Polygon {
	if p == nil {
		return nil
	}
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// Centroid returns the area centroid of the polygon, or the vertex average
// when the polygon is degenerate.
func (p Polygon) Centroid() Coordinate {
	n := len(p)
	if n == 0 {
		return Coordinate{}
	}
	a := p.SignedArea()
	if n < 3 || math.Abs(a) < 1e-20 {
		return Mean(p)
	}
	// Shift to the first vertex to keep the products well conditioned.
	o := p[0]
	cx, cy := 0.0, 0.0
	for i := 0; i < n; i++ {
		vi := p[i].Sub(o)
		vj := p[(i+1)%n].Sub(o)
		cross := vi.Lng*vj.Lat - vj.Lng*vi.Lat
		cx += (vi.Lng + vj.Lng) * cross
		cy += (vi.Lat + vj.Lat) * cross
	}
	f := 1.0 / (6.0 * a)
	return Coordinate{Lat: o.Lat + cy*f, Lng: o.Lng + cx*f}
}

// BoundingBox returns the axis-aligned bounding box as (min, max).
func (p Polygon) BoundingBox() (Coordinate, Coordinate) {
	if len(p) == 0 {
		return Coordinate{}, Coordinate{}
	}
	minP := p[0]
	maxP := p[0]
	for _, v := range p[1:] {
		minP.Lat = math.Min(minP.Lat, v.Lat)
		minP.Lng = math.Min(minP.Lng, v.Lng)
		maxP.Lat = math.Max(maxP.Lat, v.Lat)
		maxP.Lng = math.Max(maxP.Lng, v.Lng)
	}
	return minP, maxP
}

// Center returns the middle of the bounding box.
func (p Polygon) Center() Coordinate {
	mn, mx := p.BoundingBox()
	return MidPoint(mn, mx)
}

// Contains returns true if the point is inside the polygon using even-odd
// ray casting. Points exactly on the boundary may go either way.
func (p Polygon) Contains(pt Coordinate) bool {
	n := len(p)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi := p[i]
		vj := p[j]
		if (vi.Lat > pt.Lat) != (vj.Lat > pt.Lat) &&
			pt.Lng < (vj.Lng-vi.Lng)*(pt.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lng {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PointInPolygon reports whether point lies inside polygon by ray casting.
func PointInPolygon(point Coordinate, polygon []Coordinate) bool {
	return Polygon(polygon).Contains(point)
}

// Covers reports whether the point is inside the polygon or within eps
// degrees of its boundary.
func (p Polygon) Covers(pt Coordinate, eps float64) bool {
	if p.IsEmpty() {
		return false
	}
	if p.Contains(pt) {
		return true
	}
	return p.BoundaryDistance(pt) <= eps
}

// BoundaryDistance returns the planar distance from pt to the nearest edge.
func (p Polygon) BoundaryDistance(pt Coordinate) float64 {
	best := math.Inf(1)
	for i := range p {
		a, b := p.Edge(i)
		if d := pointSegmentDistance(pt, a, b); d < best {
			best = d
		}
	}
	return best
}

// HasDuplicateVertices reports whether any two vertices coincide.
func (p Polygon) HasDuplicateVertices() bool {
	for i := 0; i < len(p); i++ {
		for j := i + 1; j < len(p); j++ {
			if p[i].PlanarDistance(p[j]) < 1e-12 {
				return true
			}
		}
	}
	return false
}

// Dedupe removes consecutive vertices closer than 1e-12 degrees, including
// the wrap-around pair.
func (p Polygon) Dedupe() Polygon {
	if len(p) == 0 {
		return p
	}
	out := make(Polygon, 0, len(p))
	for _, v := range p {
		if len(out) > 0 && out[len(out)-1].PlanarDistance(v) < 1e-12 {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && out[0].PlanarDistance(out[len(out)-1]) < 1e-12 {
		out = out[:len(out)-1]
	}
	return out
}

func pointSegmentDistance(pt, a, b Coordinate) float64 {
	d := b.Sub(a)
	lenSq := d.Dot(d)
	if lenSq < 1e-30 {
		return pt.PlanarDistance(a)
	}
	t := math.Max(0, math.Min(1, pt.Sub(a).Dot(d)/lenSq))
	return pt.PlanarDistance(a.Lerp(b, t))
}
