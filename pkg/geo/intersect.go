package geo

import (
	"math"
	"sort"
)

// parallelEps is the determinant magnitude below which two lines are
// considered parallel.
const parallelEps = 1e-10

// orientEps is the cross-product magnitude below which three points are
// treated as collinear.
const orientEps = 1e-16

// LineIntersection returns the intersection of the infinite lines through
// (a1, a2) and (b1, b2). Returns false when the lines are parallel.
func LineIntersection(a1, a2, b1, b2 Coordinate) (Coordinate, bool) {
	r := a2.Sub(a1)
	s := b2.Sub(b1)
	det := r.Cross(s)
	if math.Abs(det) < parallelEps {
		return Coordinate{}, false
	}
	t := b1.Sub(a1).Cross(s) / det
	return a1.Add(r.Scale(t)), true
}

// SegmentIntersection returns the intersection of segments a1-a2 and b1-b2.
// Returns false when the segments are parallel or the intersection falls
// outside either segment.
func SegmentIntersection(a1, a2, b1, b2 Coordinate) (Coordinate, bool) {
	r := a2.Sub(a1)
	s := b2.Sub(b1)
	det := r.Cross(s)
	if math.Abs(det) < parallelEps {
		return Coordinate{}, false
	}
	qp := b1.Sub(a1)
	t := qp.Cross(s) / det
	u := qp.Cross(r) / det
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Coordinate{}, false
	}
	return a1.Add(r.Scale(t)), true
}

// orientation returns 1 for a counterclockwise turn a→b→c, -1 for clockwise
// and 0 for collinear.
func orientation(a, b, c Coordinate) int {
	v := b.Sub(a).Cross(c.Sub(a))
	switch {
	case v > orientEps:
		return 1
	case v < -orientEps:
		return -1
	}
	return 0
}

// onSegment reports whether c, known to be collinear with a and b, lies
// within the bounding box of segment a-b.
func onSegment(a, b, c Coordinate) bool {
	return c.Lng <= math.Max(a.Lng, b.Lng)+boundaryEps && c.Lng >= math.Min(a.Lng, b.Lng)-boundaryEps &&
		c.Lat <= math.Max(a.Lat, b.Lat)+boundaryEps && c.Lat >= math.Min(a.Lat, b.Lat)-boundaryEps
}

// SegmentsIntersect reports whether segments a1-a2 and b1-b2 share any
// point, including touching endpoints and collinear overlap.
func SegmentsIntersect(a1, a2, b1, b2 Coordinate) bool {
	o1 := orientation(a1, a2, b1)
	o2 := orientation(a1, a2, b2)
	o3 := orientation(b1, b2, a1)
	o4 := orientation(b1, b2, a2)

	if o1 != o2 && o3 != o4 && o1 != 0 && o2 != 0 && o3 != 0 && o4 != 0 {
		return true
	}
	if o1 == 0 && onSegment(a1, a2, b1) {
		return true
	}
	if o2 == 0 && onSegment(a1, a2, b2) {
		return true
	}
	if o3 == 0 && onSegment(b1, b2, a1) {
		return true
	}
	if o4 == 0 && onSegment(b1, b2, a2) {
		return true
	}
	return false
}

// SegmentsCross reports whether the segments cross at a single interior
// point. Shared endpoints, T-junctions and collinear overlap do not count,
// so neighbouring polygons that share a boundary never cross.
func SegmentsCross(a1, a2, b1, b2 Coordinate) bool {
	o1 := orientation(a1, a2, b1)
	o2 := orientation(a1, a2, b2)
	o3 := orientation(b1, b2, a1)
	o4 := orientation(b1, b2, a2)
	return o1*o2 < 0 && o3*o4 < 0
}

// HasPolygonSelfIntersection checks every pair of non-adjacent edges.
func HasPolygonSelfIntersection(polygon []Coordinate) bool {
	p := Polygon(polygon).Dedupe()
	n := len(p)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := p.Edge(i)
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the closing edge
			}
			b1, b2 := p.Edge(j)
			if SegmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// PolygonsCross reports whether any edge of a crosses any edge of b.
func PolygonsCross(a, b Polygon) bool {
	for i := range a {
		a1, a2 := a.Edge(i)
		for j := range b {
			b1, b2 := b.Edge(j)
			if SegmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// ConvexHull returns the convex hull of points using a Graham scan, in
// counterclockwise order. Inputs with fewer than 3 points are returned
// unchanged.
func ConvexHull(points []Coordinate) []Coordinate {
	if len(points) < 3 {
		return points
	}
	pts := make([]Coordinate, len(points))
	copy(pts, points)

	// Lowest latitude, then lowest longitude.
	start := 0
	for i, p := range pts {
		if p.Lat < pts[start].Lat || (p.Lat == pts[start].Lat && p.Lng < pts[start].Lng) {
			start = i
		}
	}
	pts[0], pts[start] = pts[start], pts[0]
	pivot := pts[0]

	rest := pts[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		ai := math.Atan2(rest[i].Lat-pivot.Lat, rest[i].Lng-pivot.Lng)
		aj := math.Atan2(rest[j].Lat-pivot.Lat, rest[j].Lng-pivot.Lng)
		if ai != aj {
			return ai < aj
		}
		return pivot.PlanarDistance(rest[i]) < pivot.PlanarDistance(rest[j])
	})

	hull := make([]Coordinate, 0, len(pts))
	hull = append(hull, pivot)
	for _, p := range rest {
		for len(hull) >= 2 {
			a := hull[len(hull)-2]
			b := hull[len(hull)-1]
			if b.Sub(a).Cross(p.Sub(a)) > 0 {
				break
			}
			hull = hull[:len(hull)-1]
		}
		if len(hull) == 1 && p.PlanarDistance(pivot) < 1e-15 {
			continue
		}
		hull = append(hull, p)
	}
	return hull
}
