package geo

import (
	"math"
	"sort"
)

// bisectorHalfLength is how far, in degrees, each perpendicular bisector is
// extended from its midpoint. It comfortably crosses any realistic field.
const bisectorHalfLength = 0.1

// VoronoiCell represents one cell in a Voronoi-style tessellation.
type VoronoiCell struct {
	SeedIndex int        // index into the original seed array
	Seed      Coordinate // the seed point
	Polygon   Polygon    // the cell boundary; empty when it degenerated
	Neighbors []int      // indices of neighboring seed points
}

// VoronoiCells tessellates bounds by clipping it, for every seed, against
// the perpendicular bisector between that seed and each other seed. This is
// an approximation of a true Voronoi diagram built from half-planes.
//
// A single seed receives the whole bounds. Cells that collapse below three
// vertices are returned with an empty polygon.
func VoronoiCells(seeds []Coordinate, bounds []Coordinate) []VoronoiCell {
	n := len(seeds)
	if n == 0 {
		return nil
	}
	area := Polygon(bounds)
	if n == 1 {
		return []VoronoiCell{{
			SeedIndex: 0,
			Seed:      seeds[0],
			Polygon:   area.Clone(),
		}}
	}

	cells := make([]VoronoiCell, n)
	for i := 0; i < n; i++ {
		cells[i] = VoronoiCell{
			SeedIndex: i,
			Seed:      seeds[i],
			Polygon:   voronoiCellByHalfPlanes(i, seeds, area),
		}
	}

	neighbors := delaunayNeighbors(seeds, area)
	for i := 0; i < n; i++ {
		cells[i].Neighbors = neighbors[i]
	}
	return cells
}

// voronoiCellByHalfPlanes computes one cell by intersecting half-planes.
// Coincident seeds are skipped so they do not wipe each other out.
func voronoiCellByHalfPlanes(seedIdx int, seeds []Coordinate, bounds Polygon) Polygon {
	cell := bounds.Clone()
	seed := seeds[seedIdx]
	for j, other := range seeds {
		if j == seedIdx {
			continue
		}
		if seed.PlanarDistance(other) < 1e-12 {
			continue
		}
		mid := MidPoint(seed, other)
		dir := other.Sub(seed).Perp().Normalize().Scale(bisectorHalfLength)
		cell = ClipPolygonAgainstLine(cell, mid.Sub(dir), mid.Add(dir), seed)
		if cell.IsEmpty() {
			return nil
		}
	}
	return cell
}

// delaunayNeighbors computes a Bowyer-Watson Delaunay triangulation and
// returns adjacency. neighbors[i] is a sorted list of seed indices adjacent
// to seed i.
func delaunayNeighbors(seeds []Coordinate, bounds Polygon) [][]int {
	n := len(seeds)
	if n < 2 {
		return make([][]int, n)
	}

	// Jitter to avoid degeneracy.
	pts := make([]Coordinate, n)
	for i, s := range seeds {
		pts[i] = Coordinate{
			Lat: s.Lat + float64(i)*1e-11,
			Lng: s.Lng + float64(i)*1e-11,
		}
	}

	// Super-triangle around both the seeds and the bounds.
	all := append(Polygon{}, bounds...)
	all = append(all, pts...)
	bbMin, bbMax := all.BoundingBox()
	dx := bbMax.Lng - bbMin.Lng
	dy := bbMax.Lat - bbMin.Lat
	maxD := math.Max(math.Max(dx, dy)*4, 1e-6)

	superA := Coordinate{Lng: bbMin.Lng - maxD, Lat: bbMin.Lat - maxD}
	superB := Coordinate{Lng: bbMax.Lng + maxD, Lat: bbMin.Lat - maxD}
	superC := Coordinate{Lng: (bbMin.Lng + bbMax.Lng) / 2, Lat: bbMax.Lat + maxD}

	allPts := make([]Coordinate, n+3)
	copy(allPts, pts)
	allPts[n] = superA
	allPts[n+1] = superB
	allPts[n+2] = superC

	type triangle struct{ v [3]int }
	type edge struct{ a, b int }
	triangles := []triangle{{v: [3]int{n, n + 1, n + 2}}}

	for pi := 0; pi < n; pi++ {
		p := allPts[pi]
		bad := make([]int, 0)
		for ti, t := range triangles {
			if inCircumcircle(p, allPts[t.v[0]], allPts[t.v[1]], allPts[t.v[2]]) {
				bad = append(bad, ti)
			}
		}

		edgeCount := make(map[edge]int)
		for _, ti := range bad {
			t := triangles[ti]
			for k := 0; k < 3; k++ {
				e := edge{t.v[k], t.v[(k+1)%3]}
				if e.a > e.b {
					e.a, e.b = e.b, e.a
				}
				edgeCount[e]++
			}
		}

		boundaryEdges := make([]edge, 0)
		for _, ti := range bad {
			t := triangles[ti]
			for k := 0; k < 3; k++ {
				e := edge{t.v[k], t.v[(k+1)%3]}
				norm := e
				if norm.a > norm.b {
					norm.a, norm.b = norm.b, norm.a
				}
				if edgeCount[norm] == 1 {
					boundaryEdges = append(boundaryEdges, e)
				}
			}
		}

		sort.Sort(sort.Reverse(sort.IntSlice(bad)))
		for _, ti := range bad {
			triangles[ti] = triangles[len(triangles)-1]
			triangles = triangles[:len(triangles)-1]
		}

		for _, e := range boundaryEdges {
			triangles = append(triangles, triangle{v: [3]int{e.a, e.b, pi}})
		}
	}

	neighborSet := make([]map[int]bool, n)
	for i := range neighborSet {
		neighborSet[i] = make(map[int]bool)
	}
	// Edges between two real seeds count even when the triangle's third
	// vertex belongs to the super-triangle.
	for _, t := range triangles {
		for k := 0; k < 3; k++ {
			a, b := t.v[k], t.v[(k+1)%3]
			if a >= n || b >= n {
				continue
			}
			neighborSet[a][b] = true
			neighborSet[b][a] = true
		}
	}

	result := make([][]int, n)
	for i, ns := range neighborSet {
		keys := make([]int, 0, len(ns))
		for k := range ns {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		result[i] = keys
	}
	return result
}

// inCircumcircle returns true if point p is inside the circumcircle of
// triangle (a,b,c). Uses the determinant test.
func inCircumcircle(p, a, b, c Coordinate) bool {
	ax, ay := a.Lng-p.Lng, a.Lat-p.Lat
	bx, by := b.Lng-p.Lng, b.Lat-p.Lat
	cx, cy := c.Lng-p.Lng, c.Lat-p.Lat

	det := ax*(by*(cx*cx+cy*cy)-cy*(bx*bx+by*by)) -
		ay*(bx*(cx*cx+cy*cy)-cx*(bx*bx+by*by)) +
		(ax*ax+ay*ay)*(bx*cy-cx*by)

	orient := (b.Lng-a.Lng)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lng-a.Lng)
	if orient < 0 {
		det = -det
	}
	return det > 0
}
