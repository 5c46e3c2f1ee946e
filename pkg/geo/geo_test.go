package geo

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// unitSquare is a 1x1 degree square, CCW.
func unitSquare() Polygon {
	return Polygon{LatLng(0, 0), LatLng(0, 1), LatLng(1, 1), LatLng(1, 0)}
}

// fieldSquare returns a square of the given side in meters whose south-west
// corner is at (lat, lng).
func fieldSquare(lat, lng, sideMeters float64) Polygon {
	dLat, dLng := MetersToDegrees(sideMeters, lat)
	return Polygon{
		LatLng(lat, lng),
		LatLng(lat, lng+dLng),
		LatLng(lat+dLat, lng+dLng),
		LatLng(lat+dLat, lng),
	}
}

// --- Coordinate tests ---

func TestDistanceMeters(t *testing.T) {
	// One degree of latitude on the mean sphere.
	d := DistanceMeters(LatLng(0, 0), LatLng(1, 0))
	want := EarthRadiusMeters * math.Pi / 180
	if !approxEqual(d, want, 1e-6) {
		t.Errorf("expected %f, got %f", want, d)
	}
	if DistanceMeters(LatLng(13.7, 100.5), LatLng(13.7, 100.5)) != 0 {
		t.Error("expected zero distance for identical points")
	}
}

func TestMetersToDegrees(t *testing.T) {
	dLat, dLng := MetersToDegrees(111320, 60)
	if !approxEqual(dLat, 1, tolerance) {
		t.Errorf("expected 1 degree latitude, got %f", dLat)
	}
	if !approxEqual(dLng, 2, 1e-6) {
		t.Errorf("expected 2 degrees longitude at 60N, got %f", dLng)
	}
}

func TestPerpIsCounterClockwise(t *testing.T) {
	east := LatLng(0, 1)
	north := east.Perp()
	if !approxEqual(north.Lat, 1, tolerance) || !approxEqual(north.Lng, 0, tolerance) {
		t.Errorf("expected north (1,0), got (%f,%f)", north.Lat, north.Lng)
	}
}

// --- Polygon tests ---

func TestPolygonAreaSquare(t *testing.T) {
	if !approxEqual(PolygonArea(unitSquare()), 1, tolerance) {
		t.Errorf("expected area 1, got %f", PolygonArea(unitSquare()))
	}
	if !approxEqual(unitSquare().Reverse().Area(), 1, tolerance) {
		t.Error("area should not depend on winding")
	}
}

func TestPolygonAreaTriangle(t *testing.T) {
	tri := Polygon{LatLng(0, 0), LatLng(0, 10), LatLng(10, 0)}
	if !approxEqual(tri.Area(), 50, tolerance) {
		t.Errorf("expected area 50, got %f", tri.Area())
	}
}

func TestPolygonCentroid(t *testing.T) {
	sq := fieldSquare(40, -90, 200)
	c := sq.Centroid()
	m := Mean(sq)
	if !approxEqual(c.Lat, m.Lat, 1e-12) || !approxEqual(c.Lng, m.Lng, 1e-12) {
		t.Errorf("expected centroid %v, got %v", m, c)
	}
}

func TestEnsureCCW(t *testing.T) {
	cw := unitSquare().Reverse()
	if cw.IsCounterClockwise() {
		t.Fatal("reversed square should be clockwise")
	}
	if !cw.EnsureCCW().IsCounterClockwise() {
		t.Error("EnsureCCW should produce counterclockwise winding")
	}
}

func TestPointInPolygon(t *testing.T) {
	sq := unitSquare()
	tests := []struct {
		name string
		pt   Coordinate
		want bool
	}{
		{"center", LatLng(0.5, 0.5), true},
		{"east outside", LatLng(0.5, 1.5), false},
		{"west outside", LatLng(0.5, -0.1), false},
		{"north outside", LatLng(1.2, 0.5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInPolygon(tt.pt, sq); got != tt.want {
				t.Errorf("PointInPolygon(%v) = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}
	if PointInPolygon(LatLng(0, 0), []Coordinate{LatLng(0, 0), LatLng(1, 1)}) {
		t.Error("degenerate polygon should contain nothing")
	}
}

func TestPointInConcavePolygon(t *testing.T) {
	// U shape opening north.
	u := Polygon{
		LatLng(0, 0), LatLng(0, 3), LatLng(3, 3), LatLng(3, 2),
		LatLng(1, 2), LatLng(1, 1), LatLng(3, 1), LatLng(3, 0),
	}
	if u.Contains(LatLng(2, 1.5)) {
		t.Error("notch of the U should be outside")
	}
	if !u.Contains(LatLng(2, 0.5)) {
		t.Error("left arm of the U should be inside")
	}
}

func TestCoversBoundary(t *testing.T) {
	sq := unitSquare()
	if !sq.Covers(LatLng(0, 0.5), boundaryEps) {
		t.Error("point on edge should be covered")
	}
	if sq.Covers(LatLng(-0.001, 0.5), boundaryEps) {
		t.Error("point outside edge should not be covered")
	}
}

func TestDedupe(t *testing.T) {
	p := Polygon{LatLng(0, 0), LatLng(0, 0), LatLng(0, 1), LatLng(1, 1), LatLng(0, 0)}
	d := p.Dedupe()
	if len(d) != 3 {
		t.Errorf("expected 3 vertices after dedupe, got %d: %v", len(d), d)
	}
	if !p.HasDuplicateVertices() {
		t.Error("expected duplicates to be detected")
	}
	if unitSquare().HasDuplicateVertices() {
		t.Error("unit square has no duplicates")
	}
}

// --- Intersection tests ---

func TestLineIntersection(t *testing.T) {
	ix, ok := LineIntersection(LatLng(0, 0), LatLng(1, 1), LatLng(0, 1), LatLng(1, 0))
	if !ok {
		t.Fatal("expected intersection")
	}
	if !approxEqual(ix.Lat, 0.5, tolerance) || !approxEqual(ix.Lng, 0.5, tolerance) {
		t.Errorf("expected (0.5,0.5), got %v", ix)
	}
	if _, ok := LineIntersection(LatLng(0, 0), LatLng(0, 1), LatLng(1, 0), LatLng(1, 1)); ok {
		t.Error("parallel lines should not intersect")
	}
}

func TestLineIntersectionUnbounded(t *testing.T) {
	// Lines meet at (0,2), beyond both segments.
	a1, a2 := LatLng(0, 0), LatLng(0, 1)
	b1, b2 := LatLng(1, 2), LatLng(2, 2)
	if _, ok := LineIntersection(a1, a2, b1, b2); !ok {
		t.Error("unbounded variant should find the intersection")
	}
	if _, ok := SegmentIntersection(a1, a2, b1, b2); ok {
		t.Error("bounded variant should reject an intersection outside the segments")
	}
}

func TestSegmentsCrossIgnoresTouching(t *testing.T) {
	// Shared endpoint.
	if SegmentsCross(LatLng(0, 0), LatLng(1, 1), LatLng(1, 1), LatLng(2, 0)) {
		t.Error("shared endpoint is not a crossing")
	}
	// Collinear overlap.
	if SegmentsCross(LatLng(0, 0), LatLng(0, 2), LatLng(0, 1), LatLng(0, 3)) {
		t.Error("collinear overlap is not a crossing")
	}
	if !SegmentsIntersect(LatLng(0, 0), LatLng(0, 2), LatLng(0, 1), LatLng(0, 3)) {
		t.Error("collinear overlap should intersect")
	}
	if !SegmentsCross(LatLng(0, 0), LatLng(1, 1), LatLng(0, 1), LatLng(1, 0)) {
		t.Error("X should cross")
	}
}

func TestSelfIntersection(t *testing.T) {
	bowtie := []Coordinate{LatLng(0, 0), LatLng(1, 1), LatLng(1, 0), LatLng(0, 1)}
	if !HasPolygonSelfIntersection(bowtie) {
		t.Error("bowtie should self-intersect")
	}
	if HasPolygonSelfIntersection(unitSquare()) {
		t.Error("square should not self-intersect")
	}
	if HasPolygonSelfIntersection(fieldSquare(40, -90, 50)) {
		t.Error("small square should not self-intersect")
	}
}

// --- Convex hull tests ---

func TestConvexHullSquareWithInterior(t *testing.T) {
	pts := []Coordinate{
		LatLng(0, 0), LatLng(0.5, 0.5), LatLng(0, 1), LatLng(1, 1),
		LatLng(0.2, 0.7), LatLng(1, 0), LatLng(0, 0.5),
	}
	hull := ConvexHull(pts)
	if len(hull) != 4 {
		t.Fatalf("expected 4 hull vertices, got %d: %v", len(hull), hull)
	}
	if !approxEqual(Polygon(hull).Area(), 1, tolerance) {
		t.Errorf("expected hull area 1, got %f", Polygon(hull).Area())
	}
	if !Polygon(hull).IsCounterClockwise() {
		t.Error("hull should be counterclockwise")
	}
	if hull[0] != LatLng(0, 0) {
		t.Errorf("hull should start at the lowest point, got %v", hull[0])
	}
}

func TestConvexHullSmallInput(t *testing.T) {
	pts := []Coordinate{LatLng(0, 0), LatLng(1, 1)}
	if got := ConvexHull(pts); len(got) != 2 {
		t.Errorf("expected input returned unchanged, got %v", got)
	}
}

func TestConvexHullCollinear(t *testing.T) {
	pts := []Coordinate{LatLng(0, 0), LatLng(0, 1), LatLng(0, 2), LatLng(0, 3)}
	if got := ConvexHull(pts); len(got) >= 3 {
		t.Errorf("collinear points should not form a polygon, got %v", got)
	}
}

// --- Clipping tests ---

func TestClipInsideUnchanged(t *testing.T) {
	outer := Polygon{LatLng(0, 0), LatLng(0, 20), LatLng(20, 20), LatLng(20, 0)}
	inner := Polygon{LatLng(5, 5), LatLng(5, 15), LatLng(15, 15), LatLng(15, 5)}
	clipped := Polygon(ClipPolygonToMainArea(inner, outer))
	if !approxEqual(clipped.Area(), 100, tolerance) {
		t.Errorf("expected area 100, got %f", clipped.Area())
	}
}

func TestClipPartialOverlap(t *testing.T) {
	sq1 := Polygon{LatLng(0, 0), LatLng(0, 10), LatLng(10, 10), LatLng(10, 0)}
	sq2 := Polygon{LatLng(5, 5), LatLng(5, 15), LatLng(15, 15), LatLng(15, 5)}
	clipped := Polygon(ClipPolygonToMainArea(sq1, sq2))
	if !approxEqual(clipped.Area(), 25, tolerance) {
		t.Errorf("expected area 25, got %f", clipped.Area())
	}
	for _, v := range clipped {
		if !sq2.Covers(v, boundaryEps) {
			t.Errorf("vertex %v outside main area", v)
		}
	}
}

func TestClipClockwiseMainArea(t *testing.T) {
	sq1 := Polygon{LatLng(0, 0), LatLng(0, 10), LatLng(10, 10), LatLng(10, 0)}
	sq2 := Polygon{LatLng(5, 5), LatLng(5, 15), LatLng(15, 15), LatLng(15, 5)}.Reverse()
	clipped := Polygon(ClipPolygonToMainArea(sq1, sq2))
	if !approxEqual(clipped.Area(), 25, tolerance) {
		t.Errorf("expected area 25 with clockwise main area, got %f", clipped.Area())
	}
}

func TestClipNoOverlap(t *testing.T) {
	sq1 := Polygon{LatLng(0, 0), LatLng(0, 5), LatLng(5, 5), LatLng(5, 0)}
	sq2 := Polygon{LatLng(10, 10), LatLng(10, 20), LatLng(20, 20), LatLng(20, 10)}
	if clipped := ClipPolygonToMainArea(sq1, sq2); len(clipped) != 0 {
		t.Errorf("expected empty polygon for disjoint squares, got %v", clipped)
	}
}

func TestFindPolygonIntersection(t *testing.T) {
	sq1 := Polygon{LatLng(0, 0), LatLng(0, 10), LatLng(10, 10), LatLng(10, 0)}
	sq2 := Polygon{LatLng(5, 5), LatLng(5, 15), LatLng(15, 15), LatLng(15, 5)}
	ix := Polygon(FindPolygonIntersection(sq1, sq2))
	if !approxEqual(ix.Area(), 25, tolerance) {
		t.Errorf("expected area 25, got %f", ix.Area())
	}
}

func TestClipPolygonAgainstLine(t *testing.T) {
	sq := unitSquare()
	// Vertical line at lng=0.5; keep the western half.
	half := Polygon(ClipPolygonAgainstLine(sq, LatLng(-1, 0.5), LatLng(2, 0.5), LatLng(0.5, 0.1)))
	if !approxEqual(half.Area(), 0.5, tolerance) {
		t.Errorf("expected area 0.5, got %f", half.Area())
	}
	for _, v := range half {
		if v.Lng > 0.5+tolerance {
			t.Errorf("vertex %v on the wrong side", v)
		}
	}
	// Same line, reference on the other side.
	east := Polygon(ClipPolygonAgainstLine(sq, LatLng(-1, 0.5), LatLng(2, 0.5), LatLng(0.5, 0.9)))
	if !approxEqual(east.Area(), 0.5, tolerance) {
		t.Errorf("expected area 0.5, got %f", east.Area())
	}
}

// --- Padding tests ---

func TestPaddingGrowsPolygon(t *testing.T) {
	sq := fieldSquare(40, -90, 100)
	padded := Polygon(AddPolygonPadding(sq, 10, nil))
	// 100 m square padded 10 m by normal averaging: corners move diagonally
	// by 10 m, so the result is a square of side 100 + 2*10/sqrt(2).
	side := 100 + 2*10/math.Sqrt2
	ratio := padded.Area() / sq.Area()
	want := side * side / (100 * 100)
	if !approxEqual(ratio, want, 0.01) {
		t.Errorf("expected area ratio %f, got %f", want, ratio)
	}
}

func TestPaddingClockwiseGrows(t *testing.T) {
	sq := fieldSquare(40, -90, 100).Reverse()
	padded := Polygon(AddPolygonPadding(sq, 5, nil))
	if padded.Area() <= sq.Area() {
		t.Error("padding a clockwise polygon should still grow it")
	}
}

func TestPaddingClippedToMainArea(t *testing.T) {
	main := fieldSquare(40, -90, 200)
	dLat, dLng := MetersToDegrees(50, 40)
	inner := fieldSquare(40+dLat, -90+dLng, 100)
	padded := Polygon(AddPolygonPadding(inner, 20, main))
	if padded.Area() <= Polygon(inner).Area() {
		t.Error("padding inside the main area should grow the polygon")
	}
	for _, v := range padded {
		if !main.Covers(v, boundaryEps) {
			t.Errorf("padded vertex %v outside main area", v)
		}
	}
}

func TestPaddingAgainstBoundaryFallsBack(t *testing.T) {
	main := fieldSquare(40, -90, 100)
	// Same square as the main area: any padding is clipped away entirely.
	padded := Polygon(AddPolygonPadding(main, 30, main))
	if len(padded) < 3 {
		t.Fatal("expected a polygon")
	}
	if !approxEqual(padded.Area(), main.Area(), main.Area()*0.01) {
		t.Errorf("expected the main area back, got area ratio %f", padded.Area()/main.Area())
	}
}

func TestPaddingHalvingNeedsTenPercentGrowth(t *testing.T) {
	// The main area is 1 m taller than the polygon, which is flush with it
	// on the other three sides. No halved padding can reach 110% of the
	// original area, so the unpadded polygon comes back.
	inner := fieldSquare(40, -90, 100)
	dLat, _ := MetersToDegrees(1, 40)
	main := Polygon{inner[0], inner[1], LatLng(inner[2].Lat+dLat, inner[2].Lng), LatLng(inner[3].Lat+dLat, inner[3].Lng)}
	padded := Polygon(AddPolygonPadding(inner, 40, main))
	if len(padded) < 3 {
		t.Fatal("expected a polygon")
	}
	if !approxEqual(padded.Area(), inner.Area(), inner.Area()*0.001) {
		t.Errorf("expected the unpadded polygon, got area ratio %f", padded.Area()/inner.Area())
	}
}

func TestShrinkTowardCentroid(t *testing.T) {
	sq := fieldSquare(40, -90, 100)
	shrunk := Polygon(ShrinkTowardCentroid(sq, 1))
	if shrunk.Area() >= sq.Area() {
		t.Error("shrunk polygon should be smaller")
	}
	for _, v := range shrunk {
		if !sq.Contains(v) {
			t.Errorf("shrunk vertex %v should be strictly inside", v)
		}
	}
	// Each corner moved one meter.
	if d := DistanceMeters(sq[0], shrunk[0]); !approxEqual(d, 1, 0.01) {
		t.Errorf("expected corner to move 1 m, moved %f", d)
	}
}

// --- Voronoi tests ---

func TestVoronoiTwoPoints(t *testing.T) {
	seeds := []Coordinate{LatLng(0, -5), LatLng(0, 5)}
	bounds := Polygon{LatLng(-20, -20), LatLng(-20, 20), LatLng(20, 20), LatLng(20, -20)}
	cells := VoronoiCells(seeds, bounds)

	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	totalArea := bounds.Area()
	for i, c := range cells {
		if c.Polygon.IsEmpty() {
			t.Errorf("cell %d is empty", i)
			continue
		}
		if !approxEqual(c.Polygon.Area(), totalArea/2, totalArea*0.001) {
			t.Errorf("cell %d area %f, expected ~%f", i, c.Polygon.Area(), totalArea/2)
		}
		if !c.Polygon.Contains(c.Seed) {
			t.Errorf("cell %d does not contain its seed", i)
		}
		if len(c.Neighbors) != 1 || c.Neighbors[0] != 1-i {
			t.Errorf("cell %d neighbors = %v, want [%d]", i, c.Neighbors, 1-i)
		}
	}
}

func TestVoronoiFourPointsField(t *testing.T) {
	bounds := fieldSquare(40, -90, 200)
	dLat, dLng := MetersToDegrees(50, 40)
	seeds := []Coordinate{
		LatLng(40+dLat, -90+dLng),
		LatLng(40+dLat, -90+3*dLng),
		LatLng(40+3*dLat, -90+3*dLng),
		LatLng(40+3*dLat, -90+dLng),
	}
	cells := VoronoiCells(seeds, bounds)
	if len(cells) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(cells))
	}
	sum := 0.0
	for i, c := range cells {
		if c.Polygon.IsEmpty() {
			t.Fatalf("cell %d is empty", i)
		}
		want := bounds.Area() / 4
		if !approxEqual(c.Polygon.Area(), want, want*0.001) {
			t.Errorf("cell %d area %g, expected ~%g", i, c.Polygon.Area(), want)
		}
		sum += c.Polygon.Area()
		if len(c.Neighbors) < 2 {
			t.Errorf("cell %d has only %d neighbors, expected >= 2", i, len(c.Neighbors))
		}
	}
	if !approxEqual(sum, bounds.Area(), bounds.Area()*1e-6) {
		t.Errorf("cells should tile the bounds: %g vs %g", sum, bounds.Area())
	}
	for i := range cells {
		for j := i + 1; j < len(cells); j++ {
			if PolygonsCross(cells[i].Polygon, cells[j].Polygon) {
				t.Errorf("cells %d and %d cross", i, j)
			}
		}
	}
}

func TestVoronoiSinglePoint(t *testing.T) {
	bounds := fieldSquare(40, -90, 200)
	cells := VoronoiCells([]Coordinate{bounds.Centroid()}, bounds)
	if len(cells) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(cells))
	}
	if !approxEqual(cells[0].Polygon.Area(), bounds.Area(), 1e-15) {
		t.Errorf("single cell area %g, expected %g", cells[0].Polygon.Area(), bounds.Area())
	}
}

func TestVoronoiCellOutsideBounds(t *testing.T) {
	bounds := unitSquare()
	// The second seed is far away; its cell misses the bounds entirely.
	seeds := []Coordinate{LatLng(0.5, 0.5), LatLng(0.5, 10)}
	cells := VoronoiCells(seeds, bounds)
	if !cells[1].Polygon.IsEmpty() {
		t.Errorf("expected far cell to be empty, got %v", cells[1].Polygon)
	}
	if !approxEqual(cells[0].Polygon.Area(), 1, tolerance) {
		t.Errorf("near cell should keep the whole bounds, got %f", cells[0].Polygon.Area())
	}
}
