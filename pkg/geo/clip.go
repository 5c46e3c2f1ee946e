package geo

// sideOf returns the cross product of (edgeEnd - edgeStart) and
// (p - edgeStart). Positive means p is left of the directed edge.
func sideOf(p, edgeStart, edgeEnd Coordinate) float64 {
	return edgeEnd.Sub(edgeStart).Cross(p.Sub(edgeStart))
}

// isInsideEdge returns true if the point is on the inside (left) of the
// directed edge from edgeStart to edgeEnd.
func isInsideEdge(p, edgeStart, edgeEnd Coordinate) bool {
	return sideOf(p, edgeStart, edgeEnd) >= 0
}

// crossingPoint returns where segment cur→next crosses the line through a
// and b, interpolating on the side values so it cannot fail for a segment
// whose endpoints lie on different sides.
func crossingPoint(cur, next, a, b Coordinate) Coordinate {
	sc := sideOf(cur, a, b)
	sn := sideOf(next, a, b)
	den := sc - sn
	if den == 0 {
		return cur
	}
	return cur.Lerp(next, sc/den)
}

// clipToEdge runs one Sutherland-Hodgman stage, keeping the part of input
// for which inside holds.
func clipToEdge(input Polygon, a, b Coordinate, inside func(Coordinate) bool) Polygon {
	n := len(input)
	output := make(Polygon, 0, n+1)
	for j := 0; j < n; j++ {
		current := input[j]
		next := input[(j+1)%n]
		curInside := inside(current)
		nextInside := inside(next)

		if curInside && nextInside {
			output = append(output, next)
		} else if curInside && !nextInside {
			output = append(output, crossingPoint(current, next, a, b))
		} else if !curInside && nextInside {
			output = append(output, crossingPoint(current, next, a, b))
			output = append(output, next)
		}
	}
	return output.Dedupe()
}

// ClipPolygonToMainArea clips polygon to mainArea with Sutherland-Hodgman,
// one half-plane per main-area edge. Vertices that still fall outside the
// main area afterwards are discarded. When fewer than three vertices
// survive, FindPolygonIntersection is tried. An empty result means the
// polygon could not be clipped.
func ClipPolygonToMainArea(polygon, mainArea []Coordinate) []Coordinate {
	subject := Polygon(polygon)
	area := Polygon(mainArea)
	if subject.IsEmpty() || area.IsEmpty() {
		return nil
	}
	area = area.EnsureCCW()

	output := subject.Clone()
	for i := range area {
		if len(output) == 0 {
			break
		}
		edgeStart, edgeEnd := area.Edge(i)
		output = clipToEdge(output, edgeStart, edgeEnd, func(p Coordinate) bool {
			return isInsideEdge(p, edgeStart, edgeEnd)
		})
	}

	filtered := make(Polygon, 0, len(output))
	for _, v := range output {
		if area.Covers(v, boundaryEps) {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) >= 3 {
		return filtered
	}

	fallback := FindPolygonIntersection(subject, area)
	if len(fallback) < 3 {
		return nil
	}
	return fallback
}

// FindPolygonIntersection approximates the intersection of a and b as the
// convex hull of the vertices of each polygon inside the other and every
// edge-edge intersection point. Returns nil when fewer than three points
// remain.
func FindPolygonIntersection(a, b []Coordinate) []Coordinate {
	pa, pb := Polygon(a), Polygon(b)
	if pa.IsEmpty() || pb.IsEmpty() {
		return nil
	}
	var candidates []Coordinate
	for _, v := range pa {
		if pb.Covers(v, boundaryEps) {
			candidates = append(candidates, v)
		}
	}
	for _, v := range pb {
		if pa.Covers(v, boundaryEps) {
			candidates = append(candidates, v)
		}
	}
	for i := range pa {
		a1, a2 := pa.Edge(i)
		for j := range pb {
			b1, b2 := pb.Edge(j)
			if ix, ok := SegmentIntersection(a1, a2, b1, b2); ok {
				candidates = append(candidates, ix)
			}
		}
	}
	if len(candidates) < 3 {
		return nil
	}
	hull := ConvexHull(candidates)
	if len(hull) < 3 {
		return nil
	}
	return hull
}

// ClipPolygonAgainstLine keeps the part of polygon lying on the same side of
// the line through lineA and lineB as reference. Points on the line count as
// inside.
func ClipPolygonAgainstLine(polygon []Coordinate, lineA, lineB, reference Coordinate) []Coordinate {
	subject := Polygon(polygon)
	if subject.IsEmpty() {
		return nil
	}
	refSide := sideOf(reference, lineA, lineB)
	if refSide == 0 {
		return subject.Clone()
	}
	output := clipToEdge(subject, lineA, lineB, func(p Coordinate) bool {
		s := sideOf(p, lineA, lineB)
		return s == 0 || (s > 0) == (refSide > 0)
	})
	if len(output) < 3 {
		return nil
	}
	return output
}
