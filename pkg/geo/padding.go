package geo

import "math"

// maxPaddingAttempts bounds the halving loop in AddPolygonPadding.
const maxPaddingAttempts = 10

// localFrame projects coordinates around an origin into meters with an
// equirectangular approximation.
type localFrame struct {
	origin Coordinate
	kx, ky float64
}

func newLocalFrame(origin Coordinate) localFrame {
	return localFrame{
		origin: origin,
		kx:     MetersPerDegreeLat * math.Max(math.Cos(origin.Lat*math.Pi/180), 1e-6),
		ky:     MetersPerDegreeLat,
	}
}

func (f localFrame) toMeters(c Coordinate) (x, y float64) {
	return (c.Lng - f.origin.Lng) * f.kx, (c.Lat - f.origin.Lat) * f.ky
}

func (f localFrame) fromMeters(x, y float64) Coordinate {
	return Coordinate{Lat: f.origin.Lat + y/f.ky, Lng: f.origin.Lng + x/f.kx}
}

// offsetPolygon moves every vertex along the average of its two adjacent
// edge normals. Positive meters grows the polygon, negative shrinks it.
// This is not a true Minkowski offset; it is adequate for small paddings.
func offsetPolygon(p Polygon, meters float64) Polygon {
	n := len(p)
	if n < 3 || meters == 0 {
		return p.Clone()
	}
	frame := newLocalFrame(p.Centroid())
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, v := range p {
		xs[i], ys[i] = frame.toMeters(v)
	}
	// Outward normal is the right-hand side for CCW rings.
	orient := 1.0
	if p.SignedArea() < 0 {
		orient = -1.0
	}
	normal := func(i, j int) (float64, float64) {
		dx, dy := xs[j]-xs[i], ys[j]-ys[i]
		l := math.Hypot(dx, dy)
		if l < 1e-9 {
			return 0, 0
		}
		return orient * dy / l, -orient * dx / l
	}

	out := make(Polygon, n)
	for i := 0; i < n; i++ {
		prev := (i - 1 + n) % n
		next := (i + 1) % n
		n1x, n1y := normal(prev, i)
		n2x, n2y := normal(i, next)
		ax, ay := n1x+n2x, n1y+n2y
		l := math.Hypot(ax, ay)
		if l < 1e-9 {
			out[i] = p[i]
			continue
		}
		ax, ay = ax/l, ay/l
		out[i] = frame.fromMeters(xs[i]+ax*meters, ys[i]+ay*meters)
	}
	return out
}

// AddPolygonPadding grows polygon outward by meters. When mainArea is given
// the padded polygon is clipped to it; if clipping removes more than half of
// the padded area the padding is halved (up to ten times) until the clipped
// result is at least 110% of the unpadded polygon's area.
func AddPolygonPadding(polygon []Coordinate, meters float64, mainArea []Coordinate) []Coordinate {
	p := Polygon(polygon)
	if p.IsEmpty() {
		return p.Clone()
	}
	if len(mainArea) < 3 {
		return offsetPolygon(p, meters)
	}
	if meters == 0 {
		return ClipPolygonToMainArea(p, mainArea)
	}

	padded := offsetPolygon(p, meters)
	clipped := Polygon(ClipPolygonToMainArea(padded, mainArea))
	if clipped.Area() >= 0.5*padded.Area() {
		return clipped
	}

	baseArea := p.Area()
	amount := meters
	for attempt := 0; attempt < maxPaddingAttempts; attempt++ {
		amount /= 2
		candidate := offsetPolygon(p, amount)
		c := Polygon(ClipPolygonToMainArea(candidate, mainArea))
		if c.IsEmpty() {
			continue
		}
		if c.Area() >= 1.1*baseArea {
			return c
		}
	}

	if unpadded := ClipPolygonToMainArea(p, mainArea); len(unpadded) >= 3 {
		return unpadded
	}
	return clipped
}

// ShrinkTowardCentroid moves every vertex toward the polygon centroid by
// meters. Vertices closer than twice that distance move only halfway.
func ShrinkTowardCentroid(polygon []Coordinate, meters float64) []Coordinate {
	p := Polygon(polygon)
	if p.IsEmpty() || meters <= 0 {
		return p.Clone()
	}
	c := p.Centroid()
	frame := newLocalFrame(c)
	out := make(Polygon, len(p))
	for i, v := range p {
		x, y := frame.toMeters(v)
		d := math.Hypot(x, y)
		if d < 1e-9 {
			out[i] = v
			continue
		}
		step := math.Min(meters, d/2)
		f := (d - step) / d
		out[i] = frame.fromMeters(x*f, y*f)
	}
	return out
}

// SquareAround returns a small axis-aligned square of the given half-width
// in meters centered on c, in CCW order.
func SquareAround(c Coordinate, halfMeters float64) []Coordinate {
	dLat, dLng := MetersToDegrees(halfMeters, c.Lat)
	return []Coordinate{
		{Lat: c.Lat - dLat, Lng: c.Lng - dLng},
		{Lat: c.Lat - dLat, Lng: c.Lng + dLng},
		{Lat: c.Lat + dLat, Lng: c.Lng + dLng},
		{Lat: c.Lat + dLat, Lng: c.Lng - dLng},
	}
}
