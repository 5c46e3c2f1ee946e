package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean earth radius used for great-circle distances.
const EarthRadiusMeters = 6371008.8

// MetersPerDegreeLat is the length of one degree of latitude.
const MetersPerDegreeLat = 111320.0

// Coordinate is a geographic position in decimal degrees.
//
// Planar operations treat Lng as X and Lat as Y. That is adequate for the
// field-sized areas handled here.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// LatLng is a shorthand constructor for Coordinate.
func LatLng(lat, lng float64) Coordinate {
	return Coordinate{Lat: lat, Lng: lng}
}

// Add returns c + d.
func (c Coordinate) Add(d Coordinate) Coordinate {
	return Coordinate{c.Lat + d.Lat, c.Lng + d.Lng}
}

// Sub returns c - d.
func (c Coordinate) Sub(d Coordinate) Coordinate {
	return Coordinate{c.Lat - d.Lat, c.Lng - d.Lng}
}

// Scale returns c * s.
func (c Coordinate) Scale(s float64) Coordinate {
	return Coordinate{c.Lat * s, c.Lng * s}
}

// Length returns the planar length of the vector in degrees.
func (c Coordinate) Length() float64 {
	return math.Hypot(c.Lng, c.Lat)
}

// Normalize returns the unit vector in the same direction.
// Returns zero vector if length is zero.
func (c Coordinate) Normalize() Coordinate {
	l := c.Length()
	if l < 1e-15 {
		return Coordinate{}
	}
	return Coordinate{c.Lat / l, c.Lng / l}
}

// Dot returns the planar dot product.
func (c Coordinate) Dot(d Coordinate) float64 {
	return c.Lng*d.Lng + c.Lat*d.Lat
}

// Cross returns the planar 2D cross product with Lng as X and Lat as Y.
func (c Coordinate) Cross(d Coordinate) float64 {
	return c.Lng*d.Lat - c.Lat*d.Lng
}

// Perp returns the vector rotated 90 degrees counterclockwise.
func (c Coordinate) Perp() Coordinate {
	return Coordinate{Lat: c.Lng, Lng: -c.Lat}
}

// Lerp returns the linear interpolation between c and d at t in [0,1].
func (c Coordinate) Lerp(d Coordinate, t float64) Coordinate {
	return Coordinate{
		Lat: c.Lat + (d.Lat-c.Lat)*t,
		Lng: c.Lng + (d.Lng-c.Lng)*t,
	}
}

// PlanarDistance returns the Euclidean distance in degree units.
func (c Coordinate) PlanarDistance(d Coordinate) float64 {
	return c.Sub(d).Length()
}

// IsFinite reports whether both components are finite numbers.
func (c Coordinate) IsFinite() bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) &&
		!math.IsNaN(c.Lng) && !math.IsInf(c.Lng, 0)
}

// MidPoint returns the planar midpoint between c and d.
func MidPoint(c, d Coordinate) Coordinate {
	return c.Lerp(d, 0.5)
}

// DistanceMeters returns the great-circle distance between a and b.
func DistanceMeters(a, b Coordinate) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lng)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return la.Distance(lb).Radians() * EarthRadiusMeters
}

// MetersToDegrees converts a distance at the given latitude into degree
// offsets along latitude and longitude.
func MetersToDegrees(meters, atLat float64) (dLat, dLng float64) {
	dLat = meters / MetersPerDegreeLat
	cos := math.Cos(atLat * math.Pi / 180)
	if cos < 1e-6 {
		cos = 1e-6
	}
	dLng = meters / (MetersPerDegreeLat * cos)
	return dLat, dLng
}

// Mean returns the arithmetic mean of the given coordinates.
func Mean(pts []Coordinate) Coordinate {
	if len(pts) == 0 {
		return Coordinate{}
	}
	sum := Coordinate{}
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1.0 / float64(len(pts)))
}
