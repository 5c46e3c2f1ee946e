// Package cluster groups weighted points into k clusters under one of three
// objectives: geographic compactness (k-means), equal total weight, or equal
// member count.
//
// Points carry the index of the plant they stand for, so callers can map
// clusters back to their own records. Empty clusters are never returned.
package cluster

import (
	"math"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
	"github.com/ChicagoDave/zoneplanner/pkg/rng"
)

// defaultSeed drives the generator when the caller supplies no seed, so
// unseeded runs are reproducible too.
const defaultSeed int64 = 1

// Point is one clusterable item.
type Point struct {
	Index    int            // caller's index for the item
	Position geo.Coordinate // where the item is
	Weight   float64        // water need or any other additive load
}

func newRandom(seed *int64) *rng.SeededRandom {
	if seed == nil {
		return rng.New(defaultSeed)
	}
	return rng.New(*seed)
}

func clampK(n, k int) int {
	if k > n {
		return n
	}
	return k
}

// Centroid returns the arithmetic mean position of the cluster.
func Centroid(c []Point) geo.Coordinate {
	if len(c) == 0 {
		return geo.Coordinate{}
	}
	sum := geo.Coordinate{}
	for _, p := range c {
		sum = sum.Add(p.Position)
	}
	return sum.Scale(1.0 / float64(len(c)))
}

// TotalWeight returns the sum of member weights.
func TotalWeight(c []Point) float64 {
	total := 0.0
	for _, p := range c {
		total += p.Weight
	}
	return total
}

func centroids(clusters [][]Point, previous []geo.Coordinate) []geo.Coordinate {
	out := make([]geo.Coordinate, len(clusters))
	for i, c := range clusters {
		if len(c) == 0 && i < len(previous) {
			out[i] = previous[i]
			continue
		}
		out[i] = Centroid(c)
	}
	return out
}

func nearestIndex(cents []geo.Coordinate, pos geo.Coordinate) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range cents {
		if d := geo.DistanceMeters(pos, c); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func group(points []Point, assign []int, k int) [][]Point {
	clusters := make([][]Point, k)
	for i, p := range points {
		clusters[assign[i]] = append(clusters[assign[i]], p)
	}
	return clusters
}

func dropEmpty(clusters [][]Point) [][]Point {
	out := make([][]Point, 0, len(clusters))
	for _, c := range clusters {
		if len(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// removeAt returns c without element i in a fresh backing array.
func removeAt(c []Point, i int) []Point {
	out := make([]Point, 0, len(c)-1)
	out = append(out, c[:i]...)
	return append(out, c[i+1:]...)
}

func sums(clusters [][]Point) []float64 {
	out := make([]float64, len(clusters))
	for i, c := range clusters {
		out[i] = TotalWeight(c)
	}
	return out
}
