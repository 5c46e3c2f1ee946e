package cluster

import (
	"math"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
	"github.com/ChicagoDave/zoneplanner/pkg/rng"
)

// convergenceDegrees stops Lloyd iterations once no centroid moves further.
const convergenceDegrees = 1e-4

// KMeans clusters points by geographic proximity.
//
// With a seed the initial centroids are picked k-means++ style; without one
// they are the first k points of a shuffled copy. Lloyd iterations run until
// no centroid moves more than 1e-4 degrees or maxIter is reached.
func KMeans(points []Point, k, maxIter int, seed *int64) [][]Point {
	if len(points) == 0 || k <= 0 {
		return nil
	}
	k = clampK(len(points), k)
	assign, _ := kmeansAssign(points, k, maxIter, seed)
	return dropEmpty(group(points, assign, k))
}

// kmeansAssign returns the cluster index of every point and the final
// centroids. Clusters may be empty when points coincide.
func kmeansAssign(points []Point, k, maxIter int, seed *int64) ([]int, []geo.Coordinate) {
	r := newRandom(seed)
	var cents []geo.Coordinate
	if seed != nil {
		cents = plusPlusSeeds(points, k, r)
	} else {
		cents = shuffledSeeds(points, k, r)
	}
	if maxIter < 1 {
		maxIter = 1
	}

	assign := make([]int, len(points))
	for iter := 0; iter < maxIter; iter++ {
		for i, p := range points {
			assign[i] = nearestIndex(cents, p.Position)
		}
		next := centroids(group(points, assign, k), cents)
		moved := 0.0
		for i := range next {
			d := next[i].Sub(cents[i])
			moved = math.Max(moved, math.Max(math.Abs(d.Lat), math.Abs(d.Lng)))
		}
		cents = next
		if moved <= convergenceDegrees {
			break
		}
	}
	for i, p := range points {
		assign[i] = nearestIndex(cents, p.Position)
	}
	return assign, cents
}

// plusPlusSeeds picks the first centroid uniformly and each next one with
// probability proportional to its squared distance from the nearest chosen
// centroid.
func plusPlusSeeds(points []Point, k int, r *rng.SeededRandom) []geo.Coordinate {
	n := len(points)
	chosen := make([]bool, n)
	first := r.Intn(n)
	chosen[first] = true
	cents := []geo.Coordinate{points[first].Position}

	d2 := make([]float64, n)
	for i, p := range points {
		d := geo.DistanceMeters(p.Position, cents[0])
		d2[i] = d * d
	}
	for len(cents) < k {
		total := 0.0
		for i := range points {
			if !chosen[i] {
				total += d2[i]
			}
		}
		pick := -1
		if total > 0 {
			target := r.Next() * total
			acc := 0.0
			for i := range points {
				if chosen[i] || d2[i] == 0 {
					continue
				}
				acc += d2[i]
				pick = i
				if acc > target {
					break
				}
			}
		}
		if pick < 0 {
			for i := range points {
				if !chosen[i] {
					pick = i
					break
				}
			}
		}
		chosen[pick] = true
		c := points[pick].Position
		cents = append(cents, c)
		for i, p := range points {
			d := geo.DistanceMeters(p.Position, c)
			d2[i] = math.Min(d2[i], d*d)
		}
	}
	return cents
}

func shuffledSeeds(points []Point, k int, r *rng.SeededRandom) []geo.Coordinate {
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	r.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	cents := make([]geo.Coordinate, k)
	for i := 0; i < k; i++ {
		cents[i] = points[idx[i]].Position
	}
	return cents
}
