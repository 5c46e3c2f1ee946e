package cluster

import (
	"math"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
)

// sizeCorrectionPasses bounds the explicit size-correction phase.
const sizeCorrectionPasses = 10

// CountTargets returns the member count each of k clusters should hold for
// n points: n/k each, with the first n%k clusters taking one extra.
func CountTargets(n, k int) []int {
	targets := make([]int, k)
	for i := range targets {
		targets[i] = n / k
		if i < n%k {
			targets[i]++
		}
	}
	return targets
}

// BalanceCount splits points into k clusters of near-equal size.
//
// Seeds are spread by farthest-point sampling. Every point first joins its
// nearest seed; up to maxIter passes then relocate points to a nearer
// cluster only when the source is over its target size and the destination
// is under it. A final size-correction phase moves each over-target
// cluster's farthest member into the nearest under-target cluster.
func BalanceCount(points []Point, k, maxIter int, seed *int64) [][]Point {
	if len(points) == 0 || k <= 0 {
		return nil
	}
	n := len(points)
	k = clampK(n, k)
	r := newRandom(seed)
	targets := CountTargets(n, k)

	cents := farthestPointSeeds(points, k, r.Intn(n))
	assign := make([]int, n)
	sizes := make([]int, k)
	for i, p := range points {
		assign[i] = nearestIndex(cents, p.Position)
		sizes[assign[i]]++
	}

	for pass := 0; pass < maxIter; pass++ {
		cents = centroids(group(points, assign, k), cents)
		moved := false
		for i, p := range points {
			cur := assign[i]
			best := nearestIndex(cents, p.Position)
			if best == cur {
				continue
			}
			if sizes[cur] > targets[cur] && sizes[best] < targets[best] {
				assign[i] = best
				sizes[cur]--
				sizes[best]++
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	for pass := 0; pass < sizeCorrectionPasses; pass++ {
		if sizesMatch(sizes, targets) {
			break
		}
		cents = centroids(group(points, assign, k), cents)
		for c := 0; c < k; c++ {
			for sizes[c] > targets[c] {
				far := farthestMember(points, assign, c, cents[c])
				dst := nearestUnderTarget(cents, sizes, targets, points[far].Position)
				if dst < 0 {
					break
				}
				assign[far] = dst
				sizes[c]--
				sizes[dst]++
			}
		}
	}

	return dropEmpty(group(points, assign, k))
}

// farthestPointSeeds returns k seed positions: the point at first, then
// repeatedly the point maximizing its minimum distance to those chosen.
func farthestPointSeeds(points []Point, k, first int) []geo.Coordinate {
	n := len(points)
	chosen := make([]bool, n)
	chosen[first] = true
	cents := []geo.Coordinate{points[first].Position}
	minDist := make([]float64, n)
	for i, p := range points {
		minDist[i] = geo.DistanceMeters(p.Position, cents[0])
	}
	for len(cents) < k {
		pick := -1
		for i := range points {
			if chosen[i] {
				continue
			}
			if pick < 0 || minDist[i] > minDist[pick] {
				pick = i
			}
		}
		chosen[pick] = true
		c := points[pick].Position
		cents = append(cents, c)
		for i, p := range points {
			minDist[i] = math.Min(minDist[i], geo.DistanceMeters(p.Position, c))
		}
	}
	return cents
}

func farthestMember(points []Point, assign []int, c int, centroid geo.Coordinate) int {
	far := -1
	farDist := -1.0
	for i, p := range points {
		if assign[i] != c {
			continue
		}
		if d := geo.DistanceMeters(p.Position, centroid); d > farDist {
			far = i
			farDist = d
		}
	}
	return far
}

func nearestUnderTarget(cents []geo.Coordinate, sizes, targets []int, pos geo.Coordinate) int {
	best := -1
	bestDist := math.Inf(1)
	for c := range cents {
		if sizes[c] >= targets[c] {
			continue
		}
		if d := geo.DistanceMeters(pos, cents[c]); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func sizesMatch(sizes, targets []int) bool {
	for i := range sizes {
		if sizes[i] != targets[i] {
			return false
		}
	}
	return true
}
