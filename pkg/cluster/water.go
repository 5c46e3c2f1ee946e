package cluster

import (
	"math"
	"sort"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
)

// WaterTolerance is the fraction of the per-cluster target that counts as
// balanced for the basic water-balancing search.
const WaterTolerance = 0.01

// BalanceWater distributes points so every cluster carries about the same
// total weight.
//
// Points are sorted by weight, heaviest first (ties broken by a seeded
// shuffle), and each goes to the currently lightest cluster. A pairwise
// swap-or-move local search then runs for up to maxIter passes. The greedy
// stage ignores geography entirely.
func BalanceWater(points []Point, k, maxIter int, seed *int64) [][]Point {
	if len(points) == 0 || k <= 0 {
		return nil
	}
	k = clampK(len(points), k)
	r := newRandom(seed)

	keys := make([]float64, len(points))
	for i := range keys {
		keys[i] = r.Compare()
	}
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := points[order[a]], points[order[b]]
		if pa.Weight != pb.Weight {
			return pa.Weight > pb.Weight
		}
		return keys[order[a]] < keys[order[b]]
	})

	clusters := make([][]Point, k)
	loads := make([]float64, k)
	for _, idx := range order {
		lightest := 0
		for c := 1; c < k; c++ {
			if loads[c] < loads[lightest] {
				lightest = c
			}
		}
		clusters[lightest] = append(clusters[lightest], points[idx])
		loads[lightest] += points[idx].Weight
	}

	target := TotalWeight(points) / float64(k)
	refinePairs(clusters, target, WaterTolerance*target, maxIter)
	return dropEmpty(clusters)
}

// TightenWater runs the basic pairwise local search over existing clusters
// with the 1% tolerance. It is used to finish off clusters produced by
// BalanceWaterEnhanced, whose own tolerance is looser.
func TightenWater(clusters [][]Point, maxIter int) [][]Point {
	if len(clusters) == 0 {
		return nil
	}
	work := make([][]Point, len(clusters))
	total := 0.0
	for i, c := range clusters {
		work[i] = append([]Point(nil), c...)
		total += TotalWeight(c)
	}
	target := total / float64(len(work))
	refinePairs(work, target, WaterTolerance*target, maxIter)
	return dropEmpty(work)
}

// pairChange is a candidate move (q < 0) or swap between clusters a and b.
type pairChange struct {
	from, to int // cluster indices
	p, q     int // member index in from, and in to for swaps (-1 for moves)
	gain     float64
	geo      float64 // lower is geographically better
}

// refinePairs improves clusters in place. For every pair not already within
// tol of target it applies the single move or swap that most reduces the
// pair's combined absolute deviation, if any strictly reduces it.
func refinePairs(clusters [][]Point, target, tol float64, maxIter int) {
	k := len(clusters)
	if k < 2 {
		return
	}
	loads := sums(clusters)
	within := func(i int) bool { return math.Abs(loads[i]-target) <= tol }
	allWithin := func() bool {
		for i := range loads {
			if !within(i) {
				return false
			}
		}
		return true
	}

	for pass := 0; pass < maxIter; pass++ {
		if allWithin() {
			return
		}
		improved := false
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				if within(i) && within(j) {
					continue
				}
				if change, ok := bestPairChange(clusters, loads, i, j, target); ok {
					applyChange(clusters, loads, change)
					improved = true
				}
			}
		}
		if !improved {
			return
		}
	}
}

func bestPairChange(clusters [][]Point, loads []float64, i, j int, target float64) (pairChange, bool) {
	eps := 1e-12 * math.Max(target, 1)
	before := math.Abs(loads[i]-target) + math.Abs(loads[j]-target)
	ci, cj := Centroid(clusters[i]), Centroid(clusters[j])

	best := pairChange{gain: eps}
	found := false
	consider := func(c pairChange) {
		if c.gain > best.gain+eps || (found && math.Abs(c.gain-best.gain) <= eps && c.geo < best.geo) {
			best = c
			found = true
		}
	}

	moves := func(from, to int, cf, ct geo.Coordinate) {
		if len(clusters[from]) < 2 {
			return
		}
		for pi, p := range clusters[from] {
			nf := loads[from] - p.Weight
			nt := loads[to] + p.Weight
			consider(pairChange{
				from: from, to: to, p: pi, q: -1,
				gain: before - math.Abs(nf-target) - math.Abs(nt-target),
				geo:  geo.DistanceMeters(p.Position, ct) - geo.DistanceMeters(p.Position, cf),
			})
		}
	}
	moves(i, j, ci, cj)
	moves(j, i, cj, ci)

	for pi, p := range clusters[i] {
		for qi, q := range clusters[j] {
			if p.Weight == q.Weight {
				continue
			}
			ni := loads[i] - p.Weight + q.Weight
			nj := loads[j] - q.Weight + p.Weight
			consider(pairChange{
				from: i, to: j, p: pi, q: qi,
				gain: before - math.Abs(ni-target) - math.Abs(nj-target),
				geo: geo.DistanceMeters(p.Position, cj) + geo.DistanceMeters(q.Position, ci) -
					geo.DistanceMeters(p.Position, ci) - geo.DistanceMeters(q.Position, cj),
			})
		}
	}
	return best, found
}

func applyChange(clusters [][]Point, loads []float64, c pairChange) {
	p := clusters[c.from][c.p]
	if c.q < 0 {
		clusters[c.from] = removeAt(clusters[c.from], c.p)
		clusters[c.to] = append(clusters[c.to], p)
		loads[c.from] -= p.Weight
		loads[c.to] += p.Weight
		return
	}
	q := clusters[c.to][c.q]
	clusters[c.from][c.p] = q
	clusters[c.to][c.q] = p
	loads[c.from] += q.Weight - p.Weight
	loads[c.to] += p.Weight - q.Weight
}
