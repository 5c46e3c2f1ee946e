package cluster

import (
	"math"
	"sort"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
)

const (
	// escapeInterval is how many non-improving iterations pass before an
	// all-pairs search for the single best move.
	escapeInterval = 50
	// geoWeight scales the geographic bonus in the move score.
	geoWeight = 0.1
	// seedIterations bounds the k-means run that seeds the enhanced search.
	seedIterations = 100
)

// EnhancedTolerance returns the balance tolerance, as a fraction of the
// target, used by BalanceWaterEnhanced for k clusters. Balance is harder to
// reach with more clusters, so the tolerance widens with k up to 12%.
func EnhancedTolerance(k int) float64 {
	return math.Min(0.12, 0.05+0.015*float64(k-2))
}

// EnhancedIterations returns the iteration budget for k clusters.
func EnhancedIterations(k int) int {
	if n := 250 * k; n < 1500 {
		return n
	}
	return 1500
}

type move struct {
	from, to int
	member   int
	score    float64
}

// BalanceWaterEnhanced balances total weight while keeping clusters
// geographically coherent.
//
// Clusters start from k-means. Each iteration picks a deviating cluster,
// pairs it with the partner that has the best combination of deviation and
// achievable improvement, and moves the member with the highest
// balanceImprovement + 0.1*geographicBonus. After every 50 non-improving
// iterations an all-pairs search for the single best move is tried; the
// search ends when that finds nothing either.
func BalanceWaterEnhanced(points []Point, k int, seed *int64) [][]Point {
	if len(points) == 0 || k <= 0 {
		return nil
	}
	k = clampK(len(points), k)
	if k == 1 {
		return [][]Point{append([]Point(nil), points...)}
	}

	assign, seedCents := kmeansAssign(points, k, seedIterations, seed)
	clusters := group(points, assign, k)

	target := TotalWeight(points) / float64(k)
	tol := EnhancedTolerance(k) * target
	if target <= 0 {
		return dropEmpty(clusters)
	}

	cents := centroids(clusters, seedCents)
	stagnant := 0
	budget := EnhancedIterations(k)
	for iter := 0; iter < budget; iter++ {
		loads := sums(clusters)
		if withinAll(loads, target, tol) {
			break
		}
		cents = centroids(clusters, cents)

		if mv, ok := targetedMove(clusters, loads, cents, target, tol, stagnant); ok {
			applyMove(clusters, mv)
			stagnant = 0
			continue
		}
		stagnant++
		if stagnant%escapeInterval != 0 {
			continue
		}
		mv, ok := bestAnyMove(clusters, loads, cents, target)
		if !ok {
			break
		}
		applyMove(clusters, mv)
		stagnant = 0
	}
	return dropEmpty(clusters)
}

func withinAll(loads []float64, target, tol float64) bool {
	for _, l := range loads {
		if math.Abs(l-target) > tol {
			return false
		}
	}
	return true
}

// targetedMove picks the source as the rotation-th most deviant cluster so
// repeated failures try different sources, then walks its partners in order
// of combined score.
func targetedMove(clusters [][]Point, loads []float64, cents []geo.Coordinate, target, tol float64, rotation int) (move, bool) {
	k := len(clusters)
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(loads[order[a]]-target) > math.Abs(loads[order[b]]-target)
	})
	src := order[rotation%k]
	dev := loads[src] - target
	if math.Abs(dev) <= tol {
		return move{}, false
	}

	type partner struct {
		idx   int
		score float64
	}
	var partners []partner
	for c := 0; c < k; c++ {
		if c == src {
			continue
		}
		pd := loads[c] - target
		if pd*dev >= 0 {
			continue // same side of the target, nothing to trade
		}
		potential := math.Min(math.Abs(dev), math.Abs(pd))
		partners = append(partners, partner{
			idx:   c,
			score: 0.5*math.Abs(pd)/target + 0.5*potential/target,
		})
	}
	sort.SliceStable(partners, func(a, b int) bool { return partners[a].score > partners[b].score })

	for _, pt := range partners {
		from, to := src, pt.idx
		if dev < 0 {
			from, to = pt.idx, src
		}
		if mv, ok := bestMoveBetween(clusters, loads, cents, target, from, to); ok {
			return mv, true
		}
	}
	return move{}, false
}

// bestAnyMove searches every ordered cluster pair for the best single move.
func bestAnyMove(clusters [][]Point, loads []float64, cents []geo.Coordinate, target float64) (move, bool) {
	var best move
	found := false
	for from := range clusters {
		for to := range clusters {
			if from == to {
				continue
			}
			if mv, ok := bestMoveBetween(clusters, loads, cents, target, from, to); ok {
				if !found || mv.score > best.score {
					best = mv
					found = true
				}
			}
		}
	}
	return best, found
}

// bestMoveBetween scores moving each member of from into to. Only moves
// that strictly improve the pair's balance are considered, and from is
// never emptied.
func bestMoveBetween(clusters [][]Point, loads []float64, cents []geo.Coordinate, target float64, from, to int) (move, bool) {
	if len(clusters[from]) < 2 {
		return move{}, false
	}
	before := math.Abs(loads[from]-target) + math.Abs(loads[to]-target)
	var best move
	found := false
	for i, p := range clusters[from] {
		after := math.Abs(loads[from]-p.Weight-target) + math.Abs(loads[to]+p.Weight-target)
		improvement := (before - after) / target
		if improvement <= 1e-12 {
			continue
		}
		score := improvement + geoWeight*geographicBonus(p.Position, cents[from], cents[to])
		if !found || score > best.score {
			best = move{from: from, to: to, member: i, score: score}
			found = true
		}
	}
	return best, found
}

// geographicBonus is in [-1, 1]: positive when the position is already
// closer to the destination centroid than to the source centroid, negative
// the other way round. Among otherwise equal moves it favors members on the
// shared frontier.
func geographicBonus(pos, src, dst geo.Coordinate) float64 {
	ds := geo.DistanceMeters(pos, src)
	dd := geo.DistanceMeters(pos, dst)
	if ds+dd == 0 {
		return 0
	}
	return (ds - dd) / (ds + dd)
}

func applyMove(clusters [][]Point, mv move) {
	p := clusters[mv.from][mv.member]
	clusters[mv.from] = removeAt(clusters[mv.from], mv.member)
	clusters[mv.to] = append(clusters[mv.to], p)
}
