package zoning

import (
	"math"
	"sort"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
	"github.com/ChicagoDave/zoneplanner/pkg/validation"
)

// repairShrinkMeters is how far each overlapping polygon is pulled toward
// its centroid per repair.
const repairShrinkMeters = 1.0

// SplitPolicy selects how FixZoneOverlaps redistributes the plants of an
// overlapping pair.
type SplitPolicy int

const (
	// SplitNearest gives every plant to the zone with the nearer centroid.
	SplitNearest SplitPolicy = iota

	// SplitKeepCounts assigns plants nearest-first but leaves each zone
	// with exactly as many plants as it had.
	SplitKeepCounts

	// SplitKeepWater moves a plant to the nearer zone only when that does
	// not increase the pair's combined deviation from the mean water need.
	SplitKeepWater
)

// FixZoneOverlaps repairs every polygon overlap listed in report. Both zones
// of a pair are shrunk toward their centroids, re-clipped to mainArea, and
// their combined plants are redistributed according to policy. The input is
// not modified. The second return value is false when report has no
// polygon overlap errors, in which case zones is returned as is.
//
// Repair is best effort; callers must validate the returned zones again.
func FixZoneOverlaps(zones []Zone, mainArea []geo.Coordinate, report *validation.Report, policy SplitPolicy) ([]Zone, bool) {
	if report == nil || !report.HasErrorCode(validation.CodePolygonOverlap) {
		return zones, false
	}

	out := cloneZones(zones)
	mean := sumZoneWater(out) / float64(len(out))
	index := make(map[string]int, len(out))
	for i, z := range out {
		index[z.ID] = i
	}

	for _, e := range report.Errors {
		if e.Code != validation.CodePolygonOverlap {
			continue
		}
		i, okA := index[e.ZoneID]
		j, okB := index[e.ConflictWith]
		if !okA || !okB || i == j {
			continue
		}
		out[i].Coordinates = shrinkAndClip(out[i].Coordinates, mainArea)
		out[j].Coordinates = shrinkAndClip(out[j].Coordinates, mainArea)
		switch policy {
		case SplitKeepCounts:
			splitKeepingCounts(&out[i], &out[j])
		case SplitKeepWater:
			splitKeepingWater(&out[i], &out[j], mean)
		default:
			splitPlants(&out[i], &out[j])
		}
	}
	return out, true
}

// shrinkAndClip shrinks polygon and clips it back into mainArea. If the clip
// fails the shrunk polygon is kept.
func shrinkAndClip(polygon, mainArea []geo.Coordinate) []geo.Coordinate {
	shrunk := geo.ShrinkTowardCentroid(polygon, repairShrinkMeters)
	if len(mainArea) < 3 {
		return shrunk
	}
	if clipped := geo.ClipPolygonToMainArea(shrunk, mainArea); len(clipped) >= 3 {
		return clipped
	}
	return shrunk
}

// splitPlants reassigns the union of both zones' plants to the zone whose
// polygon centroid is nearest.
func splitPlants(a, b *Zone) {
	ca := geo.Polygon(a.Coordinates).Centroid()
	cb := geo.Polygon(b.Coordinates).Centroid()

	pool := make([]Plant, 0, len(a.Plants)+len(b.Plants))
	pool = append(pool, a.Plants...)
	pool = append(pool, b.Plants...)

	a.Plants, b.Plants = []Plant{}, []Plant{}
	for _, p := range pool {
		if geo.DistanceMeters(p.Position, ca) <= geo.DistanceMeters(p.Position, cb) {
			a.Plants = append(a.Plants, p)
		} else {
			b.Plants = append(b.Plants, p)
		}
	}
	a.retally()
	b.retally()
}

// splitKeepingCounts pools both zones' plants, orders them by how much
// nearer they are to a's centroid than to b's, and hands the first
// len(a.Plants) to a and the rest to b.
func splitKeepingCounts(a, b *Zone) {
	ca := geo.Polygon(a.Coordinates).Centroid()
	cb := geo.Polygon(b.Coordinates).Centroid()

	capA := len(a.Plants)
	pool := make([]Plant, 0, len(a.Plants)+len(b.Plants))
	pool = append(pool, a.Plants...)
	pool = append(pool, b.Plants...)

	pref := make([]float64, len(pool))
	for i, p := range pool {
		pref[i] = geo.DistanceMeters(p.Position, ca) - geo.DistanceMeters(p.Position, cb)
	}
	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool { return pref[order[x]] < pref[order[y]] })

	a.Plants = make([]Plant, 0, capA)
	b.Plants = make([]Plant, 0, len(pool)-capA)
	for rank, idx := range order {
		if rank < capA {
			a.Plants = append(a.Plants, pool[idx])
		} else {
			b.Plants = append(b.Plants, pool[idx])
		}
	}
	a.retally()
	b.retally()
}

// splitKeepingWater moves plants that sit nearer the other zone's centroid
// across, one at a time, skipping any move that would raise
// |a - mean| + |b - mean|. A zone is never emptied.
func splitKeepingWater(a, b *Zone, mean float64) {
	ca := geo.Polygon(a.Coordinates).Centroid()
	cb := geo.Polygon(b.Coordinates).Centroid()
	loadA, loadB := sumWater(a.Plants), sumWater(b.Plants)

	cost := func(x, y float64) float64 { return math.Abs(x-mean) + math.Abs(y-mean) }

	var keepA, keepB []Plant
	var toB []Plant
	for _, p := range a.Plants {
		nearB := geo.DistanceMeters(p.Position, cb) < geo.DistanceMeters(p.Position, ca)
		if nearB && len(a.Plants)-len(toB) > 1 &&
			cost(loadA-p.WaterNeed, loadB+p.WaterNeed) <= cost(loadA, loadB)+1e-9 {
			loadA -= p.WaterNeed
			loadB += p.WaterNeed
			toB = append(toB, p)
			continue
		}
		keepA = append(keepA, p)
	}
	var toA []Plant
	for _, p := range b.Plants {
		nearA := geo.DistanceMeters(p.Position, ca) < geo.DistanceMeters(p.Position, cb)
		if nearA && len(b.Plants)-len(toA) > 1 &&
			cost(loadA+p.WaterNeed, loadB-p.WaterNeed) <= cost(loadA, loadB)+1e-9 {
			loadA += p.WaterNeed
			loadB -= p.WaterNeed
			toA = append(toA, p)
			continue
		}
		keepB = append(keepB, p)
	}

	a.Plants = append(keepA, toA...)
	b.Plants = append(keepB, toB...)
	a.retally()
	b.retally()
}

func sumZoneWater(zones []Zone) float64 {
	total := 0.0
	for _, z := range zones {
		total += sumWater(z.Plants)
	}
	return total
}

func cloneZones(zones []Zone) []Zone {
	out := make([]Zone, len(zones))
	for i, z := range zones {
		out[i] = z
		out[i].Coordinates = append([]geo.Coordinate(nil), z.Coordinates...)
		out[i].Plants = append([]Plant(nil), z.Plants...)
		out[i].Neighbors = append([]string(nil), z.Neighbors...)
	}
	return out
}
