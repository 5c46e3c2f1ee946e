package zoning

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
)

const (
	// nudgeMeters is the minimum distance kept between a preserved-membership
	// centroid and the main-area center.
	nudgeMeters = 10.0

	// hullFallbackMeters is the half-width of the square used when a
	// fallback hull has fewer than three distinct points.
	hullFallbackMeters = 1.0
)

// Membership selects how zone plants are derived after tessellation.
type Membership int

const (
	// MembershipContainment re-derives plants by point-in-polygon against
	// the cells. Plants matched by no cell go to the nearest centroid.
	MembershipContainment Membership = iota

	// MembershipPreserve keeps each cluster's plants verbatim.
	MembershipPreserve

	// MembershipBalanced uses containment unless it leaves the water balance
	// worse than the clustering did, in which case clusters are kept.
	MembershipBalanced
)

// draft is a zone under construction.
type draft struct {
	cluster   int
	center    geo.Coordinate
	polygon   []geo.Coordinate
	plants    []Plant
	neighbors []int
}

// CreateVoronoiZones turns clusters into zones whose boundaries are the
// half-plane Voronoi cells of the cluster centroids inside mainArea. A cell
// that degenerates is replaced by the convex hull of its cluster; when that
// fails too the zone is dropped and a warning returned.
func CreateVoronoiZones(clusters [][]Plant, mainArea []geo.Coordinate, colors []string, m Membership) ([]Zone, []string) {
	if len(clusters) == 0 {
		return nil, nil
	}
	centers := clusterCenters(clusters, mainArea, m == MembershipPreserve)
	cells := geo.VoronoiCells(centers, mainArea)

	var (
		drafts   []draft
		orphans  []Plant
		warnings []string
	)
	for i, members := range clusters {
		poly := []geo.Coordinate(cells[i].Polygon)
		if len(poly) < 3 {
			poly = fallbackHull(members, mainArea)
		}
		if len(poly) < 3 {
			warnings = append(warnings, fmt.Sprintf("cluster %d: cell and hull fallback degenerate, zone dropped", i+1))
			orphans = append(orphans, members...)
			continue
		}
		drafts = append(drafts, draft{
			cluster:   i,
			center:    centers[i],
			polygon:   poly,
			plants:    append([]Plant(nil), members...),
			neighbors: cells[i].Neighbors,
		})
	}
	if len(drafts) == 0 {
		return nil, warnings
	}
	attachNearest(drafts, orphans)

	switch m {
	case MembershipContainment:
		assignByContainment(drafts, clusters)
	case MembershipBalanced:
		kept := make([][]Plant, len(drafts))
		for i := range drafts {
			kept[i] = drafts[i].plants
		}
		before := maxDeviation(drafts)
		assignByContainment(drafts, clusters)
		if maxDeviation(drafts) > before+1e-9 {
			for i := range drafts {
				drafts[i].plants = kept[i]
			}
		}
	}
	return finishZones(drafts, colors), warnings
}

// CreateHullZones builds each zone as the convex hull of its cluster padded
// outward by paddingMeters and clipped to mainArea.
func CreateHullZones(clusters [][]Plant, mainArea []geo.Coordinate, colors []string, paddingMeters float64) ([]Zone, []string) {
	var (
		drafts   []draft
		orphans  []Plant
		warnings []string
	)
	for i, members := range clusters {
		if len(members) == 0 {
			continue
		}
		center := meanPosition(members)
		var poly []geo.Coordinate
		hull := geo.ConvexHull(positions(members))
		if len(geo.Polygon(hull).Dedupe()) < 3 {
			square := geo.SquareAround(center, math.Max(paddingMeters, hullFallbackMeters))
			poly = geo.ClipPolygonToMainArea(square, mainArea)
		} else {
			poly = geo.AddPolygonPadding(hull, paddingMeters, mainArea)
		}
		if len(poly) < 3 {
			warnings = append(warnings, fmt.Sprintf("cluster %d: hull degenerate after clipping, zone dropped", i+1))
			orphans = append(orphans, members...)
			continue
		}
		drafts = append(drafts, draft{
			cluster: i,
			center:  center,
			polygon: poly,
			plants:  append([]Plant(nil), members...),
		})
	}
	if len(drafts) == 0 {
		return nil, warnings
	}
	attachNearest(drafts, orphans)
	return finishZones(drafts, colors), warnings
}

// clusterCenters returns the seed point of each cluster's cell. Preserved
// clusters use the plain mean pushed away from the main-area center;
// otherwise the water-weighted centroid is used.
func clusterCenters(clusters [][]Plant, mainArea []geo.Coordinate, preserve bool) []geo.Coordinate {
	centers := make([]geo.Coordinate, len(clusters))
	if !preserve {
		for i, c := range clusters {
			centers[i] = waterWeightedCentroid(c)
		}
		return centers
	}
	areaCenter := geo.Polygon(mainArea).Centroid()
	for i, c := range clusters {
		centers[i] = nudgeFromCenter(meanPosition(c), areaCenter, i, len(clusters))
	}
	return centers
}

func waterWeightedCentroid(plants []Plant) geo.Coordinate {
	var lat, lng, w float64
	for _, p := range plants {
		lat += p.Position.Lat * p.WaterNeed
		lng += p.Position.Lng * p.WaterNeed
		w += p.WaterNeed
	}
	if w <= 0 {
		return meanPosition(plants)
	}
	return geo.Coordinate{Lat: lat / w, Lng: lng / w}
}

func meanPosition(plants []Plant) geo.Coordinate {
	return geo.Mean(positions(plants))
}

func positions(plants []Plant) []geo.Coordinate {
	pts := make([]geo.Coordinate, len(plants))
	for i, p := range plants {
		pts[i] = p.Position
	}
	return pts
}

// nudgeFromCenter moves c to at least nudgeMeters from center. A point that
// coincides with center is pushed along a direction derived from its index.
func nudgeFromCenter(c, center geo.Coordinate, idx, k int) geo.Coordinate {
	dLat, dLng := geo.MetersToDegrees(1, center.Lat)
	dx := (c.Lng - center.Lng) / dLng
	dy := (c.Lat - center.Lat) / dLat
	d := math.Hypot(dx, dy)
	if d >= nudgeMeters {
		return c
	}
	if d < 1e-9 {
		angle := 2 * math.Pi * float64(idx) / float64(k)
		dx, dy, d = math.Cos(angle), math.Sin(angle), 1
	}
	f := nudgeMeters / d
	return geo.Coordinate{
		Lat: center.Lat + dy*f*dLat,
		Lng: center.Lng + dx*f*dLng,
	}
}

// fallbackHull returns the clipped convex hull of a cluster, or a small
// square around it when the hull is degenerate.
func fallbackHull(members []Plant, mainArea []geo.Coordinate) []geo.Coordinate {
	if len(members) == 0 {
		return nil
	}
	hull := geo.ConvexHull(positions(members))
	if len(geo.Polygon(hull).Dedupe()) < 3 {
		hull = geo.SquareAround(meanPosition(members), hullFallbackMeters)
	}
	return geo.ClipPolygonToMainArea(hull, mainArea)
}

// assignByContainment rebuilds every draft's plants from the cells. The
// first containing cell wins.
func assignByContainment(drafts []draft, clusters [][]Plant) {
	for i := range drafts {
		drafts[i].plants = nil
	}
	for _, members := range clusters {
		for _, p := range members {
			idx := -1
			for j := range drafts {
				if geo.PointInPolygon(p.Position, drafts[j].polygon) {
					idx = j
					break
				}
			}
			if idx < 0 {
				idx = nearestDraft(drafts, p.Position)
			}
			drafts[idx].plants = append(drafts[idx].plants, p)
		}
	}
}

func attachNearest(drafts []draft, plants []Plant) {
	for _, p := range plants {
		idx := nearestDraft(drafts, p.Position)
		drafts[idx].plants = append(drafts[idx].plants, p)
	}
}

func nearestDraft(drafts []draft, pos geo.Coordinate) int {
	best, bestDist := 0, math.Inf(1)
	for i, d := range drafts {
		if dist := geo.DistanceMeters(pos, d.center); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

func maxDeviation(drafts []draft) float64 {
	loads := make([]float64, len(drafts))
	mean := 0.0
	for i, d := range drafts {
		loads[i] = sumWater(d.plants)
		mean += loads[i]
	}
	mean /= float64(len(loads))
	worst := 0.0
	for _, l := range loads {
		worst = math.Max(worst, math.Abs(l-mean))
	}
	return worst
}

func finishZones(drafts []draft, colors []string) []Zone {
	ids := make(map[int]string, len(drafts))
	for i, d := range drafts {
		ids[d.cluster] = zoneID(i)
	}
	zones := make([]Zone, len(drafts))
	for i, d := range drafts {
		z := Zone{
			ID:          zoneID(i),
			Name:        fmt.Sprintf("Zone %d", i+1),
			Coordinates: d.polygon,
			Plants:      d.plants,
			LayoutIndex: i,
		}
		if i < len(colors) {
			z.Color = colors[i]
		}
		for _, n := range d.neighbors {
			if id, ok := ids[n]; ok {
				z.Neighbors = append(z.Neighbors, id)
			}
		}
		z.retally()
		zones[i] = z
	}
	return zones
}

func zoneID(i int) string {
	return fmt.Sprintf("zone-%d", i+1)
}

// retally tags every plant with the zone ID and recomputes the total.
func (z *Zone) retally() {
	if z.Plants == nil {
		z.Plants = []Plant{}
	}
	for i := range z.Plants {
		z.Plants[i].ZoneID = z.ID
	}
	z.TotalWaterNeed = sumWater(z.Plants)
}

func sumWater(plants []Plant) float64 {
	total := 0.0
	for _, p := range plants {
		total += p.WaterNeed
	}
	return total
}
