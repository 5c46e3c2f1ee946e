package zoning

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
	"github.com/ChicagoDave/zoneplanner/pkg/validation"
)

const (
	// WaterTolerance is the allowed relative deviation of a zone's water need
	// from the mean before it is reported.
	WaterTolerance = 0.01

	// minZoneArea is the smallest polygon area, in square degrees, accepted
	// as non-degenerate.
	minZoneArea = 1e-10

	// coverEps is how far, in degrees, a point may sit outside a polygon and
	// still count as on its boundary.
	coverEps = 1e-9
)

// ValidateOptions tunes ValidateZonesWith.
type ValidateOptions struct {
	// WaterBalanceAdvisory reports water-balance violations as warnings.
	// Used when the zones were not balanced by water need.
	WaterBalanceAdvisory bool
}

// ValidateZones runs every zone check against mainArea.
func ValidateZones(zones []Zone, mainArea []geo.Coordinate) *validation.Report {
	return ValidateZonesWith(zones, mainArea, ValidateOptions{})
}

// ValidateZonesWith runs the water balance, overlap, boundary, geometry and
// plant assignment checks. Checks are independent and never short-circuit.
func ValidateZonesWith(zones []Zone, mainArea []geo.Coordinate, opts ValidateOptions) *validation.Report {
	r := validation.NewReport()

	validateWaterBalance(zones, opts, r)
	validateOverlaps(zones, r)
	validateBoundaries(zones, mainArea, r)
	validateGeometry(zones, r)
	validateAssignments(zones, r)

	return r
}

func validateWaterBalance(zones []Zone, opts ValidateOptions, r *validation.Report) {
	if len(zones) < 2 {
		return
	}
	mean := 0.0
	for _, z := range zones {
		mean += z.TotalWaterNeed
	}
	mean /= float64(len(zones))
	if mean <= 0 {
		return
	}
	tol := WaterTolerance * mean

	for i, z := range zones {
		dev := math.Abs(z.TotalWaterNeed - mean)
		if dev <= tol {
			continue
		}
		res := validation.Result{
			Check:       validation.CheckWaterBalance,
			Code:        validation.CodeWaterImbalance,
			Message:     fmt.Sprintf("zone %s water need %.2f deviates %.2f%% from mean %.2f", z.ID, z.TotalWaterNeed, dev/mean*100, mean),
			Path:        fmt.Sprintf("zones[%d].total_water_need", i),
			ZoneID:      z.ID,
			ActualValue: z.TotalWaterNeed,
			Expected:    fmt.Sprintf("%.2f +/- %.2f", mean, tol),
		}
		if dev > 2*tol && !opts.WaterBalanceAdvisory {
			r.AddError(res)
		} else {
			r.AddWarning(res)
		}
	}
}

func validateOverlaps(zones []Zone, r *validation.Report) {
	for i := 0; i < len(zones); i++ {
		a := zones[i]
		idsA := plantIDs(a)
		for j := i + 1; j < len(zones); j++ {
			b := zones[j]

			for _, p := range b.Plants {
				if idsA[p.ID] {
					r.AddError(validation.Result{
						Check:        validation.CheckOverlap,
						Code:         validation.CodeSharedPlant,
						Message:      fmt.Sprintf("zones %s and %s share plant %q", a.ID, b.ID, p.ID),
						ZoneID:       a.ID,
						ConflictWith: b.ID,
						ActualValue:  p.ID,
					})
				}
			}

			pa, pb := geo.Polygon(a.Coordinates), geo.Polygon(b.Coordinates)
			if geo.PolygonsCross(pa, pb) {
				r.AddError(validation.Result{
					Check:        validation.CheckOverlap,
					Code:         validation.CodePolygonOverlap,
					Message:      fmt.Sprintf("zone %s polygon overlaps zone %s", a.ID, b.ID),
					ZoneID:       a.ID,
					ConflictWith: b.ID,
					Suggestions:  []string{"automatic overlap repair shrinks both zones"},
				})
				continue
			}
			if hasInteriorVertex(pa, pb) || hasInteriorVertex(pb, pa) {
				r.AddWarning(validation.Result{
					Check:        validation.CheckOverlap,
					Code:         validation.CodeVertexContainment,
					Message:      fmt.Sprintf("zone %s has vertices inside zone %s", a.ID, b.ID),
					ZoneID:       a.ID,
					ConflictWith: b.ID,
				})
			}
		}
	}
}

// hasInteriorVertex reports whether any vertex of a lies strictly inside b.
func hasInteriorVertex(a, b geo.Polygon) bool {
	for _, v := range a {
		if b.Contains(v) && b.BoundaryDistance(v) > coverEps {
			return true
		}
	}
	return false
}

func validateBoundaries(zones []Zone, mainArea []geo.Coordinate, r *validation.Report) {
	main := geo.Polygon(mainArea)
	if main.IsEmpty() {
		return
	}
	mainArea2 := main.Area()

	for i, z := range zones {
		if len(z.Coordinates) == 0 {
			continue
		}
		outside := 0
		for _, v := range z.Coordinates {
			if !main.Covers(v, coverEps) {
				outside++
			}
		}
		pct := float64(outside) / float64(len(z.Coordinates)) * 100
		res := validation.Result{
			Check:       validation.CheckBoundary,
			Code:        validation.CodeOutsideMainArea,
			Message:     fmt.Sprintf("zone %s has %.0f%% of vertices outside the main area", z.ID, pct),
			Path:        fmt.Sprintf("zones[%d].coordinates", i),
			ZoneID:      z.ID,
			ActualValue: pct,
			Expected:    "0%",
		}
		switch {
		case pct > 50:
			r.AddError(res)
		case pct >= 10:
			r.AddWarning(res)
		}

		area := geo.PolygonArea(z.Coordinates)
		if area <= mainArea2*(1+1e-9) {
			continue
		}
		res = validation.Result{
			Check:       validation.CheckBoundary,
			Code:        validation.CodeAreaExceedsMain,
			Message:     fmt.Sprintf("zone %s area exceeds the main area by %.1f%%", z.ID, (area/mainArea2-1)*100),
			Path:        fmt.Sprintf("zones[%d].coordinates", i),
			ZoneID:      z.ID,
			ActualValue: area,
		}
		if area > mainArea2*1.1 {
			r.AddError(res)
		} else {
			r.AddWarning(res)
		}
	}
}

func validateGeometry(zones []Zone, r *validation.Report) {
	for i, z := range zones {
		path := fmt.Sprintf("zones[%d].coordinates", i)
		poly := geo.Polygon(z.Coordinates)
		if len(poly) < 3 {
			r.AddError(validation.Result{
				Check:       validation.CheckGeometry,
				Code:        validation.CodeTooFewVertices,
				Message:     fmt.Sprintf("zone %s has %d vertices", z.ID, len(poly)),
				Path:        path,
				ZoneID:      z.ID,
				ActualValue: len(poly),
				Expected:    ">= 3",
			})
			continue
		}
		if poly.HasDuplicateVertices() {
			r.AddWarning(validation.Result{
				Check:   validation.CheckGeometry,
				Code:    validation.CodeDuplicateVertices,
				Message: fmt.Sprintf("zone %s has duplicate vertices", z.ID),
				Path:    path,
				ZoneID:  z.ID,
			})
		}
		if a := poly.Area(); a < minZoneArea {
			r.AddError(validation.Result{
				Check:       validation.CheckGeometry,
				Code:        validation.CodeZeroArea,
				Message:     fmt.Sprintf("zone %s has near-zero area", z.ID),
				Path:        path,
				ZoneID:      z.ID,
				ActualValue: a,
				Expected:    fmt.Sprintf(">= %g", minZoneArea),
			})
		}
		if geo.HasPolygonSelfIntersection(poly) {
			r.AddError(validation.Result{
				Check:   validation.CheckGeometry,
				Code:    validation.CodeSelfIntersection,
				Message: fmt.Sprintf("zone %s polygon intersects itself", z.ID),
				Path:    path,
				ZoneID:  z.ID,
			})
		}
	}
}

func validateAssignments(zones []Zone, r *validation.Report) {
	owner := make(map[string]string)
	for i, z := range zones {
		if len(z.Plants) == 0 {
			r.AddWarning(validation.Result{
				Check:   validation.CheckAssignment,
				Code:    validation.CodeEmptyZone,
				Message: fmt.Sprintf("zone %s has no plants", z.ID),
				Path:    fmt.Sprintf("zones[%d].plants", i),
				ZoneID:  z.ID,
			})
		}

		poly := geo.Polygon(z.Coordinates)
		outside := 0
		for _, p := range z.Plants {
			if prev, ok := owner[p.ID]; ok && prev != z.ID {
				r.AddError(validation.Result{
					Check:        validation.CheckAssignment,
					Code:         validation.CodeDuplicateAssignment,
					Message:      fmt.Sprintf("plant %q is assigned to zones %s and %s", p.ID, prev, z.ID),
					ZoneID:       z.ID,
					ConflictWith: prev,
					ActualValue:  p.ID,
				})
			} else {
				owner[p.ID] = z.ID
			}
			if !poly.Covers(p.Position, coverEps) {
				outside++
			}
		}
		if outside > 0 {
			r.AddWarning(validation.Result{
				Check:       validation.CheckAssignment,
				Code:        validation.CodePlantOutsideZone,
				Message:     fmt.Sprintf("zone %s has %d plants outside its polygon", z.ID, outside),
				Path:        fmt.Sprintf("zones[%d].plants", i),
				ZoneID:      z.ID,
				ActualValue: outside,
			})
		}

		if sum := sumWater(z.Plants); math.Abs(sum-z.TotalWaterNeed) > 1e-9*math.Max(1, sum) {
			r.AddError(validation.Result{
				Check:       validation.CheckAssignment,
				Code:        validation.CodeWaterTotalMismatch,
				Message:     fmt.Sprintf("zone %s total water need %.4f does not match its plants (%.4f)", z.ID, z.TotalWaterNeed, sum),
				Path:        fmt.Sprintf("zones[%d].total_water_need", i),
				ZoneID:      z.ID,
				ActualValue: z.TotalWaterNeed,
				Expected:    fmt.Sprintf("%.4f", sum),
			})
		}
	}
}

func plantIDs(z Zone) map[string]bool {
	ids := make(map[string]bool, len(z.Plants))
	for _, p := range z.Plants {
		ids[p.ID] = true
	}
	return ids
}
