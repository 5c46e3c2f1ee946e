package field

import (
	"fmt"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
	"github.com/ChicagoDave/zoneplanner/pkg/validation"
	"github.com/ChicagoDave/zoneplanner/pkg/zoning"
)

// Validate checks a loaded project before any computation.
func Validate(p *Project) *validation.Report {
	r := validation.NewReport()

	validateMainArea(p, r)
	plants := p.AllPlants()
	validatePlants(p, plants, r)
	validateZoning(p, len(plants), r)

	return r
}

func validateMainArea(p *Project, r *validation.Report) {
	if len(p.MainArea) < 3 {
		r.AddError(validation.Result{
			Check:       validation.CheckInput,
			Code:        validation.CodeInvalidInput,
			Message:     "main_area must have at least 3 vertices",
			Path:        "main_area",
			ActualValue: len(p.MainArea),
			Expected:    ">= 3",
		})
		return
	}
	for i, c := range p.MainArea {
		if !c.IsFinite() {
			r.AddError(validation.Result{
				Check:   validation.CheckInput,
				Code:    validation.CodeInvalidInput,
				Message: fmt.Sprintf("main_area vertex %d is not a finite coordinate", i),
				Path:    fmt.Sprintf("main_area[%d]", i),
			})
		}
	}
	if geo.PolygonArea(p.MainArea) == 0 {
		r.AddError(validation.Result{
			Check:   validation.CheckInput,
			Code:    validation.CodeInvalidInput,
			Message: "main_area has zero area",
			Path:    "main_area",
		})
	}
	if geo.HasPolygonSelfIntersection(p.MainArea) {
		r.AddWarning(validation.Result{
			Check:       validation.CheckInput,
			Code:        validation.CodeSelfIntersection,
			Message:     "main_area intersects itself; clipping results may be unreliable",
			Path:        "main_area",
			Suggestions: []string{"Redraw the field boundary as a simple polygon"},
		})
	}
}

func validatePlants(p *Project, plants []zoning.Plant, r *validation.Report) {
	if len(plants) == 0 {
		r.AddError(validation.Result{
			Check:       validation.CheckInput,
			Code:        validation.CodeInvalidInput,
			Message:     "field has no plants",
			Path:        "plants",
			Suggestions: []string{"List plants or add a plant_grid section"},
		})
		return
	}
	main := geo.Polygon(p.MainArea)
	seen := make(map[string]int, len(plants))
	outside := 0
	for i, pl := range plants {
		path := fmt.Sprintf("plants[%d]", i)
		if pl.ID == "" {
			r.AddError(validation.Result{
				Check:    validation.CheckInput,
				Code:     validation.CodeInvalidInput,
				Message:  fmt.Sprintf("plant at index %d has empty id", i),
				Path:     path + ".id",
				Expected: "non-empty string",
			})
		} else if prev, ok := seen[pl.ID]; ok {
			r.AddError(validation.Result{
				Check:       validation.CheckInput,
				Code:        validation.CodeInvalidInput,
				Message:     fmt.Sprintf("duplicate plant id %q at indices %d and %d", pl.ID, prev, i),
				Path:        path + ".id",
				ActualValue: pl.ID,
			})
		} else {
			seen[pl.ID] = i
		}
		if pl.WaterNeed < 0 {
			r.AddError(validation.Result{
				Check:       validation.CheckInput,
				Code:        validation.CodeInvalidInput,
				Message:     fmt.Sprintf("plant %q water_need must be non-negative", pl.ID),
				Path:        path + ".water_need",
				ActualValue: pl.WaterNeed,
				Expected:    ">= 0",
			})
		}
		if len(main) >= 3 && !main.Contains(pl.Position) {
			outside++
		}
	}
	if outside > 0 {
		r.AddWarning(validation.Result{
			Check:       validation.CheckInput,
			Code:        validation.CodePlantOutsideZone,
			Message:     fmt.Sprintf("%d plants lie outside the main area", outside),
			Path:        "plants",
			ActualValue: outside,
		})
	}
}

func validateZoning(p *Project, plantCount int, r *validation.Report) {
	z := p.Zoning
	if z.Zones < 1 || (plantCount > 0 && z.Zones > plantCount) {
		r.AddError(validation.Result{
			Check:       validation.CheckInput,
			Code:        validation.CodeInvalidInput,
			Message:     fmt.Sprintf("zoning.zones must be between 1 and the plant count %d", plantCount),
			Path:        "zoning.zones",
			ActualValue: z.Zones,
			Expected:    fmt.Sprintf("1..%d", plantCount),
		})
	}
	switch z.Mode {
	case ModeGeographic, ModeWater, ModeCount:
	default:
		r.AddError(validation.Result{
			Check:       validation.CheckInput,
			Code:        validation.CodeInvalidInput,
			Message:     fmt.Sprintf("unknown zoning.mode %q", z.Mode),
			Path:        "zoning.mode",
			ActualValue: z.Mode,
			Expected:    "geographic, water or count",
		})
	}
	switch z.WaterStrategy {
	case "", zoning.WaterStrategyEnhanced, zoning.WaterStrategyGreedy:
	default:
		r.AddError(validation.Result{
			Check:       validation.CheckInput,
			Code:        validation.CodeInvalidInput,
			Message:     fmt.Sprintf("unknown zoning.water_strategy %q", z.WaterStrategy),
			Path:        "zoning.water_strategy",
			ActualValue: z.WaterStrategy,
			Expected:    "enhanced or greedy",
		})
	}
	if z.PaddingMeters < 0 {
		r.AddError(validation.Result{
			Check:       validation.CheckInput,
			Code:        validation.CodeInvalidInput,
			Message:     "zoning.padding_meters must be non-negative",
			Path:        "zoning.padding_meters",
			ActualValue: z.PaddingMeters,
			Expected:    ">= 0",
		})
	}
	if z.Mode == ModeGeographic && z.WaterStrategy != "" {
		r.AddInfo(validation.Result{
			Check:   validation.CheckInput,
			Message: "zoning.water_strategy is ignored outside water mode",
			Path:    "zoning.water_strategy",
		})
	}
}
