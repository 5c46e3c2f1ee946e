package field

import (
	"github.com/ChicagoDave/zoneplanner/pkg/geo"
	"github.com/ChicagoDave/zoneplanner/pkg/zoning"
)

// Balance modes accepted in zoning.mode.
const (
	ModeGeographic = "geographic"
	ModeWater      = "water"
	ModeCount      = "count"
)

// Project is a field described by field.yaml.
type Project struct {
	Name        string           `yaml:"name" json:"name"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	MainArea    []geo.Coordinate `yaml:"main_area" json:"main_area"`
	Plants      []zoning.Plant   `yaml:"plants,omitempty" json:"plants,omitempty"`
	PlantGrid   *PlantGrid       `yaml:"plant_grid,omitempty" json:"plant_grid,omitempty"`
	Zoning      ZoningDef        `yaml:"zoning" json:"zoning"`
}

// PlantGrid fills the main area with a regular grid of plants. It is used
// when a project lists no explicit plants.
type PlantGrid struct {
	SpacingMeters float64 `yaml:"spacing_meters" json:"spacing_meters"`
	WaterNeed     float64 `yaml:"water_need" json:"water_need"`
}

// ZoningDef holds the partition settings of a project.
type ZoningDef struct {
	Zones         int     `yaml:"zones" json:"zones"`
	Mode          string  `yaml:"mode" json:"mode"`
	PaddingMeters float64 `yaml:"padding_meters" json:"padding_meters"`
	Voronoi       *bool   `yaml:"voronoi,omitempty" json:"voronoi,omitempty"`
	Seed          *int64  `yaml:"seed,omitempty" json:"seed,omitempty"`
	WaterStrategy string  `yaml:"water_strategy,omitempty" json:"water_strategy,omitempty"`
}

// Config converts the zoning settings into an engine config. Voronoi
// tessellation defaults to on.
func (z ZoningDef) Config() zoning.Config {
	cfg := zoning.Config{
		NumberOfZones: z.Zones,
		PaddingMeters: z.PaddingMeters,
		UseVoronoi:    true,
		RandomSeed:    z.Seed,
		WaterStrategy: z.WaterStrategy,
	}
	if z.Voronoi != nil {
		cfg.UseVoronoi = *z.Voronoi
	}
	switch z.Mode {
	case ModeWater:
		cfg.BalanceWaterNeed = true
	case ModeCount:
		cfg.BalancePlantCount = true
	}
	return cfg
}

// AllPlants returns the explicit plants, or the generated grid when none
// are listed.
func (p *Project) AllPlants() []zoning.Plant {
	if len(p.Plants) > 0 || p.PlantGrid == nil {
		return p.Plants
	}
	return GridPlants(p.MainArea, p.PlantGrid.SpacingMeters, p.PlantGrid.WaterNeed)
}
