// Package zoning partitions plants inside a main area into balanced
// irrigation zones and validates the resulting polygons.
package zoning

import (
	"errors"
	"time"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
	"github.com/ChicagoDave/zoneplanner/pkg/validation"
)

// ErrInvalidInput is returned through Result.Err when the inputs cannot be
// partitioned at all.
var ErrInvalidInput = errors.New("invalid input")

// Plant is a single georeferenced plant location.
type Plant struct {
	ID        string         `json:"id" yaml:"id"`
	Position  geo.Coordinate `json:"position" yaml:"position"`
	WaterNeed float64        `json:"water_need" yaml:"water_need"`
	ZoneID    string         `json:"zone_id,omitempty" yaml:"zone_id,omitempty"`
}

// Zone is one irrigation zone produced by the engine.
type Zone struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Coordinates    []geo.Coordinate `json:"coordinates"`
	Plants         []Plant          `json:"plants"`
	TotalWaterNeed float64          `json:"total_water_need"`
	Color          string           `json:"color"`
	LayoutIndex    int              `json:"layout_index"`
	Neighbors      []string         `json:"neighbors,omitempty"`
}

// Water strategies for BalanceWaterNeed.
const (
	WaterStrategyEnhanced = "enhanced"
	WaterStrategyGreedy   = "greedy"
)

// Config controls a partitioning run.
type Config struct {
	NumberOfZones     int     `json:"number_of_zones" yaml:"number_of_zones"`
	BalanceWaterNeed  bool    `json:"balance_water_need" yaml:"balance_water_need"`
	BalancePlantCount bool    `json:"balance_plant_count" yaml:"balance_plant_count"`
	PaddingMeters     float64 `json:"padding_meters" yaml:"padding_meters"`
	UseVoronoi        bool    `json:"use_voronoi" yaml:"use_voronoi"`
	RandomSeed        *int64  `json:"random_seed,omitempty" yaml:"random_seed,omitempty"`
	WaterStrategy     string  `json:"water_strategy,omitempty" yaml:"water_strategy,omitempty"`
}

// Algorithm names reported in DebugInfo.
const (
	AlgorithmKMeans        = "kmeans"
	AlgorithmWaterEnhanced = "water_balanced_enhanced"
	AlgorithmWaterGreedy   = "water_balanced"
	AlgorithmPlantCount    = "count_balanced"
)

// DebugInfo carries aggregate statistics about a run.
type DebugInfo struct {
	Algorithm         string        `json:"algorithm"`
	Iterations        int           `json:"iterations"`
	ZoneCount         int           `json:"zone_count"`
	MeanWaterNeed     float64       `json:"mean_water_need"`
	Variance          float64       `json:"variance"`
	StdDev            float64       `json:"std_dev"`
	MaxDeviation      float64       `json:"max_deviation"`
	MinDeviation      float64       `json:"min_deviation"`
	DeviationPercent  float64       `json:"deviation_percent"`
	BalanceEfficiency float64       `json:"balance_efficiency"`
	RepairApplied     bool          `json:"repair_applied"`
	Elapsed           time.Duration `json:"elapsed_ns"`
	Warnings          []string      `json:"warnings,omitempty"`
}

// Result is the output of PartitionZones.
type Result struct {
	Zones      []Zone             `json:"zones"`
	Debug      DebugInfo          `json:"debug_info"`
	Success    bool               `json:"success"`
	Error      string             `json:"error,omitempty"`
	Validation *validation.Report `json:"validation,omitempty"`

	err error
}

// Err returns the failure cause, or nil on success.
func (r Result) Err() error {
	return r.err
}

// PlantCount returns the number of plants across all zones.
func (r Result) PlantCount() int {
	n := 0
	for _, z := range r.Zones {
		n += len(z.Plants)
	}
	return n
}
