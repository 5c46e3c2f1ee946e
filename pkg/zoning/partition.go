package zoning

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/ChicagoDave/zoneplanner/pkg/cluster"
	"github.com/ChicagoDave/zoneplanner/pkg/geo"
	"github.com/ChicagoDave/zoneplanner/pkg/validation"
)

// ErrNoZones is returned through Result.Err when tessellation produced no
// usable zone.
var ErrNoZones = errors.New("no zones could be constructed")

// Iteration budgets for the clustering stages.
const (
	kmeansIterations  = 100
	waterIterations   = 200
	tightenIterations = 200
	countIterations   = 100
)

// Partitioner runs the zoning pipeline. The zero value is ready to use.
type Partitioner struct {
	// Logger receives fallback and dropped-zone warnings. Nil is silent.
	Logger *log.Logger

	// Now overrides the clock used for DebugInfo.Elapsed.
	Now func() time.Time
}

// PartitionZones splits plants inside mainArea into cfg.NumberOfZones zones.
func PartitionZones(plants []Plant, mainArea []geo.Coordinate, cfg Config) Result {
	var p Partitioner
	return p.Partition(plants, mainArea, cfg)
}

// Partition runs clustering, tessellation, validation and, when polygons
// overlap, one repair pass followed by re-validation. Invalid input yields a
// Result with Success false; no other condition is fatal.
func (p *Partitioner) Partition(plants []Plant, mainArea []geo.Coordinate, cfg Config) Result {
	start := p.now()

	if err := ValidateInput(plants, mainArea, cfg); err != nil {
		report := validation.NewReport()
		report.AddError(validation.Result{
			Check:   validation.CheckInput,
			Code:    validation.CodeInvalidInput,
			Message: err.Error(),
		})
		return Result{
			Zones:      []Zone{},
			Success:    false,
			Error:      err.Error(),
			Validation: report,
			err:        err,
		}
	}

	k := cfg.NumberOfZones
	points := toPoints(plants)

	var (
		groups     [][]cluster.Point
		algorithm  string
		iterations int
		membership = MembershipContainment
	)
	switch {
	case cfg.BalancePlantCount:
		groups = cluster.BalanceCount(points, k, countIterations, cfg.RandomSeed)
		algorithm, iterations = AlgorithmPlantCount, countIterations
		membership = MembershipPreserve
	case cfg.BalanceWaterNeed && cfg.WaterStrategy == WaterStrategyGreedy:
		groups = cluster.BalanceWater(points, k, waterIterations, cfg.RandomSeed)
		algorithm, iterations = AlgorithmWaterGreedy, waterIterations
		membership = MembershipBalanced
	case cfg.BalanceWaterNeed:
		groups = cluster.BalanceWaterEnhanced(points, k, cfg.RandomSeed)
		groups = cluster.TightenWater(groups, tightenIterations)
		algorithm, iterations = AlgorithmWaterEnhanced, cluster.EnhancedIterations(k)+tightenIterations
		membership = MembershipBalanced
	default:
		groups = cluster.KMeans(points, k, kmeansIterations, cfg.RandomSeed)
		algorithm, iterations = AlgorithmKMeans, kmeansIterations
	}
	p.logf("zoning: %s produced %d clusters for %d plants", algorithm, len(groups), len(plants))

	clusters := fromPoints(plants, groups)
	colors := GenerateZoneColors(k, cfg.RandomSeed)

	var (
		zones    []Zone
		warnings []string
	)
	if cfg.UseVoronoi {
		zones, warnings = CreateVoronoiZones(clusters, mainArea, colors, membership)
	} else {
		zones, warnings = CreateHullZones(clusters, mainArea, colors, cfg.PaddingMeters)
	}
	for _, w := range warnings {
		p.logf("zoning: %s", w)
	}

	if len(zones) == 0 {
		return Result{
			Zones:   []Zone{},
			Debug:   DebugInfo{Algorithm: algorithm, Iterations: iterations, Warnings: warnings},
			Success: false,
			Error:   ErrNoZones.Error(),
			err:     ErrNoZones,
		}
	}

	opts := ValidateOptions{WaterBalanceAdvisory: !cfg.BalanceWaterNeed || cfg.BalancePlantCount}
	report := ValidateZonesWith(zones, mainArea, opts)

	policy := SplitNearest
	switch membership {
	case MembershipPreserve:
		policy = SplitKeepCounts
	case MembershipBalanced:
		policy = SplitKeepWater
	}

	repaired := false
	if fixed, ok := FixZoneOverlaps(zones, mainArea, report, policy); ok {
		p.logf("zoning: repairing overlaps (%s)", report.Summary)
		zones, repaired = fixed, true
		report = ValidateZonesWith(zones, mainArea, opts)
		if report.HasErrorCode(validation.CodePolygonOverlap) {
			p.logf("zoning: overlaps remain after repair")
		}
	}

	debug := Stats(zones)
	debug.Algorithm = algorithm
	debug.Iterations = iterations
	debug.RepairApplied = repaired
	debug.Warnings = warnings
	debug.Elapsed = p.now().Sub(start)

	return Result{
		Zones:      zones,
		Debug:      debug,
		Success:    true,
		Validation: report,
	}
}

// ValidateInput reports why plants, mainArea and cfg cannot be partitioned.
// The returned error wraps ErrInvalidInput.
func ValidateInput(plants []Plant, mainArea []geo.Coordinate, cfg Config) error {
	if len(plants) == 0 {
		return fmt.Errorf("%w: no plants provided", ErrInvalidInput)
	}
	if cfg.NumberOfZones < 1 || cfg.NumberOfZones > len(plants) {
		return fmt.Errorf("%w: number of zones %d must be between 1 and %d", ErrInvalidInput, cfg.NumberOfZones, len(plants))
	}
	if len(mainArea) < 3 {
		return fmt.Errorf("%w: main area needs at least 3 vertices, got %d", ErrInvalidInput, len(mainArea))
	}
	for i, c := range mainArea {
		if !c.IsFinite() {
			return fmt.Errorf("%w: main area vertex %d is not finite", ErrInvalidInput, i)
		}
	}
	if geo.PolygonArea(mainArea) == 0 {
		return fmt.Errorf("%w: main area has zero area", ErrInvalidInput)
	}
	if math.IsNaN(cfg.PaddingMeters) || math.IsInf(cfg.PaddingMeters, 0) || cfg.PaddingMeters < 0 {
		return fmt.Errorf("%w: padding %v must be a non-negative number", ErrInvalidInput, cfg.PaddingMeters)
	}
	seen := make(map[string]bool, len(plants))
	for i, pl := range plants {
		if !pl.Position.IsFinite() {
			return fmt.Errorf("%w: plant %d position is not finite", ErrInvalidInput, i)
		}
		if math.IsNaN(pl.WaterNeed) || math.IsInf(pl.WaterNeed, 0) || pl.WaterNeed < 0 {
			return fmt.Errorf("%w: plant %q water need %v must be a non-negative number", ErrInvalidInput, pl.ID, pl.WaterNeed)
		}
		if seen[pl.ID] {
			return fmt.Errorf("%w: duplicate plant id %q", ErrInvalidInput, pl.ID)
		}
		seen[pl.ID] = true
	}
	return nil
}

func toPoints(plants []Plant) []cluster.Point {
	points := make([]cluster.Point, len(plants))
	for i, pl := range plants {
		points[i] = cluster.Point{Index: i, Position: pl.Position, Weight: pl.WaterNeed}
	}
	return points
}

func fromPoints(plants []Plant, groups [][]cluster.Point) [][]Plant {
	clusters := make([][]Plant, len(groups))
	for i, g := range groups {
		members := make([]Plant, len(g))
		for j, pt := range g {
			members[j] = plants[pt.Index]
			members[j].ZoneID = ""
		}
		clusters[i] = members
	}
	return clusters
}

func (p *Partitioner) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Partitioner) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}
