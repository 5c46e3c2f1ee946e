package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChicagoDave/zoneplanner/pkg/field"
	"github.com/ChicagoDave/zoneplanner/pkg/render"
	"github.com/ChicagoDave/zoneplanner/pkg/validation"
	"github.com/ChicagoDave/zoneplanner/pkg/zoning"
)

// runOptions holds command-line overrides. Nil fields keep field.yaml.
type runOptions struct {
	zones         *int
	mode          *string
	seed          *int64
	padding       *float64
	voronoi       *bool
	waterStrategy *string
}

func (o runOptions) apply(z *field.ZoningDef) {
	if o.zones != nil {
		z.Zones = *o.zones
	}
	if o.mode != nil {
		z.Mode = *o.mode
	}
	if o.seed != nil {
		z.Seed = o.seed
	}
	if o.padding != nil {
		z.PaddingMeters = *o.padding
	}
	if o.voronoi != nil {
		z.Voronoi = o.voronoi
	}
	if o.waterStrategy != nil {
		z.WaterStrategy = *o.waterStrategy
	}
}

type renderOptions struct {
	out      string
	width    int
	plants   bool
	simplify float64
}

// loadAndValidate loads the project, applies overrides and runs input
// validation.
func loadAndValidate(projectPath string, opts runOptions) (*field.Project, *validation.Report, error) {
	p, err := field.LoadProject(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading field: %w", err)
	}
	opts.apply(&p.Zoning)
	return p, field.Validate(p), nil
}

func partition(p *field.Project) zoning.Result {
	pt := zoning.Partitioner{Logger: log.New(os.Stderr, "", log.LstdFlags)}
	return pt.Partition(p.AllPlants(), p.MainArea, p.Zoning.Config())
}

func runPartition(projectPath string, opts runOptions, summary bool) error {
	p, report, err := loadAndValidate(projectPath, opts)
	if err != nil {
		return err
	}
	if !report.Valid {
		printValidationReport(report)
		return fmt.Errorf("field has validation errors")
	}

	res := partition(p)
	if !res.Success {
		return fmt.Errorf("partition failed: %w", res.Err())
	}
	if summary {
		printZoneTable(res)
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func runValidate(projectPath string, opts runOptions) error {
	p, report, err := loadAndValidate(projectPath, opts)
	if err != nil {
		return err
	}

	if report.Valid {
		res := partition(p)
		report.Merge(res.Validation)
		if !res.Success && res.Validation == nil {
			report.AddError(validation.Result{
				Check:   validation.CheckGeometry,
				Message: res.Error,
			})
		}
	}

	printValidationReport(report)

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

func runRender(projectPath string, opts runOptions, ro renderOptions) error {
	p, report, err := loadAndValidate(projectPath, opts)
	if err != nil {
		return err
	}
	if !report.Valid {
		printValidationReport(report)
		return fmt.Errorf("field has validation errors")
	}

	res := partition(p)
	if !res.Success {
		return fmt.Errorf("partition failed: %w", res.Err())
	}

	f, err := os.Create(ro.out)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	rOpts := render.Options{Width: ro.width, IncludePlants: ro.plants, SimplifyTolerance: ro.simplify}
	switch strings.ToLower(filepath.Ext(ro.out)) {
	case ".geojson", ".json":
		data, err := render.GeoJSON(res.Zones, p.MainArea, rOpts)
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", ro.out, err)
		}
	default:
		if err := render.SVG(f, res.Zones, p.MainArea, rOpts); err != nil {
			return err
		}
	}
	log.Printf("Wrote %d zones to %s", len(res.Zones), ro.out)
	return f.Close()
}
