package main

import (
	"fmt"

	"github.com/ChicagoDave/zoneplanner/pkg/validation"
	"github.com/ChicagoDave/zoneplanner/pkg/zoning"
)

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  [%s] %s\n", e.Check, e.Message)
			if e.Path != "" {
				fmt.Printf("    -> %s = %v\n", e.Path, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Printf("    expected: %s\n", e.Expected)
			}
			if e.ConflictWith != "" {
				fmt.Printf("    conflicts with: %s\n", e.ConflictWith)
			}
			for _, s := range e.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  [%s] %s\n", w.Check, w.Message)
			if w.Path != "" {
				fmt.Printf("    -> %s = %v\n", w.Path, w.ActualValue)
			}
			if w.Expected != "" {
				fmt.Printf("    expected: %s\n", w.Expected)
			}
			for _, s := range w.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Check, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printZoneTable(res zoning.Result) {
	d := res.Debug
	fmt.Printf("Zones (%s, %d zones)\n", d.Algorithm, len(res.Zones))
	fmt.Println("=====================")
	fmt.Println()

	fmt.Printf("%-10s %-10s %8s %12s %10s\n", "ID", "Name", "Plants", "Water need", "Color")
	fmt.Printf("%-10s %-10s %8s %12s %10s\n", "----------", "----------", "--------", "------------", "----------")
	for _, z := range res.Zones {
		fmt.Printf("%-10s %-10s %8d %12.2f %10s\n", z.ID, z.Name, len(z.Plants), z.TotalWaterNeed, z.Color)
	}

	fmt.Println()
	fmt.Println("Balance")
	fmt.Println("-------")
	fmt.Printf("  Mean water need:     %.2f\n", d.MeanWaterNeed)
	fmt.Printf("  Std deviation:       %.2f\n", d.StdDev)
	fmt.Printf("  Max deviation:       %.2f (%.1f%%)\n", d.MaxDeviation, d.DeviationPercent)
	fmt.Printf("  Balance efficiency:  %.1f%%\n", d.BalanceEfficiency)
	fmt.Printf("  Overlap repair:      %v\n", d.RepairApplied)
	fmt.Printf("  Elapsed:             %s\n", d.Elapsed)
	for _, w := range d.Warnings {
		fmt.Printf("  ! %s\n", w)
	}
	if res.Validation != nil {
		fmt.Printf("  Validation:          %s\n", res.Validation.Summary)
	}
}
