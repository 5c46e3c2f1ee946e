package zoning

import "math"

// Stats computes the water-need statistics of zones. Deviations are absolute
// distances from the mean zone water need.
func Stats(zones []Zone) DebugInfo {
	d := DebugInfo{ZoneCount: len(zones)}
	if len(zones) == 0 {
		return d
	}

	n := float64(len(zones))
	for _, z := range zones {
		d.MeanWaterNeed += z.TotalWaterNeed
	}
	d.MeanWaterNeed /= n

	d.MinDeviation = math.Inf(1)
	for _, z := range zones {
		dev := z.TotalWaterNeed - d.MeanWaterNeed
		d.Variance += dev * dev
		d.MaxDeviation = math.Max(d.MaxDeviation, math.Abs(dev))
		d.MinDeviation = math.Min(d.MinDeviation, math.Abs(dev))
	}
	d.Variance /= n
	d.StdDev = math.Sqrt(d.Variance)

	if d.MeanWaterNeed > 0 {
		d.DeviationPercent = d.MaxDeviation / d.MeanWaterNeed * 100
	}
	d.BalanceEfficiency = math.Max(0, math.Min(100, 100-d.DeviationPercent))
	return d
}
