package zoning

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/zoneplanner/pkg/rng"
)

// goldenAngle spaces generated hues so neighbors stay distinguishable.
const goldenAngle = 137.508

var palette = [...]string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
	"#008080", "#e6beff", "#9a6324", "#fffac8", "#800000",
	"#aaffc3", "#808000", "#ffd8b1", "#000075", "#808080",
}

// GenerateZoneColors returns k display colors. With a seed the fixed palette
// is shuffled deterministically; beyond the palette hues are generated by
// golden-angle rotation.
func GenerateZoneColors(k int, seed *int64) []string {
	if k <= 0 {
		return nil
	}
	base := palette[:]
	if seed != nil {
		shuffled := make([]string, len(palette))
		copy(shuffled, palette[:])
		r := rng.New(*seed)
		r.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		base = shuffled
	}

	colors := make([]string, k)
	for i := 0; i < k; i++ {
		if i < len(base) {
			colors[i] = base[i]
			continue
		}
		hue := math.Mod(float64(i)*goldenAngle, 360)
		colors[i] = fmt.Sprintf("hsl(%.0f, 70%%, 50%%)", hue)
	}
	return colors
}
