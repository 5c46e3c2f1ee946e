// Package render exports partition results as GeoJSON and SVG.
package render

import (
	"fmt"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
	"github.com/ChicagoDave/zoneplanner/pkg/zoning"
)

// Feature kinds written to the "kind" property.
const (
	KindMainArea = "main_area"
	KindZone     = "zone"
	KindPlant    = "plant"
)

// Options controls what is exported.
type Options struct {
	// Width of the SVG canvas in pixels. Height follows the field aspect.
	Width int

	// IncludePlants adds one point (or circle) per plant.
	IncludePlants bool

	// SimplifyTolerance, in degrees, applies Douglas-Peucker to zone rings
	// before GeoJSON export. Zero keeps every vertex.
	SimplifyTolerance float64
}

// FeatureCollection builds a GeoJSON collection with the main area first,
// then one polygon feature per zone and optionally the plants.
func FeatureCollection(zones []zoning.Zone, mainArea []geo.Coordinate, opts Options) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if len(mainArea) >= 3 {
		f := geojson.NewFeature(toPolygon(mainArea, 0))
		f.Properties["kind"] = KindMainArea
		f.Properties["area_m2"] = areaMeters(mainArea)
		fc.Append(f)
	}

	for _, z := range zones {
		if len(z.Coordinates) < 3 {
			continue
		}
		f := geojson.NewFeature(toPolygon(z.Coordinates, opts.SimplifyTolerance))
		f.ID = z.ID
		f.Properties["kind"] = KindZone
		f.Properties["id"] = z.ID
		f.Properties["name"] = z.Name
		f.Properties["color"] = z.Color
		f.Properties["layout_index"] = z.LayoutIndex
		f.Properties["plant_count"] = len(z.Plants)
		f.Properties["total_water_need"] = z.TotalWaterNeed
		f.Properties["area_m2"] = areaMeters(z.Coordinates)
		if len(z.Neighbors) > 0 {
			f.Properties["neighbors"] = z.Neighbors
		}
		fc.Append(f)
	}

	if opts.IncludePlants {
		for _, z := range zones {
			for _, p := range z.Plants {
				f := geojson.NewFeature(orb.Point{p.Position.Lng, p.Position.Lat})
				f.ID = p.ID
				f.Properties["kind"] = KindPlant
				f.Properties["id"] = p.ID
				f.Properties["zone_id"] = z.ID
				f.Properties["water_need"] = p.WaterNeed
				fc.Append(f)
			}
		}
	}
	return fc
}

// GeoJSON marshals FeatureCollection output.
func GeoJSON(zones []zoning.Zone, mainArea []geo.Coordinate, opts Options) ([]byte, error) {
	data, err := FeatureCollection(zones, mainArea, opts).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding geojson: %w", err)
	}
	return data, nil
}

// toPolygon converts a vertex list into a closed GeoJSON ring. GeoJSON
// positions are [lng, lat].
func toPolygon(vertices []geo.Coordinate, tolerance float64) orb.Polygon {
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range geo.Polygon(vertices).EnsureCCW() {
		ring = append(ring, orb.Point{v.Lng, v.Lat})
	}
	ring = append(ring, ring[0])

	if tolerance > 0 {
		if s, ok := simplify.DouglasPeucker(tolerance).Simplify(ring.Clone()).(orb.Ring); ok && len(s) >= 4 {
			ring = s
		}
	}
	return orb.Polygon{ring}
}

// areaMeters returns the spherical area of the ring in square meters.
func areaMeters(vertices []geo.Coordinate) float64 {
	return orbgeo.Area(toPolygon(vertices, 0))
}
