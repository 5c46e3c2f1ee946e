// Package field loads irrigation field projects from YAML.
package field

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
	"github.com/ChicagoDave/zoneplanner/pkg/zoning"
)

// ProjectFile is the file LoadProject looks for.
const ProjectFile = "field.yaml"

// Load reads a field project from a YAML file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading field file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a field project from YAML bytes.
func Parse(data []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing field YAML: %w", err)
	}
	if p.Zoning.Mode == "" {
		p.Zoning.Mode = ModeGeographic
	}
	return &p, nil
}

// LoadProject loads a field project from a project directory.
// It looks for field.yaml in the given directory.
func LoadProject(projectDir string) (*Project, error) {
	return Load(filepath.Join(projectDir, ProjectFile))
}

// GridPlants places plants every spacingMeters inside mainArea, starting
// half a spacing in from the bounding box corner. IDs are "plant-N".
func GridPlants(mainArea []geo.Coordinate, spacingMeters, waterNeed float64) []zoning.Plant {
	poly := geo.Polygon(mainArea)
	if poly.IsEmpty() || spacingMeters <= 0 {
		return nil
	}
	mn, mx := poly.BoundingBox()
	dLat, dLng := geo.MetersToDegrees(spacingMeters, mn.Lat)
	rows := int(math.Floor((mx.Lat-mn.Lat)/dLat + 0.5))
	cols := int(math.Floor((mx.Lng-mn.Lng)/dLng + 0.5))

	var plants []zoning.Plant
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			pos := geo.Coordinate{
				Lat: mn.Lat + (float64(r)+0.5)*dLat,
				Lng: mn.Lng + (float64(c)+0.5)*dLng,
			}
			if !poly.Contains(pos) {
				continue
			}
			plants = append(plants, zoning.Plant{
				ID:        fmt.Sprintf("plant-%d", len(plants)+1),
				Position:  pos,
				WaterNeed: waterNeed,
			})
		}
	}
	return plants
}
