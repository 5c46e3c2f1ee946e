package field

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
	"github.com/ChicagoDave/zoneplanner/pkg/validation"
	"github.com/ChicagoDave/zoneplanner/pkg/zoning"
)

func TestLoadProject(t *testing.T) {
	p, err := LoadProject("../../examples/orchard")
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if p.Name != "orchard" {
		t.Errorf("name = %q, want orchard", p.Name)
	}
	if len(p.MainArea) != 4 {
		t.Errorf("main_area has %d vertices, want 4", len(p.MainArea))
	}
	if n := len(p.AllPlants()); n != 100 {
		t.Errorf("plant grid produced %d plants, want 100", n)
	}

	cfg := p.Zoning.Config()
	if cfg.NumberOfZones != 4 || !cfg.BalanceWaterNeed || cfg.BalancePlantCount {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.RandomSeed == nil || *cfg.RandomSeed != 42 {
		t.Errorf("seed = %v, want 42", cfg.RandomSeed)
	}
	if !cfg.UseVoronoi {
		t.Error("voronoi should be enabled")
	}

	if r := Validate(p); !r.Valid {
		t.Errorf("example project invalid: %v", r.ErrorMessages())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadProject(filepath.Join(t.TempDir(), "nope"))
	if err == nil || !strings.Contains(err.Error(), "reading field file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("main_area: [unterminated"))
	if err == nil || !strings.Contains(err.Error(), "parsing field YAML") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestParseDefaults(t *testing.T) {
	p, err := Parse([]byte(`
name: tiny
main_area:
  - {lat: 0, lng: 0}
  - {lat: 0, lng: 0.001}
  - {lat: 0.001, lng: 0.001}
plants:
  - {id: a, position: {lat: 0.0002, lng: 0.0005}, water_need: 2}
  - {id: b, position: {lat: 0.0003, lng: 0.0008}, water_need: 3}
zoning:
  zones: 2
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Zoning.Mode != ModeGeographic {
		t.Errorf("mode = %q, want geographic", p.Zoning.Mode)
	}
	cfg := p.Zoning.Config()
	if !cfg.UseVoronoi || cfg.BalanceWaterNeed || cfg.BalancePlantCount || cfg.RandomSeed != nil {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if got := p.AllPlants(); len(got) != 2 || got[1].WaterNeed != 3 {
		t.Errorf("plants = %+v", got)
	}
}

func TestConfigModes(t *testing.T) {
	off := false
	tests := []struct {
		def   ZoningDef
		water bool
		count bool
		vor   bool
	}{
		{ZoningDef{Mode: ModeGeographic}, false, false, true},
		{ZoningDef{Mode: ModeWater}, true, false, true},
		{ZoningDef{Mode: ModeCount, Voronoi: &off}, false, true, false},
	}
	for _, tt := range tests {
		cfg := tt.def.Config()
		if cfg.BalanceWaterNeed != tt.water || cfg.BalancePlantCount != tt.count || cfg.UseVoronoi != tt.vor {
			t.Errorf("mode %s: got %+v", tt.def.Mode, cfg)
		}
	}
}

func square() []geo.Coordinate {
	return []geo.Coordinate{
		geo.LatLng(0, 0), geo.LatLng(0, 0.001), geo.LatLng(0.001, 0.001), geo.LatLng(0.001, 0),
	}
}

func TestValidate(t *testing.T) {
	plants := []zoning.Plant{
		{ID: "a", Position: geo.LatLng(0.0002, 0.0002), WaterNeed: 1},
		{ID: "b", Position: geo.LatLng(0.0008, 0.0008), WaterNeed: 1},
	}
	tests := []struct {
		name    string
		mutate  func(p *Project)
		valid   bool
		message string
	}{
		{"ok", func(p *Project) {}, true, ""},
		{"short main area", func(p *Project) { p.MainArea = p.MainArea[:2] }, false, "at least 3 vertices"},
		{"no plants", func(p *Project) { p.Plants = nil }, false, "no plants"},
		{"duplicate id", func(p *Project) { p.Plants[1].ID = "a" }, false, "duplicate plant id"},
		{"empty id", func(p *Project) { p.Plants[0].ID = "" }, false, "empty id"},
		{"negative water", func(p *Project) { p.Plants[0].WaterNeed = -1 }, false, "non-negative"},
		{"too many zones", func(p *Project) { p.Zoning.Zones = 3 }, false, "zoning.zones"},
		{"bad mode", func(p *Project) { p.Zoning.Mode = "magic" }, false, "unknown zoning.mode"},
		{"bad strategy", func(p *Project) { p.Zoning.WaterStrategy = "random" }, false, "water_strategy"},
		{"negative padding", func(p *Project) { p.Zoning.PaddingMeters = -2 }, false, "padding_meters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Project{
				MainArea: square(),
				Plants:   append([]zoning.Plant(nil), plants...),
				Zoning:   ZoningDef{Zones: 2, Mode: ModeWater},
			}
			tt.mutate(p)
			r := Validate(p)
			if r.Valid != tt.valid {
				t.Fatalf("valid = %v, errors %v", r.Valid, r.ErrorMessages())
			}
			if tt.message == "" {
				return
			}
			found := false
			for _, m := range r.ErrorMessages() {
				if strings.Contains(m, tt.message) {
					found = true
				}
			}
			if !found {
				t.Errorf("no error containing %q in %v", tt.message, r.ErrorMessages())
			}
		})
	}
}

func TestValidateWarnsOutsidePlants(t *testing.T) {
	p := &Project{
		MainArea: square(),
		Plants: []zoning.Plant{
			{ID: "in", Position: geo.LatLng(0.0005, 0.0005), WaterNeed: 1},
			{ID: "out", Position: geo.LatLng(0.01, 0.01), WaterNeed: 1},
		},
		Zoning: ZoningDef{Zones: 1, Mode: ModeGeographic},
	}
	r := Validate(p)
	if !r.Valid {
		t.Fatalf("unexpected errors %v", r.ErrorMessages())
	}
	if len(r.Warnings) != 1 || r.Warnings[0].Check != validation.CheckInput {
		t.Errorf("expected one input warning, got %v", r.WarningMessages())
	}
}

func TestGridPlants(t *testing.T) {
	tri := []geo.Coordinate{geo.LatLng(0, 0), geo.LatLng(0, 0.01), geo.LatLng(0.01, 0)}
	grid := GridPlants(tri, 100, 2)
	if len(grid) == 0 {
		t.Fatal("expected plants")
	}
	ids := make(map[string]bool)
	for _, p := range grid {
		if !geo.PointInPolygon(p.Position, tri) {
			t.Errorf("plant %s outside polygon", p.ID)
		}
		if p.WaterNeed != 2 {
			t.Errorf("plant %s water need %f", p.ID, p.WaterNeed)
		}
		ids[p.ID] = true
	}
	if len(ids) != len(grid) {
		t.Error("grid plant ids are not unique")
	}
	if GridPlants(tri, 0, 1) != nil {
		t.Error("zero spacing should produce no plants")
	}
}
