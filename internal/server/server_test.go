package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ChicagoDave/zoneplanner/pkg/field"
	"github.com/ChicagoDave/zoneplanner/pkg/zoning"
)

const testField = `name: test-block
main_area:
  - {lat: 40.0, lng: -90.0}
  - {lat: 40.0, lng: -89.99765}
  - {lat: 40.0018, lng: -89.99765}
  - {lat: 40.0018, lng: -90.0}
plant_grid:
  spacing_meters: 40
  water_need: 2
zoning:
  zones: 3
  mode: water
  seed: 7
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, field.ProjectFile), []byte(testField), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(dir, 0)
	s.logger = log.New(io.Discard, "", 0)
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestField(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := do(t, h, http.MethodGet, "/api/field", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var body struct {
		Project    field.Project  `json:"project"`
		Plants     []zoning.Plant `json:"plants"`
		Validation struct {
			Valid bool `json:"valid"`
		} `json:"validation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Project.Name != "test-block" || len(body.Plants) != 25 || !body.Validation.Valid {
		t.Errorf("unexpected field response: name %q, %d plants, valid %v", body.Project.Name, len(body.Plants), body.Validation.Valid)
	}
	if _, err := uuid.Parse(rec.Header().Get("X-Request-ID")); err != nil {
		t.Errorf("X-Request-ID is not a uuid: %v", err)
	}
}

func TestPartitionDefaults(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := do(t, h, http.MethodPost, "/api/partition", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var res zoning.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Success || len(res.Zones) != 3 {
		t.Errorf("success %v with %d zones", res.Success, len(res.Zones))
	}
	if res.Debug.Algorithm != zoning.AlgorithmWaterEnhanced {
		t.Errorf("algorithm = %s", res.Debug.Algorithm)
	}
	if res.PlantCount() != 25 {
		t.Errorf("plant count = %d, want 25", res.PlantCount())
	}
}

func TestPartitionOverride(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := do(t, h, http.MethodPost, "/api/partition", `{"zones": 2, "mode": "count"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var res zoning.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Zones) != 2 || res.Debug.Algorithm != zoning.AlgorithmPlantCount {
		t.Errorf("got %d zones with %s", len(res.Zones), res.Debug.Algorithm)
	}
}

func TestPartitionRejectsBadInput(t *testing.T) {
	h := newTestServer(t).Handler()
	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"zones":`, http.StatusBadRequest},
		{"zero zones", `{"zones": 0}`, http.StatusUnprocessableEntity},
		{"unknown mode", `{"mode": "magic"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/partition", tt.body)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.code, rec.Body)
			}
		})
	}
}

func TestExports(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/api/zones.geojson", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("geojson status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("content type = %s", ct)
	}
	if !strings.Contains(rec.Body.String(), `"FeatureCollection"`) {
		t.Error("geojson body is not a feature collection")
	}

	rec = do(t, h, http.MethodGet, "/api/zones.svg", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Errorf("svg status %d body %.80s", rec.Code, rec.Body)
	}
}

func TestMetrics(t *testing.T) {
	h := newTestServer(t).Handler()
	do(t, h, http.MethodPost, "/api/partition", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`zoneplanner_partitions_total{algorithm="water_balanced_enhanced",success="true"} 1`,
		"zoneplanner_partition_duration_seconds_count 1",
		`zoneplanner_http_requests_total{code="200",method="POST"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestIndex(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := do(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ZonePlanner") {
		t.Errorf("index status %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
}
