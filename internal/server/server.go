// Package server is the local development server for zoning a field.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChicagoDave/zoneplanner/pkg/field"
	"github.com/ChicagoDave/zoneplanner/pkg/render"
	"github.com/ChicagoDave/zoneplanner/pkg/zoning"
)

// Server serves a field project and partitions it on request.
type Server struct {
	projectPath string
	port        int
	logger      *log.Logger

	registry *prometheus.Registry
	metrics  *metrics

	mu   sync.Mutex
	last *partitionRun
}

type partitionRun struct {
	project *field.Project
	result  zoning.Result
}

// New creates a server for the given project directory.
func New(projectPath string, port int) *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		projectPath: projectPath,
		port:        port,
		logger:      log.Default(),
		registry:    reg,
		metrics:     newMetrics(reg),
	}
}

// Start launches the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("ZonePlanner server starting on http://localhost%s", addr)
	log.Printf("Project: %s", s.projectPath)

	return http.ListenAndServe(addr, s.Handler())
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/field", s.handleField)
	mux.HandleFunc("POST /api/partition", s.handlePartition)
	mux.HandleFunc("GET /api/zones.geojson", s.handleGeoJSON)
	mux.HandleFunc("GET /api/zones.svg", s.handleSVG)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /", s.handleIndex)

	return s.withRequestLog(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		s.metrics.requests.WithLabelValues(r.Method, fmt.Sprint(rec.status)).Inc()
		s.logger.Printf("%s %s %s %d %s", id, r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>ZonePlanner</title></head>
<body style="margin:0;background:#f4f4ef;font-family:system-ui">
<div style="padding:1rem">
<h1>ZonePlanner</h1>
<p><button onclick="run()">Partition</button></p>
<div id="map"></div>
</div>
<script>
async function run() {
  await fetch('/api/partition', {method: 'POST'});
  document.getElementById('map').innerHTML = await (await fetch('/api/zones.svg')).text();
}
run();
</script>
</body></html>`)
}

func (s *Server) handleField(w http.ResponseWriter, _ *http.Request) {
	p, err := field.LoadProject(s.projectPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"project":    p,
		"plants":     p.AllPlants(),
		"validation": field.Validate(p),
	})
}

// partitionRequest overrides the project's zoning settings. Missing fields
// keep the project values.
type partitionRequest struct {
	Zones         *int     `json:"zones"`
	Mode          *string  `json:"mode"`
	PaddingMeters *float64 `json:"padding_meters"`
	Voronoi       *bool    `json:"voronoi"`
	Seed          *int64   `json:"seed"`
	WaterStrategy *string  `json:"water_strategy"`
}

func (req partitionRequest) apply(z *field.ZoningDef) {
	if req.Zones != nil {
		z.Zones = *req.Zones
	}
	if req.Mode != nil {
		z.Mode = *req.Mode
	}
	if req.PaddingMeters != nil {
		z.PaddingMeters = *req.PaddingMeters
	}
	if req.Voronoi != nil {
		z.Voronoi = req.Voronoi
	}
	if req.Seed != nil {
		z.Seed = req.Seed
	}
	if req.WaterStrategy != nil {
		z.WaterStrategy = *req.WaterStrategy
	}
}

func (s *Server) handlePartition(w http.ResponseWriter, r *http.Request) {
	var req partitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	p, err := field.LoadProject(s.projectPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	req.apply(&p.Zoning)

	if report := field.Validate(p); !report.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"validation": report})
		return
	}

	run := s.partition(p)
	status := http.StatusOK
	if !run.result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, run.result)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, _ *http.Request) {
	run, err := s.latest()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	data, err := render.GeoJSON(run.result.Zones, run.project.MainArea, render.Options{IncludePlants: true})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

func (s *Server) handleSVG(w http.ResponseWriter, _ *http.Request) {
	run, err := s.latest()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := render.SVG(w, run.result.Zones, run.project.MainArea, render.Options{IncludePlants: true}); err != nil {
		s.logger.Printf("svg render: %v", err)
	}
}

// latest returns the most recent partition, running one with the project
// settings if none exists yet.
func (s *Server) latest() (*partitionRun, error) {
	s.mu.Lock()
	run := s.last
	s.mu.Unlock()
	if run != nil {
		return run, nil
	}
	p, err := field.LoadProject(s.projectPath)
	if err != nil {
		return nil, err
	}
	return s.partition(p), nil
}

func (s *Server) partition(p *field.Project) *partitionRun {
	pt := zoning.Partitioner{Logger: s.logger}
	res := pt.Partition(p.AllPlants(), p.MainArea, p.Zoning.Config())
	s.metrics.observe(res)

	run := &partitionRun{project: p, result: res}
	s.mu.Lock()
	s.last = run
	s.mu.Unlock()
	return run
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
