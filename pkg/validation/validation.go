// Package validation holds the report type shared by input and zone checks.
package validation

import "fmt"

// Check identifies which rule produced a result.
type Check string

const (
	CheckInput        Check = "input"
	CheckWaterBalance Check = "water_balance"
	CheckOverlap      Check = "overlap"
	CheckBoundary     Check = "boundary"
	CheckGeometry     Check = "geometry"
	CheckAssignment   Check = "assignment"
)

// Severity indicates how critical a validation result is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Codes for results that callers act on programmatically.
const (
	CodeWaterImbalance      = "water_imbalance"
	CodePolygonOverlap      = "polygon_overlap"
	CodeSharedPlant         = "shared_plant"
	CodeVertexContainment   = "vertex_containment"
	CodeOutsideMainArea     = "outside_main_area"
	CodeAreaExceedsMain     = "area_exceeds_main"
	CodeTooFewVertices      = "too_few_vertices"
	CodeDuplicateVertices   = "duplicate_vertices"
	CodeZeroArea            = "zero_area"
	CodeSelfIntersection    = "self_intersection"
	CodeDuplicateAssignment = "duplicate_assignment"
	CodeEmptyZone           = "empty_zone"
	CodePlantOutsideZone    = "plant_outside_zone"
	CodeWaterTotalMismatch  = "water_total_mismatch"
	CodeInvalidInput        = "invalid_input"
)

// Result is a single validation finding.
type Result struct {
	Check        Check    `json:"check"`
	Severity     Severity `json:"severity"`
	Code         string   `json:"code,omitempty"`
	Message      string   `json:"message"`
	Path         string   `json:"path,omitempty"`
	ZoneID       string   `json:"zone_id,omitempty"`
	ConflictWith string   `json:"conflict_with,omitempty"`
	ActualValue  any      `json:"actual_value,omitempty"`
	Expected     string   `json:"expected,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

// Report is the complete validation output.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []Result `json:"errors"`
	Warnings []Result `json:"warnings"`
	Info     []Result `json:"info"`
	Summary  string   `json:"summary"`
}

// NewReport creates an empty valid report.
func NewReport() *Report {
	r := &Report{
		Valid:    true,
		Errors:   []Result{},
		Warnings: []Result{},
		Info:     []Result{},
	}
	r.updateSummary()
	return r
}

// AddError adds an error result and marks the report invalid.
func (r *Report) AddError(result Result) {
	result.Severity = SeverityError
	r.Errors = append(r.Errors, result)
	r.Valid = false
	r.updateSummary()
}

// AddWarning adds a warning result.
func (r *Report) AddWarning(result Result) {
	result.Severity = SeverityWarning
	r.Warnings = append(r.Warnings, result)
	r.updateSummary()
}

// AddInfo adds an informational result.
func (r *Report) AddInfo(result Result) {
	result.Severity = SeverityInfo
	r.Info = append(r.Info, result)
	r.updateSummary()
}

// Merge combines another report into this one.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Info = append(r.Info, other.Info...)
	if !other.Valid {
		r.Valid = false
	}
	r.updateSummary()
}

// HasErrorCode reports whether any error carries the given code.
func (r *Report) HasErrorCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// ErrorMessages returns the error messages in order.
func (r *Report) ErrorMessages() []string {
	return messages(r.Errors)
}

// WarningMessages returns the warning messages in order.
func (r *Report) WarningMessages() []string {
	return messages(r.Warnings)
}

func messages(results []Result) []string {
	out := make([]string, len(results))
	for i, res := range results {
		out[i] = res.Message
	}
	return out
}

func (r *Report) updateSummary() {
	r.Summary = fmt.Sprintf("%d errors, %d warnings, %d info",
		len(r.Errors), len(r.Warnings), len(r.Info))
}
