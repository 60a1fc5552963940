package report

import (
	"math"
	"time"

	"sentinel/domain/core"
)

// Result is one analyzer's findings: a mapping from finding name to value.
// A Result with {"skipped": true, "reason": ...} means the analyzer could not
// run; downstream consumers treat it like an empty mapping.
type Result map[string]any

// Skipped builds the skip sentinel result.
func Skipped(reason string) Result {
	return Result{"skipped": true, "reason": reason}
}

// IsSkipped reports whether the result is the skip sentinel.
func (r Result) IsSkipped() bool {
	return r.Bool("skipped")
}

// SkipReason returns the skip reason code, empty when not skipped.
func (r Result) SkipReason() string {
	return r.String("reason")
}

// Bool reads a boolean finding, false when absent or mistyped.
func (r Result) Bool(key string) bool {
	if r == nil {
		return false
	}
	v, _ := r[key].(bool)
	return v
}

// Float reads a numeric finding, 0 when absent or mistyped. Integer values
// and JSON-decoded numbers are accepted.
func (r Result) Float(key string) float64 {
	if r == nil {
		return 0
	}
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Int reads an integer finding, 0 when absent or mistyped.
func (r Result) Int(key string) int {
	if r == nil {
		return 0
	}
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// String reads a string finding, empty when absent or mistyped.
func (r Result) String(key string) string {
	if r == nil {
		return ""
	}
	v, _ := r[key].(string)
	return v
}

// Strings reads a list-of-strings finding. Both []string and JSON-decoded
// []any forms are accepted; anything else coalesces to empty.
func (r Result) Strings(key string) []string {
	if r == nil {
		return nil
	}
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Maps reads a list-of-mappings finding. Both []map[string]any and
// JSON-decoded []any forms are accepted; anything else coalesces to empty.
func (r Result) Maps(key string) []map[string]any {
	if r == nil {
		return nil
	}
	switch v := r[key].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// ListLen returns the length of a list-valued finding, 0 when absent.
func (r Result) ListLen(key string) int {
	if r == nil {
		return 0
	}
	switch v := r[key].(type) {
	case []string:
		return len(v)
	case []any:
		return len(v)
	case []map[string]any:
		return len(v)
	case []Result:
		return len(v)
	case map[string]float64:
		return len(v)
	case map[string]any:
		return len(v)
	}
	return 0
}

// Round4 rounds report values to 4 decimal places, the report-wide convention
// for ratios and scores.
func Round4(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10000) / 10000
}

// Round2 rounds to 2 decimal places (memory estimates).
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// Penalty is one applied scoring rule, recorded in order for audit.
type Penalty struct {
	Reason string `json:"reason"`
	Amount int    `json:"amount"`
}

// Breakdown carries the scoring engine's full output besides the score itself.
type Breakdown struct {
	Penalties         []Penalty `json:"penalties"`
	CriticalIssues    []string  `json:"critical_issues"`
	Warnings          []string  `json:"warnings"`
	DatasetDifficulty string    `json:"dataset_difficulty"`
	ModelingRisk      string    `json:"modeling_risk"`
}

// Report is the envelope produced by one pipeline run: an ordered mapping from
// analyzer name to result plus the synthesized sections. It is never mutated
// after the run completes.
type Report struct {
	Ingestion         Result    `json:"ingestion"`
	BasicStats        Result    `json:"basic_stats"`
	Missing           Result    `json:"missing"`
	Imbalance         Result    `json:"imbalance"`
	Leakage           Result    `json:"leakage"`
	Outliers          Result    `json:"outliers"`
	Categorical       Result    `json:"categorical"`
	TargetDiagnostics Result    `json:"target_diagnostics"`
	ModelSimulation   Result    `json:"model_simulation"`
	StructuralRisk    Result    `json:"structural_risk"`
	Recommendations   Result    `json:"recommendations"`
	Score             int       `json:"score"`
	Scoring           Breakdown `json:"scoring"`
	Summary           Result    `json:"summary"`
	FailedAnalyzers   []string  `json:"failed_analyzers"`
}

// SetSection routes an analyzer result into its named slot. Unknown names are
// ignored; the orchestrator records them as failures instead.
func (r *Report) SetSection(name string, result Result) {
	switch name {
	case "basic_stats":
		r.BasicStats = result
	case "missing":
		r.Missing = result
	case "imbalance":
		r.Imbalance = result
	case "leakage":
		r.Leakage = result
	case "outliers":
		r.Outliers = result
	case "categorical":
		r.Categorical = result
	}
}

// Stored is a persisted report keyed by dataset identity.
type Stored struct {
	ID        core.ReportID  `json:"id"`
	DatasetID core.DatasetID `json:"dataset_id"`
	Document  *Report        `json:"document"`
	Score     int            `json:"score"`
	CreatedAt time.Time      `json:"created_at"`
}
