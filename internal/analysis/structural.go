package analysis

import (
	"strings"
	"time"

	"sentinel/domain/frame"
	"sentinel/domain/report"
)

// Name fragments that mark a column as identifier-like regardless of its
// uniqueness ratio.
var idNameHints = []string{"id", "uuid", "email", "account", "customer"}

const (
	idUniquenessThreshold  = 0.98
	duplicateRowThreshold  = 0.1
	datetimeSampleSize     = 100
	datetimeParseThreshold = 0.8
)

var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"2006-01-02 15:04",
}

// RunStructuralRisk inspects dataset-shape hazards: duplicate rows,
// identifier-like columns, and timestamp columns whose ordering correlates
// with row order (a proxy for accidental leakage).
func RunStructuralRisk(df *frame.Frame, target string) report.Result {
	if df.Rows() == 0 {
		return report.Skipped("empty_dataframe")
	}

	duplicateRows := df.DuplicateRowCount()
	duplicateRatio := report.Round4(float64(duplicateRows) / float64(df.Rows()))

	idColumns := []map[string]any{}
	repeatedIdentifiers := []map[string]any{}
	timestampCandidates := []map[string]any{}
	anyMonotonic := false

	for _, col := range df.Columns() {
		nonNull := col.NonNullCount()
		if nonNull == 0 {
			continue
		}

		distinct := col.NonNullDistinctCount()
		uniquenessRatio := float64(distinct) / float64(nonNull)
		nameHint := hasIDHint(col.Name)
		if uniquenessRatio >= idUniquenessThreshold || nameHint {
			idColumns = append(idColumns, map[string]any{
				"column":           col.Name,
				"uniqueness_ratio": report.Round4(uniquenessRatio),
				"name_hint":        nameHint,
			})
			// Repeated entity identifiers are an internal consistency smell.
			if dup := nonNull - distinct; dup > 0 {
				repeatedIdentifiers = append(repeatedIdentifiers, map[string]any{
					"column":                    col.Name,
					"duplicate_identifier_rows": dup,
				})
			}
		}

		if col.Name == target {
			continue
		}
		times, ok := datetimeValues(col)
		if !ok {
			continue
		}
		monotonic := isMonotonic(times)
		if monotonic {
			anyMonotonic = true
		}
		timestampCandidates = append(timestampCandidates, map[string]any{
			"column":    col.Name,
			"monotonic": monotonic,
		})
	}

	return report.Result{
		"duplicate_rows":               duplicateRows,
		"duplicate_ratio":              duplicateRatio,
		"id_columns":                   idColumns,
		"repeated_entity_identifiers":  repeatedIdentifiers,
		"timestamp_leakage_candidates": timestampCandidates,
		"high_structural_risk":         duplicateRatio >= duplicateRowThreshold || len(idColumns) > 0 || anyMonotonic,
	}
}

func hasIDHint(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range idNameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// parseDatetime tries the known layouts against one cell.
func parseDatetime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// datetimeValues returns the column's parsed non-null timestamps in row order
// when the column looks datetime-like: at least 80% of a 100-row sample of
// non-null values parses as a date.
func datetimeValues(col *frame.Column) ([]time.Time, bool) {
	// Numeric columns are not date candidates; bare numbers parse as nothing
	// in the supported layouts anyway.
	if col.IsNumeric() {
		return nil, false
	}

	sampled := 0
	parsed := 0
	for i := 0; i < col.Len() && sampled < datetimeSampleSize; i++ {
		if col.Missing[i] {
			continue
		}
		sampled++
		if _, ok := parseDatetime(col.Raw[i]); ok {
			parsed++
		}
	}
	if sampled == 0 || float64(parsed)/float64(sampled) < datetimeParseThreshold {
		return nil, false
	}

	times := make([]time.Time, 0, col.NonNullCount())
	for i := 0; i < col.Len(); i++ {
		if col.Missing[i] {
			continue
		}
		if t, ok := parseDatetime(col.Raw[i]); ok {
			times = append(times, t)
		}
	}
	if len(times) == 0 {
		return nil, false
	}
	return times, true
}

// isMonotonic reports whether the sequence is non-decreasing or
// non-increasing.
func isMonotonic(times []time.Time) bool {
	increasing := true
	decreasing := true
	for i := 1; i < len(times); i++ {
		if times[i].Before(times[i-1]) {
			increasing = false
		}
		if times[i].After(times[i-1]) {
			decreasing = false
		}
	}
	return increasing || decreasing
}
