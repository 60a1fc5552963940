package analysis

import (
	"sentinel/domain/frame"
	"sentinel/domain/report"
)

const highMissingThreshold = 0.5

// MissingAnalyzer measures per-column and overall null ratios and flags
// fully-null and high-missing columns.
type MissingAnalyzer struct{}

// NewMissingAnalyzer creates a new missing-value analyzer
func NewMissingAnalyzer() *MissingAnalyzer {
	return &MissingAnalyzer{}
}

// Name returns the analyzer name
func (a *MissingAnalyzer) Name() string { return "missing" }

// Analyze computes null ratios. An empty frame yields the all-zero result
// rather than a skip so downstream consumers always see the same shape.
func (a *MissingAnalyzer) Analyze(df *frame.Frame, profile *frame.Profile, target string) (report.Result, error) {
	if df.Empty() {
		return report.Result{
			"overall_missing_ratio": 0.0,
			"missing_ratio":         map[string]float64{},
			"fully_null_columns":    []string{},
			"high_missing_columns":  []string{},
		}, nil
	}

	missingRatio := make(map[string]float64, df.Width())
	fullyNull := []string{}
	highMissing := []string{}
	totalMissing := 0

	for _, col := range df.Columns() {
		ratio := col.MissingRatio()
		missingRatio[col.Name] = report.Round4(ratio)
		totalMissing += col.MissingCount()
		if ratio == 1.0 {
			fullyNull = append(fullyNull, col.Name)
		}
		if ratio >= highMissingThreshold {
			highMissing = append(highMissing, col.Name)
		}
	}

	overall := float64(totalMissing) / float64(profile.Rows*profile.Columns)

	return report.Result{
		"overall_missing_ratio": report.Round4(overall),
		"missing_ratio":         missingRatio,
		"fully_null_columns":    fullyNull,
		"high_missing_columns":  highMissing,
	}, nil
}
