package analysis

import (
	"sentinel/domain/frame"
	"sentinel/domain/report"
)

const highCardinalityThreshold = 0.5

// CategoricalAnalyzer measures distinct-value ratios of categorical columns,
// counting missing as a distinct value.
type CategoricalAnalyzer struct{}

// NewCategoricalAnalyzer creates a new categorical analyzer
func NewCategoricalAnalyzer() *CategoricalAnalyzer {
	return &CategoricalAnalyzer{}
}

// Name returns the analyzer name
func (a *CategoricalAnalyzer) Name() string { return "categorical" }

// Analyze flags high-cardinality and constant categorical columns.
func (a *CategoricalAnalyzer) Analyze(df *frame.Frame, profile *frame.Profile, target string) (report.Result, error) {
	if len(profile.CategoricalColumns) == 0 || df.Rows() == 0 {
		return report.Skipped("no_categorical_columns"), nil
	}

	uniqueRatio := make(map[string]float64, len(profile.CategoricalColumns))
	highCardinality := []string{}
	constant := []string{}

	for _, name := range profile.CategoricalColumns {
		col := df.Column(name)
		distinct := col.DistinctCount(true)
		ratio := float64(distinct) / float64(df.Rows())
		uniqueRatio[name] = report.Round4(ratio)

		if ratio >= highCardinalityThreshold {
			highCardinality = append(highCardinality, name)
		}
		if distinct <= 1 {
			constant = append(constant, name)
		}
	}

	return report.Result{
		"threshold":                highCardinalityThreshold,
		"unique_ratio":             uniqueRatio,
		"high_cardinality_columns": highCardinality,
		"constant_columns":         constant,
	}, nil
}
