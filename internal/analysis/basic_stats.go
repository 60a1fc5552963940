package analysis

import (
	"sentinel/domain/frame"
	"sentinel/domain/report"
)

// BasicStatsAnalyzer reports cheap structural facts: column type counts,
// constant columns, duplicate-row ratio, and an in-memory size estimate.
// It never skips; scoring consumes its findings indirectly.
type BasicStatsAnalyzer struct{}

// NewBasicStatsAnalyzer creates a new basic stats analyzer
func NewBasicStatsAnalyzer() *BasicStatsAnalyzer {
	return &BasicStatsAnalyzer{}
}

// Name returns the analyzer name
func (a *BasicStatsAnalyzer) Name() string { return "basic_stats" }

// Analyze computes the structural summary.
func (a *BasicStatsAnalyzer) Analyze(df *frame.Frame, profile *frame.Profile, target string) (report.Result, error) {
	constantColumns := []string{}
	dtypeDistribution := map[string]int{}
	for _, col := range df.Columns() {
		// A column with at most one distinct value, counting missing as a
		// value of its own, carries no information.
		if col.DistinctCount(true) <= 1 {
			constantColumns = append(constantColumns, col.Name)
		}
		dtypeDistribution[string(col.DType)]++
	}

	duplicateRatio := 0.0
	if profile.Rows > 0 {
		duplicateRatio = float64(df.DuplicateRowCount()) / float64(profile.Rows)
	}

	return report.Result{
		"rows":                profile.Rows,
		"columns":             profile.Columns,
		"numeric_columns":     len(profile.NumericColumns),
		"categorical_columns": len(profile.CategoricalColumns),
		"constant_columns":    constantColumns,
		"duplicate_ratio":     report.Round4(duplicateRatio),
		"dtype_distribution":  dtypeDistribution,
		"estimated_memory_mb": report.Round2(df.EstimatedMemoryMB()),
	}, nil
}
