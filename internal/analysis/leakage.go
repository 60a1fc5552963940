package analysis

import (
	"math"

	"sentinel/domain/frame"
	"sentinel/domain/report"
	"sentinel/internal/errors"

	"gonum.org/v1/gonum/stat"
)

const leakageCorrelationThreshold = 0.9

// LeakageAnalyzer flags numeric features whose Pearson correlation with a
// numeric target is suspiciously close to perfect, suggesting the feature
// encodes the answer.
type LeakageAnalyzer struct{}

// NewLeakageAnalyzer creates a new leakage analyzer
func NewLeakageAnalyzer() *LeakageAnalyzer {
	return &LeakageAnalyzer{}
}

// Name returns the analyzer name
func (a *LeakageAnalyzer) Name() string { return "leakage" }

// Analyze correlates every other numeric column against the numeric target
// over pairwise-complete observations.
func (a *LeakageAnalyzer) Analyze(df *frame.Frame, profile *frame.Profile, target string) (report.Result, error) {
	if df.Empty() {
		return report.Skipped("empty_dataframe"), nil
	}
	if target == "" {
		return report.Skipped("no_target_column"), nil
	}
	targetCol := df.Column(target)
	if targetCol == nil {
		return nil, errors.TargetNotFound(target)
	}
	if !targetCol.IsNumeric() {
		return report.Skipped("target_not_numeric"), nil
	}

	suspicious := map[string]float64{}
	for _, col := range df.Columns() {
		if col.Name == target || !col.IsNumeric() {
			continue
		}
		corr, ok := pairwiseCorrelation(col, targetCol)
		if !ok {
			continue
		}
		if math.Abs(corr) >= leakageCorrelationThreshold {
			suspicious[col.Name] = report.Round4(corr)
		}
	}

	return report.Result{
		"target_column":       target,
		"threshold":           leakageCorrelationThreshold,
		"suspicious_features": suspicious,
		"leakage_detected":    len(suspicious) > 0,
	}, nil
}

// pairwiseCorrelation computes Pearson correlation over rows where both
// columns are present. Returns ok=false when fewer than two complete pairs
// exist or either side has zero variance.
func pairwiseCorrelation(x, y *frame.Column) (float64, bool) {
	xs := make([]float64, 0, x.Len())
	ys := make([]float64, 0, y.Len())
	for i := 0; i < x.Len() && i < y.Len(); i++ {
		if x.Missing[i] || y.Missing[i] {
			continue
		}
		xs = append(xs, x.Floats[i])
		ys = append(ys, y.Floats[i])
	}
	if len(xs) < 2 {
		return 0, false
	}
	corr := stat.Correlation(xs, ys, nil)
	if math.IsNaN(corr) || math.IsInf(corr, 0) {
		return 0, false
	}
	return corr, true
}
