package analysis

import (
	"sentinel/domain/frame"
	"sentinel/domain/report"
	"sentinel/internal/errors"
)

const minorityRatioThreshold = 0.1

// ImbalanceAnalyzer measures the class distribution of the target column.
// Missing target values count as a class of their own.
type ImbalanceAnalyzer struct{}

// NewImbalanceAnalyzer creates a new imbalance analyzer
func NewImbalanceAnalyzer() *ImbalanceAnalyzer {
	return &ImbalanceAnalyzer{}
}

// Name returns the analyzer name
func (a *ImbalanceAnalyzer) Name() string { return "imbalance" }

// Analyze computes per-class frequency ratios and the minority ratio.
func (a *ImbalanceAnalyzer) Analyze(df *frame.Frame, profile *frame.Profile, target string) (report.Result, error) {
	if df.Empty() {
		return report.Skipped("empty_dataframe"), nil
	}
	if target == "" {
		return report.Skipped("no_target_column"), nil
	}
	col := df.Column(target)
	if col == nil {
		return nil, errors.TargetNotFound(target)
	}

	total := col.Len()
	if total == 0 {
		return report.Result{
			"target_column":      target,
			"num_classes":        0,
			"class_distribution": map[string]float64{},
			"minority_ratio":     0.0,
			"imbalance_detected": false,
		}, nil
	}

	counts := make(map[string]int)
	for i := 0; i < total; i++ {
		key := col.Raw[i]
		if col.Missing[i] {
			key = "nan"
		}
		counts[key]++
	}

	distribution := make(map[string]float64, len(counts))
	minority := 1.0
	for class, n := range counts {
		ratio := float64(n) / float64(total)
		distribution[class] = report.Round4(ratio)
		if ratio < minority {
			minority = ratio
		}
	}

	return report.Result{
		"target_column":      target,
		"num_classes":        len(distribution),
		"class_distribution": distribution,
		"minority_ratio":     report.Round4(minority),
		"imbalance_detected": minority < minorityRatioThreshold,
	}, nil
}
