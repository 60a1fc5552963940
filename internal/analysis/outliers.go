package analysis

import (
	"sentinel/domain/frame"
	"sentinel/domain/report"

	"github.com/montanaflynn/stats"
)

const highOutlierRatioThreshold = 0.05

// OutlierAnalyzer measures, per numeric column, the fraction of values lying
// outside the Tukey fences (Q1 - 1.5*IQR, Q3 + 1.5*IQR).
type OutlierAnalyzer struct{}

// NewOutlierAnalyzer creates a new outlier analyzer
func NewOutlierAnalyzer() *OutlierAnalyzer {
	return &OutlierAnalyzer{}
}

// Name returns the analyzer name
func (a *OutlierAnalyzer) Name() string { return "outliers" }

// Analyze computes outlier ratios for every numeric column. A zero or
// undefined IQR forces the ratio to 0 rather than NaN.
func (a *OutlierAnalyzer) Analyze(df *frame.Frame, profile *frame.Profile, target string) (report.Result, error) {
	if df.Empty() {
		return report.Skipped("empty_dataframe"), nil
	}
	if len(profile.NumericColumns) == 0 {
		return report.Skipped("no_numeric_columns"), nil
	}

	outlierRatios := make(map[string]float64, len(profile.NumericColumns))
	highOutlierColumns := []string{}

	for _, name := range profile.NumericColumns {
		col := df.Column(name)
		ratio := tukeyOutlierRatio(col)
		outlierRatios[name] = report.Round4(ratio)
		if ratio >= highOutlierRatioThreshold {
			highOutlierColumns = append(highOutlierColumns, name)
		}
	}

	return report.Result{
		"threshold":            highOutlierRatioThreshold,
		"outlier_ratios":       outlierRatios,
		"high_outlier_columns": highOutlierColumns,
	}, nil
}

// tukeyOutlierRatio returns the fraction of the column's rows falling outside
// the IQR fences. The denominator is the full row count, missing included.
func tukeyOutlierRatio(col *frame.Column) float64 {
	values := col.NonNullFloats()
	if len(values) == 0 || col.Len() == 0 {
		return 0
	}
	q1, err1 := stats.Percentile(values, 25)
	q3, err2 := stats.Percentile(values, 75)
	if err1 != nil || err2 != nil {
		return 0
	}
	iqr := q3 - q1
	if iqr == 0 {
		return 0
	}
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	outliers := 0
	for _, v := range values {
		if v < lower || v > upper {
			outliers++
		}
	}
	return float64(outliers) / float64(col.Len())
}
