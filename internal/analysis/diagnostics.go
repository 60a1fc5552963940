package analysis

import (
	"fmt"
	"math"
	"sort"

	"sentinel/domain/frame"
	"sentinel/domain/report"
	"sentinel/internal/encode"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Signal-strength thresholds. Mutual information scores are in nats.
const (
	lowSignalMI           = 0.005
	lowSignalF            = 1.0
	weakTopMI             = 0.02
	weakTopF              = 5.0
	missingBiasAlpha      = 0.05
	maxLowSignalFeatures  = 20
	maxMissingBiasColumns = 20
	maxTopFeatures        = 10
)

// RunTargetDiagnostics estimates feature/target signal strength and checks
// whether any column's missingness pattern is associated with the target
// class. Any internal failure degrades to a skip result with the reason
// embedded; it never propagates.
func RunTargetDiagnostics(df *frame.Frame, target string) (result report.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = report.Skipped(fmt.Sprintf("signal_computation_failed: %v", r))
		}
	}()

	if target == "" {
		return report.Skipped("no_target_column")
	}
	targetCol := df.Column(target)
	if targetCol == nil {
		return report.Skipped("target_column_not_found")
	}
	taskType := DetectTaskType(targetCol)
	if taskType == TaskUnknown {
		return report.Skipped("empty_target")
	}

	// Rows with a null target carry no supervision signal.
	rowIdx := make([]int, 0, targetCol.Len())
	for i := 0; i < targetCol.Len(); i++ {
		if !targetCol.Missing[i] {
			rowIdx = append(rowIdx, i)
		}
	}

	matrix := encode.Build(df, target, rowIdx)
	if matrix.Width() == 0 || matrix.Rows() == 0 {
		return report.Skipped("insufficient_features")
	}

	signalMetric := "mi"
	var scores map[string]float64
	var pValues map[string]float64
	var lowSignal []string

	if taskType == TaskClassification {
		codes := factorize(targetCol, rowIdx)
		scores = mutualInformationScores(matrix, codes)
		lowSignal = lowSignalFeatures(matrix.Names, scores, lowSignalMI)
	} else {
		signalMetric = "f_score"
		y, valid := numericTarget(targetCol, rowIdx)
		if len(valid) == 0 {
			return report.Skipped("target_not_numeric_for_regression")
		}
		scores, pValues = fStatisticScores(matrix, y, valid)
		lowSignal = lowSignalFeatures(matrix.Names, scores, lowSignalF)
	}

	topFeatures := rankFeatures(scores, pValues, maxTopFeatures)

	missingBias := []map[string]any{}
	if taskType == TaskClassification {
		missingBias = targetMissingBias(df, targetCol)
	}

	weakSignal := len(topFeatures) == 0
	if !weakSignal {
		top, _ := topFeatures[0]["score"].(float64)
		if taskType == TaskClassification && top < weakTopMI {
			weakSignal = true
		}
		if taskType == TaskRegression && top < weakTopF {
			weakSignal = true
		}
	}

	return report.Result{
		"task_type":               taskType,
		"target_column":           target,
		"signal_metric":           signalMetric,
		"top_predictive_features": topFeatures,
		"low_signal_features":     lowSignal,
		"target_missing_bias":     missingBias,
		"weak_signal_detected":    weakSignal,
	}
}

// factorize maps the target's raw values (over the given rows) to integer
// codes in first-appearance order.
func factorize(col *frame.Column, rowIdx []int) []int {
	codes := make([]int, len(rowIdx))
	lookup := make(map[string]int)
	for i, row := range rowIdx {
		key := col.Raw[row]
		code, ok := lookup[key]
		if !ok {
			code = len(lookup)
			lookup[key] = code
		}
		codes[i] = code
	}
	return codes
}

// numericTarget coerces the target to floats over the given rows, returning
// the values and the positions (into rowIdx) that parsed.
func numericTarget(col *frame.Column, rowIdx []int) ([]float64, []int) {
	if !col.IsNumeric() {
		return nil, nil
	}
	y := make([]float64, 0, len(rowIdx))
	valid := make([]int, 0, len(rowIdx))
	for i, row := range rowIdx {
		v := col.Floats[row]
		if math.IsNaN(v) {
			continue
		}
		y = append(y, v)
		valid = append(valid, i)
	}
	return y, valid
}

// mutualInformationScores estimates I(feature; target) per encoded feature
// using quantile discretization, the entropy identity I = H(X)+H(Y)-H(X,Y).
func mutualInformationScores(matrix *encode.Matrix, codes []int) map[string]float64 {
	scores := make(map[string]float64, matrix.Width())
	for j, name := range matrix.Names {
		bins := discretize(matrix.Column(j), 10)
		scores[name] = report.Round4(mutualInformation(bins, codes))
	}
	return scores
}

// discretize converts continuous values to quantile bins. Columns with at
// most numBins distinct values (one-hot indicators, small integer codes) keep
// each value as its own bin.
func discretize(data []float64, numBins int) []int {
	distinct := make(map[float64]struct{}, numBins+1)
	for _, v := range data {
		distinct[v] = struct{}{}
		if len(distinct) > numBins {
			break
		}
	}
	if len(distinct) <= numBins {
		levels := make([]float64, 0, len(distinct))
		for v := range distinct {
			levels = append(levels, v)
		}
		sort.Float64s(levels)
		index := make(map[float64]int, len(levels))
		for i, v := range levels {
			index[v] = i
		}
		bins := make([]int, len(data))
		for i, v := range data {
			bins[i] = index[v]
		}
		return bins
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	bins := make([]int, len(data))
	for i, val := range data {
		bin := 0
		for b := 1; b < numBins; b++ {
			threshold := sorted[(len(sorted)*b)/numBins]
			if val >= threshold {
				bin = b
			} else {
				break
			}
		}
		bins[i] = bin
	}
	return bins
}

// mutualInformation computes I(X;Y) in nats from two discrete sequences.
func mutualInformation(x []int, y []int) float64 {
	n := len(x)
	if n == 0 || len(y) != n {
		return 0
	}
	xCounts := make(map[int]int)
	yCounts := make(map[int]int)
	jointCounts := make(map[[2]int]int)
	for i := 0; i < n; i++ {
		xCounts[x[i]]++
		yCounts[y[i]]++
		jointCounts[[2]int{x[i], y[i]}]++
	}
	total := float64(n)
	mi := 0.0
	for pair, c := range jointCounts {
		pxy := float64(c) / total
		px := float64(xCounts[pair[0]]) / total
		py := float64(yCounts[pair[1]]) / total
		mi += pxy * math.Log(pxy/(px*py))
	}
	if mi < 0 {
		return 0
	}
	return mi
}

// fStatisticScores computes the univariate regression F-statistic per feature
// (F = r^2 (n-2) / (1-r^2)) plus its p-value from the F distribution.
func fStatisticScores(matrix *encode.Matrix, y []float64, valid []int) (map[string]float64, map[string]float64) {
	scores := make(map[string]float64, matrix.Width())
	pValues := make(map[string]float64, matrix.Width())
	n := len(y)
	if n < 3 {
		return scores, pValues
	}
	fDist := distuv.F{D1: 1, D2: float64(n - 2)}

	for j, name := range matrix.Names {
		full := matrix.Column(j)
		xs := make([]float64, n)
		for i, pos := range valid {
			xs[i] = full[pos]
		}
		r := stat.Correlation(xs, y, nil)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		r2 := r * r
		if r2 >= 1 {
			r2 = 1 - 1e-12
		}
		f := r2 * float64(n-2) / (1 - r2)
		scores[name] = report.Round4(f)
		pValues[name] = fDist.Survival(f)
	}
	return scores, pValues
}

// lowSignalFeatures lists features scoring under the threshold, in encoded
// column order, capped.
func lowSignalFeatures(names []string, scores map[string]float64, threshold float64) []string {
	out := []string{}
	for _, name := range names {
		score, ok := scores[name]
		if !ok {
			continue
		}
		if score < threshold {
			out = append(out, name)
			if len(out) == maxLowSignalFeatures {
				break
			}
		}
	}
	return out
}

// rankFeatures returns the top features by score descending, ties broken by
// name for determinism.
func rankFeatures(scores map[string]float64, pValues map[string]float64, limit int) []map[string]any {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if scores[names[i]] != scores[names[j]] {
			return scores[names[i]] > scores[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}
	out := make([]map[string]any, len(names))
	for i, name := range names {
		entry := map[string]any{"feature": name, "score": scores[name]}
		if p, ok := pValues[name]; ok {
			entry["p_value"] = report.Round4(p)
		}
		out[i] = entry
	}
	return out
}

// targetMissingBias tests, per column, whether missingness is statistically
// associated with the target class (chi-square independence on the 2xK
// missing-vs-class contingency table).
func targetMissingBias(df *frame.Frame, targetCol *frame.Column) []map[string]any {
	out := []map[string]any{}
	for _, col := range df.Columns() {
		if col.Name == targetCol.Name {
			continue
		}
		if col.MissingCount() == 0 {
			continue
		}

		// Contingency: rows = missing yes/no, cols = target class (missing
		// target counts as its own class, mirroring the imbalance analyzer).
		classIndex := make(map[string]int)
		var table [2]map[int]int
		table[0] = make(map[int]int)
		table[1] = make(map[int]int)
		for i := 0; i < col.Len(); i++ {
			class := targetCol.Raw[i]
			if targetCol.Missing[i] {
				class = "nan"
			}
			k, ok := classIndex[class]
			if !ok {
				k = len(classIndex)
				classIndex[class] = k
			}
			r := 0
			if col.Missing[i] {
				r = 1
			}
			table[r][k]++
		}
		if len(table[0]) == 0 || len(table[1]) == 0 || len(classIndex) < 2 {
			continue
		}

		chi2, dof := chiSquareStatistic(table, len(classIndex))
		if dof < 1 {
			continue
		}
		p := distuv.ChiSquared{K: float64(dof)}.Survival(chi2)
		if p < missingBiasAlpha {
			out = append(out, map[string]any{
				"column":  col.Name,
				"p_value": math.Round(p*1e6) / 1e6,
				"chi2":    report.Round4(chi2),
			})
			if len(out) == maxMissingBiasColumns {
				break
			}
		}
	}
	return out
}

// chiSquareStatistic computes the chi-square statistic and degrees of freedom
// for a 2xK contingency table.
func chiSquareStatistic(table [2]map[int]int, classes int) (float64, int) {
	rowTotals := [2]float64{}
	colTotals := make([]float64, classes)
	total := 0.0
	for r := 0; r < 2; r++ {
		for k := 0; k < classes; k++ {
			v := float64(table[r][k])
			rowTotals[r] += v
			colTotals[k] += v
			total += v
		}
	}
	if total == 0 {
		return 0, 0
	}
	chi2 := 0.0
	for r := 0; r < 2; r++ {
		for k := 0; k < classes; k++ {
			expected := rowTotals[r] * colTotals[k] / total
			if expected > 0 {
				observed := float64(table[r][k])
				chi2 += (observed - expected) * (observed - expected) / expected
			}
		}
	}
	return chi2, classes - 1
}
