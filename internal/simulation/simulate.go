// Package simulation trains quick baseline models on an encoded sample of the
// dataset to estimate learnability and overfitting risk. Classification gets a
// class-weighted logistic regression plus a random forest; regression gets a
// random forest regressor. Everything is seeded for reproducibility.
package simulation

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"sentinel/domain/frame"
	"sentinel/domain/report"
	"sentinel/internal/analysis"
	"sentinel/internal/encode"
)

const (
	// DefaultMaxRows caps the number of rows fed into model training.
	DefaultMaxRows = 100_000
	// DefaultSeed drives sampling, splitting, and tree bootstrapping.
	DefaultSeed int64 = 42

	minTrainingRows = 100
	testFraction    = 0.2

	numTrees            = 150
	classifierDepth     = 8
	regressorDepth      = 10
	overfitGapThreshold = 0.12
	overfitGapRegressor = 0.2
	weakAUCThreshold    = 0.6
	weakR2Threshold     = 0.2
)

// Options tunes the simulation. Zero values fall back to the defaults.
type Options struct {
	MaxRows int
	Seed    int64
}

func (o Options) withDefaults() Options {
	if o.MaxRows <= 0 {
		o.MaxRows = DefaultMaxRows
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	return o
}

// Run trains baseline models against the target and reports learnability
// metrics, or a skip result when the dataset cannot support training. Any
// internal failure degrades to a skip rather than propagating.
func Run(df *frame.Frame, target string, taskType string, opts Options) (result report.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = report.Skipped(fmt.Sprintf("simulation_failed: %v", r))
		}
	}()
	opts = opts.withDefaults()

	if target == "" {
		return report.Skipped("no_target_column")
	}
	targetCol := df.Column(target)
	if targetCol == nil {
		return report.Skipped("target_column_not_found")
	}
	if taskType != analysis.TaskClassification && taskType != analysis.TaskRegression {
		return report.Skipped("unsupported_task_type")
	}

	start := time.Now()

	// Cap rows first, then drop rows with a missing target.
	sampled := sampleRows(df.Rows(), opts.MaxRows, opts.Seed)
	rowIdx := make([]int, 0, len(sampled))
	for _, row := range sampled {
		if !targetCol.Missing[row] {
			rowIdx = append(rowIdx, row)
		}
	}
	if len(rowIdx) < minTrainingRows {
		return report.Skipped("insufficient_rows_after_cleanup")
	}

	matrix := encode.Build(df, target, rowIdx)
	if matrix.Width() == 0 {
		return report.Skipped("insufficient_rows_after_cleanup")
	}

	if taskType == analysis.TaskClassification {
		result = runClassification(matrix, targetCol, rowIdx, opts)
	} else {
		result = runRegression(matrix, targetCol, rowIdx, opts)
	}
	if !result.IsSkipped() {
		log.Printf("[Simulation] Trained %s baselines on %d rows in %.2fs",
			taskType, len(rowIdx), time.Since(start).Seconds())
	}
	return result
}

func runClassification(matrix *encode.Matrix, targetCol *frame.Column, rowIdx []int, opts Options) report.Result {
	y, classes := encodeLabels(targetCol, rowIdx)
	if classes < 2 {
		return report.Skipped("target_has_single_class")
	}

	trainIdx, valIdx := stratifiedSplit(y, testFraction, opts.Seed)
	xTrain, yTrain := subsetMatrix(matrix.X, y, trainIdx)
	xVal, yVal := subsetMatrix(matrix.X, y, valIdx)

	weights := classWeightsBalanced(yTrain, classes)
	lr := fitLogistic(xTrain, yTrain, classes, weights)

	yFloat := make([]float64, len(yTrain))
	for i, v := range yTrain {
		yFloat[i] = float64(v)
	}
	rf := fitForest(xTrain, yFloat, forestConfig{
		numTrees:    numTrees,
		maxDepth:    classifierDepth,
		maxFeatures: -1,
		classes:     classes,
		seed:        opts.Seed,
	})

	models := report.Result{
		"logistic_regression": classifierMetrics(
			yTrain, yVal, classes,
			lr.predictProba(xTrain), lr.predictProba(xVal),
		),
		"random_forest": classifierMetrics(
			yTrain, yVal, classes,
			rf.predictProba(xTrain), rf.predictProba(xVal),
		),
	}

	bestName := "logistic_regression"
	bestVal := models["logistic_regression"].(report.Result)["validation_auc"].(float64)
	if rfVal := models["random_forest"].(report.Result)["validation_auc"].(float64); rfVal > bestVal {
		bestName = "random_forest"
		bestVal = rfVal
	}
	best := models[bestName].(report.Result)
	gap := best["train_auc"].(float64) - bestVal

	return report.Result{
		"task_type":             analysis.TaskClassification,
		"sample_size":           len(rowIdx),
		"models":                models,
		"best_model":            bestName,
		"baseline_metric":       "roc_auc",
		"baseline_score":        report.Round4(bestVal),
		"overfitting_gap":       report.Round4(gap),
		"high_overfitting_risk": gap >= overfitGapThreshold,
		"weak_learnability":     bestVal < weakAUCThreshold,
	}
}

func classifierMetrics(yTrain, yVal []int, classes int, trainProba, valProba [][]float64) report.Result {
	valPred := probaToClasses(valProba)

	var trainAUC, valAUC float64
	if classes == 2 {
		trainAUC = rocAUCBinary(yTrain, probaColumn(trainProba, 1))
		valAUC = rocAUCBinary(yVal, probaColumn(valProba, 1))
	} else {
		trainAUC = rocAUCOVR(yTrain, trainProba, classes)
		valAUC = rocAUCOVR(yVal, valProba, classes)
	}
	prec, rec := precisionRecall(yVal, valPred, classes)

	return report.Result{
		"train_auc":      report.Round4(trainAUC),
		"validation_auc": report.Round4(valAUC),
		"accuracy":       report.Round4(accuracy(yVal, valPred)),
		"precision":      report.Round4(prec),
		"recall":         report.Round4(rec),
	}
}

func runRegression(matrix *encode.Matrix, targetCol *frame.Column, rowIdx []int, opts Options) report.Result {
	y := make([]float64, 0, len(rowIdx))
	xRows := make([][]float64, 0, len(rowIdx))
	for i, row := range rowIdx {
		v := targetCol.Floats[row]
		if math.IsNaN(v) {
			continue
		}
		y = append(y, v)
		xRows = append(xRows, matrix.X[i])
	}
	if len(xRows) < minTrainingRows {
		return report.Skipped("insufficient_numeric_target_rows")
	}

	trainIdx, valIdx := trainTestSplit(len(xRows), testFraction, opts.Seed)
	xTrain, yTrain := subsetRegression(xRows, y, trainIdx)
	xVal, yVal := subsetRegression(xRows, y, valIdx)

	rf := fitForest(xTrain, yTrain, forestConfig{
		numTrees: numTrees,
		maxDepth: regressorDepth,
		classes:  0,
		seed:     opts.Seed,
	})
	trainPred := rf.predictValues(xTrain)
	valPred := rf.predictValues(xVal)

	trainR2 := r2Score(yTrain, trainPred)
	valR2 := r2Score(yVal, valPred)
	gap := trainR2 - valR2

	return report.Result{
		"task_type":   analysis.TaskRegression,
		"sample_size": len(xRows),
		"models": report.Result{
			"random_forest_regressor": report.Result{
				"train_r2":      report.Round4(trainR2),
				"validation_r2": report.Round4(valR2),
				"mae":           report.Round4(maeScore(yVal, valPred)),
				"rmse":          report.Round4(rmseScore(yVal, valPred)),
			},
		},
		"best_model":            "random_forest_regressor",
		"baseline_metric":       "r2",
		"baseline_score":        report.Round4(valR2),
		"overfitting_gap":       report.Round4(gap),
		"high_overfitting_risk": gap >= overfitGapRegressor,
		"weak_learnability":     valR2 < weakR2Threshold,
	}
}

// encodeLabels assigns class codes by sorted label order over the selected
// rows.
func encodeLabels(col *frame.Column, rowIdx []int) ([]int, int) {
	seen := make(map[string]struct{})
	for _, row := range rowIdx {
		seen[col.Raw[row]] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for v := range seen {
		labels = append(labels, v)
	}
	sort.Strings(labels)
	index := make(map[string]int, len(labels))
	for i, v := range labels {
		index[v] = i
	}
	y := make([]int, len(rowIdx))
	for i, row := range rowIdx {
		y[i] = index[col.Raw[row]]
	}
	return y, len(labels)
}

func subsetMatrix(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}

func subsetRegression(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}

func probaToClasses(proba [][]float64) []int {
	out := make([]int, len(proba))
	for i, p := range proba {
		out[i] = bestIndex(p)
	}
	return out
}

func probaColumn(proba [][]float64, c int) []float64 {
	out := make([]float64, len(proba))
	for i, p := range proba {
		out[i] = p[c]
	}
	return out
}
