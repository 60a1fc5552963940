package simulation

import (
	"fmt"
	"math/rand"
	"testing"

	"sentinel/domain/frame"
	"sentinel/domain/report"
	"sentinel/internal/analysis"
	"sentinel/internal/testkit"
)

func classificationFrame(t *testing.T, rows int) *frame.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	data := make([][]string, rows)
	for i := range data {
		label := "no"
		shift := 0.0
		if i%2 == 0 {
			label = "yes"
			shift = 2.0
		}
		data[i] = []string{
			fmt.Sprintf("%.4f", shift+rng.NormFloat64()*0.5),
			fmt.Sprintf("%.4f", -shift+rng.NormFloat64()*0.5),
			[]string{"web", "store", "phone"}[rng.Intn(3)],
			label,
		}
	}
	return testkit.Frame(t, []string{"feature_a", "feature_b", "segment", "label"}, data)
}

func regressionFrame(t *testing.T, rows int) *frame.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(2))
	data := make([][]string, rows)
	for i := range data {
		x1 := rng.Float64() * 10
		x2 := rng.Float64() * 5
		y := 3*x1 - 2*x2 + rng.NormFloat64()
		data[i] = []string{
			fmt.Sprintf("%.4f", x1),
			fmt.Sprintf("%.4f", x2),
			fmt.Sprintf("%.4f", y),
		}
	}
	return testkit.Frame(t, []string{"x1", "x2", "y"}, data)
}

func TestRun_Classification(t *testing.T) {
	f := classificationFrame(t, 200)

	result := Run(f, "label", analysis.TaskClassification, Options{})

	if result.IsSkipped() {
		t.Fatalf("Simulation skipped: %s", result.SkipReason())
	}
	if result["task_type"] != analysis.TaskClassification {
		t.Errorf("task_type = %v", result["task_type"])
	}
	if result["sample_size"] != 200 {
		t.Errorf("sample_size = %v, want 200", result["sample_size"])
	}
	if result["baseline_metric"] != "roc_auc" {
		t.Errorf("baseline_metric = %v, want roc_auc", result["baseline_metric"])
	}

	models := result["models"].(report.Result)
	for _, name := range []string{"logistic_regression", "random_forest"} {
		metrics, ok := models[name].(report.Result)
		if !ok {
			t.Fatalf("Missing model %s in %v", name, models)
		}
		for _, key := range []string{"train_auc", "validation_auc", "accuracy", "precision", "recall"} {
			v, ok := metrics[key].(float64)
			if !ok {
				t.Fatalf("%s missing metric %s", name, key)
			}
			if v < 0 || v > 1 {
				t.Errorf("%s.%s = %v, out of [0,1]", name, key, v)
			}
		}
	}

	best := result["best_model"].(string)
	if best != "logistic_regression" && best != "random_forest" {
		t.Errorf("best_model = %q", best)
	}
	// Cleanly separated classes should be easy to learn.
	if result["baseline_score"].(float64) < 0.9 {
		t.Errorf("baseline_score = %v, expected strong separation", result["baseline_score"])
	}
	if result["weak_learnability"].(bool) {
		t.Error("Separable data should not read as weak learnability")
	}
}

func TestRun_Regression(t *testing.T) {
	f := regressionFrame(t, 150)

	result := Run(f, "y", analysis.TaskRegression, Options{})

	if result.IsSkipped() {
		t.Fatalf("Simulation skipped: %s", result.SkipReason())
	}
	if result["baseline_metric"] != "r2" {
		t.Errorf("baseline_metric = %v, want r2", result["baseline_metric"])
	}
	if result["best_model"] != "random_forest_regressor" {
		t.Errorf("best_model = %v", result["best_model"])
	}

	models := result["models"].(report.Result)
	metrics := models["random_forest_regressor"].(report.Result)
	for _, key := range []string{"train_r2", "validation_r2", "mae", "rmse"} {
		if _, ok := metrics[key].(float64); !ok {
			t.Errorf("Missing metric %s in %v", key, metrics)
		}
	}
	// A noisy linear target is well within a forest's reach.
	if metrics["validation_r2"].(float64) < 0.5 {
		t.Errorf("validation_r2 = %v, expected a learnable target", metrics["validation_r2"])
	}
}

func TestRun_Deterministic(t *testing.T) {
	f := classificationFrame(t, 150)

	first := Run(f, "label", analysis.TaskClassification, Options{})
	second := Run(f, "label", analysis.TaskClassification, Options{})

	if first["baseline_score"] != second["baseline_score"] {
		t.Errorf("Same seed produced different scores: %v vs %v",
			first["baseline_score"], second["baseline_score"])
	}
	if first["best_model"] != second["best_model"] {
		t.Errorf("Same seed produced different best models: %v vs %v",
			first["best_model"], second["best_model"])
	}
}

func TestRun_MaxRowsCapsSample(t *testing.T) {
	f := classificationFrame(t, 300)

	result := Run(f, "label", analysis.TaskClassification, Options{MaxRows: 120})

	if result.IsSkipped() {
		t.Fatalf("Simulation skipped: %s", result.SkipReason())
	}
	if result["sample_size"] != 120 {
		t.Errorf("sample_size = %v, want 120", result["sample_size"])
	}
}

func TestRun_Skips(t *testing.T) {
	small := classificationFrame(t, 50)

	tests := []struct {
		name     string
		frame    *frame.Frame
		target   string
		taskType string
		reason   string
	}{
		{"no target", small, "", analysis.TaskClassification, "no_target_column"},
		{"unknown target", small, "nope", analysis.TaskClassification, "target_column_not_found"},
		{"unsupported task", small, "label", analysis.TaskUnknown, "unsupported_task_type"},
		{"too few rows", small, "label", analysis.TaskClassification, "insufficient_rows_after_cleanup"},
	}
	for _, tt := range tests {
		result := Run(tt.frame, tt.target, tt.taskType, Options{})
		if got := result.SkipReason(); got != tt.reason {
			t.Errorf("%s: skip reason = %q, want %q", tt.name, got, tt.reason)
		}
	}
}

func TestRun_SingleClassSkips(t *testing.T) {
	rows := make([][]string, 120)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("%d", i), "only"}
	}
	f := testkit.Frame(t, []string{"x", "label"}, rows)

	result := Run(f, "label", analysis.TaskClassification, Options{})
	if got := result.SkipReason(); got != "target_has_single_class" {
		t.Errorf("Skip reason = %q, want target_has_single_class", got)
	}
}

func TestEncodeLabels(t *testing.T) {
	col := frame.InferColumn("label", []string{"b", "a", "c", "a"})
	y, classes := encodeLabels(col, []int{0, 1, 2, 3})

	if classes != 3 {
		t.Fatalf("classes = %d, want 3", classes)
	}
	want := []int{1, 0, 2, 0}
	if !equalInts(y, want) {
		t.Errorf("codes = %v, want %v (sorted label order)", y, want)
	}
}

func TestClassWeightsBalanced(t *testing.T) {
	// 3 of class 0, 1 of class 1: weights n/(k*count) = 0.667 and 2.0.
	weights := classWeightsBalanced([]int{0, 0, 0, 1}, 2)
	if len(weights) != 2 {
		t.Fatalf("weights = %v, want 2 entries", weights)
	}
	if weights[1] != 2.0 {
		t.Errorf("Minority weight = %v, want 2.0", weights[1])
	}
	if weights[0] >= weights[1] {
		t.Error("Majority class should weigh less than the minority class")
	}
}
