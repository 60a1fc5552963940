package scoring

import (
	"testing"

	"sentinel/domain/report"
	"sentinel/internal/analysis"
)

func TestComputeScore_CleanReport(t *testing.T) {
	rep := &report.Report{}

	score, breakdown := ComputeScore(rep)

	if score != 100 {
		t.Errorf("Clean report score = %d, want 100", score)
	}
	if len(breakdown.Penalties) != 0 {
		t.Errorf("Penalties = %v, want none", breakdown.Penalties)
	}
	if breakdown.DatasetDifficulty != "easy" || breakdown.ModelingRisk != "low" {
		t.Errorf("Labels = %s/%s, want easy/low",
			breakdown.DatasetDifficulty, breakdown.ModelingRisk)
	}
}

func TestComputeScore_LeakageIsCritical(t *testing.T) {
	rep := &report.Report{
		Leakage: report.Result{"leakage_detected": true},
	}

	score, breakdown := ComputeScore(rep)

	if score != 50 {
		t.Errorf("score = %d, want 50", score)
	}
	if len(breakdown.CriticalIssues) != 1 || breakdown.CriticalIssues[0] != "Potential leakage detected" {
		t.Errorf("CriticalIssues = %v", breakdown.CriticalIssues)
	}
	if len(breakdown.Warnings) != 0 {
		t.Errorf("Critical issues must not duplicate into warnings: %v", breakdown.Warnings)
	}
}

func TestComputeScore_WeakBaseline(t *testing.T) {
	tests := []struct {
		name      string
		taskType  string
		baseline  float64
		penalized bool
	}{
		{"weak classification", analysis.TaskClassification, 0.55, true},
		{"strong classification", analysis.TaskClassification, 0.85, false},
		{"weak regression", analysis.TaskRegression, 0.1, true},
		{"strong regression", analysis.TaskRegression, 0.6, false},
	}
	for _, tt := range tests {
		rep := &report.Report{
			ModelSimulation: report.Result{
				"task_type":      tt.taskType,
				"baseline_score": tt.baseline,
			},
		}
		score, _ := ComputeScore(rep)
		want := 100
		if tt.penalized {
			want = 75
		}
		if score != want {
			t.Errorf("%s: score = %d, want %d", tt.name, score, want)
		}
	}
}

func TestComputeScore_SkippedSimulationCarriesNoBaselinePenalty(t *testing.T) {
	rep := &report.Report{
		ModelSimulation: report.Skipped("insufficient_rows_after_cleanup"),
	}
	if score, _ := ComputeScore(rep); score != 100 {
		t.Errorf("Skipped simulation should not penalize, score = %d", score)
	}
}

func TestComputeScore_HighMissingScalesWithCap(t *testing.T) {
	three := &report.Report{
		Missing: report.Result{"high_missing_columns": []string{"a", "b", "c"}},
	}
	if score, _ := ComputeScore(three); score != 94 {
		t.Errorf("3 high-missing columns: score = %d, want 94", score)
	}

	many := make([]string, 15)
	for i := range many {
		many[i] = "col"
	}
	capped := &report.Report{
		Missing: report.Result{"high_missing_columns": many},
	}
	if score, _ := ComputeScore(capped); score != 80 {
		t.Errorf("15 high-missing columns: score = %d, want 80 (capped)", score)
	}
}

func TestComputeScore_StructuralPenalties(t *testing.T) {
	rep := &report.Report{
		StructuralRisk: report.Result{
			"duplicate_ratio": 0.25,
			"id_columns": []map[string]any{
				{"column": "user_id"},
			},
			"timestamp_leakage_candidates": []map[string]any{
				{"column": "created_at", "monotonic": true},
			},
		},
	}

	score, breakdown := ComputeScore(rep)

	if score != 60 {
		t.Errorf("score = %d, want 60 (20+10+10 off)", score)
	}
	if len(breakdown.Warnings) != 3 {
		t.Errorf("Warnings = %v, want 3 entries", breakdown.Warnings)
	}
}

func TestComputeScore_FloorsAtZero(t *testing.T) {
	rep := &report.Report{
		Leakage: report.Result{"leakage_detected": true},
		ModelSimulation: report.Result{
			"task_type":             analysis.TaskClassification,
			"baseline_score":        0.5,
			"high_overfitting_risk": true,
		},
		Imbalance: report.Result{"imbalance_detected": true},
		Missing:   report.Result{"high_missing_columns": []string{"a", "b"}},
		StructuralRisk: report.Result{
			"duplicate_ratio": 0.3,
			"id_columns":      []map[string]any{{"column": "id"}},
		},
		Outliers:          report.Result{"high_outlier_columns": []string{"x"}},
		TargetDiagnostics: report.Result{"weak_signal_detected": true},
	}

	score, breakdown := ComputeScore(rep)

	if score != 0 {
		t.Errorf("score = %d, want 0 (floored)", score)
	}
	if breakdown.DatasetDifficulty != "difficult" || breakdown.ModelingRisk != "high" {
		t.Errorf("Labels = %s/%s, want difficult/high",
			breakdown.DatasetDifficulty, breakdown.ModelingRisk)
	}
	if len(breakdown.CriticalIssues) != 3 {
		t.Errorf("CriticalIssues = %v, want leakage, weak baseline, weak signal",
			breakdown.CriticalIssues)
	}
}

func TestComputeScore_PenaltyOrderIsStable(t *testing.T) {
	rep := &report.Report{
		Leakage:           report.Result{"leakage_detected": true},
		Imbalance:         report.Result{"imbalance_detected": true},
		Outliers:          report.Result{"high_outlier_columns": []string{"x"}},
		TargetDiagnostics: report.Result{"weak_signal_detected": true},
	}

	_, breakdown := ComputeScore(rep)

	wantOrder := []string{
		"Potential leakage detected",
		"Severe class imbalance",
		"Outlier-dominated columns detected",
		"Weak feature-target signal",
	}
	if len(breakdown.Penalties) != len(wantOrder) {
		t.Fatalf("Penalties = %v", breakdown.Penalties)
	}
	for i, want := range wantOrder {
		if breakdown.Penalties[i].Reason != want {
			t.Errorf("Penalty %d = %q, want %q", i, breakdown.Penalties[i].Reason, want)
		}
	}
}

func TestComputeScore_DifficultyBands(t *testing.T) {
	moderate := &report.Report{
		Leakage:   report.Result{"leakage_detected": false},
		Imbalance: report.Result{"imbalance_detected": true},
		Outliers:  report.Result{"high_outlier_columns": []string{"x"}},
	}
	score, breakdown := ComputeScore(moderate)
	if score != 70 || breakdown.DatasetDifficulty != "moderate" || breakdown.ModelingRisk != "medium" {
		t.Errorf("score=%d labels=%s/%s, want 70 moderate/medium",
			score, breakdown.DatasetDifficulty, breakdown.ModelingRisk)
	}
}
