package scoring

import (
	"strings"
	"testing"

	"sentinel/domain/report"
)

func TestBuildRecommendations_DefaultAction(t *testing.T) {
	result := BuildRecommendations(&report.Report{})

	actions := result["top_actions"].([]string)
	if len(actions) != 1 {
		t.Fatalf("top_actions = %v, want the single default action", actions)
	}
	if !strings.HasPrefix(actions[0], "No major blockers detected") {
		t.Errorf("Default action = %q", actions[0])
	}
	if result["total_actions_generated"] != 1 {
		t.Errorf("total_actions_generated = %v, want 1", result["total_actions_generated"])
	}
}

func TestBuildRecommendations_PriorityOrder(t *testing.T) {
	rep := &report.Report{
		Missing:           report.Result{"high_missing_columns": []string{"a", "b"}},
		Imbalance:         report.Result{"imbalance_detected": true},
		StructuralRisk:    report.Result{"id_columns": []map[string]any{{"column": "id"}}},
		TargetDiagnostics: report.Result{"weak_signal_detected": true},
		ModelSimulation:   report.Result{"high_overfitting_risk": true},
		Leakage:           report.Result{"leakage_detected": true},
	}

	result := BuildRecommendations(rep)

	actions := result["top_actions"].([]string)
	if len(actions) != 5 {
		t.Fatalf("top_actions = %d entries, want capped at 5", len(actions))
	}
	if result["total_actions_generated"] != 6 {
		t.Errorf("total_actions_generated = %v, want 6", result["total_actions_generated"])
	}

	wantPrefixes := []string{
		"Impute or drop high-missing columns",
		"Mitigate class imbalance",
		"Remove identifier-like columns",
		"Engineer higher-signal features",
		"Reduce model complexity",
	}
	for i, prefix := range wantPrefixes {
		if !strings.HasPrefix(actions[i], prefix) {
			t.Errorf("Action %d = %q, want prefix %q", i, actions[i], prefix)
		}
	}
}

func TestBuildRecommendations_MissingColumnsListedAndCapped(t *testing.T) {
	rep := &report.Report{
		Missing: report.Result{
			"high_missing_columns": []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7"},
		},
	}

	result := BuildRecommendations(rep)
	actions := result["top_actions"].([]string)

	if !strings.Contains(actions[0], "c1, c2, c3, c4, c5.") {
		t.Errorf("Action = %q, want the first five columns listed", actions[0])
	}
	if strings.Contains(actions[0], "c6") {
		t.Errorf("Action = %q, should cap the listed columns at five", actions[0])
	}
}

func TestBuildSummary(t *testing.T) {
	rep := &report.Report{
		Ingestion:       report.Result{"warnings": []string{"dropped 1 malformed row"}},
		FailedAnalyzers: []string{"leakage"},
	}
	breakdown := report.Breakdown{
		CriticalIssues: []string{"Potential leakage detected"},
		Warnings:       []string{"Severe class imbalance"},
	}

	summary := BuildSummary(rep, 30, breakdown)

	if summary["sentinel_score"] != 30 {
		t.Errorf("sentinel_score = %v, want 30", summary["sentinel_score"])
	}
	issues := summary["top_issues"].([]string)
	if len(issues) != 1 || issues[0] != "Potential leakage detected" {
		t.Errorf("top_issues = %v", issues)
	}
	warnings := summary["warnings"].([]string)
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want scoring warning plus ingestion warning", warnings)
	}
	failed := summary["failed_analyzers"].([]string)
	if len(failed) != 1 || failed[0] != "leakage" {
		t.Errorf("failed_analyzers = %v", failed)
	}
}

func TestBuildSummary_CapsAndDefaults(t *testing.T) {
	breakdown := report.Breakdown{
		CriticalIssues: []string{"a", "b", "c", "d", "e", "f", "g"},
		Warnings:       []string{"w1", "w2", "w3", "w4", "w5", "w6"},
	}

	summary := BuildSummary(&report.Report{}, 0, breakdown)

	if n := len(summary["top_issues"].([]string)); n != 5 {
		t.Errorf("top_issues capped at %d, want 5", n)
	}
	if n := len(summary["warnings"].([]string)); n != 5 {
		t.Errorf("warnings capped at %d, want 5", n)
	}
	failed := summary["failed_analyzers"].([]string)
	if failed == nil || len(failed) != 0 {
		t.Errorf("failed_analyzers = %v, want empty non-nil list", failed)
	}
}
