package scoring

import (
	"fmt"
	"strings"

	"sentinel/domain/report"
)

const maxRecommendedActions = 5

// BuildRecommendations derives remediation actions from the findings. Rules
// fire in a fixed priority order so the top actions are stable across runs.
func BuildRecommendations(rep *report.Report) report.Result {
	actions := []string{}

	if highMissing := rep.Missing.Strings("high_missing_columns"); len(highMissing) > 0 {
		shown := highMissing
		if len(shown) > maxRecommendedActions {
			shown = shown[:maxRecommendedActions]
		}
		actions = append(actions, fmt.Sprintf(
			"Impute or drop high-missing columns: %s.", strings.Join(shown, ", ")))
	}

	if rep.Imbalance.Bool("imbalance_detected") {
		actions = append(actions, "Mitigate class imbalance using class_weight, focal loss, or SMOTE.")
	}

	if rep.StructuralRisk.ListLen("id_columns") > 0 {
		actions = append(actions, "Remove identifier-like columns from model features to reduce memorization risk.")
	}

	if rep.TargetDiagnostics.Bool("weak_signal_detected") {
		actions = append(actions, "Engineer higher-signal features or enrich data sources; current target signal is weak.")
	}

	if rep.ModelSimulation.Bool("high_overfitting_risk") {
		actions = append(actions, "Reduce model complexity and validate with stronger cross-validation to control overfitting.")
	}

	if rep.Leakage.Bool("leakage_detected") {
		actions = append(actions, "Audit suspicious high-correlation features for leakage and exclude leakage-prone columns.")
	}

	if len(actions) == 0 {
		actions = append(actions, "No major blockers detected; proceed with baseline model and monitor drift/quality.")
	}

	top := actions
	if len(top) > maxRecommendedActions {
		top = top[:maxRecommendedActions]
	}
	return report.Result{
		"top_actions":             top,
		"total_actions_generated": len(actions),
	}
}
