// Package scoring turns the assembled analyzer findings into a 0-100
// model-readiness score, a prioritized action list, and the run summary. The
// penalty table is a fixed business rule set; the constants are reproduced
// as-is rather than tuned.
package scoring

import (
	"sentinel/domain/report"
	"sentinel/internal/analysis"
)

const (
	penaltyLeakage          = 50
	penaltyWeakBaseline     = 25
	penaltyOverfitting      = 20
	penaltyImbalance        = 20
	penaltyHighMissingEach  = 2
	penaltyHighMissingCap   = 20
	penaltyDuplicateRows    = 20
	penaltyIDColumns        = 10
	penaltyTimestampLeakage = 10
	penaltyOutliers         = 10
	penaltyWeakSignal       = 30

	weakBaselineAUC = 0.6
	weakBaselineR2  = 0.2

	duplicateRatioThreshold = 0.1

	easyScoreFloor     = 80
	moderateScoreFloor = 55
)

type scorer struct {
	score     int
	breakdown report.Breakdown
}

func (s *scorer) apply(reason string, amount int) {
	s.score -= amount
	s.breakdown.Penalties = append(s.breakdown.Penalties, report.Penalty{Reason: reason, Amount: amount})
	s.breakdown.Warnings = append(s.breakdown.Warnings, reason)
}

func (s *scorer) applyCritical(reason string, amount int) {
	s.score -= amount
	s.breakdown.Penalties = append(s.breakdown.Penalties, report.Penalty{Reason: reason, Amount: amount})
	s.breakdown.CriticalIssues = append(s.breakdown.CriticalIssues, reason)
}

// ComputeScore evaluates the penalty rules against the report in fixed order
// and returns the floored score with its breakdown. Skipped analyzer sections
// read as empty and trigger no penalties.
func ComputeScore(rep *report.Report) (int, report.Breakdown) {
	s := &scorer{
		score: 100,
		breakdown: report.Breakdown{
			Penalties:      []report.Penalty{},
			CriticalIssues: []string{},
			Warnings:       []string{},
		},
	}

	if rep.Leakage.Bool("leakage_detected") {
		s.applyCritical("Potential leakage detected", penaltyLeakage)
	}

	sim := rep.ModelSimulation
	if _, ok := sim["baseline_score"]; ok {
		baseline := sim.Float("baseline_score")
		switch sim.String("task_type") {
		case analysis.TaskClassification:
			if baseline < weakBaselineAUC {
				s.applyCritical("Low baseline AUC indicates weak learnability", penaltyWeakBaseline)
			}
		case analysis.TaskRegression:
			if baseline < weakBaselineR2 {
				s.applyCritical("Low baseline R2 indicates weak learnability", penaltyWeakBaseline)
			}
		}
	}
	if sim.Bool("high_overfitting_risk") {
		s.apply("High overfitting risk", penaltyOverfitting)
	}

	if rep.Imbalance.Bool("imbalance_detected") {
		s.apply("Severe class imbalance", penaltyImbalance)
	}

	if n := rep.Missing.ListLen("high_missing_columns"); n > 0 {
		amount := n * penaltyHighMissingEach
		if amount > penaltyHighMissingCap {
			amount = penaltyHighMissingCap
		}
		s.apply("High missing columns", amount)
	}

	structural := rep.StructuralRisk
	if structural.Float("duplicate_ratio") >= duplicateRatioThreshold {
		s.apply("High duplicate row ratio", penaltyDuplicateRows)
	}
	if structural.ListLen("id_columns") > 0 {
		s.apply("ID-like columns detected", penaltyIDColumns)
	}
	if structural.ListLen("timestamp_leakage_candidates") > 0 {
		s.apply("Potential timestamp leakage", penaltyTimestampLeakage)
	}

	if rep.Outliers.ListLen("high_outlier_columns") > 0 {
		s.apply("Outlier-dominated columns detected", penaltyOutliers)
	}

	if rep.TargetDiagnostics.Bool("weak_signal_detected") {
		s.applyCritical("Weak feature-target signal", penaltyWeakSignal)
	}

	if s.score < 0 {
		s.score = 0
	}
	switch {
	case s.score >= easyScoreFloor:
		s.breakdown.DatasetDifficulty = "easy"
		s.breakdown.ModelingRisk = "low"
	case s.score >= moderateScoreFloor:
		s.breakdown.DatasetDifficulty = "moderate"
		s.breakdown.ModelingRisk = "medium"
	default:
		s.breakdown.DatasetDifficulty = "difficult"
		s.breakdown.ModelingRisk = "high"
	}

	return s.score, s.breakdown
}
