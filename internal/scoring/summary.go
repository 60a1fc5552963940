package scoring

import "sentinel/domain/report"

const (
	maxSummaryIssues   = 5
	maxSummaryWarnings = 5
)

// BuildSummary condenses a completed report into the headline view: the score,
// the top critical issues, merged scoring and ingestion warnings, and any
// analyzers that failed outright.
func BuildSummary(rep *report.Report, score int, breakdown report.Breakdown) report.Result {
	topIssues := breakdown.CriticalIssues
	if len(topIssues) > maxSummaryIssues {
		topIssues = topIssues[:maxSummaryIssues]
	}

	warnings := append([]string{}, breakdown.Warnings...)
	warnings = append(warnings, rep.Ingestion.Strings("warnings")...)
	if len(warnings) > maxSummaryWarnings {
		warnings = warnings[:maxSummaryWarnings]
	}

	failed := rep.FailedAnalyzers
	if failed == nil {
		failed = []string{}
	}

	return report.Result{
		"sentinel_score":   score,
		"top_issues":       topIssues,
		"warnings":         warnings,
		"failed_analyzers": failed,
	}
}
