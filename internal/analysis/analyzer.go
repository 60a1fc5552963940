package analysis

import (
	"sentinel/domain/frame"
	"sentinel/domain/report"
)

// Analyzer is one independent, side-effect-free inspection unit. Every
// analyzer receives the same read-only frame, the shared profile, and the
// optional target column name ("" when the caller supplied none).
//
// An analyzer that cannot run for a semantic reason returns the skip sentinel
// via report.Skipped, not an error. Errors are reserved for conditions the
// orchestrator records as named failures (a caller-supplied target column that
// does not exist, for instance). One analyzer's failure must never block the
// others.
type Analyzer interface {
	Name() string
	Analyze(df *frame.Frame, profile *frame.Profile, target string) (report.Result, error)
}

// DefaultAnalyzers returns the full analyzer set in report order.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		NewBasicStatsAnalyzer(),
		NewMissingAnalyzer(),
		NewImbalanceAnalyzer(),
		NewLeakageAnalyzer(),
		NewOutlierAnalyzer(),
		NewCategoricalAnalyzer(),
	}
}
