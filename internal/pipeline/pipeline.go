// Package pipeline orchestrates a full dataset readiness run: load, profile,
// per-analyzer passes with failure isolation, target diagnostics, model
// simulation, structural risk, recommendations, scoring, and the summary.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"sentinel/adapters/ingest"
	"sentinel/domain/frame"
	"sentinel/domain/report"
	"sentinel/internal/analysis"
	"sentinel/internal/errors"
	"sentinel/internal/scoring"
	"sentinel/internal/simulation"
)

// Pipeline runs the analysis stages in order. Loading and profiling failures
// abort the run; individual analyzer failures are recorded and skipped over.
type Pipeline struct {
	analyzers  []analysis.Analyzer
	simulation simulation.Options
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAnalyzers replaces the default analyzer set.
func WithAnalyzers(analyzers []analysis.Analyzer) Option {
	return func(p *Pipeline) { p.analyzers = analyzers }
}

// WithSimulationOptions overrides the model simulation sampling parameters.
func WithSimulationOptions(opts simulation.Options) Option {
	return func(p *Pipeline) { p.simulation = opts }
}

// New builds a Pipeline with the default analyzer roster.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{analyzers: analysis.DefaultAnalyzers()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline against the file at path. The returned report is
// complete even when analyzers fail; only load failures return an error.
func (p *Pipeline) Run(ctx context.Context, path string, target string) (*report.Report, int, error) {
	start := time.Now()

	df, warnings, err := ingest.Load(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "pipeline: dataset loading failed")
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	profile := frame.BuildProfile(df)

	rep := &report.Report{FailedAnalyzers: []string{}}
	if warnings == nil {
		warnings = []string{}
	}
	rep.Ingestion = report.Result{
		"rows":     df.Rows(),
		"columns":  df.Width(),
		"warnings": warnings,
	}

	p.runAnalyzers(rep, df, profile, target)

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	rep.TargetDiagnostics = analysis.RunTargetDiagnostics(df, target)
	rep.ModelSimulation = simulation.Run(df, target, rep.TargetDiagnostics.String("task_type"), p.simulation)
	rep.StructuralRisk = analysis.RunStructuralRisk(df, target)
	rep.Recommendations = scoring.BuildRecommendations(rep)

	score, breakdown := scoring.ComputeScore(rep)
	rep.Score = score
	rep.Scoring = breakdown
	rep.Summary = scoring.BuildSummary(rep, score, breakdown)

	log.Printf("[Pipeline] Analyzed %s in %.2fs (score %d, %d failed analyzers)",
		path, time.Since(start).Seconds(), score, len(rep.FailedAnalyzers))
	return rep, score, nil
}

// runAnalyzers executes each analyzer in isolation. A panic or error marks the
// analyzer failed without disturbing the rest of the run.
func (p *Pipeline) runAnalyzers(rep *report.Report, df *frame.Frame, profile *frame.Profile, target string) {
	for _, analyzer := range p.analyzers {
		result, err := runIsolated(analyzer, df, profile, target)
		if err != nil {
			log.Printf("[Pipeline] Analyzer %s failed: %v", analyzer.Name(), err)
			rep.FailedAnalyzers = append(rep.FailedAnalyzers, analyzer.Name())
			continue
		}
		rep.SetSection(analyzer.Name(), result)
	}
}

func runIsolated(analyzer analysis.Analyzer, df *frame.Frame, profile *frame.Profile, target string) (result report.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.InternalError(fmt.Sprintf("analyzer %s panicked: %v", analyzer.Name(), r))
		}
	}()
	return analyzer.Analyze(df, profile, target)
}
