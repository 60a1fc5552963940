package api

import (
	"fmt"
	"strings"

	"sentinel/domain/dataset"
	"sentinel/domain/report"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// buildReportView flattens a stored report into the shape the dashboard
// consumes: headline fields up front, full analyzer sections underneath, plus
// a rendered HTML summary.
func buildReportView(ds *dataset.Dataset, stored *report.Stored, availablePlots []string) map[string]any {
	doc := stored.Document
	if doc == nil {
		doc = &report.Report{}
	}

	return map[string]any{
		"dataset": map[string]any{
			"id":            ds.ID,
			"name":          ds.OriginalFilename,
			"rows":          ds.RecordCount,
			"columns":       ds.FieldCount,
			"created_at":    ds.CreatedAt,
			"status":        ds.Status,
			"target_column": ds.TargetColumn,
		},
		"sentinel_score":      stored.Score,
		"dataset_difficulty":  doc.Scoring.DatasetDifficulty,
		"modeling_risk":       doc.Scoring.ModelingRisk,
		"top_issues":          doc.Summary.Strings("top_issues"),
		"warnings":            doc.Summary.Strings("warnings"),
		"failed_analyzers":    doc.FailedAnalyzers,
		"recommended_actions": doc.Recommendations.Strings("top_actions"),
		"available_plots":     availablePlots,
		"summary_html":        renderSummaryHTML(ds, stored.Score, doc),
		"sections": map[string]any{
			"ingestion":          doc.Ingestion,
			"basic_stats":        doc.BasicStats,
			"missing":            doc.Missing,
			"imbalance":          doc.Imbalance,
			"leakage":            doc.Leakage,
			"outliers":           doc.Outliers,
			"categorical":        doc.Categorical,
			"target_diagnostics": doc.TargetDiagnostics,
			"model_simulation":   doc.ModelSimulation,
			"structural_risk":    doc.StructuralRisk,
			"recommendations":    doc.Recommendations,
		},
	}
}

// renderSummaryHTML composes a markdown digest of the run and renders it to
// HTML for direct embedding in the dashboard.
func renderSummaryHTML(ds *dataset.Dataset, score int, doc *report.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Readiness Report: %s\n\n", ds.OriginalFilename)
	fmt.Fprintf(&b, "**Score:** %d/100 (%s difficulty, %s modeling risk)\n\n",
		score, doc.Scoring.DatasetDifficulty, doc.Scoring.ModelingRisk)

	if issues := doc.Summary.Strings("top_issues"); len(issues) > 0 {
		b.WriteString("## Critical Issues\n\n")
		for _, issue := range issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
		b.WriteString("\n")
	}
	if warnings := doc.Summary.Strings("warnings"); len(warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, warning := range warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
		b.WriteString("\n")
	}
	if actions := doc.Recommendations.Strings("top_actions"); len(actions) > 0 {
		b.WriteString("## Recommended Actions\n\n")
		for i, action := range actions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, action)
		}
		b.WriteString("\n")
	}
	if failed := doc.FailedAnalyzers; len(failed) > 0 {
		fmt.Fprintf(&b, "## Failed Analyzers\n\n%s\n", strings.Join(failed, ", "))
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(b.String()), p, renderer))
}
