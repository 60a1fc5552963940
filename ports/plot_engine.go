package ports

import (
	"context"

	"sentinel/domain/report"
)

// PlotEngine renders diagnostic charts for an analyzed dataset
type PlotEngine interface {
	// Generate renders one named plot as PNG bytes.
	Generate(ctx context.Context, filePath string, rep *report.Report, target string, name string) ([]byte, error)
	// SupportedPlots lists the plot names Generate accepts.
	SupportedPlots() []string
}
