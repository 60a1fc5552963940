// Package plot renders diagnostic charts for analyzed datasets using the
// gonum plotting stack. Plots degrade to a labeled placeholder when the
// dataset lacks the data they need, so handlers can always serve an image.
package plot

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"

	"sentinel/adapters/ingest"
	"sentinel/domain/frame"
	"sentinel/domain/report"
	"sentinel/internal/errors"
	"sentinel/ports"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	// PlotMissingHeatmap shows which of the most-missing columns are null per row.
	PlotMissingHeatmap = "missing_heatmap"
	// PlotTargetDistribution shows target class counts.
	PlotTargetDistribution = "target_distribution"
	// PlotFeatureImportance shows the top predictive features from diagnostics.
	PlotFeatureImportance = "feature_importance"
	// PlotNumericDistribution shows histograms for leading numeric columns.
	PlotNumericDistribution = "numeric_distribution"
	// PlotCorrelationHeatmap shows absolute pairwise correlations.
	PlotCorrelationHeatmap = "correlation_heatmap"

	heatmapRowLimit    = 500
	heatmapColumnLimit = 15
	correlationLimit   = 20
	histogramLimit     = 4
	histogramBins      = 30
	barLimit           = 20
)

var supportedPlots = []string{
	PlotMissingHeatmap,
	PlotTargetDistribution,
	PlotFeatureImportance,
	PlotNumericDistribution,
	PlotCorrelationHeatmap,
}

// Engine implements the PlotEngine interface on top of gonum/plot.
type Engine struct{}

// NewEngine creates a plot engine.
func NewEngine() ports.PlotEngine {
	return &Engine{}
}

// SupportedPlots lists the plot names Generate accepts.
func (e *Engine) SupportedPlots() []string {
	out := make([]string, len(supportedPlots))
	copy(out, supportedPlots)
	return out
}

// Generate renders one named plot as PNG bytes.
func (e *Engine) Generate(ctx context.Context, filePath string, rep *report.Report, target string, name string) ([]byte, error) {
	supported := false
	for _, candidate := range supportedPlots {
		if candidate == name {
			supported = true
			break
		}
	}
	if !supported {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported plot %q", name))
	}

	// Feature importance needs only the report; the rest re-read the frame.
	if name == PlotFeatureImportance {
		return featureImportance(rep)
	}

	df, _, err := ingest.Load(filePath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch name {
	case PlotMissingHeatmap:
		return missingHeatmap(df)
	case PlotTargetDistribution:
		return targetDistribution(df, target)
	case PlotNumericDistribution:
		return numericDistributions(df)
	default:
		return correlationHeatmap(df)
	}
}

func missingHeatmap(df *frame.Frame) ([]byte, error) {
	type colMissing struct {
		col   *frame.Column
		ratio float64
	}
	candidates := []colMissing{}
	for _, col := range df.Columns() {
		if ratio := col.MissingRatio(); ratio > 0 {
			candidates = append(candidates, colMissing{col, ratio})
		}
	}
	if len(candidates) == 0 {
		return placeholder("Missing Data Heatmap", "No missing values detected")
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].ratio > candidates[j].ratio })
	if len(candidates) > heatmapColumnLimit {
		candidates = candidates[:heatmapColumnLimit]
	}

	rows := df.Rows()
	if rows > heatmapRowLimit {
		rows = heatmapRowLimit
	}
	z := make([][]float64, len(candidates))
	for i, cand := range candidates {
		z[i] = make([]float64, rows)
		for r := 0; r < rows; r++ {
			if cand.col.Missing[r] {
				z[i][r] = 1
			}
		}
	}

	p := plot.New()
	p.Title.Text = "Missing Data Heatmap (Top Columns)"
	p.X.Label.Text = "Row sample"
	p.Add(plotter.NewHeatMap(missingGrid{z: z}, palette.Heat(12, 1)))
	return render(p, 10*vg.Inch, 4*vg.Inch)
}

// missingGrid presents the column-major missingness matrix to the heatmap:
// X is the row sample, Y is the column rank.
type missingGrid struct {
	z [][]float64
}

func (g missingGrid) Dims() (int, int)   { return len(g.z[0]), len(g.z) }
func (g missingGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g missingGrid) X(c int) float64    { return float64(c) }
func (g missingGrid) Y(r int) float64    { return float64(r) }

func targetDistribution(df *frame.Frame, target string) ([]byte, error) {
	title := fmt.Sprintf("Target Distribution: %s", target)
	col := df.Column(target)
	if target == "" || col == nil {
		return placeholder("Target Distribution", "Target column unavailable")
	}

	counts := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		value := col.Raw[i]
		if col.Missing[i] {
			value = "nan"
		}
		counts[value]++
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	if len(labels) > barLimit {
		labels = labels[:barLimit]
	}

	values := make(plotter.Values, len(labels))
	for i, label := range labels {
		values[i] = float64(counts[label])
	}
	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build target distribution chart")
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Count"
	p.Add(bars)
	p.NominalX(labels...)
	return render(p, 8*vg.Inch, 4*vg.Inch)
}

func featureImportance(rep *report.Report) ([]byte, error) {
	var entries []map[string]any
	if rep != nil {
		entries = rep.TargetDiagnostics.Maps("top_predictive_features")
	}
	if len(entries) == 0 {
		return placeholder("Top Predictive Features", "Feature importance unavailable")
	}
	if len(entries) > 10 {
		entries = entries[:10]
	}

	// Reverse so the strongest feature renders at the top.
	labels := make([]string, len(entries))
	values := make(plotter.Values, len(entries))
	for i, entry := range entries {
		j := len(entries) - 1 - i
		labels[j], _ = entry["feature"].(string)
		values[j], _ = entry["score"].(float64)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build feature importance chart")
	}
	bars.Horizontal = true

	p := plot.New()
	p.Title.Text = "Top Predictive Features"
	p.X.Label.Text = "Signal Score"
	p.Add(bars)
	p.NominalY(labels...)
	return render(p, 8*vg.Inch, 4*vg.Inch)
}

func numericDistributions(df *frame.Frame) ([]byte, error) {
	numeric := []*frame.Column{}
	for _, col := range df.Columns() {
		if col.IsNumeric() {
			numeric = append(numeric, col)
			if len(numeric) == histogramLimit {
				break
			}
		}
	}
	if len(numeric) == 0 {
		return placeholder("Numeric Distributions", "No numeric features")
	}

	plots := make([][]*plot.Plot, len(numeric))
	for i, col := range numeric {
		values := plotter.Values(col.NonNullFloats())
		p := plot.New()
		p.Title.Text = col.Name
		if len(values) > 0 {
			hist, err := plotter.NewHist(values, histogramBins)
			if err != nil {
				return nil, errors.Wrap(err, "failed to build histogram")
			}
			p.Add(hist)
		}
		plots[i] = []*plot.Plot{p}
	}

	height := vg.Length(len(numeric)) * 2.2 * vg.Inch
	img := vgimg.NewWith(vgimg.UseWH(8*vg.Inch, height), vgimg.UseDPI(120))
	dc := draw.New(img)
	canvases := plot.Align(plots, draw.Tiles{Rows: len(plots), Cols: 1}, dc)
	for i, row := range plots {
		row[0].Draw(canvases[i][0])
	}
	return encodePNG(img)
}

func correlationHeatmap(df *frame.Frame) ([]byte, error) {
	numeric := []*frame.Column{}
	for _, col := range df.Columns() {
		if col.IsNumeric() {
			numeric = append(numeric, col)
		}
	}
	if len(numeric) == 0 {
		return placeholder("Correlation Heatmap", "No numeric features")
	}

	n := len(numeric)
	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		corr[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := math.Abs(completeCaseCorrelation(numeric[i], numeric[j]))
			corr[i][j] = r
			corr[j][i] = r
		}
	}

	// Keep the columns with the strongest average relationships.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	mean := func(i int) float64 {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += corr[i][j]
		}
		return sum / float64(n)
	}
	sort.SliceStable(order, func(a, b int) bool { return mean(order[a]) > mean(order[b]) })
	if len(order) > correlationLimit {
		order = order[:correlationLimit]
	}

	k := len(order)
	z := make([][]float64, k)
	for i, oi := range order {
		z[i] = make([]float64, k)
		for j, oj := range order {
			z[i][j] = corr[oi][oj]
		}
	}

	p := plot.New()
	p.Title.Text = "Correlation Heatmap (Top Numeric Features)"
	p.Add(plotter.NewHeatMap(squareGrid{z: z}, palette.Heat(12, 1)))
	return render(p, 8*vg.Inch, 6*vg.Inch)
}

type squareGrid struct {
	z [][]float64
}

func (g squareGrid) Dims() (int, int)   { return len(g.z), len(g.z) }
func (g squareGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g squareGrid) X(c int) float64    { return float64(c) }
func (g squareGrid) Y(r int) float64    { return float64(r) }

// completeCaseCorrelation computes Pearson correlation over rows where both
// columns are present.
func completeCaseCorrelation(a, b *frame.Column) float64 {
	xs := make([]float64, 0, a.Len())
	ys := make([]float64, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		if a.Missing[i] || b.Missing[i] {
			continue
		}
		xs = append(xs, a.Floats[i])
		ys = append(ys, b.Floats[i])
	}
	if len(xs) < 2 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// placeholder renders an empty chart carrying an explanatory subtitle, so
// callers always receive a valid PNG.
func placeholder(title, message string) ([]byte, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s\n%s", title, message)
	p.HideAxes()
	return render(p, 8*vg.Inch, 3*vg.Inch)
}

func render(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(120))
	p.Draw(draw.New(img))
	return encodePNG(img)
}

func encodePNG(img *vgimg.Canvas) ([]byte, error) {
	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to encode plot")
	}
	return buf.Bytes(), nil
}
