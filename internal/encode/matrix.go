// Package encode turns a frame into a numeric design matrix: numeric columns
// median-imputed, categorical columns filled with a missing sentinel and
// one-hot encoded. Both target diagnostics and the model simulation build
// their feature matrices here so the two stages see identical encodings.
package encode

import (
	"fmt"
	"sort"

	"sentinel/domain/frame"

	"github.com/montanaflynn/stats"
)

// MissingSentinel replaces missing categorical values before encoding.
const MissingSentinel = "__MISSING__"

// Matrix is a row-major numeric feature matrix with named columns.
type Matrix struct {
	Names []string
	X     [][]float64
}

// Rows returns the number of encoded rows.
func (m *Matrix) Rows() int { return len(m.X) }

// Width returns the number of encoded features.
func (m *Matrix) Width() int { return len(m.Names) }

// Column extracts one feature column by index.
func (m *Matrix) Column(j int) []float64 {
	out := make([]float64, len(m.X))
	for i, row := range m.X {
		out[i] = row[j]
	}
	return out
}

// Build encodes the frame's columns (excluding the named target) over the
// given row subset. rowIdx preserves its order in the output.
func Build(df *frame.Frame, target string, rowIdx []int) *Matrix {
	m := &Matrix{}
	type encoder func(row int, out []float64)
	var encoders []encoder

	for _, col := range df.Columns() {
		if col.Name == target {
			continue
		}
		if col.IsNumeric() {
			median := columnMedian(col)
			c := col
			idx := len(m.Names)
			m.Names = append(m.Names, c.Name)
			encoders = append(encoders, func(row int, out []float64) {
				if c.Missing[row] {
					out[idx] = median
				} else {
					out[idx] = c.Floats[row]
				}
			})
			continue
		}

		levels := categoricalLevels(col)
		c := col
		base := len(m.Names)
		levelIndex := make(map[string]int, len(levels))
		for k, level := range levels {
			levelIndex[level] = base + k
			m.Names = append(m.Names, fmt.Sprintf("%s_%s", c.Name, level))
		}
		encoders = append(encoders, func(row int, out []float64) {
			value := c.Raw[row]
			if c.Missing[row] {
				value = MissingSentinel
			}
			if j, ok := levelIndex[value]; ok {
				out[j] = 1
			}
		})
	}

	m.X = make([][]float64, len(rowIdx))
	for i, row := range rowIdx {
		out := make([]float64, len(m.Names))
		for _, enc := range encoders {
			enc(row, out)
		}
		m.X[i] = out
	}
	return m
}

// columnMedian returns the median of the non-missing values, 0 for an
// all-missing column.
func columnMedian(col *frame.Column) float64 {
	values := col.NonNullFloats()
	if len(values) == 0 {
		return 0
	}
	median, err := stats.Median(values)
	if err != nil {
		return 0
	}
	return median
}

// categoricalLevels returns the distinct values of a categorical column in
// sorted order, with the missing sentinel appended when any value is missing.
func categoricalLevels(col *frame.Column) []string {
	seen := make(map[string]struct{})
	hasMissing := false
	for i, v := range col.Raw {
		if col.Missing[i] {
			hasMissing = true
			continue
		}
		seen[v] = struct{}{}
	}
	levels := make([]string, 0, len(seen)+1)
	for v := range seen {
		levels = append(levels, v)
	}
	sort.Strings(levels)
	if hasMissing {
		levels = append(levels, MissingSentinel)
	}
	return levels
}
