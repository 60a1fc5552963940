// Package testkit provides fixture builders for analyzer and pipeline tests:
// in-memory frames from row literals and temporary CSV files on disk.
package testkit

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sentinel/domain/frame"
)

// Frame builds a frame from a header and string rows, inferring column types
// the same way the loader does.
func Frame(t *testing.T, headers []string, rows [][]string) *frame.Frame {
	t.Helper()
	columns := make([]*frame.Column, len(headers))
	for j, name := range headers {
		raw := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				raw[i] = row[j]
			}
		}
		columns[j] = frame.InferColumn(name, raw)
	}
	return frame.New(columns)
}

// WriteCSV writes the given lines to a file under the test's temp directory
// and returns its path.
func WriteCSV(t *testing.T, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	content := strings.Join(lines, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// ClassificationCSV generates a learnable binary classification dataset: two
// informative numeric features, one noise feature, and a categorical column.
// The label follows the informative features, so baselines beat chance.
func ClassificationCSV(t *testing.T, rows int, seed int64) []string {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	lines := make([]string, 0, rows+1)
	lines = append(lines, "feature_a,feature_b,noise,segment,label")
	for i := 0; i < rows; i++ {
		label := i % 2
		a := float64(label)*2 + rng.NormFloat64()*0.5
		b := float64(label)*-1.5 + rng.NormFloat64()*0.5
		noise := rng.NormFloat64()
		segment := []string{"web", "store", "phone"}[rng.Intn(3)]
		lines = append(lines, fmt.Sprintf("%.4f,%.4f,%.4f,%s,%d", a, b, noise, segment, label))
	}
	return lines
}

// RegressionCSV generates a learnable regression dataset where the target is
// a noisy linear function of two features.
func RegressionCSV(t *testing.T, rows int, seed int64) []string {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	lines := make([]string, 0, rows+1)
	lines = append(lines, "x1,x2,noise,y")
	for i := 0; i < rows; i++ {
		x1 := rng.Float64() * 10
		x2 := rng.Float64() * 5
		noise := rng.NormFloat64()
		y := 3*x1 - 2*x2 + noise
		lines = append(lines, fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", x1, x2, noise, y))
	}
	return lines
}
