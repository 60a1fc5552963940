package frame

import (
	"math"
	"testing"
)

func TestInferColumn_NumericWithMissing(t *testing.T) {
	col := InferColumn("amount", []string{"1.5", "", "3", "NA", "2.25"})

	if !col.IsNumeric() {
		t.Fatalf("Expected numeric column, got %s", col.DType)
	}
	if col.MissingCount() != 2 {
		t.Errorf("Expected 2 missing values, got %d", col.MissingCount())
	}
	if !math.IsNaN(col.Floats[1]) || !math.IsNaN(col.Floats[3]) {
		t.Error("Missing cells should be NaN in the float view")
	}
	if col.Floats[0] != 1.5 || col.Floats[4] != 2.25 {
		t.Errorf("Unexpected parsed values: %v", col.Floats)
	}
}

func TestInferColumn_StringWhenAnyCellFailsToParse(t *testing.T) {
	col := InferColumn("mixed", []string{"1", "2", "three"})
	if col.IsNumeric() {
		t.Error("A single unparseable cell should force a string column")
	}
}

func TestInferColumn_AllMissingIsString(t *testing.T) {
	col := InferColumn("empty", []string{"", "null", "NaN"})
	if col.IsNumeric() {
		t.Error("All-missing column should not be numeric")
	}
	if col.MissingCount() != 3 {
		t.Errorf("Expected 3 missing, got %d", col.MissingCount())
	}
}

func TestMissingTokens(t *testing.T) {
	tests := []struct {
		cell    string
		missing bool
	}{
		{"", true},
		{"  ", true},
		{"NA", true},
		{"n/a", true},
		{"NULL", true},
		{"nan", true},
		{"None", true},
		{"0", false},
		{"false", false},
		{"na na", false},
	}
	for _, tt := range tests {
		if got := IsMissingToken(tt.cell); got != tt.missing {
			t.Errorf("IsMissingToken(%q) = %v, want %v", tt.cell, got, tt.missing)
		}
	}
}

func TestDistinctCount(t *testing.T) {
	col := InferColumn("seg", []string{"a", "b", "a", "", "b"})

	if got := col.DistinctCount(true); got != 3 {
		t.Errorf("DistinctCount(true) = %d, want 3 (missing counts as a value)", got)
	}
	if got := col.NonNullDistinctCount(); got != 2 {
		t.Errorf("NonNullDistinctCount() = %d, want 2", got)
	}
}

func TestDuplicateRowCount(t *testing.T) {
	f := New([]*Column{
		InferColumn("a", []string{"1", "1", "2", "1", ""}),
		InferColumn("b", []string{"x", "x", "y", "x", "z"}),
	})

	// Rows 0, 1, 3 are identical; two of them count as duplicates.
	if got := f.DuplicateRowCount(); got != 2 {
		t.Errorf("DuplicateRowCount() = %d, want 2", got)
	}
}

func TestDuplicateRowCount_MissingValuesMatch(t *testing.T) {
	f := New([]*Column{
		InferColumn("a", []string{"", ""}),
		InferColumn("b", []string{"1", "1"}),
	})
	if got := f.DuplicateRowCount(); got != 1 {
		t.Errorf("Rows with matching missing cells should be duplicates, got %d", got)
	}
}

func TestBuildProfile(t *testing.T) {
	f := New([]*Column{
		InferColumn("num", []string{"1", "2"}),
		InferColumn("cat", []string{"a", "b"}),
	})
	p := BuildProfile(f)

	if p.Rows != 2 || p.Columns != 2 {
		t.Errorf("Profile shape = %dx%d, want 2x2", p.Rows, p.Columns)
	}
	if len(p.NumericColumns) != 1 || p.NumericColumns[0] != "num" {
		t.Errorf("Numeric columns = %v, want [num]", p.NumericColumns)
	}
	if len(p.CategoricalColumns) != 1 || p.CategoricalColumns[0] != "cat" {
		t.Errorf("Categorical columns = %v, want [cat]", p.CategoricalColumns)
	}
}

func TestFrame_Empty(t *testing.T) {
	if !New(nil).Empty() {
		t.Error("Frame with no columns should be empty")
	}
	f := New([]*Column{InferColumn("a", nil)})
	if !f.Empty() {
		t.Error("Frame with zero rows should be empty")
	}
}
