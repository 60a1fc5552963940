package frame

import (
	"math"
	"strconv"
	"strings"
)

// DType is the inferred storage type of a column.
type DType string

const (
	DTypeNumeric DType = "float64"
	DTypeString  DType = "string"
)

// missingTokens are cell values treated as missing during inference, matching
// the usual CSV conventions for encoding nulls.
var missingTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "null": {}, "nan": {}, "none": {},
}

// IsMissingToken reports whether a raw cell value encodes a missing entry.
func IsMissingToken(cell string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(cell))]
	return ok
}

// Column is a single named column of a Frame. Raw always holds the original
// cell text for every row; Floats is populated only for numeric columns, with
// NaN at missing positions.
type Column struct {
	Name    string
	DType   DType
	Raw     []string
	Floats  []float64
	Missing []bool
}

// InferColumn builds a Column from raw cell values, inferring the dtype.
// A column is numeric when it has at least one non-missing value and every
// non-missing value parses as a float.
func InferColumn(name string, raw []string) *Column {
	col := &Column{
		Name:    name,
		DType:   DTypeString,
		Raw:     raw,
		Missing: make([]bool, len(raw)),
	}

	numeric := false
	floats := make([]float64, len(raw))
	allParse := true
	nonMissing := 0

	for i, cell := range raw {
		if IsMissingToken(cell) {
			col.Missing[i] = true
			floats[i] = math.NaN()
			continue
		}
		nonMissing++
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			allParse = false
			continue
		}
		floats[i] = v
	}

	if allParse && nonMissing > 0 {
		numeric = true
	}
	if numeric {
		col.DType = DTypeNumeric
		col.Floats = floats
	}
	return col
}

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.Raw) }

// IsNumeric reports whether the column stores numeric values.
func (c *Column) IsNumeric() bool { return c.DType == DTypeNumeric }

// MissingCount returns the number of missing entries.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// NonNullCount returns the number of present entries.
func (c *Column) NonNullCount() int { return c.Len() - c.MissingCount() }

// MissingRatio returns the fraction of missing entries, 0 for an empty column.
func (c *Column) MissingRatio() float64 {
	if c.Len() == 0 {
		return 0
	}
	return float64(c.MissingCount()) / float64(c.Len())
}

// DistinctCount counts distinct values. When includeMissing is true, missing
// entries collectively count as one extra distinct value.
func (c *Column) DistinctCount(includeMissing bool) int {
	n := c.NonNullDistinctCount()
	if includeMissing && c.MissingCount() > 0 {
		n++
	}
	return n
}

// NonNullDistinctCount counts distinct non-missing values. Numeric columns
// compare parsed floats so "1" and "1.0" collapse to one value.
func (c *Column) NonNullDistinctCount() int {
	if c.IsNumeric() {
		seen := make(map[float64]struct{})
		for i, v := range c.Floats {
			if c.Missing[i] {
				continue
			}
			seen[v] = struct{}{}
		}
		return len(seen)
	}
	seen := make(map[string]struct{})
	for i, v := range c.Raw {
		if c.Missing[i] {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

// NonNullFloats returns the parsed values of a numeric column with missing
// entries dropped.
func (c *Column) NonNullFloats() []float64 {
	if !c.IsNumeric() {
		return nil
	}
	out := make([]float64, 0, c.Len())
	for i, v := range c.Floats {
		if !c.Missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// Frame is an immutable tabular dataset: ordered named columns over an ordered
// row set. Analyzers share one read-only Frame per pipeline run.
type Frame struct {
	columns []*Column
	byName  map[string]*Column
	rows    int
}

// New assembles a Frame from columns. All columns must have equal length.
func New(columns []*Column) *Frame {
	f := &Frame{
		columns: columns,
		byName:  make(map[string]*Column, len(columns)),
	}
	for _, col := range columns {
		f.byName[col.Name] = col
		if col.Len() > f.rows {
			f.rows = col.Len()
		}
	}
	return f
}

// Rows returns the row count.
func (f *Frame) Rows() int { return f.rows }

// Width returns the column count.
func (f *Frame) Width() int { return len(f.columns) }

// Empty reports whether the frame has no rows or no columns.
func (f *Frame) Empty() bool { return f.rows == 0 || len(f.columns) == 0 }

// Columns returns the ordered column set.
func (f *Frame) Columns() []*Column { return f.columns }

// Names returns the ordered column names.
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, col := range f.columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by name, returning nil when absent.
func (f *Frame) Column(name string) *Column {
	return f.byName[name]
}

// HasColumn reports whether a column with the given name exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.byName[name]
	return ok
}

// DuplicateRowCount counts rows whose full cell tuple already appeared earlier
// in the frame. Missing cells compare equal to each other.
func (f *Frame) DuplicateRowCount() int {
	if f.Empty() {
		return 0
	}
	seen := make(map[string]struct{}, f.rows)
	dups := 0
	var sb strings.Builder
	for i := 0; i < f.rows; i++ {
		sb.Reset()
		for _, col := range f.columns {
			if col.Missing[i] {
				sb.WriteByte(0x00)
			} else {
				sb.WriteString(col.Raw[i])
			}
			sb.WriteByte(0x1f)
		}
		key := sb.String()
		if _, ok := seen[key]; ok {
			dups++
		} else {
			seen[key] = struct{}{}
		}
	}
	return dups
}

// EstimatedMemoryMB approximates the in-memory size of the frame.
func (f *Frame) EstimatedMemoryMB() float64 {
	var bytes int
	for _, col := range f.columns {
		if col.IsNumeric() {
			bytes += 8 * col.Len()
		}
		for _, cell := range col.Raw {
			bytes += len(cell) + 16
		}
	}
	return float64(bytes) / (1024 * 1024)
}
