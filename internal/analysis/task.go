package analysis

import (
	"sentinel/domain/frame"
)

// Task types inferred from a target column.
const (
	TaskClassification = "classification"
	TaskRegression     = "regression"
	TaskUnknown        = "unknown"
)

// DetectTaskType classifies the target column as classification or regression
// from its cardinality and dtype. An entirely-null target yields TaskUnknown,
// an explicit sentinel meaning diagnostics are non-applicable, not an error.
func DetectTaskType(col *frame.Column) string {
	nonNull := col.NonNullCount()
	if nonNull == 0 {
		return TaskUnknown
	}
	if !col.IsNumeric() {
		return TaskClassification
	}
	distinct := col.NonNullDistinctCount()
	ratio := float64(distinct) / float64(nonNull)
	// A numeric target with few distinct values is a numeric-coded
	// categorical target.
	if distinct <= 20 && ratio <= 0.05 {
		return TaskClassification
	}
	return TaskRegression
}
