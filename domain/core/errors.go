package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrReportNotFound  = fmt.Errorf("%w: report", ErrNotFound)
)

// IsNotFoundError checks if an error is a not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
