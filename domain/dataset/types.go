package dataset

import (
	"path/filepath"
	"strings"
	"time"

	"sentinel/domain/core"
)

// Status represents the processing state of an uploaded dataset.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Dataset is an uploaded file registered for analysis.
type Dataset struct {
	ID               core.DatasetID `json:"id" db:"id"`
	OriginalFilename string         `json:"original_filename" db:"original_filename"`
	FilePath         string         `json:"file_path" db:"file_path"`
	FileSize         int64          `json:"file_size" db:"file_size"`
	FileType         string         `json:"file_type" db:"file_type"`
	FileHash         core.Hash      `json:"file_hash,omitempty" db:"file_hash"`
	TargetColumn     string         `json:"target_column,omitempty" db:"target_column"`
	RecordCount      int            `json:"record_count" db:"record_count"`
	FieldCount       int            `json:"field_count" db:"field_count"`
	Status           Status         `json:"status" db:"status"`
	ErrorMessage     string         `json:"error_message,omitempty" db:"error_message"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// New registers an uploaded file as a pending dataset.
func New(filename, filePath string, size int64, hash core.Hash, target string) *Dataset {
	now := time.Now().UTC()
	return &Dataset{
		ID:               core.DatasetID(core.NewID()),
		OriginalFilename: filename,
		FilePath:         filePath,
		FileSize:         size,
		FileType:         FileType(filename),
		FileHash:         hash,
		TargetColumn:     target,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// FileType derives the dataset kind from the filename extension.
func FileType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return "excel"
	default:
		return "csv"
	}
}

// SupportedFile reports whether the filename has an ingestible extension.
// Legacy binary .xls is not supported; the excel reader handles xlsx-family
// archives only.
func SupportedFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}

// MarkProcessing transitions the dataset into the processing state.
func (d *Dataset) MarkProcessing() {
	d.Status = StatusProcessing
	d.ErrorMessage = ""
	d.UpdatedAt = time.Now().UTC()
}

// MarkCompleted records a successful analysis with the observed shape.
func (d *Dataset) MarkCompleted(rows, columns int) {
	d.Status = StatusCompleted
	d.RecordCount = rows
	d.FieldCount = columns
	d.ErrorMessage = ""
	d.UpdatedAt = time.Now().UTC()
}

// MarkFailed records an analysis failure.
func (d *Dataset) MarkFailed(message string) {
	d.Status = StatusFailed
	d.ErrorMessage = message
	d.UpdatedAt = time.Now().UTC()
}
