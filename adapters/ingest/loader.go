package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sentinel/domain/frame"
	"sentinel/internal/errors"

	"github.com/xuri/excelize/v2"
)

// delimiterCandidates are tried in priority order; ties go to the earlier one.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// DefaultSampleLines bounds how many lines the structure sniffer inspects.
const DefaultSampleLines = 2000

// Loader reads a delimited text file (or XLSX workbook) into a Frame,
// tolerating malformed rows and reporting what it had to tolerate as
// human-readable warnings.
type Loader struct {
	filePath    string
	fileType    string // "csv" or "xlsx"
	sampleLines int
}

// NewLoader creates a loader for the given file, picking the parse strategy
// from the extension.
func NewLoader(filePath string) *Loader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xlsm" {
		fileType = "xlsx"
	}
	return &Loader{filePath: filePath, fileType: fileType, sampleLines: DefaultSampleLines}
}

// WithSampleLines overrides the sniffer's line cap.
func (l *Loader) WithSampleLines(n int) *Loader {
	if n > 0 {
		l.sampleLines = n
	}
	return l
}

// Load parses the file and returns the frame plus ingestion warnings.
// Unrecoverable read errors surface as a load failure wrapping the cause;
// no partial frame is produced in that case.
func (l *Loader) Load() (*frame.Frame, []string, error) {
	start := time.Now()

	info, err := os.Stat(l.filePath)
	if err != nil {
		return nil, nil, errors.LoadFailed(l.filePath, err)
	}
	if info.Size() == 0 {
		return nil, nil, errors.LoadFailed(l.filePath, fmt.Errorf("file is empty"))
	}

	var (
		f        *frame.Frame
		warnings []string
	)
	switch l.fileType {
	case "xlsx":
		f, warnings, err = l.loadExcel()
	default:
		f, warnings, err = l.loadCSV()
	}
	if err != nil {
		return nil, nil, err
	}

	log.Printf("[Loader] Parsed %s in %.2fms (%d rows, %d columns, %d warnings)",
		filepath.Base(l.filePath), float64(time.Since(start).Nanoseconds())/1e6,
		f.Rows(), f.Width(), len(warnings))
	return f, warnings, nil
}

// Load is a convenience wrapper around NewLoader(path).Load().
func Load(filePath string) (*frame.Frame, []string, error) {
	return NewLoader(filePath).Load()
}

// detectDelimiter counts candidate delimiters in the header line and picks
// the most frequent, defaulting to comma when none occur.
func detectDelimiter(headerLine string) rune {
	best := ','
	bestCount := 0
	for _, cand := range delimiterCandidates {
		n := strings.Count(headerLine, string(cand))
		if n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}

// parseLine splits one raw line with the given delimiter.
func parseLine(line string, delimiter rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delimiter
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	return r.Read()
}

// inspect samples the file to detect the delimiter, the expected column count,
// and structural issues worth warning about.
func (l *Loader) inspect() (rune, int, []string, error) {
	handle, err := os.Open(l.filePath)
	if err != nil {
		return ',', 0, nil, errors.LoadFailed(l.filePath, err)
	}
	defer handle.Close()

	scanner := bufio.NewScanner(handle)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	if !scanner.Scan() {
		return ',', 0, nil, errors.LoadFailed(l.filePath, fmt.Errorf("no header line"))
	}
	headerLine := strings.ToValidUTF8(scanner.Text(), "�")

	delimiter := detectDelimiter(headerLine)
	headerFields, err := parseLine(headerLine, delimiter)
	if err != nil {
		return ',', 0, nil, errors.LoadFailed(l.filePath, fmt.Errorf("unparseable header: %w", err))
	}
	expectedColumns := len(headerFields)

	mixedDelimiterRows := 0
	inconsistentRows := 0
	blankRows := 0

	for line := 2; scanner.Scan() && line <= l.sampleLines; line++ {
		raw := strings.ToValidUTF8(scanner.Text(), "�")
		if strings.TrimSpace(raw) == "" {
			blankRows++
			continue
		}
		if delimiter == ',' && strings.Count(raw, ";") > strings.Count(raw, ",") {
			mixedDelimiterRows++
		}
		fields, err := parseLine(raw, delimiter)
		if err != nil || len(fields) != expectedColumns {
			inconsistentRows++
		}
	}

	var warnings []string
	if mixedDelimiterRows > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Detected %d sampled row(s) with alternate delimiters; parser normalized to %q.",
			mixedDelimiterRows, string(delimiter)))
	}
	if inconsistentRows > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Detected %d sampled row(s) with inconsistent column counts (often unquoted commas in values).",
			inconsistentRows))
	}
	if blankRows > 0 {
		warnings = append(warnings, fmt.Sprintf("Detected %d blank row(s) in sampled data.", blankRows))
	}
	return delimiter, expectedColumns, warnings, nil
}

// loadCSV performs the tolerant full parse: detected delimiter, variable
// column counts, undecodable bytes replaced rather than rejected. Rows with
// more fields than the header are dropped and counted; short rows are padded
// with missing values.
func (l *Loader) loadCSV() (*frame.Frame, []string, error) {
	delimiter, expectedColumns, warnings, err := l.inspect()
	if err != nil {
		return nil, nil, err
	}

	raw, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, nil, errors.LoadFailed(l.filePath, err)
	}
	content := strings.ToValidUTF8(string(raw), "�")

	r := csv.NewReader(strings.NewReader(content))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, errors.LoadFailed(l.filePath, fmt.Errorf("unparseable header: %w", err))
	}
	headers := normalizeHeaders(header)

	var rows [][]string
	skippedRows := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skippedRows++
			continue
		}
		if isBlankRecord(record) {
			continue
		}
		if len(record) > len(headers) {
			skippedRows++
			continue
		}
		if len(record) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, record)
			record = padded
		}
		rows = append(rows, record)
	}

	if expectedColumns > 0 && len(headers) != expectedColumns {
		warnings = append(warnings, fmt.Sprintf(
			"Header suggests %d column(s), parser produced %d column(s).", expectedColumns, len(headers)))
	}
	if skippedRows > 0 {
		warnings = append(warnings, fmt.Sprintf("Skipped %d malformed row(s) during parsing.", skippedRows))
	}

	return buildFrame(headers, rows), warnings, nil
}

// loadExcel reads the first worksheet of an XLSX workbook through excelize.
func (l *Loader) loadExcel() (*frame.Frame, []string, error) {
	f, err := excelize.OpenFile(l.filePath)
	if err != nil {
		return nil, nil, errors.LoadFailed(l.filePath, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, errors.LoadFailed(l.filePath, fmt.Errorf("workbook has no sheets"))
	}
	allRows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, errors.LoadFailed(l.filePath, err)
	}
	if len(allRows) == 0 {
		return nil, nil, errors.LoadFailed(l.filePath, fmt.Errorf("worksheet %q is empty", sheet))
	}

	headers := normalizeHeaders(allRows[0])
	var warnings []string
	ragged := 0
	var rows [][]string
	for _, record := range allRows[1:] {
		if isBlankRecord(record) {
			continue
		}
		if len(record) != len(headers) {
			ragged++
			padded := make([]string, len(headers))
			copy(padded, record)
			record = padded
		}
		rows = append(rows, record)
	}
	if ragged > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Detected %d row(s) with inconsistent column counts in worksheet %q.", ragged, sheet))
	}
	return buildFrame(headers, rows), warnings, nil
}

func normalizeHeaders(header []string) []string {
	headers := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i)
		}
		headers[i] = name
	}
	return headers
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// buildFrame transposes row records into typed columns.
func buildFrame(headers []string, rows [][]string) *frame.Frame {
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
