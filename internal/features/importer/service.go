package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Column synonyms tried in priority order when extracting the canonical
// name and email values from a row.
var (
	nameColumns  = []string{"name", "fullname", "full_name", "full name", "studentname", "student_name", "participant"}
	emailColumns = []string{"email", "e-mail", "mail", "emailaddress", "email_address", "email address"}
)

type ImporterService interface {
	Parse(data []byte, filename string) (*ParseResult, error)
	Validate(parsed *ParseResult, required []string) *ValidationResult
	Preview(data []byte, filename string) (*ImportPreview, error)
}

type ImporterServiceImpl struct{}

func NewImporterService() ImporterService {
	return &ImporterServiceImpl{}
}

// Parse reads a CSV or XLSX upload into header/row form.
func (s *ImporterServiceImpl) Parse(data []byte, filename string) (*ParseResult, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return parseCSV(bytes.NewReader(data))
	case strings.HasSuffix(lower, ".xlsx"):
		return parseExcel(bytes.NewReader(data))
	case strings.HasSuffix(lower, ".xls"):
		// Legacy BIFF workbooks are not readable by excelize.
		return nil, fmt.Errorf("unsupported file format: %s (save as .xlsx or .csv)", filename)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filename)
	}
}

func parseCSV(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rawHeaders, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	headers, keep := dedupeHeaders(rawHeaders)

	result := &ParseResult{Headers: headers}
	line := 1 // header was line 1

	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			result.RowErrors = append(result.RowErrors, RowError{
				Row:     line,
				Message: err.Error(),
			})
			continue
		}

		row := buildRow(rawHeaders, keep, record)
		if len(row) == 0 {
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	result.TotalRows = len(result.Rows)
	return result, nil
}

func parseExcel(r io.Reader) (*ParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("Excel file is empty")
	}

	rawHeaders := rows[0]
	headers, keep := dedupeHeaders(rawHeaders)

	result := &ParseResult{Headers: headers}
	for i := 1; i < len(rows); i++ {
		row := buildRow(rawHeaders, keep, rows[i])
		if len(row) == 0 {
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	result.TotalRows = len(result.Rows)
	return result, nil
}

// dedupeHeaders trims headers and drops columns whose lowercased name was
// already seen: first occurrence wins, so column selection stays
// deterministic for repeated headers.
func dedupeHeaders(raw []string) ([]string, []bool) {
	seen := make(map[string]bool, len(raw))
	keep := make([]bool, len(raw))
	var headers []string

	for i, h := range raw {
		h = strings.TrimSpace(h)
		raw[i] = h
		lower := strings.ToLower(h)
		if h == "" || seen[lower] {
			continue
		}
		seen[lower] = true
		keep[i] = true
		headers = append(headers, h)
	}
	return headers, keep
}

// buildRow maps each kept column to its value under both the original and
// lowercased header. Rows with no non-empty cells collapse to empty maps.
func buildRow(rawHeaders []string, keep []bool, record []string) map[string]interface{} {
	row := make(map[string]interface{})
	empty := true

	for i, header := range rawHeaders {
		if !keep[i] || i >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[i])
		if value != "" {
			empty = false
		}
		row[header] = value
		row[strings.ToLower(header)] = value
	}

	if empty {
		return map[string]interface{}{}
	}
	return row
}

// Validate checks a parsed upload against required fields. A required
// field is satisfied by any header containing its name, case-insensitive.
// Missing or invalid emails produce warnings only, since certificate
// generation does not need them.
func (s *ImporterServiceImpl) Validate(parsed *ParseResult, required []string) *ValidationResult {
	result := &ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	if parsed.TotalRows == 0 {
		result.Errors = append(result.Errors, "file contains no data rows")
	}

	for _, req := range required {
		if !hasHeaderContaining(parsed.Headers, req) {
			result.Errors = append(result.Errors, fmt.Sprintf("no column matching required field %q", req))
		}
	}

	if hasHeaderContaining(parsed.Headers, "mail") {
		for i, row := range parsed.Rows {
			email := ExtractEmail(row)
			if email == "" {
				result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: empty email address", i+1))
			} else if !emailRe.MatchString(email) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: invalid email address %q", i+1, email))
			}
		}
	} else if parsed.TotalRows > 0 {
		result.Warnings = append(result.Warnings, "no email column detected; email sending will not be possible")
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// Preview parses and validates in one pass for the upload preview screen.
func (s *ImporterServiceImpl) Preview(data []byte, filename string) (*ImportPreview, error) {
	parsed, err := s.Parse(data, filename)
	if err != nil {
		return nil, err
	}

	sample := parsed.Rows
	if len(sample) > 5 {
		sample = sample[:5]
	}

	return &ImportPreview{
		Headers:    parsed.Headers,
		SampleData: sample,
		TotalRows:  parsed.TotalRows,
		RowErrors:  parsed.RowErrors,
		Validation: s.Validate(parsed, []string{"name"}),
	}, nil
}

func hasHeaderContaining(headers []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, h := range headers {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

// ExtractName pulls the canonical recipient name from a row, trying the
// synonym columns in priority order, then any header containing "name".
// Rows with no usable value fall back to "Unknown".
func ExtractName(row map[string]interface{}) string {
	if v := lookupColumns(row, nameColumns); v != "" {
		return v
	}
	if v := lookupContaining(row, "name"); v != "" {
		return v
	}
	return "Unknown"
}

// ExtractEmail pulls the canonical email from a row; empty when absent.
func ExtractEmail(row map[string]interface{}) string {
	if v := lookupColumns(row, emailColumns); v != "" {
		return v
	}
	return lookupContaining(row, "mail")
}

func lookupColumns(row map[string]interface{}, columns []string) string {
	for _, col := range columns {
		if v, ok := row[col]; ok {
			if s := strings.TrimSpace(fmt.Sprintf("%v", v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func lookupContaining(row map[string]interface{}, needle string) string {
	// Map order is random; sort candidate keys so the same row always
	// resolves to the same column.
	var keys []string
	for k := range row {
		if k == strings.ToLower(k) && strings.Contains(k, needle) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		if s := strings.TrimSpace(fmt.Sprintf("%v", row[k])); s != "" {
			return s
		}
	}
	return ""
}
