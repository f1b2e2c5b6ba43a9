package importer

// RowError describes a row-level problem found while parsing.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ParseResult is the outcome of parsing one delimited/tabular upload.
// Each row maps both the original header and its lowercased form to the
// cell value, so later lookups work regardless of source casing.
type ParseResult struct {
	Headers   []string                 `json:"headers"`
	Rows      []map[string]interface{} `json:"-"`
	TotalRows int                      `json:"total_rows"`
	RowErrors []RowError               `json:"row_errors,omitempty"`
}

// ValidationResult reports whether a parsed upload is usable for a job.
// Warnings do not block job creation; errors do.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ImportPreview is what the UI shows before a job is created.
type ImportPreview struct {
	Headers    []string                 `json:"headers"`
	SampleData []map[string]interface{} `json:"sample_data"`
	TotalRows  int                      `json:"total_rows"`
	RowErrors  []RowError               `json:"row_errors,omitempty"`
	Validation *ValidationResult        `json:"validation"`
}
