package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const maxFieldLen = 60

var invalidFileChars = regexp.MustCompile(`[^a-zA-Z0-9 _-]+`)

// SanitizeFileField makes a field value safe for use inside a filename:
// characters outside alphanumerics/space/hyphen/underscore are stripped,
// spaces become underscores, and the result is length-bounded.
func SanitizeFileField(s string) string {
	s = invalidFileChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "_")
	if len(s) > maxFieldLen {
		s = s[:maxFieldLen]
	}
	return s
}

// BuildFileName resolves an output naming pattern for one recipient.
// {{sn}} is reserved: it becomes the 3-digit zero-padded 1-based sequence
// number for index. Any other {{field}} token resolves against the record
// and is sanitized. Literal text passes through. A missing extension
// defaults to .pdf.
func BuildFileName(pattern string, index int, record map[string]interface{}) string {
	lookup := make(map[string]interface{}, len(record))
	for k, v := range record {
		lookup[strings.ToLower(k)] = v
	}

	name := placeholderRe.ReplaceAllStringFunc(pattern, func(token string) string {
		key := strings.ToLower(placeholderRe.FindStringSubmatch(token)[1])
		if key == "sn" {
			return fmt.Sprintf("%03d", index+1)
		}
		value, ok := lookup[key]
		if !ok || value == nil {
			return ""
		}
		return SanitizeFileField(fmt.Sprintf("%v", value))
	})

	if filepath.Ext(name) == "" {
		name += ".pdf"
	}
	return name
}
