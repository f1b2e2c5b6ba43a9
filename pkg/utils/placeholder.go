package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderRe matches {{ name }}-style tokens, whitespace tolerant.
var placeholderRe = regexp.MustCompile(`\{\{\s*([^{}\s][^{}]*?)\s*\}\}`)

// ReplacePlaceholders substitutes {{key}} tokens against the record.
// Key matching is case-insensitive. Tokens with no matching key are
// replaced with the empty string, not left literal.
func ReplacePlaceholders(text string, record map[string]interface{}) string {
	lookup := make(map[string]interface{}, len(record))
	for k, v := range record {
		lookup[strings.ToLower(k)] = v
	}

	return placeholderRe.ReplaceAllStringFunc(text, func(token string) string {
		key := placeholderRe.FindStringSubmatch(token)[1]
		value, ok := lookup[strings.ToLower(key)]
		if !ok || value == nil {
			return ""
		}
		return fmt.Sprintf("%v", value)
	})
}

// ExtractPlaceholders returns the distinct token names found in text,
// in order of first appearance.
func ExtractPlaceholders(text string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(m[1])
		if !seen[key] {
			seen[key] = true
			names = append(names, key)
		}
	}
	return names
}
