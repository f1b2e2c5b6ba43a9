package utils

import (
	"strings"
	"testing"
)

func TestSanitizeFileField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces become underscores", "Jane Doe", "Jane_Doe"},
		{"invalid chars stripped", `Jane/Doe:*?"<>|`, "JaneDoe"},
		{"trimmed before joining", "  Jane Doe  ", "Jane_Doe"},
		{"keeps hyphen and underscore", "a-b_c", "a-b_c"},
		{"long value capped", strings.Repeat("a", 80), strings.Repeat("a", 60)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileField(tt.in); got != tt.want {
				t.Errorf("SanitizeFileField(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildFileName(t *testing.T) {
	record := map[string]interface{}{
		"Name":   "Jane Doe",
		"course": "Go 101",
	}

	tests := []struct {
		name    string
		pattern string
		index   int
		want    string
	}{
		{
			name:    "sequence and name",
			pattern: "{{sn}}_{{name}}.pdf",
			index:   0,
			want:    "001_Jane_Doe.pdf",
		},
		{
			name:    "sequence is one based",
			pattern: "{{sn}}.pdf",
			index:   9,
			want:    "010.pdf",
		},
		{
			name:    "missing extension defaults to pdf",
			pattern: "{{name}}",
			index:   0,
			want:    "Jane_Doe.pdf",
		},
		{
			name:    "unknown field drops out",
			pattern: "cert_{{missing}}_{{sn}}.pdf",
			index:   0,
			want:    "cert__001.pdf",
		},
		{
			name:    "multiple fields",
			pattern: "{{course}}-{{name}}.pdf",
			index:   2,
			want:    "Go_101-Jane_Doe.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildFileName(tt.pattern, tt.index, record); got != tt.want {
				t.Errorf("BuildFileName() = %q, want %q", got, tt.want)
			}
		})
	}
}
