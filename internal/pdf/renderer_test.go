package pdf

import "testing"

func TestAlignOrigin(t *testing.T) {
	tests := []struct {
		name      string
		x         float64
		textWidth float64
		align     string
		want      float64
	}{
		{"left is the anchor", 100, 80, "left", 100},
		{"empty align defaults to left", 100, 80, "", 100},
		{"center halves the width", 300, 80, "center", 260},
		{"right subtracts the width", 300, 80, "right", 220},
		{"align is case insensitive", 300, 80, "Center", 260},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlignOrigin(tt.x, tt.textWidth, tt.align); got != tt.want {
				t.Errorf("AlignOrigin(%v, %v, %q) = %v, want %v", tt.x, tt.textWidth, tt.align, got, tt.want)
			}
		})
	}
}

func TestBaselineY(t *testing.T) {
	if got := BaselineY(120, 16); got != 136 {
		t.Errorf("BaselineY(120, 16) = %v, want 136", got)
	}
}

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		name    string
		hex     string
		r, g, b int
	}{
		{"full form", "#1a2b3c", 0x1a, 0x2b, 0x3c},
		{"no hash", "ff8000", 255, 128, 0},
		{"shorthand", "#f80", 255, 136, 0},
		{"white", "#ffffff", 255, 255, 255},
		{"garbage falls back to black", "not-a-color", 0, 0, 0},
		{"empty falls back to black", "", 0, 0, 0},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := ParseHexColor(tt.hex)
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("ParseHexColor(%q) = (%d, %d, %d), want (%d, %d, %d)", tt.hex, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestStyleCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bold", "B"},
		{"italic", "I"},
		{"bold-italic", "BI"},
		{"BoldItalic", "BI"},
		{"normal", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := styleCode(tt.in); got != tt.want {
			t.Errorf("styleCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFontFamily(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Times New Roman", "Times"},
		{"serif", "Times"},
		{"Courier New", "Courier"},
		{"monospace", "Courier"},
		{"Helvetica", "Helvetica"},
		{"sans-serif", "Helvetica"},
		{"", "Helvetica"},
	}

	for _, tt := range tests {
		if got := fontFamily(tt.in); got != tt.want {
			t.Errorf("fontFamily(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderRejectsCorruptTemplate(t *testing.T) {
	r := NewRenderer()
	_, err := r.Render([]byte("definitely not a pdf"), nil, nil)
	if err == nil {
		t.Fatal("expected an error for a corrupt template")
	}
}

func TestPageSizeFallsBackToA4(t *testing.T) {
	r := NewRenderer()
	w, h := r.PageSize([]byte("garbage"))
	if w != DefaultPageWidth || h != DefaultPageHeight {
		t.Errorf("PageSize() = (%v, %v), want A4 fallback (%v, %v)", w, h, DefaultPageWidth, DefaultPageHeight)
	}
}
