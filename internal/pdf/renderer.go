package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/gofpdi"
)

// A4 in points, used when dimension probing fails (display concern only).
const (
	DefaultPageWidth  = 595.28
	DefaultPageHeight = 841.89
)

// Renderer overlays text onto the first page of a PDF template.
type Renderer interface {
	Render(template []byte, fields []FieldPlacement, record map[string]interface{}) ([]byte, error)
	PageSize(template []byte) (width, height float64)
}

type OverlayRenderer struct{}

func NewRenderer() Renderer {
	return &OverlayRenderer{}
}

// Render produces a single certificate. Fields whose value is empty or
// missing from the record are skipped entirely, not drawn blank.
func (r *OverlayRenderer) Render(template []byte, fields []FieldPlacement, record map[string]interface{}) (out []byte, err error) {
	// gofpdi panics on unreadable input; surface that as a rendering error
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("failed to read template PDF: %v", rec)
		}
	}()

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: DefaultPageWidth, Ht: DefaultPageHeight},
	})

	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(template))

	// Only the first page of a multi-page template is used
	tpl := importer.ImportPageFromStream(doc, &rs, 1, "/MediaBox")
	width, height := importedPageSize(importer)

	doc.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: height})
	importer.UseImportedTemplate(doc, tpl, 0, 0, width, height)

	lookup := make(map[string]interface{}, len(record))
	for k, v := range record {
		lookup[strings.ToLower(k)] = v
	}

	for _, field := range fields {
		value, ok := lookup[strings.ToLower(field.Field)]
		if !ok || value == nil {
			continue
		}
		text := fmt.Sprintf("%v", value)
		if text == "" {
			continue
		}

		size := field.FontSize
		if size <= 0 {
			size = 16
		}

		doc.SetFont(fontFamily(field.FontFamily), styleCode(field.FontStyle), size)

		red, green, blue := ParseHexColor(field.Color)
		doc.SetTextColor(red, green, blue)

		textWidth := doc.GetStringWidth(text)
		originX := AlignOrigin(field.X, textWidth, field.Align)

		// Config Y is from the top edge; gofpdf's origin is top-left, so the
		// baseline lands at y+size (equivalent to pageHeight-y-size in the
		// PDF's native bottom-left coordinates).
		doc.Text(originX, BaselineY(field.Y, size), text)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// PageSize probes the template's first-page dimensions, falling back to A4
// when the probe fails. Callers use this for layout display only.
func (r *OverlayRenderer) PageSize(template []byte) (width, height float64) {
	width, height = DefaultPageWidth, DefaultPageHeight

	defer func() {
		if rec := recover(); rec != nil {
			width, height = DefaultPageWidth, DefaultPageHeight
		}
	}()

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: DefaultPageWidth, Ht: DefaultPageHeight},
	})
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(template))
	importer.ImportPageFromStream(doc, &rs, 1, "/MediaBox")

	return importedPageSize(importer)
}

func importedPageSize(importer *gofpdi.Importer) (float64, float64) {
	sizes := importer.GetPageSizes()
	if box, ok := sizes[1]["/MediaBox"]; ok && box["w"] > 0 && box["h"] > 0 {
		return box["w"], box["h"]
	}
	return DefaultPageWidth, DefaultPageHeight
}

// AlignOrigin computes the horizontal draw origin from the configured
// anchor x and the measured text width.
func AlignOrigin(x, textWidth float64, align string) float64 {
	switch strings.ToLower(align) {
	case "center":
		return x - textWidth/2
	case "right":
		return x - textWidth
	default:
		return x
	}
}

// BaselineY converts a top-measured Y into the text baseline position.
func BaselineY(y, fontSize float64) float64 {
	return y + fontSize
}

// ParseHexColor converts "#rrggbb" (or "rrggbb", or shorthand "#rgb") to
// RGB components. Unparseable input yields black.
func ParseHexColor(hex string) (int, int, int) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(value >> 16 & 0xff), int(value >> 8 & 0xff), int(value & 0xff)
}

func styleCode(style string) string {
	switch strings.ToLower(strings.ReplaceAll(style, "-", "")) {
	case "bold":
		return "B"
	case "italic":
		return "I"
	case "bolditalic":
		return "BI"
	default:
		return ""
	}
}

// fontFamily maps a requested family to one of the built-in core fonts.
func fontFamily(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "times"), strings.Contains(lower, "serif") && !strings.Contains(lower, "sans"):
		return "Times"
	case strings.Contains(lower, "courier"), strings.Contains(lower, "mono"):
		return "Courier"
	default:
		return "Helvetica"
	}
}
