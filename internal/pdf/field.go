package pdf

// FieldPlacement is one draw instruction for the certificate overlay:
// which source field to render and where/how to paint it. X and Y are in
// points, Y measured from the top edge of the page.
type FieldPlacement struct {
	Field      string  `json:"field" bson:"field"`
	X          float64 `json:"x" bson:"x"`
	Y          float64 `json:"y" bson:"y"`
	FontFamily string  `json:"font_family" bson:"font_family"`
	FontStyle  string  `json:"font_style" bson:"font_style"` // normal, bold, italic, bolditalic
	FontSize   float64 `json:"font_size" bson:"font_size"`
	Color      string  `json:"color" bson:"color"` // hex, e.g. #1a2b3c
	Align      string  `json:"align" bson:"align"` // left, center, right
}
