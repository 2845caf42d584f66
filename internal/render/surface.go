package render

// Font selects a family, a style ("" regular, "B" bold) and a size in points
type Font struct {
	Family string
	Style  string
	Size   float64
}

// Measurer reports how wide a text run is when set in a font
type Measurer interface {
	TextWidth(text string, font Font) float64
}

// Surface is a canvas-style page drawing backend. Coordinates are in points
// with the origin at the bottom-left corner of the page, so the layout cursor
// moves downwards by decreasing y. Text is placed on its baseline.
type Surface interface {
	Measurer

	// PageSize returns the width and height of every page
	PageSize() (width, height float64)

	SetFont(font Font)
	DrawText(x, y float64, text string)
	// DrawRightText draws text so that it ends at x
	DrawRightText(x, y float64, text string)
	// DrawImage fits the image inside the box, keeping its aspect ratio
	DrawImage(path string, x, y, width, height float64) error
	DrawLine(x1, y1, x2, y2 float64)

	// NewPage closes the current page and opens a blank one
	NewPage()
	// Finalize closes the last page and emits the document. Nothing may be
	// drawn afterwards.
	Finalize() error
}
