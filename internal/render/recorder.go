package render

import (
	"errors"
	"unicode/utf8"
)

// ErrFinalized is returned when a finalized surface is finalized again
var ErrFinalized = errors.New("document already finalized")

// Kind is the type of a recorded draw primitive
type Kind int

const (
	KindText Kind = iota
	KindRightText
	KindImage
	KindLine
)

// Primitive is one recorded drawing operation. X2/Y2 are only used by lines,
// Width/Height by images.
type Primitive struct {
	Kind   Kind
	X, Y   float64
	X2, Y2 float64
	Width  float64
	Height float64
	Text   string
	Path   string
	Font   Font
}

// Page is the ordered list of primitives drawn on one page. Cursor is the
// lowest baseline used so far.
type Page struct {
	Primitives []Primitive
	Cursor     float64
}

// Texts returns the text of every text primitive on the page, in draw order
func (p *Page) Texts() []string {
	out := make([]string, 0, len(p.Primitives))
	for _, prim := range p.Primitives {
		if prim.Kind == KindText || prim.Kind == KindRightText {
			out = append(out, prim.Text)
		}
	}
	return out
}

// Recorder is a Surface that keeps pages in memory
type Recorder struct {
	measurer      Measurer
	width, height float64
	font          Font
	pages         []*Page
	finalized     bool
}

// NewRecorder creates an in-memory surface with one open page. A nil
// measurer falls back to ApproxMeasurer.
func NewRecorder(m Measurer, width, height float64) *Recorder {
	if m == nil {
		m = ApproxMeasurer{}
	}
	r := &Recorder{measurer: m, width: width, height: height}
	r.NewPage()
	return r
}

// Pages returns the recorded pages
func (r *Recorder) Pages() []*Page {
	return r.pages
}

// Finalized reports whether Finalize was called
func (r *Recorder) Finalized() bool {
	return r.finalized
}

func (r *Recorder) PageSize() (float64, float64) {
	return r.width, r.height
}

func (r *Recorder) TextWidth(text string, font Font) float64 {
	return r.measurer.TextWidth(text, font)
}

func (r *Recorder) SetFont(font Font) {
	r.font = font
}

func (r *Recorder) DrawText(x, y float64, text string) {
	r.add(Primitive{Kind: KindText, X: x, Y: y, Text: text, Font: r.font}, y)
}

func (r *Recorder) DrawRightText(x, y float64, text string) {
	r.add(Primitive{Kind: KindRightText, X: x, Y: y, Text: text, Font: r.font}, y)
}

func (r *Recorder) DrawImage(path string, x, y, width, height float64) error {
	if r.finalized {
		return ErrFinalized
	}
	r.add(Primitive{Kind: KindImage, X: x, Y: y, Width: width, Height: height, Path: path}, y)
	return nil
}

func (r *Recorder) DrawLine(x1, y1, x2, y2 float64) {
	r.add(Primitive{Kind: KindLine, X: x1, Y: y1, X2: x2, Y2: y2}, min(y1, y2))
}

func (r *Recorder) NewPage() {
	if r.finalized {
		return
	}
	r.pages = append(r.pages, &Page{Cursor: r.height})
}

func (r *Recorder) Finalize() error {
	if r.finalized {
		return ErrFinalized
	}
	r.finalized = true
	return nil
}

func (r *Recorder) current() *Page {
	return r.pages[len(r.pages)-1]
}

func (r *Recorder) add(p Primitive, y float64) {
	if r.finalized {
		return
	}
	page := r.current()
	page.Primitives = append(page.Primitives, p)
	if y < page.Cursor {
		page.Cursor = y
	}
}

// ApproxMeasurer estimates text width as half the font size per character
type ApproxMeasurer struct{}

func (ApproxMeasurer) TextWidth(text string, font Font) float64 {
	return float64(utf8.RuneCountInString(text)) * font.Size * 0.5
}
