package pdf

import (
	"errors"
	"io"
	"sync"

	"github.com/andy/facturas/internal/render"
	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrFinalized is returned when a document is finalized twice
var ErrFinalized = errors.New("pdf already finalized")

var defaultFont = render.Font{Family: "Helvetica", Size: 10}

// Surface is an A4 PDF document implementing render.Surface. It uses the
// core fonts, so text is converted to Windows-1252 before drawing.
type Surface struct {
	pdf    *fpdf.Fpdf
	enc    *encoding.Encoder
	font   render.Font
	height float64
	images map[string]bool

	path string    // destination file, written atomically
	w    io.Writer // destination writer, used when path is empty
	done bool
}

// Option configures a Surface
type Option func(*Surface)

// WithoutCompression leaves page streams uncompressed
func WithoutCompression() Option {
	return func(s *Surface) { s.pdf.SetCompression(false) }
}

// WithTitle sets the document title metadata
func WithTitle(title string) Option {
	return func(s *Surface) { s.pdf.SetTitle(title, true) }
}

// NewFile creates a document that Finalize writes to path
func NewFile(path string, opts ...Option) *Surface {
	s := newSurface(opts)
	s.path = path
	return s
}

// NewWriter creates a document that Finalize writes to w
func NewWriter(w io.Writer, opts ...Option) *Surface {
	s := newSurface(opts)
	s.w = w
	return s
}

func newSurface(opts []Option) *Surface {
	doc := newDoc()
	doc.SetCreator("facturas", true)
	doc.AddPage()

	_, h := doc.GetPageSize()
	s := &Surface{
		pdf:    doc,
		enc:    encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()),
		font:   defaultFont,
		height: h,
		images: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newDoc returns an A4 document in points with manual page breaks
func newDoc() *fpdf.Fpdf {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)
	doc.SetFont(defaultFont.Family, defaultFont.Style, defaultFont.Size)
	return doc
}

func (s *Surface) PageSize() (float64, float64) {
	return s.pdf.GetPageSize()
}

func (s *Surface) SetFont(font render.Font) {
	if s.done {
		return
	}
	s.font = font
	s.pdf.SetFont(font.Family, font.Style, font.Size)
}

func (s *Surface) TextWidth(text string, font render.Font) float64 {
	if font == s.font {
		return s.pdf.GetStringWidth(s.encode(text))
	}
	s.pdf.SetFont(font.Family, font.Style, font.Size)
	w := s.pdf.GetStringWidth(s.encode(text))
	s.pdf.SetFont(s.font.Family, s.font.Style, s.font.Size)
	return w
}

func (s *Surface) DrawText(x, y float64, text string) {
	if s.done {
		return
	}
	s.pdf.Text(x, s.height-y, s.encode(text))
}

func (s *Surface) DrawRightText(x, y float64, text string) {
	if s.done {
		return
	}
	t := s.encode(text)
	s.pdf.Text(x-s.pdf.GetStringWidth(t), s.height-y, t)
}

func (s *Surface) DrawLine(x1, y1, x2, y2 float64) {
	if s.done {
		return
	}
	s.pdf.Line(x1, s.height-y1, x2, s.height-y2)
}

func (s *Surface) NewPage() {
	if s.done {
		return
	}
	s.pdf.AddPage()
}

// Finalize writes the document to its destination. A file destination is
// written to a temporary file first, so a failure never leaves a partial
// document behind.
func (s *Surface) Finalize() error {
	if s.done {
		return ErrFinalized
	}
	s.done = true

	if err := s.pdf.Error(); err != nil {
		return &WriteError{Path: s.path, Err: err}
	}

	if s.path != "" {
		return writeFile(s.path, s.pdf.Output)
	}
	if s.w == nil {
		return &WriteError{Err: errors.New("no destination")}
	}
	if err := s.pdf.Output(s.w); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

func (s *Surface) encode(text string) string {
	out, err := s.enc.String(text)
	if err != nil {
		return text
	}
	return out
}

// Measurer measures text the same way a Surface does, without a document.
// It is safe for concurrent use.
type Measurer struct {
	mu  sync.Mutex
	pdf *fpdf.Fpdf
	enc *encoding.Encoder
}

// NewMeasurer creates a Measurer using the PDF core font metrics
func NewMeasurer() *Measurer {
	return &Measurer{
		pdf: newDoc(),
		enc: encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()),
	}
}

func (m *Measurer) TextWidth(text string, font render.Font) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if out, err := m.enc.String(text); err == nil {
		text = out
	}
	m.pdf.SetFont(font.Family, font.Style, font.Size)
	return m.pdf.GetStringWidth(text)
}
