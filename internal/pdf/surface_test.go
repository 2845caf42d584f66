package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"testing"

	"github.com/andy/facturas/internal/domain"
	"github.com/andy/facturas/internal/render"
)

var pageObject = regexp.MustCompile(`/Type /Page\b`)

func countPages(t *testing.T, data []byte) int {
	t.Helper()
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a pdf: %q", data[:min(len(data), 16)])
	}
	return len(pageObject.FindAll(data, -1))
}

func sampleInvoice(n int) (*domain.InvoiceHeader, []*domain.InvoiceLine) {
	h := &domain.InvoiceHeader{
		Number:     "100",
		Date:       domain.Null("2024-01-15"),
		ClientName: "ACME Instalaciones, S.L.",
	}
	lines := make([]*domain.InvoiceLine, n)
	for i := range lines {
		lines[i] = &domain.InvoiceLine{
			Code:        domain.Null("A" + strconv.Itoa(i)),
			Description: domain.Null("Sustitución de diferencial y revisión del cuadro eléctrico"),
			Quantity:    domain.Null("2"),
			Price:       domain.Null("10.00"),
		}
	}
	return h, lines
}

func TestRenderToWriter(t *testing.T) {
	tests := []struct {
		name  string
		lines int
	}{
		{"single line", 1},
		{"no lines", 0},
		{"several pages", 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewWriter(&buf, WithoutCompression(), WithTitle("Factura 100"))
			h, lines := sampleInvoice(tt.lines)

			summary, err := render.New().Render(s, h, lines)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if got := countPages(t, buf.Bytes()); got != summary.Pages {
				t.Errorf("pdf has %d pages, renderer reported %d", got, summary.Pages)
			}
			if tt.lines > 40 && summary.Pages < 2 {
				t.Errorf("expected more than one page for %d lines", tt.lines)
			}
		})
	}
}

func TestRenderToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "factura-100.pdf")
	h, lines := sampleInvoice(3)

	if _, err := render.New().Render(NewFile(path), h, lines); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a pdf")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}

func TestRenderToMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing", "factura.pdf")
	h, lines := sampleInvoice(1)

	_, err := render.New().Render(NewFile(path), h, lines)

	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected WriteError, got %v", err)
	}
	if writeErr.Path != path {
		t.Errorf("WriteError path = %q, want %q", writeErr.Path, path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected error to wrap fs.ErrNotExist, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRenderToFailingWriter(t *testing.T) {
	h, lines := sampleInvoice(1)

	_, err := render.New().Render(NewWriter(failingWriter{}), h, lines)

	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected WriteError, got %v", err)
	}
}

func TestFinalizeTwice(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriter(&buf)
	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if err := s.Finalize(); !errors.Is(err, ErrFinalized) {
		t.Errorf("expected ErrFinalized, got %v", err)
	}
}

func TestFinalizeDocumentError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "100.pdf")
	s := NewFile(path)
	docErr := errors.New("unsupported font")
	s.pdf.SetError(docErr)

	err := s.Finalize()

	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected WriteError, got %v", err)
	}
	if writeErr.Path != path {
		t.Errorf("path = %q, want %q", writeErr.Path, path)
	}
	if !errors.Is(err, docErr) {
		t.Errorf("expected wrapped document error, got %v", err)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, fs.ErrNotExist) {
		t.Errorf("expected no file, stat error %v", statErr)
	}
}

func writeImage(t *testing.T, path string, encode func(*bytes.Buffer, image.Image) error) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: 80, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
}

func TestDrawImage(t *testing.T) {
	dir := t.TempDir()
	jpg := filepath.Join(dir, "logo.jpg")
	writeImage(t, jpg, func(b *bytes.Buffer, img image.Image) error { return jpeg.Encode(b, img, nil) })
	pngPath := filepath.Join(dir, "logo.png")
	writeImage(t, pngPath, func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) })
	broken := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(broken, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"jpeg", jpg, false},
		{"png", pngPath, false},
		{"broken", broken, true},
		{"missing", filepath.Join(dir, "missing.png"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewWriter(&buf)
			err := s.DrawImage(tt.path, 400, 700, 100, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DrawImage error = %v, wantErr %v", err, tt.wantErr)
			}
			// a bad image does not prevent the document from being written
			if err := s.Finalize(); err != nil {
				t.Fatalf("Finalize failed: %v", err)
			}
			if buf.Len() == 0 {
				t.Error("expected output")
			}
		})
	}
}

func TestTextWidth(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriter(&buf)
	m := NewMeasurer()
	regular := render.Font{Family: "Helvetica", Size: 9}
	bold := render.Font{Family: "Helvetica", Style: "B", Size: 9}

	if s.TextWidth("Descripción", regular) != m.TextWidth("Descripción", regular) {
		t.Error("surface and measurer disagree")
	}
	if m.TextWidth("Importe", bold) <= m.TextWidth("Importe", regular) {
		t.Error("bold text should be wider")
	}
	if m.TextWidth("", regular) != 0 {
		t.Error("empty text should have no width")
	}

	// measuring in another font leaves the current font alone
	s.SetFont(bold)
	before := s.TextWidth("TOTAL:", bold)
	s.TextWidth("TOTAL:", render.Font{Family: "Helvetica", Size: 20})
	if after := s.TextWidth("TOTAL:", bold); after != before {
		t.Errorf("width changed from %v to %v", before, after)
	}
}

func TestMeasurerConcurrentUse(t *testing.T) {
	m := NewMeasurer()
	fonts := []render.Font{
		{Family: "Helvetica", Size: 8},
		{Family: "Helvetica", Style: "B", Size: 9},
		{Family: "Helvetica", Size: 14},
		{Family: "Helvetica", Style: "B", Size: 20},
	}
	const text = "Cable eléctrico 3x2,5"

	want := make([]float64, len(fonts))
	for i, f := range fonts {
		want[i] = m.TextWidth(text, f)
	}

	var wg sync.WaitGroup
	errs := make(chan string, len(fonts)*50)
	for i, f := range fonts {
		wg.Add(1)
		go func(i int, f render.Font) {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				if got := m.TextWidth(text, f); got != want[i] {
					errs <- fmt.Sprintf("size %v: width %v, want %v", f.Size, got, want[i])
					return
				}
			}
		}(i, f)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}
