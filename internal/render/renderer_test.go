package render

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/andy/facturas/internal/domain"
)

func sampleHeader() *domain.InvoiceHeader {
	return &domain.InvoiceHeader{
		Number:     "100",
		Date:       domain.Null("2024-01-15"),
		ClientName: "ACME",
	}
}

func manyLines(n int, desc string) []*domain.InvoiceLine {
	lines := make([]*domain.InvoiceLine, n)
	for i := range lines {
		lines[i] = &domain.InvoiceLine{
			Code:        domain.Null("L" + strconv.Itoa(i)),
			Description: domain.Null(desc),
			Quantity:    domain.Null("1"),
			Price:       domain.Null("1.50"),
		}
	}
	return lines
}

func allTexts(rec *Recorder) []string {
	var out []string
	for _, p := range rec.Pages() {
		out = append(out, p.Texts()...)
	}
	return out
}

func TestRenderSingleLineInvoice(t *testing.T) {
	rec := NewRecorder(nil, A4Width, A4Height)
	lines := []*domain.InvoiceLine{{
		Code:        domain.Null("A1"),
		Description: domain.Null("Widget"),
		Quantity:    domain.Null("2"),
		Price:       domain.Null("10.00"),
	}}

	summary, err := New().Render(rec, sampleHeader(), lines)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if summary.Pages != 1 || len(rec.Pages()) != 1 {
		t.Errorf("expected 1 page, got summary %d, recorded %d", summary.Pages, len(rec.Pages()))
	}
	if got := FormatAmount(summary.BaseTotal); got != "20.00" {
		t.Errorf("base total = %s, want 20.00", got)
	}
	if got := FormatAmount(summary.Totals.Tax.Value); got != "4.20" {
		t.Errorf("tax = %s, want 4.20", got)
	}
	if got := FormatAmount(summary.Totals.Total.Value); got != "24.20" {
		t.Errorf("total = %s, want 24.20", got)
	}
	if !rec.Finalized() {
		t.Error("expected surface to be finalized")
	}

	texts := rec.Pages()[0].Texts()
	for _, want := range []string{"FACTURA", "Nº: 100", "Fecha: 15/01/2024", "ACME", "A1", "Widget", "2.00", "10.00", "20.00", "Base imponible:", "4.20", "24.20"} {
		if !slices.Contains(texts, want) {
			t.Errorf("page is missing %q; got %q", want, texts)
		}
	}
	if slices.Contains(texts, ContinuationLabel) {
		t.Error("single page invoice should not have a continuation header")
	}
}

func TestRenderNumbersRightAligned(t *testing.T) {
	rec := NewRecorder(nil, A4Width, A4Height)
	lines := []*domain.InvoiceLine{{Code: domain.Null("A1"), Quantity: domain.Null("2"), Price: domain.Null("10")}}

	if _, err := New().Render(rec, sampleHeader(), lines); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	l := DefaultLayout()
	right := A4Width - l.MarginRight
	want := map[string]float64{
		"2.00":  right - l.QuantityOffset,
		"10.00": right - l.PriceOffset,
		"20.00": right,
	}
	for _, p := range rec.Pages()[0].Primitives {
		x, ok := want[p.Text]
		if !ok {
			continue
		}
		if p.Kind != KindRightText {
			t.Errorf("%q drawn as kind %d, want right aligned", p.Text, p.Kind)
		}
		if p.X != x {
			t.Errorf("%q anchored at %v, want %v", p.Text, p.X, x)
		}
		delete(want, p.Text)
	}
	if len(want) != 0 {
		t.Errorf("numbers not drawn: %v", want)
	}
}

func TestRenderNoLines(t *testing.T) {
	rec := NewRecorder(nil, A4Width, A4Height)
	h := sampleHeader()
	h.Base = domain.Null("150")

	summary, err := New().Render(rec, h, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if summary.Pages != 1 || summary.Lines != 0 {
		t.Errorf("got %d pages and %d lines, want 1 and 0", summary.Pages, summary.Lines)
	}
	if !summary.BaseTotal.IsZero() {
		t.Errorf("base total = %s, want 0", summary.BaseTotal)
	}
	if got := FormatAmount(summary.Totals.Base.Value); got != "150.00" {
		t.Errorf("base = %s, want stored 150.00", got)
	}
	if got := FormatAmount(summary.Totals.Total.Value); got != "181.50" {
		t.Errorf("total = %s, want 181.50", got)
	}
}

func TestRenderPaginates(t *testing.T) {
	rec := NewRecorder(nil, A4Width, A4Height)
	lines := manyLines(60, "mano de obra")

	summary, err := New().Render(rec, sampleHeader(), lines)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	pages := rec.Pages()
	if len(pages) < 2 {
		t.Fatalf("expected at least 2 pages, got %d", len(pages))
	}
	if summary.Pages != len(pages) {
		t.Errorf("summary reports %d pages, recorded %d", summary.Pages, len(pages))
	}

	for i, p := range pages[1:] {
		texts := p.Texts()
		if len(texts) == 0 || texts[0] != ContinuationLabel {
			t.Errorf("page %d does not start with the continuation header: %q", i+2, texts)
		}
	}

	// every line code appears exactly once and in order
	var codes []string
	for _, text := range allTexts(rec) {
		if strings.HasPrefix(text, "L") {
			codes = append(codes, text)
		}
	}
	if len(codes) != len(lines) {
		t.Fatalf("expected %d codes, got %d", len(lines), len(codes))
	}
	for i, code := range codes {
		if code != lines[i].Code.String {
			t.Errorf("code %d = %q, want %q", i, code, lines[i].Code.String)
		}
	}

	if got := FormatAmount(summary.BaseTotal); got != "90.00" {
		t.Errorf("base total = %s, want 90.00", got)
	}
}

func TestRenderStaysAboveBottomMargin(t *testing.T) {
	rec := NewRecorder(nil, A4Width, A4Height)
	desc := strings.TrimSpace(strings.Repeat("palabra ", 200))
	lines := manyLines(5, desc)

	if _, err := New().Render(rec, sampleHeader(), lines); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	bottom := DefaultLayout().MarginBottom
	for i, p := range rec.Pages() {
		if p.Cursor < bottom {
			t.Errorf("page %d drawn down to %v, below the %v margin", i+1, p.Cursor, bottom)
		}
	}
}

func TestRenderWrappedLineNotSplit(t *testing.T) {
	rec := NewRecorder(nil, A4Width, A4Height)
	desc := strings.TrimSpace(strings.Repeat("palabra ", 200))
	lines := manyLines(3, desc)

	if _, err := New().Render(rec, sampleHeader(), lines); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// all description fragments of a line sit on the page holding its code
	for i, p := range rec.Pages() {
		texts := p.Texts()
		for _, l := range lines {
			hasCode := slices.Contains(texts, l.Code.String)
			count := 0
			for _, text := range texts {
				if strings.HasPrefix(text, "palabra") {
					count++
				}
			}
			if !hasCode {
				continue
			}
			if count == 0 {
				t.Errorf("page %d has code %s but no description", i+1, l.Code.String)
			}
		}
	}

	var fragments int
	for _, text := range allTexts(rec) {
		if strings.HasPrefix(text, "palabra") {
			fragments++
		}
	}
	perLine := len(WrapText(desc, fontRow, descriptionWidth(), ApproxMeasurer{}))
	if fragments != perLine*len(lines) {
		t.Errorf("expected %d description fragments, got %d", perLine*len(lines), fragments)
	}
}

func descriptionWidth() float64 {
	l := DefaultLayout()
	right := A4Width - l.MarginRight
	return (right - l.NumbersReserve) - (l.MarginLeft + l.DescriptionOffset)
}

func TestRenderLineTallerThanPage(t *testing.T) {
	rec := NewRecorder(nil, A4Width, A4Height)
	huge := strings.TrimSpace(strings.Repeat("palabra ", 2000))
	lines := []*domain.InvoiceLine{
		{Code: domain.Null("S"), Description: domain.Null("corta"), Quantity: domain.Null("1"), Price: domain.Null("1")},
		{Code: domain.Null("H"), Description: domain.Null(huge), Quantity: domain.Null("1"), Price: domain.Null("1")},
	}

	summary, err := New().Render(rec, sampleHeader(), lines)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// the huge line gets its own page, the totals a third one
	if summary.Pages != 3 || len(rec.Pages()) != 3 {
		t.Fatalf("expected 3 pages, got summary %d, recorded %d", summary.Pages, len(rec.Pages()))
	}
	second := rec.Pages()[1].Texts()
	if second[0] != ContinuationLabel || second[1] != "H" {
		t.Errorf("second page should start with the huge line, got %q", second[:2])
	}
	third := rec.Pages()[2].Texts()
	if !slices.Contains(third, "TOTAL:") {
		t.Errorf("third page should hold the totals, got %q", third)
	}
}

func TestRenderTotalsMoveToNewPage(t *testing.T) {
	l := DefaultLayout()
	// the largest line count that still fits on the first page leaves no
	// room for the totals block
	for n := 1; n < 60; n++ {
		rec := NewRecorder(nil, A4Width, A4Height)
		summary, err := New().Render(rec, sampleHeader(), manyLines(n, "x"))
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if summary.Pages < 2 {
			continue
		}

		last := rec.Pages()[len(rec.Pages())-1]
		texts := last.Texts()
		if !slices.Contains(texts, "TOTAL:") {
			t.Fatalf("n=%d: totals not on the last page", n)
		}
		if last.Cursor < l.MarginBottom {
			t.Errorf("n=%d: totals drawn below the bottom margin", n)
		}
		for _, text := range texts {
			if strings.HasPrefix(text, "L") {
				t.Errorf("n=%d: expected only totals on the last page, found line %q", n, text)
			}
		}
		return
	}
	t.Fatal("no line count produced a second page")
}

func TestRenderLogo(t *testing.T) {
	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.jpg")
	if err := os.WriteFile(logo, []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("failed to write logo: %v", err)
	}

	withLogo := NewRecorder(nil, A4Width, A4Height)
	if _, err := New(WithLogo(logo)).Render(withLogo, sampleHeader(), nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	missing := NewRecorder(nil, A4Width, A4Height)
	if _, err := New(WithLogo(filepath.Join(dir, "missing.jpg"))).Render(missing, sampleHeader(), nil); err != nil {
		t.Fatalf("Render with missing logo failed: %v", err)
	}

	first := withLogo.Pages()[0].Primitives[0]
	if first.Kind != KindImage || first.Path != logo {
		t.Fatalf("expected the logo first, got %+v", first)
	}
	size := DefaultLayout().LogoSize
	if first.Width != size || first.Height != size {
		t.Errorf("logo box = %vx%v, want %vx%v", first.Width, first.Height, size, size)
	}

	for _, p := range missing.Pages()[0].Primitives {
		if p.Kind == KindImage {
			t.Error("missing logo should not be drawn")
		}
	}

	// the layout below the logo is the same either way
	a := withLogo.Pages()[0].Primitives[1:]
	b := missing.Pages()[0].Primitives
	if len(a) != len(b) {
		t.Fatalf("got %d and %d primitives", len(a), len(b))
	}
	for i := range a {
		if a[i].Y != b[i].Y || a[i].Text != b[i].Text {
			t.Errorf("primitive %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRenderLetterhead(t *testing.T) {
	rec := NewRecorder(nil, A4Width, A4Height)
	company := Company{
		Name:    "Instalaciones Pérez",
		Owner:   "Juan Pérez",
		Address: []string{"C/ Mayor 1", "28001 Madrid"},
		TaxID:   "12345678Z",
	}
	h := sampleHeader()
	h.ClientTaxID = domain.Null("B1234567")

	if _, err := New(WithCompany(company)).Render(rec, h, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	texts := rec.Pages()[0].Texts()
	want := []string{"Instalaciones Pérez", "Juan Pérez", "C/ Mayor 1", "28001 Madrid", "NIF: 12345678Z", "FACTURA", "CIF/NIF: B1234567"}
	for _, w := range want {
		if !slices.Contains(texts, w) {
			t.Errorf("missing %q", w)
		}
	}
	if texts[0] != company.Name {
		t.Errorf("letterhead should come first, got %q", texts[0])
	}
}

func TestRenderTruncatesCode(t *testing.T) {
	rec := NewRecorder(nil, A4Width, A4Height)
	lines := []*domain.InvoiceLine{{Code: domain.Null("ABCDEFGHIJKLMNOP")}}

	if _, err := New().Render(rec, sampleHeader(), lines); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	texts := rec.Pages()[0].Texts()
	if !slices.Contains(texts, "ABCDEFGHIJ") || slices.Contains(texts, "ABCDEFGHIJKLMNOP") {
		t.Errorf("code not truncated to 10 characters: %q", texts)
	}
}

func TestRenderNilHeader(t *testing.T) {
	rec := NewRecorder(nil, A4Width, A4Height)
	if _, err := New().Render(rec, nil, nil); !errors.Is(err, ErrNoHeader) {
		t.Errorf("expected ErrNoHeader, got %v", err)
	}
	if rec.Finalized() {
		t.Error("surface should not be finalized")
	}
}

type failingSurface struct {
	*Recorder
	err error
}

func (f *failingSurface) Finalize() error { return f.err }

func TestRenderFinalizeError(t *testing.T) {
	diskFull := errors.New("disk full")
	s := &failingSurface{Recorder: NewRecorder(nil, A4Width, A4Height), err: diskFull}

	if _, err := New().Render(s, sampleHeader(), nil); !errors.Is(err, diskFull) {
		t.Errorf("expected finalize error, got %v", err)
	}
}

func TestRecorderFinalize(t *testing.T) {
	rec := NewRecorder(nil, A4Width, A4Height)
	rec.DrawText(10, 100, "antes")
	if err := rec.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	rec.DrawText(10, 50, "después")
	rec.NewPage()
	if len(rec.Pages()) != 1 || len(rec.Pages()[0].Primitives) != 1 {
		t.Error("drawing after finalize should be ignored")
	}
	if err := rec.DrawImage("logo.jpg", 0, 0, 1, 1); !errors.Is(err, ErrFinalized) {
		t.Errorf("expected ErrFinalized from DrawImage, got %v", err)
	}
	if err := rec.Finalize(); !errors.Is(err, ErrFinalized) {
		t.Errorf("expected ErrFinalized, got %v", err)
	}
}

func TestRecorderImageMovesCursor(t *testing.T) {
	rec := NewRecorder(nil, A4Width, A4Height)
	rec.DrawText(10, 700, "cabecera")
	if err := rec.DrawImage("logo.jpg", 400, 650, 100, 80); err != nil {
		t.Fatalf("DrawImage failed: %v", err)
	}
	if got := rec.Pages()[0].Cursor; got != 650 {
		t.Errorf("cursor = %v, want 650", got)
	}

	// an image above the lowest baseline leaves it alone
	if err := rec.DrawImage("logo.jpg", 400, 720, 100, 80); err != nil {
		t.Fatalf("DrawImage failed: %v", err)
	}
	if got := rec.Pages()[0].Cursor; got != 650 {
		t.Errorf("cursor = %v, want 650", got)
	}
}

func TestReconcileMatchesRender(t *testing.T) {
	lines := manyLines(7, "revisión")
	h := sampleHeader()
	h.Tax = domain.Null("roto")

	r := New()
	base, totals := r.Reconcile(h, lines)

	summary, err := r.Render(NewRecorder(nil, A4Width, A4Height), h, lines)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !base.Equal(summary.BaseTotal) {
		t.Errorf("base = %s, render used %s", base, summary.BaseTotal)
	}
	pairs := [][2]Amount{
		{totals.Base, summary.Totals.Base},
		{totals.Tax, summary.Totals.Tax},
		{totals.Total, summary.Totals.Total},
	}
	for _, p := range pairs {
		if !p[0].Value.Equal(p[1].Value) || p[0].Source != p[1].Source {
			t.Errorf("reconciled %s (%s), render printed %s (%s)", p[0].Value, p[0].Source, p[1].Value, p[1].Source)
		}
	}
	if totals.Tax.Source != SourceFallback || !totals.Tax.Value.IsZero() {
		t.Errorf("unparseable tax should fall back to zero, got %+v", totals.Tax)
	}
}
