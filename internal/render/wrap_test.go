package render

import (
	"reflect"
	"strings"
	"testing"
)

func TestWrapText(t *testing.T) {
	font := Font{Family: "Helvetica", Size: 10} // 5pt per character
	m := ApproxMeasurer{}

	tests := []struct {
		name     string
		text     string
		width    float64
		expected []string
	}{
		{"empty", "", 50, []string{""}},
		{"only whitespace", "  \t\n ", 50, []string{""}},
		{"fits on one line", "hello", 50, []string{"hello"}},
		{"exact fit", "hello abcd", 50, []string{"hello abcd"}},
		{"greedy break", "hello world foo", 50, []string{"hello", "world foo"}},
		{"collapses whitespace", "a   b\n\nc", 50, []string{"a b c"}},
		{"long word kept whole", "supercalifragilistic", 50, []string{"supercalifragilistic"}},
		{"long word between short ones", "a supercalifragilistic b", 50, []string{"a", "supercalifragilistic", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapText(tt.text, font, tt.width, m)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("WrapText(%q, %v) = %q, want %q", tt.text, tt.width, got, tt.expected)
			}
		})
	}
}

func TestWrapTextWidthBound(t *testing.T) {
	font := Font{Family: "Helvetica", Size: 9}
	m := ApproxMeasurer{}
	text := strings.Repeat("instalación de cuadro eléctrico con diferencial ", 12) + "x"

	for _, width := range []float64{20, 45, 100, 255.1, 1000} {
		lines := WrapText(text, font, width, m)
		if len(lines) == 0 {
			t.Fatalf("width %v: got zero lines", width)
		}
		for _, line := range lines {
			if m.TextWidth(line, font) > width && strings.Contains(line, " ") {
				t.Errorf("width %v: line %q is %v wide", width, line, m.TextWidth(line, font))
			}
		}
		if got := strings.Join(lines, " "); got != strings.Join(strings.Fields(text), " ") {
			t.Errorf("width %v: words lost or reordered", width)
		}
	}
}

func TestWrapTextDeterministic(t *testing.T) {
	font := Font{Family: "Helvetica", Size: 9}
	text := "revisión general de la instalación y sustitución de luminarias"

	first := WrapText(text, font, 80, ApproxMeasurer{})
	for i := 0; i < 5; i++ {
		if got := WrapText(text, font, 80, ApproxMeasurer{}); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: got %q, want %q", i, got, first)
		}
	}
}
