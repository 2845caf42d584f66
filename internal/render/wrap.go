package render

import "strings"

// WrapText breaks text into lines no wider than maxWidth using a greedy word
// fill. It always returns at least one line; empty input gives a single empty
// line. A word wider than maxWidth is kept whole on its own line.
func WrapText(text string, font Font, maxWidth float64, m Measurer) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	lines := make([]string, 0, 1)
	current := ""
	for _, w := range words {
		candidate := w
		if current != "" {
			candidate = current + " " + w
		}
		if m.TextWidth(candidate, font) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = w
	}
	lines = append(lines, current)

	return lines
}
