package tui

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/andy/facturas/internal/render"
	"github.com/shopspring/decimal"
)

// formatMoney formats money as "1.234,56 €"
func formatMoney(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	s := amount.Abs().StringFixed(2)

	dotPos := len(s) - 3
	intPart := s[:dotPos]
	decPart := s[dotPos+1:]

	// Group thousands with dots
	result := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result = append(result, '.')
		}
		result = append(result, byte(c))
	}

	prefix := ""
	if negative {
		prefix = "-"
	}
	return prefix + string(result) + "," + decPart + " €"
}

// formatRaw shows a raw stored money value, or "-" when it is absent or unreadable
func formatRaw(v sql.NullString) string {
	if !v.Valid {
		return "-"
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v.String))
	if err != nil {
		return "-"
	}
	return formatMoney(d)
}

// nullStr returns the text of a nullable column or an empty string
func nullStr(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

// formatDate shows a stored date as dd/mm/yyyy
func formatDate(v sql.NullString) string {
	return render.FormatDate(v)
}

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// expandPath replaces a leading ~ with the home directory
func expandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
