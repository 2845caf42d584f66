package repository

import "strings"

// where joins conditions into a WHERE clause, or returns "" when there are none
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// containsPattern builds a LIKE argument matching s anywhere, to be compared
// against a LOWER()ed column
func containsPattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
