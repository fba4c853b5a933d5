package postgresql

import "strings"

// prefixed qualifies a comma-separated column list with a table alias.
func prefixed(alias string, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
