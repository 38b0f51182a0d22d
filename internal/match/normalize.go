package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent lower-cases s and drops separators ('_', '-', '.', ' ').
// "RED_ALERT", "redAlert" and "red-alert" all normalize to "redalert".
func NormalizeIdent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}
		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}
