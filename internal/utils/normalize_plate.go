package utils

import (
	"strings"
)

// NormalizePlate produces the canonical plate key: uppercase, outer
// whitespace trimmed. Interior characters are kept as-is, so "ABC 1234"
// and "ABC1234" stay distinct keys.
func NormalizePlate(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
