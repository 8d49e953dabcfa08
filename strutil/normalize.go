package strutil

import (
	"strings"

	"golang.org/x/text/width"
)

// NormalizeUpper trims surrounding whitespace and converts to upper case.
// Use for callsigns, modes, and other tokens where case is not significant.
func NormalizeUpper(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// NormalizeLower trims surrounding whitespace and converts to lower case.
func NormalizeLower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// FoldWidth maps full-width ASCII variants (１２, －, ＡＢ, ideographic space)
// to their ASCII forms. Kana and ideographs keep their canonical width.
func FoldWidth(value string) string {
	if isASCII(value) {
		return value
	}
	return width.Fold.String(value)
}

// CollapseBlanks replaces runs of spaces and tabs with a single space and
// trims the result. Newlines are preserved.
func CollapseBlanks(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(value))
	inBlank := false
	for _, r := range value {
		if r == ' ' || r == '\t' {
			if !inBlank {
				b.WriteByte(' ')
				inBlank = true
			}
			continue
		}
		inBlank = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// DigitsOnly keeps ASCII digits and drops every other rune.
func DigitsOnly(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		if c := value[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// IsDigits reports whether value is non-empty and made only of ASCII digits.
func IsDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
