package resume

import "strings"

// Normalize splits text into lines, trims each one and drops the lines left
// empty. Line order is preserved.
func Normalize(text string) []string {
	var lines []string
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitLines breaks text on every line boundary a text extractor may emit:
// \n, \r\n, \r, vertical tab, form feed (PDF page joins) and the Unicode
// line and paragraph separators.
func splitLines(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029', '\x1c', '\x1d', '\x1e':
			return true
		}
		return false
	})
}
