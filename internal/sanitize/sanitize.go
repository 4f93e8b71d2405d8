// Package sanitize strips unsafe Unicode from raw document text before it
// enters the chunking and embedding pipeline.
package sanitize

import "strings"

// Clean removes NUL characters, C0/C1 control characters, and zero-width
// characters from text, then trims leading and trailing whitespace.
// Whitespace-shaped controls (newline, carriage return, tab, vertical tab,
// form feed) become a single space so sentence boundaries survive.
//
// Clean is pure and total: it never fails, empty input yields empty output,
// and it is idempotent.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n', r == '\r', r == '\t', r == '\v', r == '\f':
			b.WriteByte(' ')
		case r < 0x20, r == 0x7F, r >= 0x80 && r <= 0x9F:
			// NUL and the remaining C0/C1 range.
		case r == '\u200B', r == '\u200C', r == '\u200D', r == '\uFEFF':
			// Zero-width space, non-joiner, joiner, BOM.
		default:
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}
