package render

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// DefaultPlaceholder replaces characters the PDF core fonts cannot show
const DefaultPlaceholder = "?"

const tabWidth = 4

// Sanitize returns text with every rune outside Windows-1252 replaced by placeholder.
// Tabs become spaces and other control characters become the placeholder; newlines are kept.
// It never fails.
func Sanitize(text, placeholder string) string {
	ph := validPlaceholder(placeholder)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r == '\r':
			// dropped; "\r\n" already yields the newline
		case r == '\t':
			b.WriteString(strings.Repeat(" ", tabWidth))
		case r < 0x20 || r == 0x7f:
			b.WriteRune(ph)
		default:
			if _, ok := charmap.Windows1252.EncodeRune(r); ok {
				b.WriteRune(r)
			} else {
				b.WriteRune(ph)
			}
		}
	}
	return b.String()
}

// encodeWinAnsi converts already sanitized text to the single-byte encoding
// the core fonts expect.
func encodeWinAnsi(text string) (string, error) {
	return charmap.Windows1252.NewEncoder().String(text)
}

// validPlaceholder returns the first rune of placeholder if it can itself be encoded
func validPlaceholder(placeholder string) rune {
	for _, r := range placeholder {
		if r >= 0x20 && r != 0x7f {
			if _, ok := charmap.Windows1252.EncodeRune(r); ok {
				return r
			}
		}
		break
	}
	return '?'
}
