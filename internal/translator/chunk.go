package translator

import (
	"strings"
	"unicode/utf8"
)

// SplitChunks splits text into pieces of at most maxChars runes whose
// concatenation is exactly text. Cuts prefer line breaks, then spaces.
func SplitChunks(text string, maxChars int) []string {
	if text == "" {
		return nil
	}
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}

	var chunks []string
	rest := text
	for utf8.RuneCountInString(rest) > maxChars {
		// byte offset just past the first maxChars runes
		limit := 0
		for i := 0; i < maxChars; i++ {
			_, size := utf8.DecodeRuneInString(rest[limit:])
			limit += size
		}

		cut := strings.LastIndexByte(rest[:limit], '\n')
		if cut < 0 {
			cut = strings.LastIndexByte(rest[:limit], ' ')
		}
		if cut < 0 {
			cut = limit
		} else {
			cut++ // keep the separator with the chunk
		}

		chunks = append(chunks, rest[:cut])
		rest = rest[cut:]
	}
	if rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}
