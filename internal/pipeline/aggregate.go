package pipeline

import (
	"fmt"
	"strings"
)

// DefaultMarkerLabel is the word used in page markers
const DefaultMarkerLabel = "Page"

// FormatPageBlock returns one page block: "--- Page N ---\n<text>\n\n".
func FormatPageBlock(label string, pageNumber int, text string) string {
	if label == "" {
		label = DefaultMarkerLabel
	}
	return fmt.Sprintf("--- %s %d ---\n%s\n\n", label, pageNumber, text)
}

// BuildAggregate concatenates the blocks of all translated pages in order.
func BuildAggregate(label string, pages []PageResult) string {
	var b strings.Builder
	for _, p := range pages {
		if p.Status != StatusTranslated {
			continue
		}
		b.WriteString(FormatPageBlock(label, p.PageNumber(), p.TranslatedText))
	}
	return b.String()
}
