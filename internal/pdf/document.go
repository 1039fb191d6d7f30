package pdf

import (
	"os"
	"strings"
)

// PageSeparator splits pages in plain-text input, as written by pdftotext.
const PageSeparator = "\f"

// TextPage is a page whose text is already known.
type TextPage struct {
	Text string
	// Absent marks a page with no text layer at all
	Absent bool
}

// TextDocument is an in-memory Document.
type TextDocument struct {
	pages []TextPage
}

// NewTextDocument creates a document with one page per string.
func NewTextDocument(pages ...string) *TextDocument {
	doc := &TextDocument{pages: make([]TextPage, len(pages))}
	for i, p := range pages {
		doc.pages[i] = TextPage{Text: p}
	}
	return doc
}

// NewTextDocumentFromPages creates a document from explicit pages.
func NewTextDocumentFromPages(pages []TextPage) *TextDocument {
	cp := make([]TextPage, len(pages))
	copy(cp, pages)
	return &TextDocument{pages: cp}
}

// LoadTextFile reads a UTF-8 text file, one page per form-feed separated chunk.
func LoadTextFile(path string) (*TextDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewPDFError(ErrPDFNotFound, "file does not exist", err)
		}
		return nil, NewPDFError(ErrPDFInvalid, "cannot read text file", err)
	}
	content := strings.TrimSuffix(string(data), PageSeparator)
	if content == "" {
		return NewTextDocument(), nil
	}
	return NewTextDocument(strings.Split(content, PageSeparator)...), nil
}

func (d *TextDocument) NumPages() int { return len(d.pages) }

func (d *TextDocument) Page(index int) Page {
	if index < 0 || index >= len(d.pages) {
		return textPage{index: index, page: TextPage{Absent: true}}
	}
	return textPage{index: index, page: d.pages[index]}
}

func (d *TextDocument) Close() error { return nil }

type textPage struct {
	index int
	page  TextPage
}

func (p textPage) Index() int { return p.index }

func (p textPage) ExtractText() (string, bool) {
	if p.page.Absent {
		return "", false
	}
	return p.page.Text, true
}
