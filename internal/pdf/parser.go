package pdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/Finnson11-star/pdf-translator/internal/logger"
)

// LedongthucExtractor opens PDF files with github.com/ledongthuc/pdf.
type LedongthucExtractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *LedongthucExtractor {
	return &LedongthucExtractor{}
}

// Open opens the PDF at path. The returned document must be closed.
func (e *LedongthucExtractor) Open(pdfPath string) (Document, error) {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewPDFError(ErrPDFNotFound, "file does not exist", err)
		}
		return nil, NewPDFError(ErrPDFInvalid, "cannot access file", err)
	}
	if fileInfo.IsDir() {
		return nil, NewPDFError(ErrPDFInvalid, "path is a directory, not a file", nil)
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, NewPDFError(ErrPDFInvalid, "cannot open PDF file", err)
	}

	doc, err := newLedongthucDocument(f, fileInfo.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	doc.closer = f

	logger.Debug("opened PDF", logger.String("path", pdfPath), logger.Int("pages", doc.NumPages()))
	return doc, nil
}

// OpenReader opens a PDF held in memory or any other io.ReaderAt.
func (e *LedongthucExtractor) OpenReader(ra io.ReaderAt, size int64) (Document, error) {
	return newLedongthucDocument(ra, size)
}

func newLedongthucDocument(ra io.ReaderAt, size int64) (doc *ledongthucDocument, err error) {
	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = NewPDFError(ErrPDFInvalid, "cannot parse PDF file", fmt.Errorf("%v", r))
		}
	}()

	r, err := pdf.NewReader(ra, size)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, NewPDFError(ErrPDFEncrypted, "PDF is encrypted", err)
		}
		return nil, NewPDFError(ErrPDFInvalid, "cannot parse PDF file", err)
	}
	return &ledongthucDocument{r: r, numPages: r.NumPage()}, nil
}

// ledongthucDocument adapts *pdf.Reader to Document
type ledongthucDocument struct {
	// the underlying reader is not safe for concurrent use
	mu       sync.Mutex
	r        *pdf.Reader
	numPages int
	closer   io.Closer
}

func (d *ledongthucDocument) NumPages() int {
	return d.numPages
}

func (d *ledongthucDocument) Page(index int) Page {
	return &ledongthucPage{doc: d, index: index}
}

func (d *ledongthucDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}

type ledongthucPage struct {
	doc   *ledongthucDocument
	index int
	err   error
}

func (p *ledongthucPage) Index() int {
	return p.index
}

func (p *ledongthucPage) Err() error {
	return p.err
}

// ExtractText 提取单页文本，按行拼接
func (p *ledongthucPage) ExtractText() (string, bool) {
	text, err := p.doc.extract(p.index)
	p.err = err
	if err != nil {
		logger.Warn("page text extraction failed",
			logger.Int("page", p.index+1), logger.Err(err))
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

func (d *ledongthucDocument) extract(index int) (text string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if index < 0 || index >= d.numPages {
		return "", NewPDFErrorWithPage(ErrExtractFailed, "page index out of range", index+1, nil)
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = NewPDFErrorWithPage(ErrExtractFailed, "cannot read page", index+1, fmt.Errorf("%v", r))
		}
	}()

	page := d.r.Page(index + 1)
	if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
		return "", nil
	}

	rows, err := page.GetTextByRow()
	if err != nil || len(rows) == 0 {
		// row grouping failed, fall back to the flat text stream
		plain, perr := page.GetPlainText(nil)
		if perr != nil {
			if err == nil {
				err = perr
			}
			return "", NewPDFErrorWithPage(ErrExtractFailed, "cannot extract page text", index+1, err)
		}
		return plain, nil
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var b strings.Builder
		for _, t := range row.Content {
			if t.S == "" || isPostScriptCode(t.S) {
				continue
			}
			b.WriteString(t.S)
		}
		line := strings.TrimRightFunc(b.String(), unicode.IsSpace)
		if isPostScriptCode(line) || hasExcessiveNonPrintable(line) {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// GetPDFInfo 获取 PDF 基本信息（页数、文件大小）
func GetPDFInfo(pdfPath string) (*PDFInfo, error) {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewPDFError(ErrPDFNotFound, "file does not exist", err)
		}
		return nil, NewPDFError(ErrPDFInvalid, "cannot access file", err)
	}

	doc, err := NewExtractor().Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return &PDFInfo{
		FilePath:  pdfPath,
		FileName:  filepath.Base(pdfPath),
		PageCount: doc.NumPages(),
		FileSize:  fileInfo.Size(),
		IsTextPDF: IsTextDocument(doc),
	}, nil
}

// IsTextDocument 检查文档前几页是否包含可提取的文本
// Scanned documents yield nothing and every page would be skipped.
func IsTextDocument(doc Document) bool {
	maxPagesToCheck := 3
	if doc.NumPages() < maxPagesToCheck {
		maxPagesToCheck = doc.NumPages()
	}

	total := 0
	for i := 0; i < maxPagesToCheck; i++ {
		content, ok := doc.Page(i).ExtractText()
		if !ok {
			continue
		}
		for _, r := range content {
			if !unicode.IsSpace(r) {
				total++
			}
		}
		if total > 50 {
			return true
		}
	}
	return total > 0
}

// isPostScriptCode checks if text looks like PostScript/PDF operator code
// that leaked into the text layer
func isPostScriptCode(text string) bool {
	if len(text) == 0 {
		return false
	}

	textLower := strings.ToLower(text)

	// "/name def" is the most reliable indicator
	if (strings.Contains(text, " def ") || strings.HasSuffix(text, " def")) && strings.Contains(text, "/") {
		return true
	}
	if strings.Contains(textLower, "null def") {
		return true
	}
	if strings.Contains(text, "@stx") || strings.Contains(text, "@etx") {
		return true
	}
	if strings.Contains(textLower, "/burl") || strings.Contains(textLower, "burl@") {
		return true
	}

	for _, pattern := range []string{
		"currentpoint", "gsave", "grestore", "newpath", "closepath",
		"setrgbcolor", "setgray", "setlinewidth", "showpage",
	} {
		if strings.Contains(textLower, pattern) {
			return true
		}
	}

	// URLs have slashes too
	if strings.Contains(text, "://") || strings.Contains(textLower, "http") {
		return false
	}
	slashNameCount := 0
	for _, word := range strings.Fields(text) {
		if len(word) < 2 || word[0] != '/' {
			continue
		}
		isName := true
		for _, c := range word[1:] {
			if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '@') {
				isName = false
				break
			}
		}
		if isName {
			slashNameCount++
		}
	}
	return slashNameCount >= 3
}

// hasExcessiveNonPrintable checks if more than 10% of text is control characters
func hasExcessiveNonPrintable(text string) bool {
	if len(text) == 0 {
		return false
	}

	nonPrintableCount := 0
	total := 0
	for _, r := range text {
		total++
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			nonPrintableCount++
		}
		if r >= 0x7F && r <= 0x9F {
			nonPrintableCount++
		}
	}
	return float64(nonPrintableCount)/float64(total) > 0.1
}
