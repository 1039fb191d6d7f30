// Package pdf provides the page extraction side of the translator: opening a
// document and pulling raw text out of it one page at a time.
package pdf

// Document is an ordered, read-only sequence of pages.
// Pages may be requested any number of times and in any order.
type Document interface {
	// NumPages returns the number of pages in the document
	NumPages() int
	// Page returns the page at the given 0-based index
	Page(index int) Page
	// Close releases any underlying file handle
	Close() error
}

// Page is a single page of a Document.
type Page interface {
	// Index returns the 0-based, stable page index
	Index() int
	// ExtractText returns the raw text of the page.
	// ok is false when the page has no extractable text at all.
	ExtractText() (text string, ok bool)
}

// errPage is implemented by pages that remember why extraction came back empty.
type errPage interface {
	Err() error
}

// ExtractionError returns the error recorded by the last ExtractText call on p,
// or nil when p does not track errors or extraction succeeded.
func ExtractionError(p Page) error {
	if ep, ok := p.(errPage); ok {
		return ep.Err()
	}
	return nil
}

// PDFInfo PDF 文件信息
type PDFInfo struct {
	FilePath  string `json:"file_path"`
	FileName  string `json:"file_name"`
	PageCount int    `json:"page_count"`
	FileSize  int64  `json:"file_size"`
	IsTextPDF bool   `json:"is_text_pdf"`
}

// PDFErrorCode 错误代码枚举
type PDFErrorCode string

const (
	ErrPDFNotFound   PDFErrorCode = "PDF_NOT_FOUND"
	ErrPDFInvalid    PDFErrorCode = "PDF_INVALID"
	ErrPDFEncrypted  PDFErrorCode = "PDF_ENCRYPTED"
	ErrExtractFailed PDFErrorCode = "EXTRACT_FAILED"
)

// PDFError PDF 处理错误
type PDFError struct {
	Code    PDFErrorCode `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Page    int          `json:"page,omitempty"`
	Cause   error        `json:"-"`
}

// Error implements the error interface for PDFError
func (e *PDFError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *PDFError) Unwrap() error {
	return e.Cause
}

// NewPDFError creates a new PDFError with the given code, message, and optional cause
func NewPDFError(code PDFErrorCode, message string, cause error) *PDFError {
	return &PDFError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewPDFErrorWithPage creates a new PDFError with page information
func NewPDFErrorWithPage(code PDFErrorCode, message string, page int, cause error) *PDFError {
	return &PDFError{
		Code:    code,
		Message: message,
		Page:    page,
		Cause:   cause,
	}
}
