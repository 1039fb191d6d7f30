package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Finnson11-star/pdf-translator/internal/logger"
	"github.com/Finnson11-star/pdf-translator/internal/pipeline"
	"github.com/Finnson11-star/pdf-translator/internal/types"
)

const (
	pageSize = "A4"
	// fontFamily is a fixed-width core font; no font file is needed
	fontFamily = "Courier"
)

// DefaultRenderConfig mirrors the config package defaults.
func DefaultRenderConfig() types.RenderConfig {
	return types.RenderConfig{
		FontSize:    10,
		LineHeight:  8,
		BlankGap:    5,
		Margin:      15,
		Placeholder: DefaultPlaceholder,
	}
}

// DocumentRenderer lays translated text out as a flowed PDF.
type DocumentRenderer struct {
	cfg      types.RenderConfig
	validate bool
	now      func() time.Time
}

// NewDocumentRenderer creates a renderer; zero fields in cfg take defaults.
func NewDocumentRenderer(cfg types.RenderConfig) *DocumentRenderer {
	d := DefaultRenderConfig()
	if cfg.FontSize <= 0 {
		cfg.FontSize = d.FontSize
	}
	if cfg.LineHeight <= 0 {
		cfg.LineHeight = d.LineHeight
	}
	if cfg.BlankGap < 0 {
		cfg.BlankGap = d.BlankGap
	}
	if cfg.Margin <= 0 {
		cfg.Margin = d.Margin
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = d.Placeholder
	}
	return &DocumentRenderer{cfg: cfg, validate: true, now: time.Now}
}

// SetValidation turns the pdfcpu check of the produced file on or off.
func (r *DocumentRenderer) SetValidation(on bool) { r.validate = on }

// Render produces PDF bytes for result. It never panics; ok is false when
// rendering failed and only the plain-text export is available.
func (r *DocumentRenderer) Render(result *pipeline.Result) (data []byte, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("PDF rendering panicked", fmt.Errorf("%v", rec))
			data, ok = nil, false
		}
	}()

	text := PlainText(result)
	stamp := r.now()
	if result != nil && !result.FinishedAt.IsZero() {
		// same result, same bytes
		stamp = result.FinishedAt
	}

	data, err := r.RenderText(text, stamp)
	if err != nil {
		logger.Error("PDF rendering failed", err)
		return nil, false
	}
	return data, true
}

// RenderText lays out text and returns the PDF bytes.
func (r *DocumentRenderer) RenderText(text string, stamp time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", pageSize, "")
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetCreator("pdf-translator", false)
	pdf.SetMargins(r.cfg.Margin, r.cfg.Margin, r.cfg.Margin)
	pdf.SetAutoPageBreak(true, r.cfg.Margin)
	pdf.SetFont(fontFamily, "", r.cfg.FontSize)
	pdf.AddPage()

	clean := Sanitize(text, r.cfg.Placeholder)
	for _, line := range strings.Split(clean, "\n") {
		if strings.TrimSpace(line) == "" {
			pdf.Ln(r.cfg.BlankGap)
			continue
		}
		encoded, err := encodeWinAnsi(line)
		if err != nil {
			return nil, types.NewAppError(types.ErrRender, "failed to encode line", err)
		}
		pdf.MultiCell(0, r.cfg.LineHeight, encoded, "", "L", false)
	}

	if pdf.Err() {
		return nil, types.NewAppError(types.ErrRender, "PDF layout failed", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, types.NewAppError(types.ErrRender, "failed to write PDF", err)
	}

	if r.validate {
		if err := validatePDF(buf.Bytes()); err != nil {
			return nil, err
		}
	}

	logger.Debug("PDF rendered",
		logger.Int("pages", pdf.PageCount()),
		logger.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// validatePDF checks the structure of the produced file with pdfcpu
func validatePDF(data []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return types.NewAppError(types.ErrRender, "rendered PDF failed validation", err)
	}
	return nil
}

// PageCount returns the number of pages in a rendered PDF.
func PageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, types.NewAppError(types.ErrRender, "cannot read rendered PDF", err)
	}
	return n, nil
}
