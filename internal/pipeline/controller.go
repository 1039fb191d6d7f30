package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Finnson11-star/pdf-translator/internal/logger"
	"github.com/Finnson11-star/pdf-translator/internal/pdf"
	"github.com/Finnson11-star/pdf-translator/internal/translator"
	"github.com/Finnson11-star/pdf-translator/internal/types"
)

// Request describes one run.
type Request struct {
	TargetLanguage string
	Policy         Policy
	// OnPage is called once per page, in index order, right after the page is decided
	OnPage func(PageResult)
	// OnProgress receives a snapshot after every page and once at the end
	OnProgress func(Progress)
}

// Controller 翻译流水线控制器
// A Controller is not safe for concurrent runs; callers serialize them.
type Controller struct {
	translator  translator.Translator
	pacer       Pacer
	markerLabel string
	now         func() time.Time
}

// NewController creates a controller. A nil pacer gets the default interval.
func NewController(t translator.Translator, pacer Pacer, markerLabel string) *Controller {
	if pacer == nil {
		pacer = NewIntervalPacer(DefaultPacingInterval)
	}
	if markerLabel == "" {
		markerLabel = DefaultMarkerLabel
	}
	return &Controller{
		translator:  t,
		pacer:       pacer,
		markerLabel: markerLabel,
		now:         time.Now,
	}
}

// Run translates doc page by page.
// Page failures never surface as an error; they are recorded in the Result.
// Cancelling ctx stops the run between pages and keeps the pages done so far.
func (c *Controller) Run(ctx context.Context, doc pdf.Document, req Request) (*Result, error) {
	if doc == nil {
		return nil, types.NewAppError(types.ErrInvalidInput, "document is nil", nil)
	}
	if c.translator == nil {
		return nil, types.NewAppError(types.ErrInvalidState, "no translator configured", nil)
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return nil, types.NewAppError(types.ErrInvalidInput, "target language is required", nil)
	}
	policy, err := ParsePolicy(string(req.Policy))
	if err != nil {
		return nil, err
	}

	total := doc.NumPages()
	result := &Result{
		Pages:          make([]PageResult, 0, total),
		Termination:    Completed,
		TargetLanguage: req.TargetLanguage,
		TotalPages:     total,
		StartedAt:      c.now(),
	}
	progress := Progress{Phase: types.PhaseTranslating, Total: total}

	logger.Info("translation run started",
		logger.Int("pages", total),
		logger.String("target", req.TargetLanguage),
		logger.String("policy", string(policy)))

	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			result.Termination = AbortedByCaller
			break
		}

		progress.Message = fmt.Sprintf("Translating page %d of %d...", i+1, total)
		c.report(req, progress)

		pr, err := c.processPage(ctx, doc.Page(i), req.TargetLanguage)
		if err != nil {
			// cancelled while waiting for the pacer; the page was never attempted
			result.Termination = AbortedByCaller
			break
		}

		result.Pages = append(result.Pages, pr)
		if req.OnPage != nil {
			req.OnPage(pr)
		}

		progress.Processed = len(result.Pages)
		progress.Fraction = float64(progress.Processed) / float64(total)
		switch pr.Status {
		case StatusTranslated:
			progress.Translated++
		case StatusSkippedEmpty:
			progress.Skipped++
		case StatusFailed:
			progress.Failed++
		}
		c.report(req, progress)

		if pr.Status == StatusFailed && policy == PolicyAbort {
			result.Termination = AbortedOnError
			break
		}
	}

	// an abort that lands after the last page still counts as the caller's
	if result.Termination == Completed && ctx.Err() != nil {
		result.Termination = AbortedByCaller
	}

	result.AggregateText = BuildAggregate(c.markerLabel, result.Pages)
	result.FinishedAt = c.now()

	progress.Phase, progress.Message = finalStatus(result)
	if total == 0 || result.Termination == Completed {
		progress.Fraction = 1
	}
	c.report(req, progress)

	translated, skipped, failed := result.Counts()
	logger.Info("translation run finished",
		logger.String("termination", string(result.Termination)),
		logger.Int("translated", translated),
		logger.Int("skipped", skipped),
		logger.Int("failed", failed),
		logger.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)))

	return result, nil
}

// processPage decides one page.
// A non-nil error means ctx ended while waiting to translate.
func (c *Controller) processPage(ctx context.Context, page pdf.Page, target string) (PageResult, error) {
	pr := PageResult{Index: page.Index()}

	text, ok := page.ExtractText()
	if !ok || strings.TrimSpace(text) == "" {
		pr.Status = StatusSkippedEmpty
		if err := pdf.ExtractionError(page); err != nil {
			pr.ErrorDetail = err.Error()
		}
		logger.Debug("page skipped, no text", logger.Int("page", pr.PageNumber()))
		return pr, nil
	}

	if err := c.pacer.Wait(ctx); err != nil {
		return pr, err
	}

	// an in-flight call is never interrupted by the caller's abort
	translated, err := c.translator.Translate(context.WithoutCancel(ctx), text, translator.SourceAuto, target)
	c.pacer.Done()

	if err != nil {
		pr.Status = StatusFailed
		pr.ErrorDetail = err.Error()
		logger.Warn("page translation failed", logger.Int("page", pr.PageNumber()), logger.Err(err))
		return pr, nil
	}

	pr.Status = StatusTranslated
	pr.TranslatedText = translated
	logger.Debug("page translated", logger.Int("page", pr.PageNumber()), logger.Int("chars", len(translated)))
	return pr, nil
}

func (c *Controller) report(req Request, p Progress) {
	if req.OnProgress != nil {
		req.OnProgress(p)
	}
}

func finalStatus(r *Result) (types.ProcessPhase, string) {
	switch r.Termination {
	case AbortedOnError:
		if f, ok := r.FirstFailure(); ok {
			return types.PhaseError, fmt.Sprintf("Stopped: page %d failed, partial results available", f.PageNumber())
		}
		return types.PhaseError, "Stopped: a page failed, partial results available"
	case AbortedByCaller:
		return types.PhaseAborted, "Cancelled by user"
	default:
		return types.PhaseComplete, "Done"
	}
}
