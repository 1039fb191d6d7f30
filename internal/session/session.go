// Package session is the caller-facing driver: it starts runs in the
// background, reports progress, and exports the stored result.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Finnson11-star/pdf-translator/internal/config"
	pipeerrors "github.com/Finnson11-star/pdf-translator/internal/errors"
	"github.com/Finnson11-star/pdf-translator/internal/logger"
	"github.com/Finnson11-star/pdf-translator/internal/pdf"
	"github.com/Finnson11-star/pdf-translator/internal/pipeline"
	"github.com/Finnson11-star/pdf-translator/internal/render"
	"github.com/Finnson11-star/pdf-translator/internal/results"
	"github.com/Finnson11-star/pdf-translator/internal/translator"
	"github.com/Finnson11-star/pdf-translator/internal/types"
)

// Options configures a Session.
type Options struct {
	Translator translator.Translator
	// Pacer overrides the interval pacer built from PacingInterval
	Pacer          pipeline.Pacer
	PacingInterval time.Duration
	Render         types.RenderConfig
}

// Session 单个会话：至多一个进行中的翻译任务
type Session struct {
	mu         sync.Mutex
	controller *pipeline.Controller
	store      *results.Store
	renderer   *render.DocumentRenderer
	errs       *pipeerrors.ErrorManager

	runs   map[string]*run
	active *run
	// draining is a run cancelled by ResetSession whose last call has not returned yet
	draining *run
}

type run struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	progress pipeline.Progress
	result   *pipeline.Result
	err      error
}

func (r *run) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// New creates a session.
func New(opts Options) *Session {
	pacer := opts.Pacer
	if pacer == nil {
		pacer = pipeline.NewIntervalPacer(opts.PacingInterval)
	}
	return &Session{
		controller: pipeline.NewController(opts.Translator, pacer, opts.Render.MarkerLabel),
		store:      results.NewStore(opts.Render.MarkerLabel),
		renderer:   render.NewDocumentRenderer(opts.Render),
		errs:       pipeerrors.NewErrorManager(),
		runs:       make(map[string]*run),
	}
}

// NewFromConfig builds the translator selected in cfg and a session around it.
func NewFromConfig(ctx context.Context, cfg *types.Config) (*Session, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	tr, err := translator.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(Options{
		Translator:     tr,
		PacingInterval: cfg.PacingInterval.Std(),
		Render:         cfg.Render,
	}), nil
}

// StartRun begins translating doc in the background and returns its handle.
// Only one run may be active at a time. If a reset run is still finishing its
// last translation call, StartRun waits for it (or for ctx) before starting.
// The caller keeps ownership of doc and must not close it before the run is
// over (see Wait).
func (s *Session) StartRun(ctx context.Context, doc pdf.Document, targetLanguage string, policy pipeline.Policy) (string, error) {
	if doc == nil {
		return "", types.NewAppError(types.ErrInvalidInput, "document is nil", nil)
	}
	if err := config.ValidateLanguage(targetLanguage); err != nil {
		return "", err
	}
	policy, err := pipeline.ParsePolicy(string(policy))
	if err != nil {
		return "", err
	}

	if err := s.lockIdle(ctx); err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r := &run{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
		progress: pipeline.Progress{
			Phase:   types.PhaseTranslating,
			Total:   doc.NumPages(),
			Message: "Starting...",
		},
	}
	s.runs[r.id] = r
	s.active = r
	s.store.Begin(r.id, doc.NumPages(), targetLanguage)

	logger.Info("run started", logger.String("runID", r.id), logger.Int("pages", doc.NumPages()))
	go s.execute(runCtx, r, doc, targetLanguage, policy)
	return r.id, nil
}

// lockIdle acquires s.mu once no run is using the translator.
// On success the caller holds s.mu.
func (s *Session) lockIdle(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.active != nil && !s.active.finished() {
			id := s.active.id
			s.mu.Unlock()
			return types.NewAppErrorWithDetails(types.ErrRunInProgress, "a translation run is already active", id, nil)
		}
		d := s.draining
		if d == nil || d.finished() {
			s.draining = nil
			return nil
		}
		s.mu.Unlock()

		logger.Debug("waiting for reset run to finish", logger.String("runID", d.id))
		select {
		case <-d.done:
		case <-ctx.Done():
			return types.NewAppError(types.ErrCancelled, "stopped waiting for previous run", ctx.Err())
		}
	}
}

func (s *Session) execute(ctx context.Context, r *run, doc pdf.Document, target string, policy pipeline.Policy) {
	defer close(r.done)
	defer r.cancel()

	res, err := s.controller.Run(ctx, doc, pipeline.Request{
		TargetLanguage: target,
		Policy:         policy,
		OnPage: func(p pipeline.PageResult) {
			if !s.store.Append(r.id, p) {
				return
			}
			switch {
			case p.Status == pipeline.StatusFailed:
				s.errs.RecordError(r.id, p.PageNumber(), pipeerrors.StageTranslation, p.ErrorDetail)
			case p.Status == pipeline.StatusSkippedEmpty && p.ErrorDetail != "":
				s.errs.RecordError(r.id, p.PageNumber(), pipeerrors.StageExtract, p.ErrorDetail)
			}
		},
		OnProgress: func(p pipeline.Progress) {
			r.mu.Lock()
			r.progress = p
			r.mu.Unlock()
		},
	})

	r.mu.Lock()
	r.result, r.err = res, err
	if err != nil {
		r.progress.Phase = types.PhaseError
		r.progress.Message = err.Error()
	}
	r.mu.Unlock()

	if err != nil {
		logger.Error("run failed to start", err, logger.String("runID", r.id))
		s.store.Abandon(r.id)
		return
	}
	if !s.store.Finish(r.id, res) {
		logger.Info("run result discarded after reset", logger.String("runID", r.id))
	}
}

func (s *Session) lookup(handle string) (*run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[handle]
	if !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput, "unknown run handle", handle, nil)
	}
	return r, nil
}

// GetProgress returns the latest progress of a run.
func (s *Session) GetProgress(handle string) (pipeline.Progress, error) {
	r, err := s.lookup(handle)
	if err != nil {
		return pipeline.Progress{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress, nil
}

// GetResult returns the stored result of the most recent finished run.
func (s *Session) GetResult() (*pipeline.Result, bool) {
	return s.store.Current()
}

// Snapshot returns the partial result of the run in progress.
func (s *Session) Snapshot() (*pipeline.Result, bool) {
	return s.store.Snapshot()
}

// RequestAbort asks a run to stop after the page it is working on.
// Aborting a finished run is a no-op.
func (s *Session) RequestAbort(handle string) error {
	r, err := s.lookup(handle)
	if err != nil {
		return err
	}
	if !r.finished() {
		logger.Info("abort requested", logger.String("runID", handle))
		r.cancel()
	}
	return nil
}

// Wait blocks until the run is over or ctx ends, and returns the run's own result.
func (s *Session) Wait(ctx context.Context, handle string) (*pipeline.Result, error) {
	r, err := s.lookup(handle)
	if err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, types.NewAppError(types.ErrCancelled, "stopped waiting for run", ctx.Err())
	case <-r.done:
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result.Clone(), r.err
}

// ResetSession cancels any active run and forgets every result and error.
// Safe to call at any time, any number of times.
func (s *Session) ResetSession() {
	s.mu.Lock()
	if s.active != nil && !s.active.finished() {
		s.active.cancel()
		s.draining = s.active
	}
	s.active = nil
	s.runs = make(map[string]*run)
	s.mu.Unlock()

	s.store.Reset()
	s.errs.ClearAll()
	logger.Info("session reset")
}

// ExportPlainText returns the stored result as plain text.
func (s *Session) ExportPlainText() (string, error) {
	res, ok := s.store.Current()
	if !ok {
		return "", types.NewAppError(types.ErrInvalidState, "no finished translation to export", nil)
	}
	return render.PlainText(res), nil
}

// ExportDocument renders the stored result as PDF. When rendering fails the
// error says to fall back to the plain-text export.
func (s *Session) ExportDocument() ([]byte, error) {
	res, ok := s.store.Current()
	if !ok {
		return nil, types.NewAppError(types.ErrInvalidState, "no finished translation to export", nil)
	}
	data, ok := s.renderer.Render(res)
	if !ok {
		s.errs.RecordError("", 0, pipeerrors.StagePDFGeneration, "PDF could not be generated")
		return nil, types.NewAppErrorWithDetails(types.ErrRender, "PDF could not be generated",
			"download the plain-text version instead", nil)
	}
	return data, nil
}

// Errors returns the failures recorded in this session.
func (s *Session) Errors() []pipeerrors.ErrorRecord {
	return s.errs.ListErrors()
}

// RunErrors returns the failures recorded for one run.
func (s *Session) RunErrors(handle string) []pipeerrors.ErrorRecord {
	return s.errs.ListRunErrors(handle)
}

// Outcome describes how a finished result ended, for display to the user.
func Outcome(res *pipeline.Result) string {
	if res == nil {
		return "No translation available yet."
	}
	translated, skipped, failed := res.Counts()
	switch res.Termination {
	case pipeline.AbortedOnError:
		f, _ := res.FirstFailure()
		return fmt.Sprintf("Stopped: page %d of %d failed (%s). Partial results for %d page(s) are available.",
			f.PageNumber(), res.TotalPages, f.ErrorDetail, translated)
	case pipeline.AbortedByCaller:
		return fmt.Sprintf("Cancelled after %d of %d page(s). Partial results are available.",
			len(res.Pages), res.TotalPages)
	default:
		msg := fmt.Sprintf("Done: %d page(s) translated", translated)
		if skipped > 0 {
			msg += fmt.Sprintf(", %d without text", skipped)
		}
		if failed > 0 {
			msg += fmt.Sprintf(", %d failed", failed)
		}
		return msg + "."
	}
}
