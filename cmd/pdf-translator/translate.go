package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Finnson11-star/pdf-translator/internal/config"
	"github.com/Finnson11-star/pdf-translator/internal/logger"
	"github.com/Finnson11-star/pdf-translator/internal/pdf"
	"github.com/Finnson11-star/pdf-translator/internal/pipeline"
	"github.com/Finnson11-star/pdf-translator/internal/session"
	"github.com/Finnson11-star/pdf-translator/internal/types"
)

const pollInterval = 200 * time.Millisecond

type translateOptions struct {
	target    string
	policy    string
	backend   string
	outputDir string
	pacing    time.Duration
	textInput bool
	noPDF     bool
	quiet     bool
}

func newTranslateCmd(root *rootOptions) *cobra.Command {
	opts := &translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate <input.pdf>",
		Short: "Translate a document and write .txt and .pdf output",
		Long: `Translate every page of a PDF into the target language.

Pages without text are skipped. Press Ctrl+C to stop after the current page;
the pages done so far are still written out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := root.initLogger(cfg); err != nil {
				return err
			}
			defer logger.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTranslate(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.target, "target", "t", "", "target language code (default from config)")
	f.StringVarP(&opts.policy, "policy", "p", "", "on page failure: continue or abort")
	f.StringVarP(&opts.backend, "backend", "b", "", "translation backend: google or openai")
	f.StringVarP(&opts.outputDir, "output", "o", "", "output directory (default next to the input)")
	f.DurationVar(&opts.pacing, "pacing", 0, "minimum gap between translation calls (must be positive)")
	f.BoolVar(&opts.textInput, "text", false, "read a form-feed separated text file instead of a PDF")
	f.BoolVar(&opts.noPDF, "no-pdf", false, "only write the plain-text output")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "no progress bar")
	return cmd
}

// apply lets explicit flags override the loaded configuration
func (o *translateOptions) apply(cmd *cobra.Command, cfg *types.Config) {
	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.TargetLanguage = o.target
	}
	if flags.Changed("policy") {
		cfg.FailurePolicy = o.policy
	}
	if flags.Changed("backend") {
		cfg.Backend = o.backend
	}
	if flags.Changed("pacing") {
		cfg.PacingInterval = types.Duration(o.pacing)
	}
	if flags.Changed("output") {
		cfg.OutputDirectory = o.outputDir
	}
}

func runTranslate(ctx context.Context, stdout, stderr io.Writer, cfg *types.Config, input string, opts *translateOptions) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	policy, err := pipeline.ParsePolicy(cfg.FailurePolicy)
	if err != nil {
		return err
	}

	textInput := isTextInput(input, opts.textInput)
	if !textInput {
		info, err := pdf.GetPDFInfo(input)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Input: %s (%d pages, %d bytes)\n", info.FileName, info.PageCount, info.FileSize)
		if info.PageCount > 0 && !info.IsTextPDF {
			warnNoText(stderr)
		}
	}

	doc, err := openInput(input, textInput)
	if err != nil {
		return err
	}
	defer doc.Close()
	if textInput && doc.NumPages() > 0 && !pdf.IsTextDocument(doc) {
		warnNoText(stderr)
	}

	sess, err := session.NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	// the run is not tied to ctx: an interrupt becomes a cooperative abort
	handle, err := sess.StartRun(context.Background(), doc, cfg.TargetLanguage, policy)
	if err != nil {
		return err
	}

	var bar *pageBar
	if !opts.quiet && doc.NumPages() > 0 {
		bar = newPageBar(stderr, doc.NumPages())
	}

	done := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		defer close(done)
		_, err := sess.Wait(context.Background(), handle)
		return err
	})
	g.Go(func() error {
		return watchRun(ctx, sess, handle, bar, done)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	res, ok := sess.GetResult()
	if !ok {
		return types.NewAppError(types.ErrInternal, "run finished without a result", nil)
	}
	fmt.Fprintln(stdout, session.Outcome(res))
	for _, rec := range sess.RunErrors(handle) {
		fmt.Fprintln(stderr, "  "+rec.String())
	}

	if err := writeOutputs(stdout, stderr, sess, outputBase(cfg.OutputDirectory, input, cfg.TargetLanguage), opts.noPDF); err != nil {
		return err
	}

	if res.Termination == pipeline.AbortedOnError {
		f, _ := res.FirstFailure()
		return types.NewAppErrorWithDetails(types.ErrTranslation, "translation stopped on a failed page",
			fmt.Sprintf("page %d: %s", f.PageNumber(), f.ErrorDetail), nil)
	}
	return nil
}

// watchRun polls progress until done is closed and turns ctx cancellation into an abort request.
func watchRun(ctx context.Context, sess *session.Session, handle string, bar *pageBar, done <-chan struct{}) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	interrupted := ctx.Done()
	for {
		select {
		case <-done:
			if bar != nil {
				p, err := sess.GetProgress(handle)
				if err != nil {
					return err
				}
				bar.finish(p)
			}
			return nil
		case <-interrupted:
			interrupted = nil
			logger.Info("interrupt received, stopping after the current page")
			if err := sess.RequestAbort(handle); err != nil {
				return err
			}
		case <-ticker.C:
			if bar == nil {
				continue
			}
			p, err := sess.GetProgress(handle)
			if err != nil {
				return err
			}
			bar.update(p)
		}
	}
}

func isTextInput(path string, forced bool) bool {
	return forced || strings.EqualFold(filepath.Ext(path), ".txt")
}

func openInput(path string, text bool) (pdf.Document, error) {
	if text {
		return pdf.LoadTextFile(path)
	}
	return pdf.NewExtractor().Open(path)
}

func warnNoText(w io.Writer) {
	fmt.Fprintln(w, "Warning: no text layer found (scanned document?); pages without text are skipped.")
}

// outputBase returns the path both outputs share, without extension:
// <dir>/<input name>_<lang>
func outputBase(dir, input, lang string) string {
	if dir == "" {
		dir = filepath.Dir(input)
	}
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, name+"_"+lang)
}

func writeOutputs(stdout, stderr io.Writer, sess *session.Session, base string, noPDF bool) error {
	if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
		return types.NewAppError(types.ErrInternal, "failed to create output directory", err)
	}

	text, err := sess.ExportPlainText()
	if err != nil {
		return err
	}
	if err := os.WriteFile(base+".txt", []byte(text), 0644); err != nil {
		return types.NewAppError(types.ErrInternal, "failed to write text output", err)
	}
	fmt.Fprintln(stdout, "Text:", base+".txt")

	if noPDF {
		return nil
	}
	data, err := sess.ExportDocument()
	if err != nil {
		if types.IsCode(err, types.ErrRender) {
			fmt.Fprintln(stderr, "Warning: PDF could not be generated, use the plain-text file instead.")
			return nil
		}
		return err
	}
	if err := os.WriteFile(base+".pdf", data, 0644); err != nil {
		return types.NewAppError(types.ErrInternal, "failed to write PDF output", err)
	}
	fmt.Fprintln(stdout, "PDF: ", base+".pdf")
	return nil
}
