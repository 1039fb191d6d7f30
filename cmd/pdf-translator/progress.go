package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/Finnson11-star/pdf-translator/internal/pipeline"
)

// pageBar shows run progress on the terminal
type pageBar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newPageBar(w io.Writer, total int) *pageBar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Starting..."),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &pageBar{w: w, bar: bar}
}

func (p *pageBar) update(progress pipeline.Progress) {
	p.bar.Describe(progress.Message)
	_ = p.bar.Set(progress.Processed)
}

// finish leaves the bar where the run stopped, which may be short of full
func (p *pageBar) finish(progress pipeline.Progress) {
	p.update(progress)
	fmt.Fprintln(p.w)
}
