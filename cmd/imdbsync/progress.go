package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/pevans/imdbsync/listing"
)

var stageLabels = map[string]string{
	listing.StagePage:    "Parsing Page",
	listing.StageConvert: "Converting IMDb ID",
}

// progressReporter draws one transient bar per stage. It stays silent when
// the writer is not a terminal.
type progressReporter struct {
	out   io.Writer
	bar   *progressbar.ProgressBar
	stage string
}

func newProgressReporter(out io.Writer) *progressReporter {
	if !isTerminal(out) {
		return &progressReporter{}
	}
	return &progressReporter{out: out}
}

// Update has the signature of listing.ProgressFunc.
func (p *progressReporter) Update(stage string, current, total int) {
	if p == nil || p.out == nil {
		return
	}
	if p.bar == nil || p.stage != stage {
		p.Done()
		p.stage = stage
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(stageLabels[stage]),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(current)
}

// Done clears the current bar.
func (p *progressReporter) Done() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
	p.stage = ""
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
