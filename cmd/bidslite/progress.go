package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// applyProgress draws a progress bar for apply runs on terminals and stays
// silent otherwise.
type applyProgress struct {
	bar *progressbar.ProgressBar
}

func newApplyProgress(w io.Writer, total int) *applyProgress {
	if total == 0 || !isTerminal(w) {
		return &applyProgress{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Organizing files...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
	return &applyProgress{bar: bar}
}

func (p *applyProgress) update(done, _ int) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Set(done)
}

func (p *applyProgress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
