package ui

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar is a terminal progress bar. A nil *ProgressBar ignores every
// call, so callers can skip the bar without branching.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar counts items up to total. A negative total shows a spinner.
func NewProgressBar(total int, description string) *ProgressBar {
	return &ProgressBar{bar: progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(false),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
	)}
}

// NewPercentBar runs from 0 to 100 and is driven with Set.
func NewPercentBar(description string) *ProgressBar {
	return &ProgressBar{bar: progressbar.NewOptions(100,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionOnCompletion(func() { os.Stderr.WriteString("\n") }),
	)}
}

func (p *ProgressBar) Add(n int) {
	if p == nil {
		return
	}
	_ = p.bar.Add(n)
}

// Set moves the bar to an absolute value.
func (p *ProgressBar) Set(n int) {
	if p == nil {
		return
	}
	_ = p.bar.Set(n)
}

func (p *ProgressBar) Finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}
