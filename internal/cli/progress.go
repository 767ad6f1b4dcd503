package cli

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// ScanProgress renders a progress bar on stderr while files are processed.
// Stdout stays clean for patch output.
type ScanProgress struct {
	bar *progressbar.ProgressBar
}

// NewScanProgress creates an idle reporter; the bar appears on Start.
func NewScanProgress() *ScanProgress {
	return &ScanProgress{}
}

func (p *ScanProgress) Start(totalFiles int) {
	p.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Scanning files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *ScanProgress) Step(path string) {
	if p.bar != nil {
		p.bar.Add(1)
	}
}

func (p *ScanProgress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
