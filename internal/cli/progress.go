package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements scan progress reporting with a progress
// bar. All output goes to the progress channel (stderr via the logger and
// the bar), never to the report stream.
type CLIProgressReporter struct {
	quiet    bool
	bar      *progressbar.ProgressBar
	failures int
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

func (c *CLIProgressReporter) OnScanStart(totalTypes int) {
	if c.quiet {
		return
	}
	c.failures = 0
	c.bar = progressbar.NewOptions(totalTypes,
		progressbar.OptionSetDescription("Scanning types"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("types/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnTypeScanned(typeName string) {
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.Add(1)
}

func (c *CLIProgressReporter) OnResolveFailure(typeName string) {
	c.failures++
	if c.quiet {
		return
	}
	log.Printf("Type not resolvable: %s", typeName)
	if c.bar != nil {
		c.bar.Add(1)
	}
}

func (c *CLIProgressReporter) OnScanComplete() {
	if c.quiet {
		return
	}
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
	if c.failures > 0 {
		log.Printf("Skipped %d unresolvable types", c.failures)
	}
}
